package domain

import "math"

type StageStatus string

const (
	StageOK      StageStatus = "ok"
	StageSkipped StageStatus = "skipped"
	StageFailed  StageStatus = "failed"
)

// StageInfo tags every stage result as computed, skipped for lack of input,
// or failed. Downstream stages check it explicitly instead of probing the
// data for emptiness.
type StageInfo struct {
	Status StageStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

func (s StageInfo) OK() bool { return s.Status == StageOK }

func okStage() StageInfo                 { return StageInfo{Status: StageOK} }
func skippedStage(reason string) StageInfo { return StageInfo{Status: StageSkipped, Reason: reason} }
func failedStage(reason string) StageInfo  { return StageInfo{Status: StageFailed, Reason: reason} }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
