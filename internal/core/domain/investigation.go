package domain

import (
	"time"

	"github.com/google/uuid"
)

// Investigation is one complete analysis run: the query that drove it, the
// evidence that was collected and the full pipeline output. Results are
// written once when Analyze finishes and never mutated afterwards.
type Investigation struct {
	ID         string          `json:"id"`
	Query      string          `json:"query"`
	FocusBrand string          `json:"focus_brand"`
	Platforms  []string        `json:"platforms"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Records    int             `json:"records_analyzed"`
	Result     *AnalysisResult `json:"result,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// AnalysisResult bundles every pipeline stage output.
type AnalysisResult struct {
	Aggregate       *Aggregate         `json:"quantitative_analysis"`
	SoV             *SoVReport         `json:"sov_report"`
	Competitive     *CompetitiveReport `json:"competitive_intelligence"`
	Insights        []string           `json:"insights"`
	Recommendations []string           `json:"recommendations"`
}

// NewInvestigation starts an investigation for a query.
func NewInvestigation(query, focusBrand string, platforms []string) *Investigation {
	return &Investigation{
		ID:         uuid.New().String(),
		Query:      query,
		FocusBrand: focusBrand,
		Platforms:  platforms,
		StartedAt:  time.Now().UTC(),
	}
}

// Analyze runs the full scoring pipeline over the collected evidence and
// stores the result on the investigation. Stages degrade individually: a
// stage without enough input marks itself skipped and the later stages skip
// in turn, so Analyze never returns an error for thin data.
func (inv *Investigation) Analyze(records []EvidenceRecord, reg *BrandRegistry, cfg Config) *AnalysisResult {
	agg := AggregateEvidence(records, reg, cfg)
	sov := CalculateSoV(agg, cfg.SoV, cfg.FocusBrand)
	comp := ScoreCompetitive(agg, sov, cfg)
	insights, recommendations := GenerateInsights(comp, cfg.FocusBrand)

	inv.Records = agg.Records
	inv.Result = &AnalysisResult{
		Aggregate:       agg,
		SoV:             sov,
		Competitive:     comp,
		Insights:        insights,
		Recommendations: recommendations,
	}
	inv.FinishedAt = time.Now().UTC()

	return inv.Result
}

// RecordError appends a non-fatal collection error to the investigation.
func (inv *Investigation) RecordError(err error) {
	if err != nil {
		inv.Errors = append(inv.Errors, err.Error())
	}
}
