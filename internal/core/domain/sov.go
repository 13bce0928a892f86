package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SoVMetrics are the normalized per-brand Share of Voice numbers. Shares and
// the overall SoV are always within [0,100].
type SoVMetrics struct {
	MentionShare    float64 `json:"mention_share"`
	EngagementShare float64 `json:"engagement_share"`
	OverallSoV      float64 `json:"overall_sov"`
	AveragePosition float64 `json:"average_position"`
	Top3Appearances int     `json:"top_3_appearances"`
	TotalMentions   int     `json:"total_mentions"`
	TotalEngagement float64 `json:"total_engagement"`
}

// BrandRank pairs a brand with its overall SoV for ordered rankings.
type BrandRank struct {
	Brand      string  `json:"brand"`
	OverallSoV float64 `json:"overall_sov"`
}

// Landscape summarizes the market-level view derived from per-brand SoV.
type Landscape struct {
	MarketLeader        string      `json:"market_leader,omitempty"`
	FocusBrandRank      int         `json:"focus_brand_rank,omitempty"` // 1-based, 0 when the focus brand has no data
	BrandRankings       []BrandRank `json:"brand_rankings"`
	MarketConcentration string      `json:"market_concentration"`
	CompetitiveGaps     []string    `json:"competitive_gaps"`
}

// SoVReport is the SoV Calculator stage output.
type SoVReport struct {
	Stage     StageInfo             `json:"stage"`
	Metrics   map[string]SoVMetrics `json:"sov_metrics,omitempty"`
	Landscape Landscape             `json:"competitive_landscape"`
}

// CalculateSoV converts aggregated tallies into normalized shares and the
// weighted overall Share of Voice per brand. The brand set is strictly the
// key set of the aggregated mentions; an empty mention map yields a skipped
// report, never an error.
func CalculateSoV(agg *Aggregate, weights SoVWeights, focusBrand string) *SoVReport {
	if agg == nil || len(agg.Mentions) == 0 {
		return &SoVReport{Stage: skippedStage("no brand data available for SoV calculation")}
	}

	totalMentions := 0
	for _, m := range agg.Mentions {
		totalMentions += m
	}
	totalEngagement := 0.0
	for _, e := range agg.Engagement {
		totalEngagement += e
	}

	metrics := make(map[string]SoVMetrics, len(agg.Mentions))
	for _, brand := range sortedBrands(agg.Mentions) {
		mentions := agg.Mentions[brand]
		engagement := agg.Engagement[brand]
		positions := agg.Positions[brand]

		mentionShare := 0.0
		if totalMentions > 0 {
			mentionShare = clamp(float64(mentions)/float64(totalMentions)*100, 0, 100)
		}
		engagementShare := 0.0
		if totalEngagement > 0 {
			engagementShare = clamp(engagement/totalEngagement*100, 0, 100)
		}

		avgPosition := 0.0
		top3 := 0
		if len(positions) > 0 {
			sum := 0
			for _, p := range positions {
				sum += p
				if p <= 3 {
					top3++
				}
			}
			avgPosition = float64(sum) / float64(len(positions))
		}

		overall := mentionShare*weights.MentionWeight + engagementShare*weights.EngagementWeight
		if avgPosition > 0 {
			bonus := (10 - avgPosition) * weights.PositionBonus
			if bonus > 0 {
				overall += bonus
			}
		}
		overall = clamp(overall, 0, 100)

		metrics[brand] = SoVMetrics{
			MentionShare:    round2(mentionShare),
			EngagementShare: round2(engagementShare),
			OverallSoV:      round2(overall),
			AveragePosition: round1(avgPosition),
			Top3Appearances: top3,
			TotalMentions:   mentions,
			TotalEngagement: round1(engagement),
		}
	}

	return &SoVReport{
		Stage:     okStage(),
		Metrics:   metrics,
		Landscape: buildLandscape(metrics, focusBrand),
	}
}

func buildLandscape(metrics map[string]SoVMetrics, focusBrand string) Landscape {
	rankings := rankBySoV(metrics)

	land := Landscape{
		BrandRankings:       rankings,
		MarketConcentration: marketConcentration(metrics),
		CompetitiveGaps:     competitiveGaps(metrics, focusBrand),
	}

	if len(rankings) > 0 {
		land.MarketLeader = rankings[0].Brand
	}
	for i, r := range rankings {
		if r.Brand == focusBrand {
			land.FocusBrandRank = i + 1
			break
		}
	}

	return land
}

// rankBySoV orders brands by overall SoV descending. Equal scores are broken
// alphabetically so rankings are deterministic.
func rankBySoV(metrics map[string]SoVMetrics) []BrandRank {
	rankings := make([]BrandRank, 0, len(metrics))
	for brand, m := range metrics {
		rankings = append(rankings, BrandRank{Brand: brand, OverallSoV: m.OverallSoV})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].OverallSoV != rankings[j].OverallSoV {
			return rankings[i].OverallSoV > rankings[j].OverallSoV
		}
		return rankings[i].Brand < rankings[j].Brand
	})
	return rankings
}

func marketConcentration(metrics map[string]SoVMetrics) string {
	if len(metrics) == 0 {
		return "unknown"
	}

	top := 0.0
	for _, m := range metrics {
		if m.OverallSoV > top {
			top = m.OverallSoV
		}
	}

	switch {
	case top > 50:
		return "highly_concentrated"
	case top > 30:
		return "moderately_concentrated"
	default:
		return "fragmented"
	}
}

// competitiveGaps lists the opportunity signals for the focus brand. Each
// condition appends at most one message; a missing focus brand yields an
// empty list.
func competitiveGaps(metrics map[string]SoVMetrics, focusBrand string) []string {
	gaps := []string{}

	focus, ok := metrics[focusBrand]
	if !ok {
		return gaps
	}

	var stronger []string
	for _, brand := range sortedBrands(metrics) {
		if brand == focusBrand {
			continue
		}
		if metrics[brand].OverallSoV > focus.OverallSoV+10 {
			stronger = append(stronger, brand)
		}
	}
	if len(stronger) > 0 {
		gaps = append(gaps, fmt.Sprintf("Significant SoV gap vs %s", strings.Join(stronger, ", ")))
	}

	if focus.OverallSoV < 20 {
		gaps = append(gaps, "Below 20% SoV threshold - needs increased market presence")
	}

	if focus.AveragePosition > 5 {
		gaps = append(gaps, "Average search position beyond top 5 - SEO opportunity")
	}

	return gaps
}

func sortedBrands[V any](m map[string]V) []string {
	brands := make([]string, 0, len(m))
	for b := range m {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands
}
