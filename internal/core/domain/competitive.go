package domain

import (
	"fmt"
	"math"
)

// CompetitiveScore is the multi-factor score for one brand. TotalScore is a
// convex combination of the four factor scores. CAI fields are present only
// when at least two brands were scored.
type CompetitiveScore struct {
	TotalScore          float64 `json:"total_score"`
	MarketPresence      float64 `json:"market_presence"`
	EngagementQuality   float64 `json:"engagement_quality"`
	CompetitivePosition float64 `json:"competitive_position"`
	MarketDynamics      float64 `json:"market_dynamics"`
	PerformanceTier     string  `json:"performance_tier"`
	CAI                 float64 `json:"competitive_advantage_index"`
	CAIInterpretation   string  `json:"cai_interpretation,omitempty"`
}

// FactorBreakdown exposes the raw per-factor scores for every brand.
type FactorBreakdown struct {
	MarketPresence      map[string]float64 `json:"market_presence"`
	EngagementQuality   map[string]float64 `json:"engagement_quality"`
	CompetitivePosition map[string]float64 `json:"competitive_position"`
	MarketDynamics      map[string]float64 `json:"market_dynamics"`
}

// MarketPosition is one cell of the 2x2 presence/performance matrix.
type MarketPosition struct {
	Position          string `json:"position"`
	Description       string `json:"description"`
	StrategicPriority string `json:"strategic_priority"`
}

// ScoringMethodology records how a report was produced.
type ScoringMethodology struct {
	Weights             ScoringWeights `json:"weights"`
	TotalBrandsAnalyzed int            `json:"total_brands_analyzed"`
}

// CompetitiveReport is the Competitive Scorer stage output.
type CompetitiveReport struct {
	Stage           StageInfo                   `json:"stage"`
	Scores          map[string]CompetitiveScore `json:"competitive_scores,omitempty"`
	Factors         FactorBreakdown             `json:"factor_breakdown"`
	Positioning     map[string]MarketPosition   `json:"market_positioning,omitempty"`
	HHI             float64                     `json:"hhi"`
	MarketStructure string                      `json:"market_structure,omitempty"`
	Methodology     ScoringMethodology          `json:"scoring_methodology"`
}

// Matrix threshold for both axes of the positioning quadrants.
const positioningThreshold = 60

// ScoreCompetitive computes the four weighted factor scores, the total
// competitive score, the competitive advantage index and the market-position
// matrix for every brand. Empty mentions or a non-OK SoV stage yield a
// skipped report; a panic inside the computation is recovered into a failed
// report rather than propagating.
func ScoreCompetitive(agg *Aggregate, sov *SoVReport, cfg Config) (report *CompetitiveReport) {
	if agg == nil || len(agg.Mentions) == 0 {
		return &CompetitiveReport{Stage: skippedStage("insufficient brand data for competitive scoring")}
	}
	if sov == nil || !sov.Stage.OK() {
		return &CompetitiveReport{Stage: skippedStage("SoV metrics unavailable")}
	}

	defer func() {
		if r := recover(); r != nil {
			report = &CompetitiveReport{Stage: failedStage(fmt.Sprintf("competitive scoring failed: %v", r))}
		}
	}()

	presence := marketPresenceScores(agg, sov.Metrics)
	quality := engagementQualityScores(agg)
	position := competitivePositionScores(sov.Metrics)
	dynamics, hhi, structure := marketDynamicsScores(agg.Mentions)

	weights := cfg.Scoring
	scores := make(map[string]CompetitiveScore, len(agg.Mentions))
	totals := make([]float64, 0, len(agg.Mentions))
	brands := sortedBrands(agg.Mentions)

	for _, brand := range brands {
		total := presence[brand]*weights.MarketPresence +
			quality[brand]*weights.EngagementQuality +
			position[brand]*weights.CompetitivePosition +
			dynamics[brand]*weights.MarketDynamics

		totals = append(totals, total)
		scores[brand] = CompetitiveScore{
			TotalScore:          round2(total),
			MarketPresence:      presence[brand],
			EngagementQuality:   quality[brand],
			CompetitivePosition: position[brand],
			MarketDynamics:      dynamics[brand],
			PerformanceTier:     performanceTier(total),
		}
	}

	if len(brands) > 1 {
		mean, stdev := meanStdev(totals)
		if stdev == 0 {
			stdev = 1 // degenerate spread: report distances as raw point differences
		}
		for _, brand := range brands {
			s := scores[brand]
			cai := (s.TotalScore - mean) / stdev
			s.CAI = round3(cai)
			s.CAIInterpretation = interpretCAI(cai)
			scores[brand] = s
		}
	}

	return &CompetitiveReport{
		Stage:  okStage(),
		Scores: scores,
		Factors: FactorBreakdown{
			MarketPresence:      presence,
			EngagementQuality:   quality,
			CompetitivePosition: position,
			MarketDynamics:      dynamics,
		},
		Positioning:     marketPositioning(scores, cfg.FocusBrand),
		HHI:             round2(hhi),
		MarketStructure: structure,
		Methodology: ScoringMethodology{
			Weights:             weights,
			TotalBrandsAnalyzed: len(brands),
		},
	}
}

// marketPresenceScores: 60% relative SoV, 25% mention volume, 15% search
// position quality.
func marketPresenceScores(agg *Aggregate, metrics map[string]SoVMetrics) map[string]float64 {
	totalMentions := 0
	for _, m := range agg.Mentions {
		totalMentions += m
	}

	maxSoV := 0.0
	for brand := range agg.Mentions {
		if sov := metrics[brand].OverallSoV; sov > maxSoV {
			maxSoV = sov
		}
	}

	scores := make(map[string]float64, len(agg.Mentions))
	for brand, mentions := range agg.Mentions {
		sovScore := 0.0
		if maxSoV > 0 {
			sovScore = metrics[brand].OverallSoV / maxSoV * 100
		}

		mentionShare := 0.0
		if totalMentions > 0 {
			mentionShare = float64(mentions) / float64(totalMentions) * 100
		}
		volumeScore := math.Min(100, mentionShare*3)

		positionScore := 0.0
		if positions := agg.Positions[brand]; len(positions) > 0 {
			sum := 0
			for _, p := range positions {
				sum += p
			}
			avg := float64(sum) / float64(len(positions))
			positionScore = math.Max(0, (11-avg)*10)
		}

		scores[brand] = round2(sovScore*0.60 + volumeScore*0.25 + positionScore*0.15)
	}

	return scores
}

// engagementQualityScores: engagement per mention normalized against the best
// brand, scaled to 0-100. Zero mentions means zero engagement per mention.
func engagementQualityScores(agg *Aggregate) map[string]float64 {
	perMention := make(map[string]float64, len(agg.Mentions))
	maxPerMention := 0.0
	for brand, mentions := range agg.Mentions {
		epm := 0.0
		if mentions > 0 {
			epm = agg.Engagement[brand] / float64(mentions)
		}
		perMention[brand] = epm
		if epm > maxPerMention {
			maxPerMention = epm
		}
	}

	scores := make(map[string]float64, len(agg.Mentions))
	for brand, epm := range perMention {
		score := 0.0
		if maxPerMention > 0 {
			score = epm / maxPerMention * 100
		}
		scores[brand] = round2(score)
	}

	return scores
}

// competitivePositionScores: 70% market rank, 30% gap to the SoV leader.
func competitivePositionScores(metrics map[string]SoVMetrics) map[string]float64 {
	rankings := rankBySoV(metrics)
	total := len(rankings)

	scores := make(map[string]float64, total)
	for i, r := range rankings {
		rank := i + 1
		rankScore := math.Max(0, 100-float64(rank-1)*(100/float64(total)))

		gapScore := 100.0
		if rank > 1 {
			gap := rankings[0].OverallSoV - r.OverallSoV
			gapScore = math.Max(0, 100-gap*2)
		}

		scores[r.Brand] = round2(rankScore*0.70 + gapScore*0.30)
	}

	return scores
}

// marketDynamicsScores: growth potential and market-structure advantage from
// a Herfindahl-Hirschman index over mention shares. This is the only factor
// clamped to [0,100].
func marketDynamicsScores(mentions map[string]int) (map[string]float64, float64, string) {
	totalMentions := 0
	for _, m := range mentions {
		totalMentions += m
	}

	shares := make(map[string]float64, len(mentions))
	hhi := 0.0
	for brand, m := range mentions {
		share := 0.0
		if totalMentions > 0 {
			share = float64(m) / float64(totalMentions) * 100
		}
		shares[brand] = share
		hhi += share * share
	}

	var structure string
	var structureBonus float64
	switch {
	case hhi < 1500:
		structure = "competitive"
		structureBonus = 20
	case hhi < 2500:
		structure = "moderately_concentrated"
		structureBonus = 10
	default:
		structure = "highly_concentrated"
		structureBonus = 5
	}

	scores := make(map[string]float64, len(mentions))
	for brand, share := range shares {
		growthPotential := math.Max(0, 100-share)
		structureScore := structureBonus + share*0.5
		scores[brand] = round2(clamp(growthPotential*0.60+structureScore*0.40, 0, 100))
	}

	return scores, hhi, structure
}

func performanceTier(score float64) string {
	switch {
	case score >= 80:
		return "Market Leader"
	case score >= 60:
		return "Strong Performer"
	case score >= 40:
		return "Average Competitor"
	case score >= 20:
		return "Emerging Player"
	default:
		return "Follower"
	}
}

func interpretCAI(cai float64) string {
	switch {
	case cai > 1.0:
		return "Strong Competitive Advantage"
	case cai > 0.5:
		return "Moderate Competitive Advantage"
	case cai > -0.5:
		return "Average Market Performance"
	case cai > -1.0:
		return "Below Average Performance"
	default:
		return "Significant Competitive Disadvantage"
	}
}

// marketPositioning places every brand in the presence/performance matrix.
func marketPositioning(scores map[string]CompetitiveScore, focusBrand string) map[string]MarketPosition {
	positioning := make(map[string]MarketPosition, len(scores))

	for brand, s := range scores {
		var position, description string
		switch {
		case s.MarketPresence >= positioningThreshold && s.TotalScore >= positioningThreshold:
			position = "STAR"
			description = "High presence + High performance - Market leader"
		case s.MarketPresence >= positioningThreshold:
			position = "CASH_COW"
			description = "High presence + Moderate performance - Established player"
		case s.TotalScore >= positioningThreshold:
			position = "QUESTION_MARK"
			description = "Low presence + High performance - High potential challenger"
		default:
			position = "DOG"
			description = "Low presence + Low performance - Needs strategic review"
		}

		positioning[brand] = MarketPosition{
			Position:          position,
			Description:       description,
			StrategicPriority: strategicPriority(position, brand, focusBrand),
		}
	}

	return positioning
}

func strategicPriority(position, brand, focusBrand string) string {
	if brand != focusBrand {
		return fmt.Sprintf("Monitor %s competitor positioning", position)
	}

	switch position {
	case "STAR":
		return "Maintain leadership and expand market share"
	case "CASH_COW":
		return "Optimize performance to regain STAR status"
	case "QUESTION_MARK":
		return "Increase market presence to match high performance"
	default:
		return "Comprehensive competitive strategy needed"
	}
}

// meanStdev returns the mean and population standard deviation.
func meanStdev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
