package domain

import (
	"fmt"
	"sort"
)

// GenerateInsights turns a finished competitive report into the human-readable
// insight and recommendation lines of an investigation. A skipped or failed
// report yields empty slices.
func GenerateInsights(comp *CompetitiveReport, focusBrand string) (insights, recommendations []string) {
	if comp == nil || !comp.Stage.OK() || len(comp.Scores) == 0 {
		return nil, nil
	}

	ranked := rankByTotalScore(comp.Scores)
	leader := ranked[0]
	insights = append(insights, fmt.Sprintf("Market leader: %s with %.1f/100 competitive score",
		leader.Brand, leader.Score))

	if focus, ok := comp.Scores[focusBrand]; ok {
		rank := 0
		for i, r := range ranked {
			if r.Brand == focusBrand {
				rank = i + 1
				break
			}
		}

		insights = append(insights, fmt.Sprintf("%s: %.1f/100 score, Rank #%d, CAI: %+.2f",
			focusBrand, focus.TotalScore, rank, focus.CAI))

		strongest, weakest := extremeFactors(focus)
		insights = append(insights, fmt.Sprintf("%s strength: %s (%.1f/100)",
			focusBrand, strongest.name, strongest.score))
		insights = append(insights, fmt.Sprintf("%s opportunity: %s (%.1f/100)",
			focusBrand, weakest.name, weakest.score))

		if pos, ok := comp.Positioning[focusBrand]; ok {
			insights = append(insights, fmt.Sprintf("Strategic position: %s - %s",
				pos.Position, pos.StrategicPriority))
		}

		if focus.MarketPresence < 70 {
			recommendations = append(recommendations, "Increase market presence through content marketing")
		}
		if focus.EngagementQuality < 70 {
			recommendations = append(recommendations, "Improve content quality to enhance engagement")
		}
	}

	avg := 0.0
	for _, s := range comp.Scores {
		avg += s.TotalScore
	}
	avg /= float64(len(comp.Scores))
	insights = append(insights, fmt.Sprintf("Market analysis: %d competitors, avg score %.1f/100",
		len(comp.Scores), avg))

	return insights, recommendations
}

type scoredBrand struct {
	Brand string
	Score float64
}

// rankByTotalScore orders brands by total competitive score descending with
// alphabetical tie-break.
func rankByTotalScore(scores map[string]CompetitiveScore) []scoredBrand {
	ranked := make([]scoredBrand, 0, len(scores))
	for brand, s := range scores {
		ranked = append(ranked, scoredBrand{Brand: brand, Score: s.TotalScore})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Brand < ranked[j].Brand
	})
	return ranked
}

type namedFactor struct {
	name  string
	score float64
}

func extremeFactors(s CompetitiveScore) (strongest, weakest namedFactor) {
	factors := []namedFactor{
		{"Market Presence", s.MarketPresence},
		{"Engagement Quality", s.EngagementQuality},
		{"Competitive Position", s.CompetitivePosition},
		{"Market Dynamics", s.MarketDynamics},
	}

	strongest, weakest = factors[0], factors[0]
	for _, f := range factors[1:] {
		if f.score > strongest.score {
			strongest = f
		}
		if f.score < weakest.score {
			weakest = f
		}
	}
	return strongest, weakest
}
