package domain

import "strings"

var (
	reviewKeywords     = []string{"review", "rating", "star"}
	comparisonKeywords = []string{"vs", "versus", "comparison", "compare"}
)

// EngagementScore computes the deterministic engagement value for one
// evidence record from content length, title placement, domain authority and
// keyword signals. Every bonus is independently additive; the result is
// never negative and has no upper bound.
func EngagementScore(content, url, title string, brands []string, f EngagementFactors, authorityDomains []string) float64 {
	score := float64(len(content)) * f.ContentLengthMultiplier

	titleLower := strings.ToLower(title)
	for _, brand := range brands {
		if strings.Contains(titleLower, brand) {
			score += f.TitleMentionBonus
			break
		}
	}

	for _, domain := range authorityDomains {
		if strings.Contains(url, domain) {
			score += f.AuthorityDomainBonus
			break
		}
	}

	contentLower := strings.ToLower(content)
	if containsAny(contentLower, reviewKeywords) {
		score += f.ReviewKeywordBonus
	}
	if containsAny(contentLower, comparisonKeywords) {
		score += f.ComparisonKeywordBonus
	}

	return score
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
