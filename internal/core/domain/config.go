package domain

// Config carries every knob the scoring pipeline needs. A Config is built
// once per investigation and passed into the pure stage functions; nothing
// in the pipeline reads process-wide state.
type Config struct {
	FocusBrand       string
	BrandPatterns    map[string][]string
	AuthorityDomains []string
	ProductKeywords  []string
	Engagement       EngagementFactors
	SoV              SoVWeights
	Scoring          ScoringWeights
}

// EngagementFactors are the flat constants of the engagement formula.
// All bonuses are independently additive.
type EngagementFactors struct {
	ContentLengthMultiplier float64
	TitleMentionBonus       float64
	AuthorityDomainBonus    float64
	ReviewKeywordBonus      float64
	ComparisonKeywordBonus  float64
}

// SoVWeights weight the overall Share of Voice. MentionWeight and
// EngagementWeight are expected to sum to 1.0; this is not enforced.
type SoVWeights struct {
	MentionWeight    float64
	EngagementWeight float64
	PositionBonus    float64
}

// ScoringWeights weight the four competitive factor scores. They must sum
// to 1.0 so the total stays a convex combination of the factors.
type ScoringWeights struct {
	MarketPresence      float64
	EngagementQuality   float64
	CompetitivePosition float64
	MarketDynamics      float64
}

// DefaultConfig returns the production configuration for the smart-fan
// category investigation.
func DefaultConfig() Config {
	return Config{
		FocusBrand: "atomberg",
		BrandPatterns: map[string][]string{
			"atomberg": {`\batomberg\b`, `\batom\s*berg\b`, `@atomberg`},
			"havells":  {`\bhavells\b`, `@havells`},
			"bajaj":    {`\bbajaj\b`, `@bajajelectricals`, `bajaj\s+electrical`},
			"crompton": {`\bcrompton\b`, `@cromptongreaves`},
			"orient":   {`\borient\b`, `orient\s+electric`, `@orientelectric`},
			"usha":     {`\busha\b`, `@ushainternational`},
		},
		AuthorityDomains: []string{
			"amazon.com", "flipkart.com", "croma.com",
			"indiamart.com", "justdial.com",
			"consumerreports.org", "which.co.uk",
			"gadgets360.com", "digit.in",
			".edu", ".gov",
		},
		ProductKeywords: []string{
			"smart fan", "ceiling fan", "bldc fan", "energy efficient fan",
			"remote control", "app control", "wifi enabled", "iot fan",
			"bldc motor", "energy saving", "power consumption",
			"vs", "versus", "comparison", "best", "review",
		},
		Engagement: EngagementFactors{
			ContentLengthMultiplier: 0.1,
			TitleMentionBonus:       50,
			AuthorityDomainBonus:    100,
			ReviewKeywordBonus:      25,
			ComparisonKeywordBonus:  75,
		},
		SoV: SoVWeights{
			MentionWeight:    0.6,
			EngagementWeight: 0.4,
			PositionBonus:    0.1,
		},
		Scoring: ScoringWeights{
			MarketPresence:      0.40,
			EngagementQuality:   0.30,
			CompetitivePosition: 0.20,
			MarketDynamics:      0.10,
		},
	}
}
