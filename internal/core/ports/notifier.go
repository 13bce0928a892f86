package ports

// Notifier defines the interface for sending notifications to external systems
type Notifier interface {
	// NotifyInvestigationComplete sends a summary when a pipeline run finishes
	NotifyInvestigationComplete(summary InvestigationSummary) error

	// NotifyCompetitiveGap sends an alert when the focus brand trails the market
	NotifyCompetitiveGap(alert CompetitiveGapAlert) error
}

// Notification data structures

type InvestigationSummary struct {
	InvestigationID string
	Query           string
	FocusBrand      string
	Records         int
	MarketLeader    string
	FocusBrandRank  int
	FocusBrandSoV   float64
	Insights        []string
}

type CompetitiveGapAlert struct {
	InvestigationID string
	FocusBrand      string
	FocusBrandSoV   float64
	MarketLeader    string
	LeaderSoV       float64
	Gaps            []string
	Recommendations []string
}
