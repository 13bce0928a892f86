package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/loopline-labs/sovscope/internal/core/domain"
	"github.com/loopline-labs/sovscope/internal/core/ports"
)

// JSONExporter produces the structured report feed consumed by dashboards.
type JSONExporter struct {
	repo ports.InvestigationRepository
}

func NewJSONExporter(repo ports.InvestigationRepository) *JSONExporter {
	return &JSONExporter{repo: repo}
}

// ReportFeed is the feed envelope.
type ReportFeed struct {
	GeneratedAt    time.Time    `json:"generated_at"`
	Since          time.Time    `json:"since"`
	Count          int          `json:"count"`
	Investigations []FeedReport `json:"investigations"`
}

// FeedReport is one investigation's summary entry in the feed.
type FeedReport struct {
	ID              string                           `json:"id"`
	Query           string                           `json:"query"`
	FocusBrand      string                           `json:"focus_brand"`
	FinishedAt      time.Time                        `json:"finished_at"`
	Records         int                              `json:"records_analyzed"`
	MarketLeader    string                           `json:"market_leader,omitempty"`
	FocusBrandRank  int                              `json:"focus_brand_rank,omitempty"`
	Metrics         map[string]domain.SoVMetrics     `json:"sov_metrics,omitempty"`
	Scores          map[string]domain.CompetitiveScore `json:"competitive_scores,omitempty"`
	Insights        []string                         `json:"insights,omitempty"`
	Recommendations []string                         `json:"recommendations,omitempty"`
}

// Export generates the JSON feed for investigations started after since.
func (e *JSONExporter) Export(ctx context.Context, since time.Time) (string, error) {
	if since.IsZero() {
		since = time.Now().Add(-7 * 24 * time.Hour)
	}

	investigations, err := e.repo.FindRecent(ctx, since, 1000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch investigations: %w", err)
	}

	feed := ReportFeed{
		GeneratedAt:    time.Now().UTC(),
		Since:          since,
		Investigations: []FeedReport{},
	}

	for _, inv := range investigations {
		entry := FeedReport{
			ID:         inv.ID,
			Query:      inv.Query,
			FocusBrand: inv.FocusBrand,
			FinishedAt: inv.FinishedAt,
			Records:    inv.Records,
		}

		if res := inv.Result; res != nil {
			if res.SoV != nil && res.SoV.Stage.OK() {
				entry.Metrics = res.SoV.Metrics
				entry.MarketLeader = res.SoV.Landscape.MarketLeader
				entry.FocusBrandRank = res.SoV.Landscape.FocusBrandRank
			}
			if res.Competitive != nil && res.Competitive.Stage.OK() {
				entry.Scores = res.Competitive.Scores
			}
			entry.Insights = res.Insights
			entry.Recommendations = res.Recommendations
		}

		feed.Investigations = append(feed.Investigations, entry)
	}
	feed.Count = len(feed.Investigations)

	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal feed: %w", err)
	}

	return string(data), nil
}
