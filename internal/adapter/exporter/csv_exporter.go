package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/loopline-labs/sovscope/internal/core/domain"
	"github.com/loopline-labs/sovscope/internal/core/ports"
)

// CSVExporter flattens recent investigation reports into one row per brand
// for spreadsheet and BI ingestion.
type CSVExporter struct {
	repo ports.InvestigationRepository
}

func NewCSVExporter(repo ports.InvestigationRepository) *CSVExporter {
	return &CSVExporter{repo: repo}
}

var csvHeader = []string{
	"investigation_id", "query", "focus_brand", "finished_at",
	"brand", "mentions", "engagement", "mention_share", "engagement_share",
	"overall_sov", "average_position", "total_score", "performance_tier", "position",
}

// Export generates the CSV feed for investigations started after since.
func (e *CSVExporter) Export(ctx context.Context, since time.Time) (string, error) {
	// Default to last 7 days if no time specified
	if since.IsZero() {
		since = time.Now().Add(-7 * 24 * time.Hour)
	}

	investigations, err := e.repo.FindRecent(ctx, since, 1000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch investigations: %w", err)
	}

	var output strings.Builder
	w := csv.NewWriter(&output)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, inv := range investigations {
		for _, row := range brandRows(&inv) {
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return output.String(), nil
}

// brandRows flattens one investigation into per-brand rows. Investigations
// whose pipeline skipped produce no rows.
func brandRows(inv *domain.Investigation) [][]string {
	if inv.Result == nil || inv.Result.SoV == nil || !inv.Result.SoV.Stage.OK() {
		return nil
	}

	sov := inv.Result.SoV
	var scores map[string]domain.CompetitiveScore
	var positioning map[string]domain.MarketPosition
	if comp := inv.Result.Competitive; comp != nil && comp.Stage.OK() {
		scores = comp.Scores
		positioning = comp.Positioning
	}

	var rows [][]string
	for _, rank := range sov.Landscape.BrandRankings {
		brand := rank.Brand
		m := sov.Metrics[brand]

		totalScore, tier, position := "", "", ""
		if s, ok := scores[brand]; ok {
			totalScore = formatFloat(s.TotalScore)
			tier = s.PerformanceTier
		}
		if p, ok := positioning[brand]; ok {
			position = p.Position
		}

		rows = append(rows, []string{
			inv.ID,
			inv.Query,
			inv.FocusBrand,
			inv.FinishedAt.Format(time.RFC3339),
			brand,
			strconv.Itoa(m.TotalMentions),
			formatFloat(m.TotalEngagement),
			formatFloat(m.MentionShare),
			formatFloat(m.EngagementShare),
			formatFloat(m.OverallSoV),
			formatFloat(m.AveragePosition),
			totalScore,
			tier,
			position,
		})
	}

	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
