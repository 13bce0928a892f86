package notifier

import (
	"fmt"
	"strings"
	"testing"

	"github.com/loopline-labs/sovscope/internal/core/ports"
)

func blockText(b SlackBlock) string {
	var parts []string
	if b.Text != nil {
		parts = append(parts, b.Text.Text)
	}
	for _, f := range b.Fields {
		parts = append(parts, f.Text)
	}
	for _, e := range b.Elements {
		parts = append(parts, e.Text)
	}
	return strings.Join(parts, "\n")
}

func allText(blocks []SlackBlock) string {
	var parts []string
	for _, b := range blocks {
		parts = append(parts, blockText(b))
	}
	return strings.Join(parts, "\n")
}

func TestBuildSummaryBlocks(t *testing.T) {
	s := NewSlackNotifier("token", "#brand-intel", "@marketing-team")

	summary := ports.InvestigationSummary{
		InvestigationID: "inv-1",
		Query:           "smart fan",
		FocusBrand:      "atomberg",
		Records:         42,
		MarketLeader:    "atomberg",
		FocusBrandRank:  1,
		FocusBrandSoV:   64.2,
		Insights:        []string{"Market leader: atomberg with 72.5/100 competitive score"},
	}

	blocks := s.buildSummaryBlocks(summary)
	text := allText(blocks)

	if blocks[0].Type != "header" {
		t.Errorf("first block type = %s, want header", blocks[0].Type)
	}
	for _, want := range []string{"smart fan", "42", "atomberg", "SoV 64.2%", "Rank #1", "Market leader", "inv-1"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary blocks missing %q:\n%s", want, text)
		}
	}
}

func TestBuildSummaryBlocks_InsightCap(t *testing.T) {
	s := NewSlackNotifier("token", "#brand-intel", "")

	summary := ports.InvestigationSummary{InvestigationID: "inv-1", Query: "q"}
	for i := 0; i < 8; i++ {
		summary.Insights = append(summary.Insights, fmt.Sprintf("insight %d", i))
	}

	text := allText(s.buildSummaryBlocks(summary))

	if !strings.Contains(text, "insight 4") {
		t.Error("fifth insight should be included")
	}
	if strings.Contains(text, "insight 5") {
		t.Error("sixth insight should be truncated")
	}
	if !strings.Contains(text, "...and 3 more insights") {
		t.Errorf("missing truncation marker:\n%s", text)
	}
}

func TestBuildSummaryBlocks_UnrankedFocusBrand(t *testing.T) {
	s := NewSlackNotifier("token", "#brand-intel", "")

	text := allText(s.buildSummaryBlocks(ports.InvestigationSummary{
		FocusBrand:     "atomberg",
		FocusBrandRank: 0,
	}))

	if !strings.Contains(text, "Rank n/a") {
		t.Errorf("rank should read n/a when the brand has no data:\n%s", text)
	}
}

func TestBuildGapBlocks(t *testing.T) {
	s := NewSlackNotifier("token", "#brand-intel", "@marketing-team")

	alert := ports.CompetitiveGapAlert{
		InvestigationID: "inv-1",
		FocusBrand:      "atomberg",
		FocusBrandSoV:   18.5,
		MarketLeader:    "havells",
		LeaderSoV:       55.0,
		Gaps:            []string{"Below 20% SoV threshold - needs increased market presence"},
		Recommendations: []string{"Increase market presence through content marketing"},
	}

	text := allText(s.buildGapBlocks(alert))

	for _, want := range []string{
		"Competitive Gap Alert",
		"atomberg",
		"18.5%",
		"havells",
		"55.0%",
		"Below 20% SoV threshold",
		"✓ Increase market presence through content marketing",
		"cc: @marketing-team",
		"inv-1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("gap blocks missing %q:\n%s", want, text)
		}
	}
}

func TestBuildGapBlocks_NoMention(t *testing.T) {
	s := NewSlackNotifier("token", "#brand-intel", "")

	text := allText(s.buildGapBlocks(ports.CompetitiveGapAlert{
		Recommendations: []string{"Improve content quality to enhance engagement"},
	}))

	if strings.Contains(text, "cc:") {
		t.Errorf("no team configured, should not mention anyone:\n%s", text)
	}
}
