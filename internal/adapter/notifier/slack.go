package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/loopline-labs/sovscope/internal/core/ports"
)

type SlackNotifier struct {
	botToken    string
	channel     string
	mentionTeam string
	httpClient  *http.Client
}

func NewSlackNotifier(botToken, channel, mentionTeam string) *SlackNotifier {
	return &SlackNotifier{
		botToken:    botToken,
		channel:     channel,
		mentionTeam: mentionTeam,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyInvestigationComplete sends the summary of a finished pipeline run
func (s *SlackNotifier) NotifyInvestigationComplete(summary ports.InvestigationSummary) error {
	blocks := s.buildSummaryBlocks(summary)

	payload := SlackMessage{
		Channel: s.channel,
		Blocks:  blocks,
		Text:    fmt.Sprintf("📊 Investigation complete for '%s'", summary.Query),
	}

	return s.sendMessage(payload)
}

// NotifyCompetitiveGap sends an alert when the focus brand trails the market
func (s *SlackNotifier) NotifyCompetitiveGap(alert ports.CompetitiveGapAlert) error {
	blocks := s.buildGapBlocks(alert)

	payload := SlackMessage{
		Channel: s.channel,
		Blocks:  blocks,
		Text:    fmt.Sprintf("⚠️ Competitive gap detected for %s", alert.FocusBrand),
	}

	return s.sendMessage(payload)
}

// Build Slack message blocks for a completed investigation
func (s *SlackNotifier) buildSummaryBlocks(summary ports.InvestigationSummary) []SlackBlock {
	rankText := "n/a"
	if summary.FocusBrandRank > 0 {
		rankText = fmt.Sprintf("#%d", summary.FocusBrandRank)
	}

	blocks := []SlackBlock{
		// Header
		{
			Type: "header",
			Text: &SlackText{
				Type: "plain_text",
				Text: "📊 Share of Voice Investigation Complete",
			},
		},
		// Run details
		{
			Type: "section",
			Fields: []SlackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Query*\n%s", summary.Query)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Records Analyzed*\n%d", summary.Records)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Market Leader*\n%s", summary.MarketLeader)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\nSoV %.1f%% · Rank %s", summary.FocusBrand, summary.FocusBrandSoV, rankText)},
			},
		},
		{
			Type: "divider",
		},
	}

	// Insight lines, capped so the message stays readable
	for i, insight := range summary.Insights {
		if i >= 5 {
			blocks = append(blocks, SlackBlock{
				Type: "section",
				Text: &SlackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("_...and %d more insights_", len(summary.Insights)-5),
				},
			})
			break
		}
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("• %s", insight),
			},
		})
	}

	blocks = append(blocks, SlackBlock{
		Type: "context",
		Elements: []SlackText{
			{
				Type: "mrkdwn",
				Text: fmt.Sprintf("Investigation `%s`", summary.InvestigationID),
			},
		},
	})

	return blocks
}

// Build Slack blocks for a competitive-gap alert
func (s *SlackNotifier) buildGapBlocks(alert ports.CompetitiveGapAlert) []SlackBlock {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{
				Type: "plain_text",
				Text: "⚠️ Competitive Gap Alert",
			},
		},
		{
			Type: "section",
			Fields: []SlackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Brand*\n%s", alert.FocusBrand)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Overall SoV*\n%.1f%%", alert.FocusBrandSoV)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Market Leader*\n%s", alert.MarketLeader)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Leader SoV*\n%.1f%%", alert.LeaderSoV)},
			},
		},
		{Type: "divider"},
	}

	if len(alert.Gaps) > 0 {
		gapText := "*Identified Gaps*\n"
		for _, gap := range alert.Gaps {
			gapText += fmt.Sprintf("• %s\n", gap)
		}
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: gapText},
		})
	}

	if len(alert.Recommendations) > 0 {
		recText := "*Recommended Actions*\n"
		for _, rec := range alert.Recommendations {
			recText += fmt.Sprintf("✓ %s\n", rec)
		}
		if s.mentionTeam != "" {
			recText += fmt.Sprintf("\ncc: %s", s.mentionTeam)
		}
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: recText},
		})
	}

	blocks = append(blocks, SlackBlock{
		Type: "context",
		Elements: []SlackText{
			{
				Type: "mrkdwn",
				Text: fmt.Sprintf("Investigation `%s`", alert.InvestigationID),
			},
		},
	})

	return blocks
}

// Send message to Slack
func (s *SlackNotifier) sendMessage(msg SlackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequest("POST", "https://slack.com/api/chat.postMessage", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.botToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	return nil
}

// Slack API structures

type SlackMessage struct {
	Channel string       `json:"channel"`
	Blocks  []SlackBlock `json:"blocks"`
	Text    string       `json:"text"` // Fallback text
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
