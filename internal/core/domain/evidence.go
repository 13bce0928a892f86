package domain

import (
	"strings"
	"time"
)

type SourceType string

const (
	SearchResult SourceType = "search_result"
	Video        SourceType = "video"
	Comment      SourceType = "comment"
)

// EvidenceRecord is one unit of scraped content in the uniform shape the
// pipeline consumes. Records are created once by normalization and never
// mutated afterwards; derived data lives in the Aggregate.
type EvidenceRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	URL         string     `json:"url"`
	Position    int        `json:"position"` // 1-based rank in its listing, 0 if not applicable
	Source      SourceType `json:"source"`
	Query       string     `json:"query"`
	CollectedAt time.Time  `json:"collected_at"`
}

// Content is the text the detector and the engagement scorer operate on.
func (r EvidenceRecord) Content() string {
	return strings.TrimSpace(r.Title + " " + r.Snippet)
}

// NormalizeSearchResult converts a scraped search result into an evidence record.
func NormalizeSearchResult(id, title, snippet, url string, position int, query string) EvidenceRecord {
	return EvidenceRecord{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Snippet:     strings.TrimSpace(snippet),
		URL:         url,
		Position:    position,
		Source:      SearchResult,
		Query:       query,
		CollectedAt: time.Now(),
	}
}

// NormalizeVideo converts video metadata into an evidence record. The video's
// rank in its search listing becomes the position.
func NormalizeVideo(id, title, description, url string, position int, query string) EvidenceRecord {
	return EvidenceRecord{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Snippet:     strings.TrimSpace(description),
		URL:         url,
		Position:    position,
		Source:      Video,
		Query:       query,
		CollectedAt: time.Now(),
	}
}

// NormalizeComment converts a video comment into an evidence record. Comments
// have no listing rank, so position is 0 and they contribute no position samples.
func NormalizeComment(id, videoTitle, text, videoURL, query string) EvidenceRecord {
	return EvidenceRecord{
		ID:          id,
		Title:       strings.TrimSpace(videoTitle),
		Snippet:     strings.TrimSpace(text),
		URL:         videoURL,
		Position:    0,
		Source:      Comment,
		Query:       query,
		CollectedAt: time.Now(),
	}
}
