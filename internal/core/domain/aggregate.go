package domain

import "strings"

// Aggregate is the per-investigation roll-up of every evidence record:
// capped and raw mention tallies, distributed engagement, position samples
// and product-keyword frequency. Built once by AggregateEvidence and read-only
// afterwards.
type Aggregate struct {
	// Mentions sums the capped (presence) counts per brand.
	Mentions map[string]int `json:"brand_mentions"`
	// RawMentions sums every pattern match per brand, unbounded per record.
	RawMentions map[string]int `json:"raw_mentions"`
	// Engagement accumulates each record's engagement value split evenly
	// across the brands detected in that record.
	Engagement map[string]float64 `json:"engagement_scores"`
	// Positions holds the listing positions of every record in which the
	// brand was detected. Position 0 (not applicable) is never sampled.
	Positions map[string][]int `json:"position_analysis"`
	// Keywords counts product-keyword occurrences across all records.
	Keywords map[string]int `json:"keyword_frequency"`
	// Records is the number of evidence records processed.
	Records int `json:"records_processed"`
	// Processed keeps the per-record breakdown for downstream display.
	Processed []ProcessedRecord `json:"processed_content,omitempty"`
}

// ProcessedRecord is the per-record analysis breakdown.
type ProcessedRecord struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	URL        string         `json:"url"`
	Position   int            `json:"position"`
	Source     SourceType     `json:"source"`
	Brands     map[string]int `json:"brands_detected"`
	Engagement float64        `json:"engagement_score"`
}

// AggregateEvidence runs brand detection and engagement scoring over every
// record and sums the results per brand. A record with no detected brands
// keeps its engagement value on its ProcessedRecord but attributes it to no
// brand total.
func AggregateEvidence(records []EvidenceRecord, reg *BrandRegistry, cfg Config) *Aggregate {
	agg := &Aggregate{
		Mentions:    make(map[string]int),
		RawMentions: make(map[string]int),
		Engagement:  make(map[string]float64),
		Positions:   make(map[string][]int),
		Keywords:    make(map[string]int),
	}

	brands := reg.Brands()

	for _, rec := range records {
		content := rec.Content()
		det := reg.Detect(content)
		engagement := EngagementScore(content, rec.URL, rec.Title, brands, cfg.Engagement, cfg.AuthorityDomains)

		detected := det.Brands()
		for _, brand := range detected {
			agg.Mentions[brand] += det.Capped[brand]
			agg.RawMentions[brand] += det.Raw[brand]
			agg.Engagement[brand] += engagement / float64(len(detected))
			if rec.Position >= 1 {
				agg.Positions[brand] = append(agg.Positions[brand], rec.Position)
			}
		}

		countKeywords(content, cfg.ProductKeywords, agg.Keywords)

		agg.Processed = append(agg.Processed, ProcessedRecord{
			ID:         rec.ID,
			Title:      rec.Title,
			URL:        rec.URL,
			Position:   rec.Position,
			Source:     rec.Source,
			Brands:     det.Raw,
			Engagement: engagement,
		})
		agg.Records++
	}

	return agg
}

func countKeywords(content string, keywords []string, freq map[string]int) {
	contentLower := strings.ToLower(content)
	for _, kw := range keywords {
		if n := strings.Count(contentLower, strings.ToLower(kw)); n > 0 {
			freq[kw] += n
		}
	}
}
