package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// BrandRegistry holds the compiled detection patterns for every tracked
// brand. Patterns are case-insensitive and word-boundary aware. The registry
// is immutable after construction so it can be shared across records.
type BrandRegistry struct {
	brands   []string
	patterns map[string][]*regexp.Regexp
}

// NewBrandRegistry compiles a brand -> pattern list mapping. Pattern strings
// use Go regexp syntax; matching is forced case-insensitive.
func NewBrandRegistry(brandPatterns map[string][]string) (*BrandRegistry, error) {
	reg := &BrandRegistry{
		patterns: make(map[string][]*regexp.Regexp, len(brandPatterns)),
	}

	for brand, raw := range brandPatterns {
		compiled := make([]*regexp.Regexp, 0, len(raw))
		for _, p := range raw {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q for brand %q: %w", p, brand, err)
			}
			compiled = append(compiled, re)
		}
		reg.patterns[brand] = compiled
		reg.brands = append(reg.brands, brand)
	}

	sort.Strings(reg.brands)
	return reg, nil
}

// Brands returns the tracked brand identifiers in sorted order.
func (r *BrandRegistry) Brands() []string {
	out := make([]string, len(r.brands))
	copy(out, r.brands)
	return out
}

// Detection is the per-record outcome of brand pattern matching. Raw counts
// every non-overlapping match summed across a brand's patterns; Capped holds
// at most 1 per brand (presence indicator). Brands without a single match
// appear in neither map.
type Detection struct {
	Raw    map[string]int `json:"raw"`
	Capped map[string]int `json:"capped"`
}

// Brands returns the detected brand identifiers in sorted order.
func (d Detection) Brands() []string {
	out := make([]string, 0, len(d.Capped))
	for b := range d.Capped {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Detect pattern-matches every registered brand against the given text.
// Pure function: no error conditions, empty text yields two empty maps.
func (r *BrandRegistry) Detect(text string) Detection {
	det := Detection{
		Raw:    make(map[string]int),
		Capped: make(map[string]int),
	}

	for _, brand := range r.brands {
		total := 0
		for _, re := range r.patterns[brand] {
			total += len(re.FindAllStringIndex(text, -1))
		}
		if total > 0 {
			det.Raw[brand] = total
			det.Capped[brand] = 1
		}
	}

	return det
}
