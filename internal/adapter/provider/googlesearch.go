package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/loopline-labs/sovscope/internal/core/domain"
)

const googleSearchURL = "https://www.google.com/search"

// HTTPDoer is the request surface providers need. Satisfied by *http.Client
// and *ResilientClient.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// queryVariations expands a product query into the search variations that
// surface review and comparison content.
func queryVariations(base string) []string {
	return []string{
		fmt.Sprintf("%s review", base),
		fmt.Sprintf("%s vs Havells vs Bajaj", base),
		fmt.Sprintf("%s best brand India", base),
	}
}

// GoogleSearchProvider scrapes Google search result pages. Result markup
// changes frequently, so extraction tries a list of selectors in order until
// one yields containers.
type GoogleSearchProvider struct {
	client  HTTPDoer
	baseURL string
}

func NewGoogleSearchProvider(client HTTPDoer) *GoogleSearchProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleSearchProvider{
		client:  client,
		baseURL: googleSearchURL,
	}
}

// NewGoogleSearchProviderWithBaseURL is used by tests to point the scraper at
// a local server.
func NewGoogleSearchProviderWithBaseURL(client HTTPDoer, baseURL string) *GoogleSearchProvider {
	p := NewGoogleSearchProvider(client)
	p.baseURL = baseURL
	return p
}

func (p *GoogleSearchProvider) Name() string {
	return "google-search"
}

// Result containers, tried in order until one matches.
var resultSelectors = []string{
	"div.g",
	".tF2Cxc",
	".g .yuRUbf",
	".srg .g",
}

var snippetSelectors = []string{".VwiC3b", ".s3v9rd", ".st", ".IsZvec", ".aCOpRe"}

func (p *GoogleSearchProvider) Collect(ctx context.Context, query string, limit int) ([]domain.EvidenceRecord, error) {
	timer := StartTimer(p.Name())
	defer timer.ObserveDuration()

	var records []domain.EvidenceRecord
	seen := make(map[string]bool)

	for i, q := range queryVariations(query) {
		doc, err := p.fetchResultPage(ctx, q)
		if err != nil {
			RecordCollection(p.Name(), "error")
			return records, fmt.Errorf("google search for %q: %w", q, err)
		}

		position := 0
		for _, selector := range resultSelectors {
			containers := doc.Find(selector)
			if containers.Length() == 0 {
				continue
			}

			containers.EachWithBreak(func(j int, s *goquery.Selection) bool {
				if limit > 0 && position >= limit {
					return false
				}

				title := strings.TrimSpace(s.Find("h3").First().Text())
				href, _ := s.Find("a[href]").First().Attr("href")
				snippet := extractSnippet(s)

				if title == "" && href == "" {
					return true
				}
				if !strings.HasPrefix(href, "http") || isGoogleInternal(href) {
					RecordDiscarded(p.Name(), "no_url")
					return true
				}
				if seen[href] {
					return true
				}
				seen[href] = true

				position++
				records = append(records, domain.NormalizeSearchResult(
					fmt.Sprintf("google_%d_%d", i, position),
					title, snippet, href, position, q,
				))
				return true
			})
			break
		}
	}

	RecordCollection(p.Name(), "success")
	RecordEvidence(p.Name(), string(domain.SearchResult), len(records))
	return records, nil
}

func (p *GoogleSearchProvider) fetchResultPage(ctx context.Context, query string) (*goquery.Document, error) {
	u := fmt.Sprintf("%s?q=%s&hl=en&num=20", p.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// A browser user agent gets the full result markup instead of the
	// degraded no-JS page.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		RecordError("parse")
		return nil, fmt.Errorf("failed to parse result page: %w", err)
	}
	return doc, nil
}

func extractSnippet(s *goquery.Selection) string {
	for _, selector := range snippetSelectors {
		if text := strings.TrimSpace(s.Find(selector).First().Text()); len(text) > 10 {
			if len(text) > 500 {
				text = text[:500]
			}
			return text
		}
	}
	return ""
}

// isGoogleInternal filters navigation links that point back into Google
// itself rather than at an organic result.
func isGoogleInternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return true
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		registrable = u.Hostname()
	}
	return registrable == "google.com"
}
