package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/loopline-labs/sovscope/internal/core/domain"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// Comment spam filter bounds.
const (
	minCommentLength = 10
	maxCommentLength = 500
)

var spamIndicators = []string{"http", "subscribe", "follow me"}

// YouTubeProvider collects videos and their top comments through the YouTube
// Data API v3. Video engagement statistics are folded into the record snippet
// so the engagement scorer sees them as content.
type YouTubeProvider struct {
	client           HTTPDoer
	apiKey           string
	baseURL          string
	commentsPerVideo int
}

func NewYouTubeProvider(client HTTPDoer, apiKey string) *YouTubeProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &YouTubeProvider{
		client:           client,
		apiKey:           apiKey,
		baseURL:          youtubeAPIBase,
		commentsPerVideo: 20,
	}
}

// NewYouTubeProviderWithBaseURL is used by tests to point the provider at a
// local server.
func NewYouTubeProviderWithBaseURL(client HTTPDoer, apiKey, baseURL string) *YouTubeProvider {
	p := NewYouTubeProvider(client, apiKey)
	p.baseURL = baseURL
	return p
}

func (p *YouTubeProvider) Name() string {
	return "youtube"
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type youtubeCommentsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

func (p *YouTubeProvider) Collect(ctx context.Context, query string, limit int) ([]domain.EvidenceRecord, error) {
	timer := StartTimer(p.Name())
	defer timer.ObserveDuration()

	var records []domain.EvidenceRecord
	videos, comments := 0, 0

	for _, q := range queryVariations(query) {
		search, err := p.searchVideos(ctx, q, limit)
		if err != nil {
			RecordCollection(p.Name(), "error")
			return records, fmt.Errorf("youtube search for %q: %w", q, err)
		}
		if len(search.Items) == 0 {
			continue
		}

		ids := make([]string, 0, len(search.Items))
		for _, item := range search.Items {
			ids = append(ids, item.ID.VideoID)
		}
		stats, err := p.videoStatistics(ctx, ids)
		if err != nil {
			RecordCollection(p.Name(), "error")
			return records, fmt.Errorf("youtube video statistics: %w", err)
		}

		for i, item := range search.Items {
			videoID := item.ID.VideoID
			videoURL := "https://www.youtube.com/watch?v=" + videoID

			snippet := item.Snippet.Description
			if s, ok := stats[videoID]; ok {
				snippet = fmt.Sprintf("%s | views: %s, likes: %s, comments: %s",
					snippet, s.ViewCount, s.LikeCount, s.CommentCount)
			}

			videos++
			records = append(records, domain.NormalizeVideo(
				"yt_"+videoID, item.Snippet.Title, snippet, videoURL, i+1, q,
			))

			for j, text := range p.topComments(ctx, videoID) {
				comments++
				records = append(records, domain.NormalizeComment(
					fmt.Sprintf("yt_%s_c%d", videoID, j+1),
					item.Snippet.Title, text, videoURL, q,
				))
			}
		}
	}

	RecordCollection(p.Name(), "success")
	RecordEvidence(p.Name(), string(domain.Video), videos)
	RecordEvidence(p.Name(), string(domain.Comment), comments)
	return records, nil
}

func (p *YouTubeProvider) searchVideos(ctx context.Context, query string, limit int) (*youtubeSearchResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 25 // API caps maxResults at 50
	}

	params := url.Values{}
	params.Set("part", "id,snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", p.apiKey)

	var out youtubeSearchResponse
	if err := p.getJSON(ctx, p.baseURL+"/search?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type videoStats struct {
	ViewCount    string
	LikeCount    string
	CommentCount string
}

func (p *YouTubeProvider) videoStatistics(ctx context.Context, ids []string) (map[string]videoStats, error) {
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", p.apiKey)

	var out youtubeVideosResponse
	if err := p.getJSON(ctx, p.baseURL+"/videos?"+params.Encode(), &out); err != nil {
		return nil, err
	}

	stats := make(map[string]videoStats, len(out.Items))
	for _, item := range out.Items {
		stats[item.ID] = videoStats{
			ViewCount:    item.Statistics.ViewCount,
			LikeCount:    item.Statistics.LikeCount,
			CommentCount: item.Statistics.CommentCount,
		}
	}
	return stats, nil
}

// topComments fetches a video's top-level comments and drops spam. Comment
// collection is best effort: videos with comments disabled return 403 and are
// simply skipped.
func (p *YouTubeProvider) topComments(ctx context.Context, videoID string) []string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(p.commentsPerVideo))
	params.Set("key", p.apiKey)

	var out youtubeCommentsResponse
	if err := p.getJSON(ctx, p.baseURL+"/commentThreads?"+params.Encode(), &out); err != nil {
		return nil
	}

	var comments []string
	for _, item := range out.Items {
		text := strings.TrimSpace(item.Snippet.TopLevelComment.Snippet.TextDisplay)
		if reason, ok := commentFilter(text); !ok {
			RecordDiscarded(p.Name(), reason)
			continue
		}
		comments = append(comments, text)
	}
	return comments
}

// commentFilter reports whether a comment is worth keeping and, when it is
// not, the discard reason.
func commentFilter(text string) (string, bool) {
	if len(text) < minCommentLength {
		return "too_short", false
	}
	if len(text) > maxCommentLength {
		return "too_long", false
	}
	lower := strings.ToLower(text)
	for _, indicator := range spamIndicators {
		if strings.Contains(lower, indicator) {
			return "spam", false
		}
	}
	return "", true
}

func (p *YouTubeProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		RecordError("parse")
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
