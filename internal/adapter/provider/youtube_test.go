package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loopline-labs/sovscope/internal/core/domain"
)

func youtubeTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	longComment := strings.Repeat("x", 501)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key = %q, want test-key", key)
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			// Only the review variation returns a hit so record counts stay
			// independent of the variation count.
			if !strings.HasSuffix(r.URL.Query().Get("q"), "review") {
				fmt.Fprint(w, `{"items": []}`)
				return
			}
			fmt.Fprint(w, `{
				"items": [{
					"id": {"videoId": "abc123"},
					"snippet": {
						"title": "Atomberg Efficio Long Term Review",
						"description": "Six months with the atomberg smart fan",
						"channelTitle": "FanReviews"
					}
				}]
			}`)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			if ids := r.URL.Query().Get("id"); ids != "abc123" {
				t.Errorf("videos id = %q, want abc123", ids)
			}
			fmt.Fprint(w, `{
				"items": [{
					"id": "abc123",
					"statistics": {"viewCount": "15000", "likeCount": "800", "commentCount": "95"}
				}]
			}`)
		case strings.HasSuffix(r.URL.Path, "/commentThreads"):
			fmt.Fprintf(w, `{
				"items": [
					{"id": "c1", "snippet": {"topLevelComment": {"snippet": {"textDisplay": "This atomberg fan is excellent value for money"}}}},
					{"id": "c2", "snippet": {"topLevelComment": {"snippet": {"textDisplay": "nice"}}}},
					{"id": "c3", "snippet": {"topLevelComment": {"snippet": {"textDisplay": "%s"}}}},
					{"id": "c4", "snippet": {"topLevelComment": {"snippet": {"textDisplay": "subscribe to my channel for more reviews"}}}}
				]
			}`, longComment)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestYouTubeProvider_Collect(t *testing.T) {
	server := youtubeTestServer(t)
	defer server.Close()

	p := NewYouTubeProviderWithBaseURL(server.Client(), "test-key", server.URL)

	records, err := p.Collect(context.Background(), "atomberg smart fan", 10)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	// One video plus the single comment that survives the spam filter.
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}

	video := records[0]
	if video.ID != "yt_abc123" {
		t.Errorf("video ID = %s, want yt_abc123", video.ID)
	}
	if video.Source != domain.Video {
		t.Errorf("video Source = %s, want %s", video.Source, domain.Video)
	}
	if video.Position != 1 {
		t.Errorf("video Position = %d, want 1", video.Position)
	}
	if video.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("video URL = %q", video.URL)
	}
	// Statistics are folded into the snippet for the engagement scorer.
	if !strings.Contains(video.Snippet, "views: 15000, likes: 800, comments: 95") {
		t.Errorf("video Snippet = %q, want folded statistics", video.Snippet)
	}

	comment := records[1]
	if comment.ID != "yt_abc123_c1" {
		t.Errorf("comment ID = %s, want yt_abc123_c1", comment.ID)
	}
	if comment.Source != domain.Comment {
		t.Errorf("comment Source = %s, want %s", comment.Source, domain.Comment)
	}
	if comment.Position != 0 {
		t.Errorf("comment Position = %d, want 0", comment.Position)
	}
	if comment.Title != "Atomberg Efficio Long Term Review" {
		t.Errorf("comment Title = %q, want the video title", comment.Title)
	}
	if !strings.Contains(comment.Snippet, "excellent value") {
		t.Errorf("comment Snippet = %q", comment.Snippet)
	}
}

func TestYouTubeProvider_CollectSearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	p := NewYouTubeProviderWithBaseURL(server.Client(), "test-key", server.URL)

	_, err := p.Collect(context.Background(), "atomberg smart fan", 10)
	if err == nil {
		t.Fatal("expected error when the search endpoint fails")
	}
	if !strings.Contains(err.Error(), "youtube search") {
		t.Errorf("error = %v, want youtube search failure", err)
	}
}

// Videos with comments disabled return 403 from commentThreads. Collection
// must still succeed with the video record alone.
func TestYouTubeProvider_CommentsDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			if !strings.HasSuffix(r.URL.Query().Get("q"), "review") {
				fmt.Fprint(w, `{"items": []}`)
				return
			}
			fmt.Fprint(w, `{"items": [{"id": {"videoId": "v1"}, "snippet": {"title": "Fan test", "description": "d"}}]}`)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			fmt.Fprint(w, `{"items": []}`)
		case strings.HasSuffix(r.URL.Path, "/commentThreads"):
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	p := NewYouTubeProviderWithBaseURL(server.Client(), "test-key", server.URL)

	records, err := p.Collect(context.Background(), "atomberg smart fan", 10)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want only the video", len(records))
	}
	if records[0].Source != domain.Video {
		t.Errorf("Source = %s, want %s", records[0].Source, domain.Video)
	}
}

func TestCommentFilter(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantOK     bool
		wantReason string
	}{
		{"valid comment", "Great fan, very quiet at night", true, ""},
		{"too short", "nice", false, "too_short"},
		{"too long", strings.Repeat("a", 501), false, "too_long"},
		{"link spam", "check this out http://spam.example", false, "spam"},
		{"subscribe spam", "please subscribe to my channel", false, "spam"},
		{"follow spam", "follow me for giveaways", false, "spam"},
		{"exactly min length", strings.Repeat("a", 10), true, ""},
		{"exactly max length", strings.Repeat("a", 500), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := commentFilter(tt.text)
			if ok != tt.wantOK {
				t.Errorf("commentFilter(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if reason != tt.wantReason {
				t.Errorf("commentFilter(%q) reason = %q, want %q", tt.text, reason, tt.wantReason)
			}
		})
	}
}
