package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/scoring"
)

// newGitHubTestClient points a client at a local server. Tracked repos the
// server does not stub come back 404, which the collector treats as "no
// releases yet".
func newGitHubTestClient(t *testing.T, handler http.Handler) *github.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := github.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	client.BaseURL = base
	return client
}

func TestGitHubCollectStoresReleaseOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/ollama/ollama/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"tag_name": "v0.9.1",
			"name": "v0.9.1: faster model loading",
			"published_at": "2026-02-28T10:00:00Z",
			"html_url": "https://github.com/ollama/ollama/releases/tag/v0.9.1"
		}`)
	})
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count":0,"items":[]}`)
	})

	st := newFakeStore()
	collector := NewGitHub(st, newGitHubTestClient(t, mux), zerolog.Nop())

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1", result.Inserted)
	}

	item := st.itemByExternalID("release:ollama/ollama:v0.9.1")
	if item == nil {
		t.Fatal("release was not stored")
	}
	if item.Kind != db.KindRepo {
		t.Fatalf("Kind = %q, want %q", item.Kind, db.KindRepo)
	}
	if item.Title != "ollama/ollama v0.9.1: faster model loading" {
		t.Fatalf("Title = %q", item.Title)
	}
	if item.ImportanceScore != scoring.ReleaseScore {
		t.Fatalf("ImportanceScore = %d, want %d", item.ImportanceScore, scoring.ReleaseScore)
	}
	if item.Author == nil || *item.Author != "ollama" {
		t.Fatalf("Author = %v, want ollama", item.Author)
	}
	if len(item.Tags) != 2 || item.Tags[0] != "Release" || item.Tags[1] != "ollama" {
		t.Fatalf("Tags = %v", item.Tags)
	}

	rerun, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("second Collect failed: %v", err)
	}
	if rerun.Inserted != 0 {
		t.Fatalf("Inserted on rerun = %d, want 0", rerun.Inserted)
	}
	if st.itemCount() != 1 {
		t.Fatalf("itemCount = %d, want 1", st.itemCount())
	}
}

func TestGitHubCollectTrendingHysteresis(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	var stars atomic.Int64
	stars.Store(200)

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"total_count":1,"items":[{
			"full_name": "acme/fast-agents",
			"description": "Agents that move fast",
			"html_url": "https://github.com/acme/fast-agents",
			"stargazers_count": %d,
			"forks_count": 12,
			"language": "Go",
			"topics": ["llm", "agents", "golang", "extra"],
			"created_at": "2026-02-27T08:00:00Z"
		}]}`, stars.Load())
	})

	st := newFakeStore()
	collector := NewGitHub(st, newGitHubTestClient(t, mux), zerolog.Nop())

	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("first Collect failed: %v", err)
	}

	item := st.itemByExternalID("trending:acme/fast-agents")
	if item == nil {
		t.Fatal("trending repo was not stored")
	}
	if item.ImportanceScore != 50 {
		t.Fatalf("ImportanceScore = %d, want 50 for 200 stars", item.ImportanceScore)
	}
	if len(item.Tags) != 3 || item.Tags[0] != "Llm" || item.Tags[1] != "Agents" || item.Tags[2] != "Golang" {
		t.Fatalf("Tags = %v", item.Tags)
	}
	if item.CommentsURL == nil || *item.CommentsURL != "https://github.com/acme/fast-agents/network/members" {
		t.Fatalf("CommentsURL = %v", item.CommentsURL)
	}

	// Both searched topics return the same repo, so the second sighting in
	// run one already exercises the small-delta skip.
	stars.Store(205)
	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("second Collect failed: %v", err)
	}
	item = st.itemByExternalID("trending:acme/fast-agents")
	if item.Score == nil || *item.Score != 200 {
		t.Fatalf("Score after small delta = %v, want unchanged 200", item.Score)
	}

	stars.Store(400)
	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("third Collect failed: %v", err)
	}
	item = st.itemByExternalID("trending:acme/fast-agents")
	if item.Score == nil || *item.Score != 400 {
		t.Fatalf("Score after large delta = %v, want 400", item.Score)
	}
	if item.ImportanceScore != 70 {
		t.Fatalf("ImportanceScore after rescore = %d, want 70", item.ImportanceScore)
	}
}
