package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/globaltime"
)

func newHNServer(t *testing.T, top, fresh []int, items map[int]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, jsonIntList(top))
	})
	mux.HandleFunc("/newstories.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, jsonIntList(fresh))
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		body, ok := items[id]
		if !ok {
			fmt.Fprint(w, "null")
			return
		}
		fmt.Fprint(w, body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonIntList(ids []int) string {
	out := "["
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", id)
	}
	return out + "]"
}

func hnStoryJSON(id int, title, url string, score, descendants int, unixTime int64) string {
	return fmt.Sprintf(
		`{"id":%d,"type":"story","title":%q,"url":%q,"by":"tester","time":%d,"score":%d,"descendants":%d}`,
		id, title, url, unixTime, score, descendants)
}

func TestHackerNewsCollectFiltersAndStores(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	published := now.Add(-2 * time.Hour)
	srv := newHNServer(t,
		[]int{1, 2, 3}, []int{3, 4},
		map[int]string{
			1: hnStoryJSON(1, "OpenAI releases new GPT-5 model", "https://example.com/gpt5", 150, 40, published.Unix()),
			2: hnStoryJSON(2, "Rust compiler internals deep dive", "https://example.com/rust", 300, 90, published.Unix()),
			3: hnStoryJSON(3, "Show HN: my LLM eval harness", "", 25, 5, published.Unix()),
			4: `{"id":4,"type":"comment","text":"interesting"}`,
		})

	st := newFakeStore()
	collector := NewHackerNews(st, srv.Client(), srv.URL, zerolog.Nop())

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Inserted != 2 {
		t.Fatalf("Inserted = %d, want 2", result.Inserted)
	}
	if result.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2 (off-topic story and comment)", result.Skipped)
	}

	item := st.itemByExternalID("1")
	if item == nil {
		t.Fatal("story 1 was not stored")
	}
	if item.Kind != db.KindDiscussion {
		t.Fatalf("Kind = %q, want %q", item.Kind, db.KindDiscussion)
	}
	if item.URL != "https://example.com/gpt5" {
		t.Fatalf("URL = %q", item.URL)
	}
	if item.CommentsURL == nil || *item.CommentsURL != "https://news.ycombinator.com/item?id=1" {
		t.Fatalf("CommentsURL = %v", item.CommentsURL)
	}
	if item.Score == nil || *item.Score != 150 {
		t.Fatalf("Score = %v, want 150", item.Score)
	}
	if len(item.Tags) == 0 {
		t.Fatal("expected tags on stored item")
	}

	textOnly := st.itemByExternalID("3")
	if textOnly == nil {
		t.Fatal("story 3 was not stored")
	}
	if textOnly.URL != "https://news.ycombinator.com/item?id=3" {
		t.Fatalf("URL fallback = %q", textOnly.URL)
	}
}

func TestHackerNewsCollectUpdatesOnResight(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	published := now.Add(-time.Hour)
	first := map[int]string{
		1: hnStoryJSON(1, "Anthropic ships new Claude model", "https://example.com/claude", 100, 20, published.Unix()),
	}
	srv := newHNServer(t, []int{1}, nil, first)

	st := newFakeStore()
	collector := NewHackerNews(st, srv.Client(), srv.URL, zerolog.Nop())

	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("first Collect failed: %v", err)
	}

	first[1] = hnStoryJSON(1, "Anthropic ships new Claude model", "https://example.com/claude", 250, 80, published.Unix())

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("second Collect failed: %v", err)
	}
	if result.Updated != 1 || result.Inserted != 0 {
		t.Fatalf("Updated = %d, Inserted = %d, want 1 and 0", result.Updated, result.Inserted)
	}
	if st.itemCount() != 1 {
		t.Fatalf("itemCount = %d, want 1", st.itemCount())
	}

	item := st.itemByExternalID("1")
	if item.Score == nil || *item.Score != 250 {
		t.Fatalf("Score after resight = %v, want 250", item.Score)
	}
	if item.CommentsCount == nil || *item.CommentsCount != 80 {
		t.Fatalf("CommentsCount after resight = %v, want 80", item.CommentsCount)
	}
}
