package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/cache"
	"pulse.news/pulse/internal/store"
)

type fakeReader struct {
	feedCalls int
	items     []store.Item
	stats     *store.Stats
}

func (f *fakeReader) GetFeed(_ context.Context, limit, _ int) (*store.FeedPage, error) {
	f.feedCalls++
	items := f.items
	hasMore := false
	if len(items) > limit {
		items = items[:limit]
		hasMore = true
	}
	return &store.FeedPage{Items: items, HasMore: hasMore}, nil
}

func (f *fakeReader) GetRecent(_ context.Context, _, _ int) ([]store.Item, error) {
	return f.items, nil
}

func (f *fakeReader) GetTrending(_ context.Context, _ int) ([]store.Item, error) {
	return f.items, nil
}

func (f *fakeReader) GetBySource(_ context.Context, _ string, _ int) ([]store.Item, error) {
	return f.items, nil
}

func (f *fakeReader) GetItemByID(_ context.Context, itemID int64) (*store.Item, error) {
	for _, item := range f.items {
		if item.ItemID == itemID {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeReader) GetStats(_ context.Context) (*store.Stats, error) {
	return f.stats, nil
}

func testItems() []store.Item {
	published := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []store.Item{
		{ItemID: 1, SourceID: 1, ExternalID: "100", Kind: "discussion", Title: "LLM news", URL: "https://example.com/a", PublishedAt: published, CollectedAt: published, ImportanceScore: 80, Tags: []string{"LLM"}},
		{ItemID: 2, SourceID: 2, ExternalID: "abc", Kind: "article", Title: "Model launch", URL: "https://example.com/b", PublishedAt: published, CollectedAt: published, ImportanceScore: 60, Tags: []string{"AI"}},
	}
}

func newTestServer(reader Reader) *Server {
	return NewServer(reader, cache.New(time.Minute), zerolog.Nop(), Options{})
}

func doRequest(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.buildEcho().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v\n%s", err, rec.Body.String())
	}
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeReader{})
	rec, body := doRequest(t, srv, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "success" {
		t.Fatalf("status field = %v", body["status"])
	}
	data := body["data"].(map[string]any)
	if data["service"] != "pulse" {
		t.Fatalf("service = %v", data["service"])
	}
}

func TestHandleFeedReturnsItemsAndHasMore(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeReader{items: testItems()})
	rec, body := doRequest(t, srv, "/api/v1/feed?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	data := body["data"].(map[string]any)
	if data["has_more"] != true {
		t.Fatalf("has_more = %v", data["has_more"])
	}
	items := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["title"] != "LLM news" {
		t.Fatalf("title = %v", first["title"])
	}
}

func TestHandleFeedServesFromCache(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{items: testItems()}
	srv := newTestServer(reader)

	doRequest(t, srv, "/api/v1/feed")
	doRequest(t, srv, "/api/v1/feed")
	if reader.feedCalls != 1 {
		t.Fatalf("feedCalls = %d, want 1 (second hit cached)", reader.feedCalls)
	}

	// A different limit is a different cache key.
	doRequest(t, srv, "/api/v1/feed?limit=5")
	if reader.feedCalls != 2 {
		t.Fatalf("feedCalls = %d, want 2", reader.feedCalls)
	}
}

func TestHandleFeedRejectsBadLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeReader{})
	rec, body := doRequest(t, srv, "/api/v1/feed?limit=9000")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "fail" {
		t.Fatalf("status field = %v", body["status"])
	}
}

func TestHandleItemByID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeReader{items: testItems()})

	rec, body := doRequest(t, srv, "/api/v1/items/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	if data["kind"] != "article" {
		t.Fatalf("kind = %v", data["kind"])
	}

	rec, body = doRequest(t, srv, "/api/v1/items/99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for missing item = %d", rec.Code)
	}
	if body["status"] != "fail" {
		t.Fatalf("status field = %v", body["status"])
	}

	rec, _ = doRequest(t, srv, "/api/v1/items/banana")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status for bad id = %d", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeReader{stats: &store.Stats{
		TotalItems:  42,
		ItemsLast24: 7,
		Sources: []store.SourceStats{
			{SourceID: 1, Name: "Hacker News", Type: "hackernews", ItemCount: 30, RecentCount: 5},
		},
	}})

	rec, body := doRequest(t, srv, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	if data["total_items"] != float64(42) {
		t.Fatalf("total_items = %v", data["total_items"])
	}
	sources := data["sources"].([]any)
	if len(sources) != 1 {
		t.Fatalf("len(sources) = %d", len(sources))
	}
}
