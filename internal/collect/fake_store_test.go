package collect

import (
	"context"
	"sync"

	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/store"
)

// fakeStore is an in-memory Store for collector tests.
type fakeStore struct {
	mu      sync.Mutex
	sources []*store.Source
	items   []*store.Item
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) GetOrCreateSource(_ context.Context, src store.NewSource) (*store.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.sources {
		if existing.Type != src.Type {
			continue
		}
		if equalPtr(existing.FeedURL, src.FeedURL) {
			out := *existing
			return &out, nil
		}
	}

	f.nextID++
	created := &store.Source{
		SourceID:            f.nextID,
		Name:                src.Name,
		Type:                src.Type,
		FeedURL:             src.FeedURL,
		Category:            src.Category,
		PollIntervalMinutes: src.PollIntervalMinutes,
		BaseWeight:          src.BaseWeight,
		IsActive:            true,
	}
	f.sources = append(f.sources, created)
	out := *created
	return &out, nil
}

func (f *fakeStore) TouchSourcePolled(_ context.Context, sourceID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := globaltime.Now()
	for _, src := range f.sources {
		if src.SourceID == sourceID {
			src.LastPolledAt = &now
		}
	}
	return nil
}

func (f *fakeStore) FindItemByExternalID(_ context.Context, sourceID int64, externalID string) (*store.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.items {
		if item.SourceID == sourceID && item.ExternalID == externalID {
			out := *item
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindCanonicalItemID(_ context.Context, contentHash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.items {
		if item.ContentHash == contentHash && item.CanonicalItemID == nil {
			return item.ItemID, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) InsertItem(_ context.Context, item store.NewItem) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.items {
		if existing.SourceID == item.SourceID && existing.ExternalID == item.ExternalID {
			return existing.ItemID, nil
		}
	}

	f.nextID++
	f.items = append(f.items, &store.Item{
		ItemID:          f.nextID,
		SourceID:        item.SourceID,
		ExternalID:      item.ExternalID,
		Kind:            item.Kind,
		Title:           item.Title,
		URL:             item.URL,
		Author:          item.Author,
		PublishedAt:     item.PublishedAt,
		CollectedAt:     globaltime.Now(),
		Score:           item.Score,
		CommentsCount:   item.CommentsCount,
		CommentsURL:     item.CommentsURL,
		ImportanceScore: item.ImportanceScore,
		ContentHash:     item.ContentHash,
		CanonicalItemID: item.CanonicalItemID,
		Tags:            item.Tags,
	})
	return f.nextID, nil
}

func (f *fakeStore) UpdateItemEngagement(_ context.Context, itemID int64, score, comments *int, importanceScore int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.items {
		if item.ItemID == itemID {
			item.Score = score
			item.CommentsCount = comments
			item.ImportanceScore = importanceScore
		}
	}
	return nil
}

func (f *fakeStore) itemByExternalID(externalID string) *store.Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.items {
		if item.ExternalID == externalID {
			out := *item
			return &out
		}
	}
	return nil
}

func (f *fakeStore) itemCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
