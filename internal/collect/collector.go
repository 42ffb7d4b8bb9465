// Package collect fetches items from the configured upstream sources and
// writes them through the store, deduplicating by external ID and content
// hash as it goes.
package collect

import (
	"context"

	"pulse.news/pulse/internal/store"
)

// Store is the slice of persistence the collectors need.
type Store interface {
	GetOrCreateSource(ctx context.Context, src store.NewSource) (*store.Source, error)
	TouchSourcePolled(ctx context.Context, sourceID int64) error
	FindItemByExternalID(ctx context.Context, sourceID int64, externalID string) (*store.Item, error)
	FindCanonicalItemID(ctx context.Context, contentHash string) (int64, error)
	InsertItem(ctx context.Context, item store.NewItem) (int64, error)
	UpdateItemEngagement(ctx context.Context, itemID int64, score, comments *int, importanceScore int) error
}

// Collector runs one poll of an upstream source.
type Collector interface {
	Name() string
	Collect(ctx context.Context) (*Result, error)
}

// Result summarizes one collection run.
type Result struct {
	Source     string `json:"source"`
	Fetched    int    `json:"fetched"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
}

func (r *Result) add(other *Result) {
	r.Fetched += other.Fetched
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Duplicates += other.Duplicates
	r.Skipped += other.Skipped
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// canonicalFor looks up an earlier item with the same content hash. Returns
// nil when the candidate is the first sighting of this content.
func canonicalFor(ctx context.Context, st Store, contentHash string) (*int64, error) {
	id, err := st.FindCanonicalItemID(ctx, contentHash)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return int64Ptr(id), nil
}
