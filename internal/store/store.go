package store

import (
	"time"

	"pulse.news/pulse/internal/db"
)

// Store runs all persistence for sources and items over a single pool.
type Store struct {
	pool *db.Pool
}

func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// Source is a configured origin of items.
type Source struct {
	SourceID            int64
	Name                string
	Type                string
	FeedURL             *string
	Category            *string
	PollIntervalMinutes int
	BaseWeight          int
	IsActive            bool
	LastPolledAt        *time.Time
}

// NewSource carries the fields needed to get-or-create a source row.
type NewSource struct {
	Name                string
	Type                string
	FeedURL             *string
	Category            *string
	PollIntervalMinutes int
	BaseWeight          int
}

// Item is a collected news item. Score and CommentsCount are nil for kinds
// without engagement (feed articles, releases). SourceName and SourceType
// are joined from the owning source on every read. Velocity is only set on
// trending results.
type Item struct {
	ItemID          int64
	SourceID        int64
	ExternalID      string
	Kind            string
	Title           string
	URL             string
	Author          *string
	PublishedAt     time.Time
	CollectedAt     time.Time
	Score           *int
	CommentsCount   *int
	CommentsURL     *string
	ImportanceScore int
	ContentHash     string
	CanonicalItemID *int64
	Tags            []string
	SourceName      string
	SourceType      string
	Velocity        float64
}

// NewItem carries the fields for an insert. CollectedAt is set by the store.
type NewItem struct {
	SourceID        int64
	ExternalID      string
	Kind            string
	Title           string
	URL             string
	Author          *string
	PublishedAt     time.Time
	Score           *int
	CommentsCount   *int
	CommentsURL     *string
	ImportanceScore int
	ContentHash     string
	CanonicalItemID *int64
	Tags            []string
}

// SourceStats summarizes one source in the stats report.
type SourceStats struct {
	SourceID    int64
	Name        string
	Type        string
	ItemCount   int64
	RecentCount int64
}

// Stats is the corpus-wide summary.
type Stats struct {
	TotalItems  int64
	ItemsLast24 int64
	Sources     []SourceStats
}
