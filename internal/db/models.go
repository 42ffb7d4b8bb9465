package db

import (
	"encoding/json"
	"time"
)

// Source types.
const (
	SourceHackerNews = "hackernews"
	SourceRSS        = "rss"
	SourceGitHub     = "github"
)

// Item kinds.
const (
	KindArticle    = "article"
	KindDiscussion = "discussion"
	KindRepo       = "repo"
)

// Source maps pulse.sources. One row per configured origin; at most one row
// per (type, feed_url) pair, enforced by a unique index created in
// post_automigrate.sql (feed_url coalesced to '' for non-feed sources).
type Source struct {
	SourceID            int64      `gorm:"column:source_id;primaryKey;autoIncrement"`
	Name                string     `gorm:"column:name;type:text;not null"`
	Type                string     `gorm:"column:type;type:text;not null;index"`
	FeedURL             *string    `gorm:"column:feed_url;type:text"`
	Category            *string    `gorm:"column:category;type:text"`
	PollIntervalMinutes int        `gorm:"column:poll_interval_minutes;type:integer;not null"`
	BaseWeight          int        `gorm:"column:base_weight;type:smallint;not null"`
	IsActive            bool       `gorm:"column:is_active;type:boolean;not null;default:true"`
	LastPolledAt        *time.Time `gorm:"column:last_polled_at;type:timestamptz"`
	CreatedAt           time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Source) TableName() string { return "pulse.sources" }

// Item maps pulse.items. (source_id, external_id) is unique; an item whose
// canonical_item_id is set is a duplicate of an earlier item and stays out of
// every ranked feed.
type Item struct {
	ItemID          int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	SourceID        int64           `gorm:"column:source_id;type:bigint;not null;uniqueIndex:idx_items_external_id,priority:1"`
	ExternalID      string          `gorm:"column:external_id;type:text;not null;uniqueIndex:idx_items_external_id,priority:2"`
	Kind            string          `gorm:"column:kind;type:text;not null"`
	Title           string          `gorm:"column:title;type:text;not null"`
	URL             string          `gorm:"column:url;type:text;not null"`
	Author          *string         `gorm:"column:author;type:text"`
	PublishedAt     time.Time       `gorm:"column:published_at;type:timestamptz;not null;index"`
	CollectedAt     time.Time       `gorm:"column:collected_at;type:timestamptz;not null;index"`
	Score           *int            `gorm:"column:score;type:integer"`
	CommentsCount   *int            `gorm:"column:comments_count;type:integer"`
	CommentsURL     *string         `gorm:"column:comments_url;type:text"`
	ImportanceScore int             `gorm:"column:importance_score;type:integer;not null;index"`
	ContentHash     string          `gorm:"column:content_hash;type:text;not null;index"`
	CanonicalItemID *int64          `gorm:"column:canonical_item_id;type:bigint"`
	Tags            json.RawMessage `gorm:"column:tags;type:jsonb;not null;default:'[]'"`
}

func (Item) TableName() string { return "pulse.items" }

func autoMigrateModels() []any {
	return []any{
		&Source{},
		&Item{},
	}
}
