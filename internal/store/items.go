package store

import (
	"context"
	"encoding/json"
	"fmt"

	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/globaltime"
)

const itemColumns = `i.item_id, i.source_id, i.external_id, i.kind, i.title, i.url, i.author,
	i.published_at, i.collected_at, i.score, i.comments_count, i.comments_url,
	i.importance_score, i.content_hash, i.canonical_item_id, i.tags, s.name, s.type`

const itemFrom = ` FROM pulse.items i JOIN pulse.sources s ON s.source_id = i.source_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(sc rowScanner) (*Item, error) {
	var it Item
	var tags []byte
	err := sc.Scan(
		&it.ItemID, &it.SourceID, &it.ExternalID, &it.Kind, &it.Title, &it.URL,
		&it.Author, &it.PublishedAt, &it.CollectedAt, &it.Score, &it.CommentsCount,
		&it.CommentsURL, &it.ImportanceScore, &it.ContentHash, &it.CanonicalItemID,
		&tags, &it.SourceName, &it.SourceType,
	)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &it.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for item %d: %w", it.ItemID, err)
		}
	}
	it.PublishedAt = it.PublishedAt.UTC()
	it.CollectedAt = it.CollectedAt.UTC()
	return &it, nil
}

// InsertItem stores a freshly collected item and returns its ID. A concurrent
// insert of the same (source, external ID) loses quietly and returns the
// existing row's ID.
func (s *Store) InsertItem(ctx context.Context, item NewItem) (int64, error) {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("encode tags: %w", err)
	}

	const query = `
		INSERT INTO pulse.items
			(source_id, external_id, kind, title, url, author, published_at,
			 collected_at, score, comments_count, comments_url,
			 importance_score, content_hash, canonical_item_id, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (source_id, external_id)
		DO UPDATE SET external_id = pulse.items.external_id
		RETURNING item_id`

	var id int64
	err = s.pool.QueryRow(ctx, query,
		item.SourceID, item.ExternalID, item.Kind, item.Title, item.URL,
		item.Author, item.PublishedAt.UTC(), globaltime.Now(),
		item.Score, item.CommentsCount, item.CommentsURL,
		item.ImportanceScore, item.ContentHash, item.CanonicalItemID,
		string(encoded),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert item %q: %w", item.ExternalID, err)
	}
	return id, nil
}

// FindItemByExternalID returns the item seen before under this source and
// external ID, or nil when this sighting is the first.
func (s *Store) FindItemByExternalID(ctx context.Context, sourceID int64, externalID string) (*Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.source_id = $1 AND i.external_id = $2`

	item, err := scanItem(s.pool.QueryRow(ctx, query, sourceID, externalID))
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by external id %q: %w", externalID, err)
	}
	return item, nil
}

// FindCanonicalItemID returns the ID of the oldest non-duplicate item with
// the given content hash, or 0 when the hash is unseen.
func (s *Store) FindCanonicalItemID(ctx context.Context, contentHash string) (int64, error) {
	const query = `
		SELECT item_id FROM pulse.items
		WHERE content_hash = $1 AND canonical_item_id IS NULL
		ORDER BY collected_at ASC, item_id ASC
		LIMIT 1`

	var id int64
	err := s.pool.QueryRow(ctx, query, contentHash).Scan(&id)
	if db.IsNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find canonical item for hash %q: %w", contentHash, err)
	}
	return id, nil
}

// UpdateItemEngagement refreshes the mutable fields of a re-sighted
// discussion or trending repo.
func (s *Store) UpdateItemEngagement(ctx context.Context, itemID int64, score, comments *int, importanceScore int) error {
	const query = `
		UPDATE pulse.items
		SET score = $1, comments_count = $2, importance_score = $3
		WHERE item_id = $4`

	if _, err := s.pool.Exec(ctx, query, score, comments, importanceScore, itemID); err != nil {
		return fmt.Errorf("update engagement for item %d: %w", itemID, err)
	}
	return nil
}

// GetItemByID returns the item, or nil when no such ID exists.
func (s *Store) GetItemByID(ctx context.Context, itemID int64) (*Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + ` WHERE i.item_id = $1`

	item, err := scanItem(s.pool.QueryRow(ctx, query, itemID))
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	return item, nil
}
