package store

import (
	"context"
	"fmt"
	"time"
)

const (
	RetentionAge              = 30 * 24 * time.Hour
	DefaultRetentionBatchSize = 500
)

// DeleteItemsPublishedBefore removes items published before the cutoff in
// bounded batches, so a long-overdue sweep never holds one giant delete.
// Returns the total number of rows removed.
func (s *Store) DeleteItemsPublishedBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultRetentionBatchSize
	}

	const query = `
		DELETE FROM pulse.items
		WHERE item_id IN (
			SELECT item_id FROM pulse.items
			WHERE published_at < $1
			ORDER BY published_at ASC
			LIMIT $2
		)`

	var total int64
	for {
		tag, err := s.pool.Exec(ctx, query, cutoff, batchSize)
		if err != nil {
			return total, fmt.Errorf("delete expired items: %w", err)
		}
		total += tag.RowsAffected()
		if tag.RowsAffected() < int64(batchSize) {
			return total, nil
		}
	}
}
