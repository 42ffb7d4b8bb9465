package store

import (
	"context"
	"fmt"

	"pulse.news/pulse/internal/globaltime"
)

// GetOrCreateSource inserts the source if no row with the same (type, feed
// URL) exists, otherwise returns the existing row unchanged. First writer
// wins; later calls never overwrite configured weights.
func (s *Store) GetOrCreateSource(ctx context.Context, src NewSource) (*Source, error) {
	const query = `
		INSERT INTO pulse.sources
			(name, type, feed_url, category, poll_interval_minutes, base_weight, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
		ON CONFLICT (type, COALESCE(feed_url, ''))
		DO UPDATE SET type = pulse.sources.type
		RETURNING source_id, name, type, feed_url, category,
			poll_interval_minutes, base_weight, is_active, last_polled_at`

	var out Source
	err := s.pool.QueryRow(ctx, query,
		src.Name, src.Type, src.FeedURL, src.Category,
		src.PollIntervalMinutes, src.BaseWeight, globaltime.Now(),
	).Scan(
		&out.SourceID, &out.Name, &out.Type, &out.FeedURL, &out.Category,
		&out.PollIntervalMinutes, &out.BaseWeight, &out.IsActive, &out.LastPolledAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create source %q: %w", src.Name, err)
	}
	return &out, nil
}

// TouchSourcePolled records a completed poll of the source.
func (s *Store) TouchSourcePolled(ctx context.Context, sourceID int64) error {
	const query = `UPDATE pulse.sources SET last_polled_at = $1 WHERE source_id = $2`
	if _, err := s.pool.Exec(ctx, query, globaltime.Now(), sourceID); err != nil {
		return fmt.Errorf("touch source %d: %w", sourceID, err)
	}
	return nil
}

// ListSources returns all sources, active first, newest last.
func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	const query = `
		SELECT source_id, name, type, feed_url, category,
			poll_interval_minutes, base_weight, is_active, last_polled_at
		FROM pulse.sources
		ORDER BY is_active DESC, source_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(
			&src.SourceID, &src.Name, &src.Type, &src.FeedURL, &src.Category,
			&src.PollIntervalMinutes, &src.BaseWeight, &src.IsActive, &src.LastPolledAt,
		); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
