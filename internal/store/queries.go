package store

import (
	"context"
	"fmt"
	"time"

	"pulse.news/pulse/internal/globaltime"
)

const (
	DefaultFeedLimit     = 30
	DefaultRecentLimit   = 50
	DefaultRecentHours   = 24
	DefaultTrendingLimit = 10
	DefaultSourceLimit   = 20

	recentWindow      = 24 * time.Hour
	trendingWindow    = 6 * time.Hour
	trendingScanLimit = 100
	maxQueryLimit     = 100
)

// FeedPage is one page of ranked items. HasMore reports whether another page
// exists past the requested limit.
type FeedPage struct {
	Items   []Item
	HasMore bool
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// GetFeed returns the main ranked feed: non-duplicate items at or above
// minScore, most important first. One extra row is fetched to detect whether
// a further page exists.
func (s *Store) GetFeed(ctx context.Context, limit, minScore int) (*FeedPage, error) {
	limit = clampLimit(limit, DefaultFeedLimit)
	if minScore < 0 {
		minScore = 0
	}

	query := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.canonical_item_id IS NULL AND i.importance_score >= $1
		ORDER BY i.importance_score DESC, i.published_at DESC, i.item_id DESC
		LIMIT $2`

	items, err := s.queryItems(ctx, query, minScore, limit+1)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}

	page := &FeedPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
	}
	return page, nil
}

// GetRecent returns non-duplicate items published within the last hoursAgo
// hours, newest first.
func (s *Store) GetRecent(ctx context.Context, limit, hoursAgo int) ([]Item, error) {
	limit = clampLimit(limit, DefaultRecentLimit)
	if hoursAgo <= 0 {
		hoursAgo = DefaultRecentHours
	}
	cutoff := globaltime.Now().Add(-time.Duration(hoursAgo) * time.Hour)

	query := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.canonical_item_id IS NULL AND i.published_at >= $1
		ORDER BY i.published_at DESC, i.item_id DESC
		LIMIT $2`

	items, err := s.queryItems(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent: %w", err)
	}
	return items, nil
}

// GetTrending ranks recently collected discussions by engagement velocity.
// The candidate set is the newest collected items inside the trending window
// with a positive score; velocity is computed here, not in SQL.
func (s *Store) GetTrending(ctx context.Context, limit int) ([]Item, error) {
	limit = clampLimit(limit, DefaultTrendingLimit)
	now := globaltime.Now()
	cutoff := now.Add(-trendingWindow)

	query := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.canonical_item_id IS NULL
			AND i.collected_at >= $1
			AND i.score IS NOT NULL AND i.score > 0
		ORDER BY i.collected_at DESC, i.item_id DESC
		LIMIT $2`

	items, err := s.queryItems(ctx, query, cutoff, trendingScanLimit)
	if err != nil {
		return nil, fmt.Errorf("get trending: %w", err)
	}

	return RankByVelocity(items, now, limit), nil
}

// GetBySource returns a source's non-duplicate items, most important first.
func (s *Store) GetBySource(ctx context.Context, sourceType string, limit int) ([]Item, error) {
	limit = clampLimit(limit, DefaultSourceLimit)

	query := `SELECT ` + itemColumns + itemFrom + `
		WHERE i.canonical_item_id IS NULL AND s.type = $1
		ORDER BY i.importance_score DESC, i.published_at DESC, i.item_id DESC
		LIMIT $2`

	items, err := s.queryItems(ctx, query, sourceType, limit)
	if err != nil {
		return nil, fmt.Errorf("get items for source type %q: %w", sourceType, err)
	}
	return items, nil
}

// GetStats summarizes the corpus: totals plus per-source counts, with recent
// counts over the last 24 hours of collection.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	cutoff := globaltime.Now().Add(-recentWindow)
	stats := &Stats{}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE collected_at >= $1)
		FROM pulse.items`, cutoff,
	).Scan(&stats.TotalItems, &stats.ItemsLast24)
	if err != nil {
		return nil, fmt.Errorf("get item totals: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.source_id, s.name, s.type,
			COUNT(i.item_id),
			COUNT(i.item_id) FILTER (WHERE i.collected_at >= $1)
		FROM pulse.sources s
		LEFT JOIN pulse.items i ON i.source_id = s.source_id
		GROUP BY s.source_id, s.name, s.type
		ORDER BY COUNT(i.item_id) DESC, s.source_id ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("get per-source stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ss SourceStats
		if err := rows.Scan(&ss.SourceID, &ss.Name, &ss.Type, &ss.ItemCount, &ss.RecentCount); err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		stats.Sources = append(stats.Sources, ss)
	}
	return stats, rows.Err()
}
