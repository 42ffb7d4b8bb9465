package store

import (
	"sort"
	"time"
)

// Velocity is engagement gained per hour since collection: points plus
// double-weighted comments, over the item's age (floored at one hour so
// brand-new items don't divide by near zero).
func Velocity(item Item, now time.Time) float64 {
	score := 0
	if item.Score != nil {
		score = *item.Score
	}
	comments := 0
	if item.CommentsCount != nil {
		comments = *item.CommentsCount
	}

	hours := now.Sub(item.CollectedAt).Hours()
	if hours < 1 {
		hours = 1
	}
	return float64(score+2*comments) / hours
}

// RankByVelocity orders items by descending velocity, breaking ties toward
// the more recently collected item, and truncates to limit. Each returned
// item carries its computed velocity.
func RankByVelocity(items []Item, now time.Time, limit int) []Item {
	ranked := make([]Item, len(items))
	copy(ranked, items)
	for i := range ranked {
		ranked[i].Velocity = Velocity(ranked[i], now)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Velocity != ranked[j].Velocity {
			return ranked[i].Velocity > ranked[j].Velocity
		}
		return ranked[i].CollectedAt.After(ranked[j].CollectedAt)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
