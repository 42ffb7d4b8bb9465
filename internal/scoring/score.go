// Package scoring computes the 0-100 importance score attached to every
// stored item. The formulas are a fixed, auditable heuristic; any change to
// the weights is a versioned policy change, not a tuning knob.
package scoring

import (
	"math"
	"time"
)

// ReleaseScore is assigned to releases of tracked repositories; they are
// uniformly treated as high-importance.
const ReleaseScore = 70

// TrendingUpdateThreshold is the absolute star-count delta below which a
// re-sighted trending repository keeps its stored score.
const TrendingUpdateThreshold = 10

// Engagement carries the mutable interaction counters of a discussion item.
type Engagement struct {
	Points   int
	Comments int
}

// Discussion scores a discussion-site item:
//
//	2*baseWeight + min(25, 5*(points/100 + comments/50)) + recency + min(15, 5*entities)
//
// where recency decays linearly from 15 to 0 over 60 hours.
func Discussion(baseWeight int, engagement Engagement, publishedAt, now time.Time, entityCount int) int {
	score := float64(baseWeight) * 2

	engagementValue := float64(engagement.Points)/100 + float64(engagement.Comments)/50
	score += math.Min(25, engagementValue*5)

	score += recencyBonus(publishedAt, now)
	score += math.Min(15, float64(entityCount)*5)

	return clamp(score)
}

// Feed scores a feed article. Identical to Discussion minus the engagement
// term; feeds carry no interaction counters.
func Feed(baseWeight int, publishedAt, now time.Time, entityCount int) int {
	score := float64(baseWeight) * 2
	score += recencyBonus(publishedAt, now)
	score += math.Min(15, float64(entityCount)*5)

	return clamp(score)
}

// TrendingRepo scores a trending repository purely by star count.
func TrendingRepo(stars int) int {
	return clamp(30 + float64(stars)/10)
}

// ShouldRescoreTrending reports whether a re-sighted trending repository
// moved enough stars to be worth rewriting.
func ShouldRescoreTrending(storedStars, observedStars int) bool {
	delta := storedStars - observedStars
	if delta < 0 {
		delta = -delta
	}
	return delta > TrendingUpdateThreshold
}

// recencyBonus contributes up to 15 points, fading to zero at 60 hours old.
// Items published "in the future" (clock skew upstream) count as brand new.
func recencyBonus(publishedAt, now time.Time) float64 {
	hoursOld := now.Sub(publishedAt).Hours()
	if hoursOld < 0 {
		hoursOld = 0
	}
	return math.Max(0, 15-hoursOld/4)
}

func clamp(score float64) int {
	rounded := math.Round(score)
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return int(rounded)
}
