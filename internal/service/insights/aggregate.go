package insights

import (
	"cmp"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"socialtrack/internal/domain/post"
)

// group is one bucket of a group-by pass
type group[K cmp.Ordered] struct {
	key   K
	posts []post.Post
}

// groupBy buckets posts by key, dropping posts for which key reports false.
// Buckets come back sorted by key so callers get a stable order.
func groupBy[K cmp.Ordered](posts []post.Post, key func(post.Post) (K, bool)) []group[K] {
	return groupByEach(posts, func(p post.Post) []K {
		if k, ok := key(p); ok {
			return []K{k}
		}
		return nil
	})
}

// groupByEach places every post in each bucket named by keys
func groupByEach[K cmp.Ordered](posts []post.Post, keys func(post.Post) []K) []group[K] {
	index := make(map[K]int)
	var groups []group[K]

	for _, p := range posts {
		for _, k := range keys(p) {
			i, exists := index[k]
			if !exists {
				i = len(groups)
				index[k] = i
				groups = append(groups, group[K]{key: k})
			}
			groups[i].posts = append(groups[i].posts, p)
		}
	}

	slices.SortFunc(groups, func(a, b group[K]) int {
		return cmp.Compare(a.key, b.key)
	})

	return groups
}

// Grouping keys

func byMonth(p post.Post) (string, bool) {
	return p.Date.Format("2006-01"), true
}

func byDate(p post.Post) (string, bool) {
	return p.Date.Format(post.DateLayout), true
}

func byHour(p post.Post) (int, bool) {
	return p.Hour(), true
}

func byType(p post.Post) (string, bool) {
	return string(p.Type), true
}

func byCategory(p post.Post) (string, bool) {
	return p.CaptionCategory, p.CaptionCategory != ""
}

func byHashtag(p post.Post) []string {
	return p.Hashtags
}

func byWeekday(p post.Post) (int, bool) {
	return int(p.Date.Weekday()), true
}

// byWeek keys posts by year and Monday-based week number, where days before the
// first Monday of the year fall into week 00.
func byWeek(p post.Post) (string, bool) {
	return weekKey(p.Date), true
}

func weekKey(t time.Time) string {
	yday := t.YearDay() - 1
	mondayBased := (int(t.Weekday()) + 6) % 7
	week := (yday + 7 - mondayBased) / 7
	return fmt.Sprintf("%04d-%02d", t.Year(), week)
}

// Caption length buckets
const (
	CaptionShort  = "Short"
	CaptionMedium = "Medium"
	CaptionLong   = "Long"
)

const (
	shortCaptionLimit  = 50
	mediumCaptionLimit = 150
)

// byCaptionLength buckets posts by caption character count. A post without a caption
// has length 0 and lands in the Short bucket.
// The bucket names double as the key, so the sort order is alphabetical.
func byCaptionLength(p post.Post) (string, bool) {
	return captionBucket(p.Caption), true
}

func captionBucket(caption string) string {
	n := utf8.RuneCountInString(caption)
	switch {
	case n < shortCaptionLimit:
		return CaptionShort
	case n < mediumCaptionLimit:
		return CaptionMedium
	default:
		return CaptionLong
	}
}

// Reductions

func avgScore(posts []post.Post) float64 {
	return mean(posts, func(p post.Post) float64 { return p.PerformanceScore })
}

func avgWeightedEngagement(posts []post.Post) float64 {
	return mean(posts, func(p post.Post) float64 { return p.EngagementRateWeighted })
}

func avgEngagement(posts []post.Post) float64 {
	return mean(posts, func(p post.Post) float64 { return p.EngagementRate })
}

func avgReach(posts []post.Post) float64 {
	return mean(posts, func(p post.Post) float64 { return float64(p.Reach) })
}

func sumFollowers(posts []post.Post) int {
	total := 0
	for _, p := range posts {
		total += p.FollowersGained
	}
	return total
}

func sumReach(posts []post.Post) int {
	total := 0
	for _, p := range posts {
		total += p.Reach
	}
	return total
}

func mean(posts []post.Post, value func(post.Post) float64) float64 {
	if len(posts) == 0 {
		return 0
	}
	var total float64
	for _, p := range posts {
		total += value(p)
	}
	return total / float64(len(posts))
}

// percentChange returns 100*(current-previous)/previous.
// The second result is false when previous is zero and the change is undefined.
func percentChange(previous, current float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current - previous) / previous * 100, true
}

// preview shortens text to limit characters, appending "..." when it was cut
func preview(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
