// internal/domain/post/sort.go

package post

import (
	"cmp"
	"slices"
)

// SortField names a column posts can be listed by
type SortField string

const (
	SortByDate       SortField = "post_date"
	SortByEngagement SortField = "engagement_rate"
	SortByScore      SortField = "performance_score"
	SortByReach      SortField = "reach"
	SortByLikes      SortField = "likes"
)

// ParseSort reads the sort field and order of a listing. Unknown values fall back to
// the newest posts first.
func ParseSort(field, order string) (SortField, bool) {
	f := SortField(field)
	switch f {
	case SortByDate, SortByEngagement, SortByScore, SortByReach, SortByLikes:
	default:
		f = SortByDate
	}
	return f, order != "asc"
}

// SortPosts orders posts in place by field. Ties keep date, time and ID order.
func SortPosts(posts []Post, field SortField, desc bool) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		c := compareField(a, b, field)
		if c == 0 {
			c = cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.Time, b.Time), cmp.Compare(a.ID, b.ID))
		}
		if desc {
			return -c
		}
		return c
	})
}

func compareField(a, b Post, field SortField) int {
	switch field {
	case SortByEngagement:
		return cmp.Compare(a.EngagementRate, b.EngagementRate)
	case SortByScore:
		return cmp.Compare(a.PerformanceScore, b.PerformanceScore)
	case SortByReach:
		return cmp.Compare(a.Reach, b.Reach)
	case SortByLikes:
		return cmp.Compare(a.Likes, b.Likes)
	default:
		return 0
	}
}
