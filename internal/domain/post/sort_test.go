package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		order     string
		wantField SortField
		wantDesc  bool
	}{
		{"defaults", "", "", SortByDate, true},
		{"ascending reach", "reach", "asc", SortByReach, false},
		{"descending score", "performance_score", "desc", SortByScore, true},
		{"unknown field", "caption; DROP TABLE posts", "asc", SortByDate, false},
		{"unknown order", "likes", "sideways", SortByLikes, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, desc := ParseSort(tt.field, tt.order)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestSortPosts(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }
	base := []Post{
		{ID: "a", Date: day(2), Time: "09:00", Likes: 10, Reach: 300},
		{ID: "b", Date: day(1), Time: "18:00", Likes: 30, Reach: 100},
		{ID: "c", Date: day(2), Time: "08:00", Likes: 10, Reach: 200},
	}

	tests := []struct {
		name  string
		field SortField
		desc  bool
		want  []string
	}{
		{"newest first", SortByDate, true, []string{"a", "c", "b"}},
		{"oldest first", SortByDate, false, []string{"b", "c", "a"}},
		{"most reach", SortByReach, true, []string{"a", "c", "b"}},
		{"fewest likes, ties by date", SortByLikes, false, []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := append([]Post(nil), base...)
			SortPosts(posts, tt.field, tt.desc)
			assert.Equal(t, tt.want, ids(posts))
		})
	}
}
