package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

func TestCheckAlerts_NoBaseline(t *testing.T) {
	tests := []struct {
		name  string
		posts []post.Post
	}{
		{"empty history", nil},
		{"only recent posts", repeat(3, "2026-03-16", withScore(1))},
		{"zero baseline", concat(
			repeat(2, "2026-02-01", withScore(0)),
			repeat(1, "2026-03-16", withScore(50)),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := CheckAlerts(tt.posts, testNow)
			assert.NotNil(t, alerts)
			assert.Empty(t, alerts)
		})
	}
}

func TestCheckAlerts_RecentWindowBoundary(t *testing.T) {
	// the window starts at midnight seven days before now
	posts := []post.Post{
		newPost("2026-03-10", withScore(10)),
		newPost("2026-03-11", withScore(100)),
	}

	alerts := CheckAlerts(posts, testNow)

	require.Len(t, alerts, 2)
	assert.Equal(t, analytics.AlertOutperforming, alerts[0].Type)
	assert.Equal(t, posts[1].ID, alerts[0].PostID)
	assert.Equal(t, "2026-03-11", alerts[0].Date)
	assert.Equal(t, "Low posting frequency", alerts[1].Title)
}

func TestCheckAlerts_NoRecentPosts(t *testing.T) {
	alerts := CheckAlerts(repeat(4, "2026-02-20", withScore(12)), testNow)

	assert.Equal(t, []analytics.Alert{{
		Type:        analytics.AlertFrequency,
		Priority:    analytics.PriorityHigh,
		Title:       "No posts this week",
		Description: "Consider posting to maintain audience engagement",
		Period:      "2026-11",
	}}, alerts)
}

func TestCheckAlerts_PerformanceAlerts(t *testing.T) {
	history := repeat(4, "2026-02-20", withScore(20))
	under := newPost("2026-03-12", withType(post.TypeReel), withScore(13.9), withCaption("Morning routine"))
	normal := newPost("2026-03-14", withScore(20))
	over := newPost("2026-03-17", withType(post.TypeCarousel), withScore(30.5))
	edgeLow := newPost("2026-03-15", withScore(14))
	edgeHigh := newPost("2026-03-15", withScore(30))

	alerts := CheckAlerts(concat(history, []post.Post{under, normal, over, edgeLow, edgeHigh}), testNow)

	require.Len(t, alerts, 2)
	assert.Equal(t, analytics.Alert{
		Type:           analytics.AlertOutperforming,
		Priority:       analytics.PriorityLow,
		PostID:         over.ID,
		Title:          "Carousel is a hit!",
		Description:    "Score: 30.5 (avg: 20.0)",
		Date:           "2026-03-17",
		CaptionPreview: "No caption",
	}, alerts[0])
	assert.Equal(t, analytics.Alert{
		Type:           analytics.AlertUnderperforming,
		Priority:       analytics.PriorityMedium,
		PostID:         under.ID,
		Title:          "Reel underperforming",
		Description:    "Score: 13.9 (avg: 20.0)",
		Date:           "2026-03-12",
		CaptionPreview: "Morning routine",
	}, alerts[1])
}

func TestCheckAlerts_SingleRecentPost(t *testing.T) {
	alerts := CheckAlerts(concat(
		repeat(3, "2026-02-20", withScore(10)),
		repeat(1, "2026-03-16", withScore(2)),
	), testNow)

	require.Len(t, alerts, 2)
	assert.Equal(t, analytics.AlertUnderperforming, alerts[0].Type)
	assert.Equal(t, analytics.Alert{
		Type:        analytics.AlertFrequency,
		Priority:    analytics.PriorityMedium,
		Title:       "Low posting frequency",
		Description: "Only 1 post this week - consider increasing frequency",
		Period:      "2026-11",
	}, alerts[1])
}

func TestCaptionPreview(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    string
	}{
		{"missing", "", "No caption"},
		{"short", "Sunset", "Sunset"},
		{"exactly forty", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"forty one", strings.Repeat("a", 41), strings.Repeat("a", 40) + "..."},
		{"multibyte", strings.Repeat("é", 41), strings.Repeat("é", 40) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, captionPreview(tt.caption))
		})
	}
}

func TestAlertKey(t *testing.T) {
	perPost := analytics.Alert{Type: analytics.AlertUnderperforming, PostID: "p1", Title: "Reel underperforming"}
	frequency := analytics.Alert{Type: analytics.AlertFrequency, Title: "No posts this week", Period: "2026-11"}

	assert.Equal(t, "underperforming:p1", perPost.Key())
	assert.Equal(t, "frequency:No posts this week:2026-11", frequency.Key())
}

func TestCheckAlerts_FrequencyKeyFollowsWeek(t *testing.T) {
	history := repeat(4, "2026-02-20", withScore(12))

	thisWeek := CheckAlerts(history, testNow)
	sameWeek := CheckAlerts(history, testNow.AddDate(0, 0, 2))
	nextWeek := CheckAlerts(history, testNow.AddDate(0, 0, 7))

	require.Len(t, thisWeek, 1)
	require.Len(t, sameWeek, 1)
	require.Len(t, nextWeek, 1)
	assert.Equal(t, thisWeek[0].Key(), sameWeek[0].Key())
	assert.NotEqual(t, thisWeek[0].Key(), nextWeek[0].Key())
	assert.Equal(t, "2026-12", nextWeek[0].Period)
}

func TestTopAlerts(t *testing.T) {
	alerts := []analytics.Alert{{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"}}

	assert.Equal(t, alerts[:3], TopAlerts(alerts, 3))
	assert.Equal(t, alerts, TopAlerts(alerts, 5))
}
