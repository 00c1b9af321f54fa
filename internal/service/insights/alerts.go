package insights

import (
	"fmt"
	"slices"
	"time"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

const (
	recentWindowDays       = 7
	underperformingRatio   = 0.7
	outperformingRatio     = 1.5
	captionPreviewLength   = 40
	missingCaptionPreview  = "No caption"
	lowFrequencyPostsLimit = 1
)

// CheckAlerts compares the posts of the last seven days (relative to now) with the
// average score of everything older. Without an older baseline no alerts are raised.
func CheckAlerts(posts []post.Post, now time.Time) []analytics.Alert {
	alerts := []analytics.Alert{}

	cutoff := startOfDay(now).AddDate(0, 0, -recentWindowDays)

	var recent, historical []post.Post
	for _, p := range posts {
		if p.Day().Before(cutoff) {
			historical = append(historical, p)
		} else {
			recent = append(recent, p)
		}
	}

	baseline := avgScore(historical)
	if len(historical) == 0 || baseline == 0 {
		return alerts
	}

	// newest first, keeping input order for posts on the same day
	slices.SortStableFunc(recent, func(a, b post.Post) int {
		return b.Day().Compare(a.Day())
	})

	for _, p := range recent {
		switch {
		case p.PerformanceScore < baseline*underperformingRatio:
			alerts = append(alerts, postAlert(p, baseline, analytics.AlertUnderperforming, analytics.PriorityMedium,
				fmt.Sprintf("%s underperforming", p.Type)))
		case p.PerformanceScore > baseline*outperformingRatio:
			alerts = append(alerts, postAlert(p, baseline, analytics.AlertOutperforming, analytics.PriorityLow,
				fmt.Sprintf("%s is a hit!", p.Type)))
		}
	}

	switch len(recent) {
	case 0:
		alerts = append(alerts, analytics.Alert{
			Type:        analytics.AlertFrequency,
			Priority:    analytics.PriorityHigh,
			Title:       "No posts this week",
			Period:      weekKey(now),
			Description: "Consider posting to maintain audience engagement",
		})
	case lowFrequencyPostsLimit:
		alerts = append(alerts, analytics.Alert{
			Type:        analytics.AlertFrequency,
			Priority:    analytics.PriorityMedium,
			Title:       "Low posting frequency",
			Period:      weekKey(now),
			Description: "Only 1 post this week - consider increasing frequency",
		})
	}

	return alerts
}

func postAlert(p post.Post, baseline float64, kind analytics.AlertType, priority analytics.Priority, title string) analytics.Alert {
	return analytics.Alert{
		Type:           kind,
		Priority:       priority,
		PostID:         p.ID,
		Title:          title,
		Description:    fmt.Sprintf("Score: %.1f (avg: %.1f)", p.PerformanceScore, baseline),
		Date:           p.Date.Format(post.DateLayout),
		CaptionPreview: captionPreview(p.Caption),
	}
}

// captionPreview shortens a caption for alert display
func captionPreview(caption string) string {
	if caption == "" {
		return missingCaptionPreview
	}
	return preview(caption, captionPreviewLength)
}

// TopAlerts returns at most n alerts
func TopAlerts(alerts []analytics.Alert, n int) []analytics.Alert {
	if n < 0 || n >= len(alerts) {
		return alerts
	}
	return alerts[:n]
}
