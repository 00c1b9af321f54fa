package insights

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

const (
	minPostsPerHour        = 2
	contentAdvantage       = 1.2
	minCaptionSamples      = 3
	frequencyLookbackWeeks = 8
	frequencySampleWeeks   = 4
	minFrequencyWeeks      = 3
	minPostsPerWeek        = 3.0
	maxPostsPerWeek        = 7.0
)

// heuristic produces at most one recommendation
type heuristic func(posts []post.Post, now time.Time, priorities analytics.PriorityTable) *analytics.Recommendation

var heuristics = []heuristic{
	recommendTiming,
	recommendContentType,
	recommendCaptionLength,
	recommendFrequency,
}

// GenerateRecommendations runs every heuristic over the history independently and
// returns the recommendations they produced, in heuristic order.
func GenerateRecommendations(posts []post.Post, now time.Time, priorities analytics.PriorityTable) []analytics.Recommendation {
	recommendations := []analytics.Recommendation{}
	for _, h := range heuristics {
		if r := h(posts, now, priorities); r != nil {
			recommendations = append(recommendations, *r)
		}
	}
	return recommendations
}

// recommendTiming picks the posting hour with the best average weighted engagement
// among hours with at least two posts.
func recommendTiming(posts []post.Post, _ time.Time, priorities analytics.PriorityTable) *analytics.Recommendation {
	var best *group[int]
	var bestEngagement float64

	for _, g := range groupBy(posts, byHour) {
		if len(g.posts) < minPostsPerHour {
			continue
		}
		engagement := avgWeightedEngagement(g.posts)
		if best == nil || engagement > bestEngagement {
			best, bestEngagement = &g, engagement
		}
	}
	if best == nil {
		return nil
	}

	return &analytics.Recommendation{
		Type:        string(analytics.HeuristicTiming),
		Priority:    priorities.Of(analytics.HeuristicTiming),
		Title:       fmt.Sprintf("Post at %d:00 for %.1f%% engagement", best.key, bestEngagement),
		Description: fmt.Sprintf("Your best performing time slot based on %d posts", len(best.posts)),
	}
}

// recommendContentType suggests the best post type when it beats the worst one by at least 20%.
func recommendContentType(posts []post.Post, _ time.Time, priorities analytics.PriorityTable) *analytics.Recommendation {
	type typeScore struct {
		name  string
		score float64
	}

	groups := groupBy(posts, byType)
	if len(groups) < 2 {
		return nil
	}

	scores := make([]typeScore, 0, len(groups))
	for _, g := range groups {
		scores = append(scores, typeScore{name: g.key, score: avgScore(g.posts)})
	}
	slices.SortStableFunc(scores, func(a, b typeScore) int {
		return cmp.Compare(b.score, a.score)
	})

	best, worst := scores[0], scores[len(scores)-1]
	if best.score <= worst.score || best.score < worst.score*contentAdvantage {
		return nil
	}

	return &analytics.Recommendation{
		Type:        string(analytics.HeuristicContent),
		Priority:    priorities.Of(analytics.HeuristicContent),
		Title:       fmt.Sprintf("Focus more on %s content", best.name),
		Description: fmt.Sprintf("%s posts score %.1f vs %.1f for %s", best.name, best.score, worst.score, worst.name),
	}
}

// recommendCaptionLength reports the caption length bucket with the best weighted
// engagement, provided that bucket holds at least three posts.
func recommendCaptionLength(posts []post.Post, _ time.Time, priorities analytics.PriorityTable) *analytics.Recommendation {
	var best *group[string]
	var bestEngagement float64

	for _, g := range groupBy(posts, byCaptionLength) {
		engagement := avgWeightedEngagement(g.posts)
		if best == nil || engagement > bestEngagement {
			best, bestEngagement = &g, engagement
		}
	}
	if best == nil || len(best.posts) < minCaptionSamples {
		return nil
	}

	return &analytics.Recommendation{
		Type:        string(analytics.HeuristicCaption),
		Priority:    priorities.Of(analytics.HeuristicCaption),
		Title:       fmt.Sprintf("%s captions perform best", best.key),
		Description: fmt.Sprintf("%.1f%% engagement with %s captions", bestEngagement, strings.ToLower(best.key)),
	}
}

// recommendFrequency averages posts per week over the most recent active weeks of the
// trailing eight weeks and flags posting too rarely or too often.
func recommendFrequency(posts []post.Post, now time.Time, priorities analytics.PriorityTable) *analytics.Recommendation {
	since := startOfDay(now).AddDate(0, 0, -7*frequencyLookbackWeeks)

	var window []post.Post
	for _, p := range posts {
		if !p.Day().Before(since) {
			window = append(window, p)
		}
	}

	weeks := groupBy(window, byWeek)
	slices.Reverse(weeks)
	if len(weeks) > frequencySampleWeeks {
		weeks = weeks[:frequencySampleWeeks]
	}
	if len(weeks) < minFrequencyWeeks {
		return nil
	}

	total := 0
	for _, w := range weeks {
		total += len(w.posts)
	}
	perWeek := float64(total) / float64(len(weeks))

	switch {
	case perWeek < minPostsPerWeek:
		return &analytics.Recommendation{
			Type:        "frequency",
			Priority:    priorities.Of(analytics.HeuristicFrequencyIncrease),
			Title:       "Consider posting more frequently",
			Description: fmt.Sprintf("Currently averaging %.1f posts per week. 3-5 posts weekly typically improve reach", perWeek),
		}
	case perWeek > maxPostsPerWeek:
		return &analytics.Recommendation{
			Type:        "frequency",
			Priority:    priorities.Of(analytics.HeuristicFrequencyReduce),
			Title:       "Quality over quantity",
			Description: fmt.Sprintf("Posting %.1f times per week. Focus on fewer, higher-quality posts", perWeek),
		}
	default:
		return nil
	}
}

// Top returns at most n recommendations
func Top(recommendations []analytics.Recommendation, n int) []analytics.Recommendation {
	if n < 0 || n >= len(recommendations) {
		return recommendations
	}
	return recommendations[:n]
}

// FilterByPriority keeps the recommendations with the given priority
func FilterByPriority(recommendations []analytics.Recommendation, priority analytics.Priority) []analytics.Recommendation {
	filtered := []analytics.Recommendation{}
	for _, r := range recommendations {
		if r.Priority == priority {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
