package insights

import (
	"cmp"
	"slices"
	"time"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

const (
	timelineDays          = 30
	monthlyTrendMonths    = 12
	minHashtagUses        = 2
	hashtagLimit          = 15
	velocityLimit         = 10
	velocityCaptionLength = 50
)

// scoreRanges are the performance distribution buckets, upper bound exclusive
var scoreRanges = []struct {
	label string
	upper float64
}{
	{"0-10", 10},
	{"10-20", 20},
	{"20-30", 30},
	{"30-40", 40},
	{"40-50", 50},
}

const openScoreRange = "50+"

// Stats summarises the window for the dashboard
func Stats(posts []post.Post) analytics.DashboardStats {
	return analytics.DashboardStats{
		TotalPosts:    len(posts),
		AvgEngagement: round(avgEngagement(posts), 1),
		TotalReach:    sumReach(posts),
		NewFollowers:  sumFollowers(posts),
	}
}

// BuildReport assembles every report section from the window
func BuildReport(posts []post.Post, now time.Time, priorities analytics.PriorityTable) analytics.Report {
	engagement, reach := timeline(posts)

	return analytics.Report{
		EngagementOverTime:         engagement,
		ReachOverTime:              reach,
		PostingTimeAnalysis:        postingTimes(posts),
		CaptionCategoryPerformance: categoryPerformance(posts),
		PerformanceDistribution:    scoreDistribution(posts),
		HashtagPerformance:         hashtagPerformance(posts),
		ContentInsights:            contentInsights(posts),
		DayOfWeekAnalysis:          weekdayAnalysis(posts),
		MonthlyTrends:              monthlyTrends(posts),
		EngagementVelocity:         engagementVelocity(posts),
		GrowthTrends:               AnalyzeTrends(posts),
		Recommendations:            GenerateRecommendations(posts, now, priorities),
	}
}

// timeline returns per-date engagement and reach for the most recent dates, oldest first
func timeline(posts []post.Post) ([]analytics.DatePoint, []analytics.DatePoint) {
	groups := groupBy(posts, byDate)
	if len(groups) > timelineDays {
		groups = groups[len(groups)-timelineDays:]
	}

	engagement := make([]analytics.DatePoint, 0, len(groups))
	reach := make([]analytics.DatePoint, 0, len(groups))
	for _, g := range groups {
		engagement = append(engagement, analytics.DatePoint{Date: g.key, Engagement: round(avgEngagement(g.posts), 2)})
		reach = append(reach, analytics.DatePoint{Date: g.key, Reach: sumReach(g.posts)})
	}
	return engagement, reach
}

func postingTimes(posts []post.Post) []analytics.HourPoint {
	groups := groupBy(posts, byHour)
	points := make([]analytics.HourPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, analytics.HourPoint{
			Hour:       g.key,
			Engagement: round(avgWeightedEngagement(g.posts), 2),
			Count:      len(g.posts),
		})
	}
	return points
}

func categoryPerformance(posts []post.Post) []analytics.CategoryPoint {
	groups := groupBy(posts, byCategory)
	points := make([]analytics.CategoryPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, analytics.CategoryPoint{
			Category: g.key,
			Score:    avgScore(g.posts),
			Count:    len(g.posts),
		})
	}
	slices.SortStableFunc(points, func(a, b analytics.CategoryPoint) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for i := range points {
		points[i].Score = round(points[i].Score, 1)
	}
	return points
}

func scoreDistribution(posts []post.Post) []analytics.ScoreBucket {
	groups := groupBy(posts, byScoreRange)
	buckets := make([]analytics.ScoreBucket, 0, len(groups))
	for _, g := range groups {
		buckets = append(buckets, analytics.ScoreBucket{Range: g.key, Count: len(g.posts)})
	}
	slices.SortStableFunc(buckets, func(a, b analytics.ScoreBucket) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return buckets
}

func byScoreRange(p post.Post) (string, bool) {
	for _, r := range scoreRanges {
		if p.PerformanceScore < r.upper {
			return r.label, true
		}
	}
	return openScoreRange, true
}

// hashtagPerformance ranks hashtags used on at least two posts by average score
func hashtagPerformance(posts []post.Post) []analytics.HashtagPoint {
	groups := groupByEach(posts, byHashtag)

	points := []analytics.HashtagPoint{}
	for _, g := range groups {
		if len(g.posts) < minHashtagUses {
			continue
		}
		points = append(points, analytics.HashtagPoint{
			Hashtag:    g.key,
			Score:      avgScore(g.posts),
			Count:      len(g.posts),
			Engagement: round(avgWeightedEngagement(g.posts), 2),
		})
	}
	slices.SortStableFunc(points, func(a, b analytics.HashtagPoint) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(points) > hashtagLimit {
		points = points[:hashtagLimit]
	}
	for i := range points {
		points[i].Score = round(points[i].Score, 1)
	}
	return points
}

func contentInsights(posts []post.Post) []analytics.ContentInsight {
	groups := groupBy(posts, byType)
	insights := make([]analytics.ContentInsight, 0, len(groups))
	for _, g := range groups {
		insights = append(insights, analytics.ContentInsight{
			Type:       post.Type(g.key),
			Score:      avgScore(g.posts),
			Engagement: round(avgEngagement(g.posts), 2),
			Reach:      int(avgReach(g.posts)),
			Count:      len(g.posts),
		})
	}
	slices.SortStableFunc(insights, func(a, b analytics.ContentInsight) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for i := range insights {
		insights[i].Score = round(insights[i].Score, 1)
	}
	return insights
}

func weekdayAnalysis(posts []post.Post) []analytics.WeekdayPoint {
	groups := groupBy(posts, byWeekday)
	points := make([]analytics.WeekdayPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, analytics.WeekdayPoint{
			Day:        time.Weekday(g.key).String(),
			Engagement: round(avgWeightedEngagement(g.posts), 2),
			Score:      round(avgScore(g.posts), 1),
			Count:      len(g.posts),
		})
	}
	return points
}

func monthlyTrends(posts []post.Post) []analytics.MonthSummary {
	months := summarizeMonths(posts)
	if len(months) > monthlyTrendMonths {
		months = months[len(months)-monthlyTrendMonths:]
	}
	for i := range months {
		months[i] = *roundedMonth(months[i])
	}
	return months
}

// engagementVelocity ranks posts by weighted engagement scaled by reach
func engagementVelocity(posts []post.Post) []analytics.VelocityPoint {
	points := []analytics.VelocityPoint{}
	for _, p := range posts {
		if p.EngagementRateWeighted <= 0 {
			continue
		}
		points = append(points, analytics.VelocityPoint{
			ID:         p.ID,
			Caption:    preview(p.Caption, velocityCaptionLength),
			Date:       p.Date.Format(post.DateLayout),
			Type:       p.Type,
			Engagement: round(p.EngagementRateWeighted, 2),
			Score:      round(p.PerformanceScore, 1),
			Velocity:   p.EngagementRateWeighted * float64(p.Reach) / 1000,
		})
	}
	slices.SortStableFunc(points, func(a, b analytics.VelocityPoint) int {
		return cmp.Compare(b.Velocity, a.Velocity)
	})
	if len(points) > velocityLimit {
		points = points[:velocityLimit]
	}
	for i := range points {
		points[i].Velocity = round(points[i].Velocity, 1)
	}
	return points
}
