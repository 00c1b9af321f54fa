package insights

import (
	"fmt"
	"math"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

// Trend classification and insight thresholds, in percent
const (
	trendThreshold             = 5.0
	scoreInsightThreshold      = 10.0
	engagementInsightThreshold = 15.0
)

// summarizeMonths reduces the history to one summary per calendar month, oldest first
func summarizeMonths(posts []post.Post) []analytics.MonthSummary {
	groups := groupBy(posts, byMonth)
	months := make([]analytics.MonthSummary, 0, len(groups))
	for _, g := range groups {
		months = append(months, analytics.MonthSummary{
			Month:           g.key,
			AvgScore:        avgScore(g.posts),
			AvgEngagement:   avgWeightedEngagement(g.posts),
			FollowersGained: sumFollowers(g.posts),
			PostCount:       len(g.posts),
		})
	}
	return months
}

// AnalyzeTrends compares the two most recent months of the history.
// With fewer than two months the report is marked insufficient_data.
// A previous-month average of zero yields a change of 0 flagged as undefined.
func AnalyzeTrends(posts []post.Post) analytics.TrendReport {
	months := summarizeMonths(posts)
	if len(months) < 2 {
		return analytics.TrendReport{
			Trend:    analytics.TrendInsufficientData,
			Insights: []string{},
		}
	}

	recent := months[len(months)-1]
	previous := months[len(months)-2]

	scoreChange, scoreDefined := percentChange(previous.AvgScore, recent.AvgScore)
	engagementChange, engagementDefined := percentChange(previous.AvgEngagement, recent.AvgEngagement)

	insights := []string{}
	switch {
	case scoreChange > scoreInsightThreshold:
		insights = append(insights, fmt.Sprintf("Performance improved %.1f%% this month", scoreChange))
	case scoreChange < -scoreInsightThreshold:
		insights = append(insights, fmt.Sprintf("Performance declined %.1f%% this month", math.Abs(scoreChange)))
	}
	switch {
	case engagementChange > engagementInsightThreshold:
		insights = append(insights, fmt.Sprintf("Engagement up %.1f%% - great content strategy", engagementChange))
	case engagementChange < -engagementInsightThreshold:
		insights = append(insights, fmt.Sprintf("Engagement down %.1f%% - review content mix", math.Abs(engagementChange)))
	}

	direction := analytics.TrendStable
	switch {
	case scoreChange > trendThreshold:
		direction = analytics.TrendImproving
	case scoreChange < -trendThreshold:
		direction = analytics.TrendDeclining
	}

	return analytics.TrendReport{
		Trend:                     direction,
		GrowthRate:                round(scoreChange, 1),
		ScoreGrowth:               round(scoreChange, 1),
		EngagementGrowth:          round(engagementChange, 1),
		ScoreGrowthUndefined:      !scoreDefined,
		EngagementGrowthUndefined: !engagementDefined,
		Insights:                  insights,
		Recent:                    roundedMonth(recent),
		Previous:                  roundedMonth(previous),
	}
}

func roundedMonth(m analytics.MonthSummary) *analytics.MonthSummary {
	m.AvgScore = round(m.AvgScore, 1)
	m.AvgEngagement = round(m.AvgEngagement, 2)
	return &m
}
