package analytics

import (
	"time"

	"socialtrack/internal/domain/post"
)

// Priority ranks recommendations and alerts
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities from most to least urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// TrendDirection classifies month-over-month performance
type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendDeclining        TrendDirection = "declining"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// MonthSummary aggregates the posts of one calendar month
type MonthSummary struct {
	Month           string  `json:"month"`
	AvgScore        float64 `json:"score"`
	AvgEngagement   float64 `json:"engagement"`
	FollowersGained int     `json:"followers"`
	PostCount       int     `json:"count"`
}

// TrendReport describes growth between the two most recent months
type TrendReport struct {
	Trend                     TrendDirection `json:"trend"`
	GrowthRate                float64        `json:"growth_rate"`
	ScoreGrowth               float64        `json:"score_growth"`
	EngagementGrowth          float64        `json:"engagement_growth"`
	ScoreGrowthUndefined      bool           `json:"score_growth_undefined,omitempty"`
	EngagementGrowthUndefined bool           `json:"engagement_growth_undefined,omitempty"`
	Insights                  []string       `json:"insights"`
	Recent                    *MonthSummary  `json:"recent,omitempty"`
	Previous                  *MonthSummary  `json:"previous,omitempty"`
}

// Candidate describes a post that has not been published yet
type Candidate struct {
	Type            post.Type `json:"type"`
	Hour            int       `json:"hour"`
	CaptionCategory string    `json:"category"`
}

// Prediction is the expected performance of a Candidate
type Prediction struct {
	PredictedScore      float64 `json:"predicted_score"`
	PredictedEngagement float64 `json:"predicted_engagement"`
	Confidence          int     `json:"confidence"`
	SimilarPosts        int     `json:"similar_posts"`
}

// Heuristic names a recommendation rule
type Heuristic string

const (
	HeuristicTiming            Heuristic = "timing"
	HeuristicContent           Heuristic = "content"
	HeuristicCaption           Heuristic = "caption"
	HeuristicFrequencyIncrease Heuristic = "frequency_increase"
	HeuristicFrequencyReduce   Heuristic = "frequency_reduce"
)

// PriorityTable assigns a fixed priority to every heuristic
type PriorityTable map[Heuristic]Priority

// DefaultPriorities is the stock heuristic policy
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		HeuristicTiming:            PriorityHigh,
		HeuristicContent:           PriorityMedium,
		HeuristicCaption:           PriorityLow,
		HeuristicFrequencyIncrease: PriorityMedium,
		HeuristicFrequencyReduce:   PriorityLow,
	}
}

// Of returns the priority for h, falling back to the default table
func (t PriorityTable) Of(h Heuristic) Priority {
	if p, ok := t[h]; ok {
		return p
	}
	return DefaultPriorities()[h]
}

// Recommendation is a piece of advice derived from the post history
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// AlertType classifies an alert
type AlertType string

const (
	AlertUnderperforming AlertType = "underperforming"
	AlertOutperforming   AlertType = "outperforming"
	AlertFrequency       AlertType = "frequency"
)

// Alert flags a recent post or posting pattern that needs attention
type Alert struct {
	Type           AlertType `json:"type"`
	Priority       Priority  `json:"priority"`
	PostID         string    `json:"post_id,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Date           string    `json:"date,omitempty"`
	CaptionPreview string    `json:"caption_preview,omitempty"`
	// Period is the evaluation week of alerts about a posting pattern
	Period string `json:"period,omitempty"`
}

// Key identifies an alert across repeated evaluations. Pattern alerts are scoped to their week.
func (a Alert) Key() string {
	if a.PostID == "" {
		return string(a.Type) + ":" + a.Title + ":" + a.Period
	}
	return string(a.Type) + ":" + a.PostID
}

// DashboardStats summarises the whole window
type DashboardStats struct {
	TotalPosts    int     `json:"total_posts"`
	AvgEngagement float64 `json:"avg_engagement"`
	TotalReach    int     `json:"total_reach"`
	NewFollowers  int     `json:"new_followers"`
}

// Dashboard is the quick overview shown on the landing page
type Dashboard struct {
	Stats           DashboardStats   `json:"stats"`
	Recommendations []Recommendation `json:"recommendations"`
	Alerts          []Alert          `json:"alerts"`
}

// DatePoint is a per-day aggregate
type DatePoint struct {
	Date       string  `json:"date"`
	Engagement float64 `json:"engagement"`
	Reach      int     `json:"reach"`
}

// HourPoint is a per-hour aggregate
type HourPoint struct {
	Hour       int     `json:"hour"`
	Engagement float64 `json:"engagement"`
	Count      int     `json:"count"`
}

// CategoryPoint is a per-caption-category aggregate
type CategoryPoint struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Count    int     `json:"count"`
}

// ScoreBucket counts posts within a performance score range
type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// HashtagPoint is a per-hashtag aggregate
type HashtagPoint struct {
	Hashtag    string  `json:"hashtag"`
	Score      float64 `json:"score"`
	Count      int     `json:"count"`
	Engagement float64 `json:"engagement"`
}

// ContentInsight is a per-post-type aggregate
type ContentInsight struct {
	Type       post.Type `json:"type"`
	Score      float64   `json:"score"`
	Engagement float64   `json:"engagement"`
	Reach      int       `json:"reach"`
	Count      int       `json:"count"`
}

// WeekdayPoint is a per-day-of-week aggregate
type WeekdayPoint struct {
	Day        string  `json:"day"`
	Engagement float64 `json:"engagement"`
	Score      float64 `json:"score"`
	Count      int     `json:"count"`
}

// VelocityPoint ranks a post by how much engaged reach it gathered
type VelocityPoint struct {
	ID         string    `json:"id"`
	Caption    string    `json:"caption"`
	Date       string    `json:"date"`
	Type       post.Type `json:"type"`
	Engagement float64   `json:"engagement"`
	Score      float64   `json:"score"`
	Velocity   float64   `json:"velocity"`
}

// Report is the full analytics view of a window
type Report struct {
	EngagementOverTime         []DatePoint      `json:"engagement_over_time"`
	ReachOverTime              []DatePoint      `json:"reach_over_time"`
	PostingTimeAnalysis        []HourPoint      `json:"posting_time_analysis"`
	CaptionCategoryPerformance []CategoryPoint  `json:"caption_category_performance"`
	PerformanceDistribution    []ScoreBucket    `json:"performance_distribution"`
	HashtagPerformance         []HashtagPoint   `json:"hashtag_performance"`
	ContentInsights            []ContentInsight `json:"content_insights"`
	DayOfWeekAnalysis          []WeekdayPoint   `json:"day_of_week_analysis"`
	MonthlyTrends              []MonthSummary   `json:"monthly_trends"`
	EngagementVelocity         []VelocityPoint  `json:"engagement_velocity"`
	GrowthTrends               TrendReport      `json:"growth_trends"`
	Recommendations            []Recommendation `json:"recommendations"`
}

// AlertEvent is the message published when the monitor raises an alert
type AlertEvent struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"owner_id"`
	RaisedAt time.Time `json:"raised_at"`
	Alert    Alert     `json:"alert"`
}

// AlertSubject is the event bus subject carrying an owner's alert events
func AlertSubject(topic, ownerID string) string {
	return topic + "." + ownerID + ".raised"
}
