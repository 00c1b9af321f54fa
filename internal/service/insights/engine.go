// internal/service/insights/engine.go

package insights

import (
	"time"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

// EngineConfig contains configuration for the analytics engine
type EngineConfig struct {
	Priorities               analytics.PriorityTable
	DashboardRecommendations int
	DashboardAlerts          int
}

// DefaultEngineConfig returns the stock engine policy
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Priorities:               analytics.DefaultPriorities(),
		DashboardRecommendations: 2,
		DashboardAlerts:          3,
	}
}

// Engine implements the analytics.Engine interface.
// It holds configuration only and is safe for concurrent use.
type Engine struct {
	config EngineConfig
}

var _ analytics.Engine = (*Engine)(nil)

// NewEngine creates a new analytics engine
func NewEngine(config EngineConfig) *Engine {
	if config.Priorities == nil {
		config.Priorities = analytics.DefaultPriorities()
	}
	return &Engine{
		config: config,
	}
}

// ComputeMetrics derives ratios and the performance score from raw counts
func (e *Engine) ComputeMetrics(counts post.RawCounts) post.Metrics {
	return ComputeMetrics(counts)
}

// ExtractHashtags returns the normalized hashtags of a caption
func (e *Engine) ExtractHashtags(caption string) []string {
	return ExtractHashtags(caption)
}

// AnalyzeTrends compares the two most recent months of the history
func (e *Engine) AnalyzeTrends(posts []post.Post) analytics.TrendReport {
	return AnalyzeTrends(posts)
}

// PredictPerformance estimates how a candidate post will perform
func (e *Engine) PredictPerformance(candidate analytics.Candidate, posts []post.Post) analytics.Prediction {
	return PredictPerformance(candidate, posts)
}

// GenerateRecommendations runs every heuristic over the history
func (e *Engine) GenerateRecommendations(posts []post.Post, now time.Time) []analytics.Recommendation {
	return GenerateRecommendations(posts, now, e.config.Priorities)
}

// CheckAlerts compares the last week against the older history
func (e *Engine) CheckAlerts(posts []post.Post, now time.Time) []analytics.Alert {
	return CheckAlerts(posts, now)
}

// BuildReport assembles the full analytics report of a window
func (e *Engine) BuildReport(w post.Window, now time.Time) analytics.Report {
	return BuildReport(w.Posts, now, e.config.Priorities)
}

// Dashboard assembles the overview of a window
func (e *Engine) Dashboard(w post.Window, now time.Time) analytics.Dashboard {
	return analytics.Dashboard{
		Stats:           Stats(w.Posts),
		Recommendations: Top(e.GenerateRecommendations(w.Posts, now), e.config.DashboardRecommendations),
		Alerts:          TopAlerts(e.CheckAlerts(w.Posts, now), e.config.DashboardAlerts),
	}
}
