// internal/domain/analytics/engine.go

package analytics

import (
	"context"
	"time"

	"socialtrack/internal/domain/post"
)

// Engine defines the analytics operations available to callers.
// Every method is a pure function of its arguments.
type Engine interface {
	// ComputeMetrics derives ratios and the performance score from raw counts
	ComputeMetrics(counts post.RawCounts) post.Metrics

	// ExtractHashtags returns the normalized hashtags of a caption
	ExtractHashtags(caption string) []string

	// AnalyzeTrends compares the two most recent months of the history
	AnalyzeTrends(posts []post.Post) TrendReport

	// PredictPerformance estimates how a candidate post will perform
	PredictPerformance(candidate Candidate, posts []post.Post) Prediction

	// GenerateRecommendations runs every heuristic over the history
	GenerateRecommendations(posts []post.Post, now time.Time) []Recommendation

	// CheckAlerts compares the last week against the older history
	CheckAlerts(posts []post.Post, now time.Time) []Alert

	// BuildReport assembles the full analytics report of a window
	BuildReport(w post.Window, now time.Time) Report

	// Dashboard assembles the overview of a window
	Dashboard(w post.Window, now time.Time) Dashboard
}

// Monitor defines the background alert scanner
type Monitor interface {
	// Start begins periodic alert scanning
	Start(ctx context.Context) error

	// Stop gracefully stops scanning
	Stop(ctx context.Context) error

	// RegisterAlertHandler registers a callback for newly raised alerts
	RegisterAlertHandler(handler func(ownerID string, alert Alert) error) error
}
