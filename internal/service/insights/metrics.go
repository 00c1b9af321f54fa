package insights

import (
	"math"

	"socialtrack/internal/domain/post"
)

// Performance score weights
const (
	weightEngagement   = 0.5
	weightRetention    = 0.3
	weightFollowerGain = 0.2
)

// ComputeMetrics derives the engagement ratios and the composite performance score.
// Ratios over reach or reel length are 0 when the denominator is not positive.
func ComputeMetrics(c post.RawCounts) post.Metrics {
	var engagement, weighted, followerGain, avd float64

	if c.Reach > 0 {
		reach := float64(c.Reach)
		engagement = float64(c.Likes+c.Comments+c.Shares+c.Saves) / reach * 100
		weighted = float64(c.Likes+c.Comments+2*c.Shares+2*c.Saves) / reach * 100
		followerGain = float64(c.FollowersGained) / reach * 100
	}

	if c.ReelLength > 0 {
		avd = c.AvgViewDuration / float64(c.ReelLength) * 100
	}

	score := weighted*weightEngagement + avd*weightRetention + followerGain*weightFollowerGain

	return post.Metrics{
		EngagementRate:         round(engagement, 2),
		EngagementRateWeighted: round(weighted, 2),
		AVDRatio:               round(avd, 2),
		FollowerGainRate:       round(followerGain, 2),
		PerformanceScore:       round(score, 2),
	}
}

// round rounds v half away from zero to the given number of decimals
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
