package insights

import (
	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
)

const (
	minSimilarPosts    = 3
	baseConfidence     = 50
	confidencePerPost  = 5
	maxConfidence      = 95
	fallbackConfidence = 30

	// Cold-start priors for an account without history
	defaultPredictedScore      = 20.0
	defaultPredictedEngagement = 5.0
)

// PredictPerformance estimates a candidate's score and weighted engagement from posts
// that share its type, hour and caption category. With fewer than three such posts it
// falls back to the average of the whole history at low confidence.
func PredictPerformance(c analytics.Candidate, posts []post.Post) analytics.Prediction {
	var similar []post.Post
	for _, p := range posts {
		if p.Type == c.Type && p.Hour() == c.Hour && p.CaptionCategory == c.CaptionCategory {
			similar = append(similar, p)
		}
	}

	if len(similar) >= minSimilarPosts {
		return analytics.Prediction{
			PredictedScore:      round(avgScore(similar), 1),
			PredictedEngagement: round(avgWeightedEngagement(similar), 2),
			Confidence:          min(maxConfidence, baseConfidence+confidencePerPost*len(similar)),
			SimilarPosts:        len(similar),
		}
	}

	score, engagement := defaultPredictedScore, defaultPredictedEngagement
	if len(posts) > 0 {
		score = avgScore(posts)
		engagement = avgWeightedEngagement(posts)
	}

	return analytics.Prediction{
		PredictedScore:      round(score, 1),
		PredictedEngagement: round(engagement, 2),
		Confidence:          fallbackConfidence,
		SimilarPosts:        len(similar),
	}
}
