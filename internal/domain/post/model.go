// internal/domain/post/model.go

package post

import (
	"strconv"
	"strings"
	"time"
)

// Type identifies the format of a post
type Type string

const (
	TypeImage    Type = "Image"
	TypeCarousel Type = "Carousel"
	TypeReel     Type = "Reel"
	TypeStory    Type = "Story"
)

// Types lists every supported post type
var Types = []Type{TypeImage, TypeCarousel, TypeReel, TypeStory}

// Valid reports whether t is one of the supported post types
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format used on the wire and in storage
const DateLayout = "2006-01-02"

// RawCounts holds the engagement counts a user logs for a post
type RawCounts struct {
	Likes           int
	Comments        int
	Shares          int
	Saves           int
	Reach           int
	FollowersGained int
	ReelLength      int
	AvgViewDuration float64
}

// Metrics holds the values derived from RawCounts when a post is created or edited
type Metrics struct {
	EngagementRate         float64 `json:"engagement_rate"`
	EngagementRateWeighted float64 `json:"engagement_rate_weighted"`
	AVDRatio               float64 `json:"avd_ratio"`
	FollowerGainRate       float64 `json:"follower_gain_rate"`
	PerformanceScore       float64 `json:"performance_score"`
}

// Post represents a logged social media post
type Post struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Type            Type      `json:"post_type"`
	Date            time.Time `json:"post_date"`
	Time            string    `json:"post_time"`
	Caption         string    `json:"caption,omitempty"`
	CaptionCategory string    `json:"caption_category,omitempty"`
	Likes           int       `json:"likes"`
	Shares          int       `json:"shares"`
	Comments        int       `json:"comments"`
	Saves           int       `json:"saves"`
	Reach           int       `json:"reach"`
	FollowersGained int       `json:"followers_gained"`
	ReelLength      int       `json:"reel_length,omitempty"`
	WatchTime       int       `json:"watch_time,omitempty"`
	AvgViewDuration float64   `json:"avg_view_duration,omitempty"`
	Hashtags        []string  `json:"hashtags,omitempty"`
	Metrics
}

// Counts returns the raw inputs of the derived metrics
func (p Post) Counts() RawCounts {
	return RawCounts{
		Likes:           p.Likes,
		Comments:        p.Comments,
		Shares:          p.Shares,
		Saves:           p.Saves,
		Reach:           p.Reach,
		FollowersGained: p.FollowersGained,
		ReelLength:      p.ReelLength,
		AvgViewDuration: p.AvgViewDuration,
	}
}

// Hour returns the posting hour (0-23) taken from the leading digits of Time.
// A malformed time yields 0.
func (p Post) Hour() int {
	clock := strings.TrimSpace(p.Time)
	if t, err := time.Parse("15:04", clock); err == nil {
		return t.Hour()
	}
	if i := strings.IndexByte(clock, ':'); i > 0 {
		clock = clock[:i]
	}
	hour, err := strconv.Atoi(clock)
	if err != nil || hour < 0 || hour > 23 {
		return 0
	}
	return hour
}

// Day returns the post date truncated to a calendar day in UTC
func (p Post) Day() time.Time {
	y, m, d := p.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Window is the owner-scoped set of posts an analysis runs over.
// It is rebuilt for every request and never stored.
type Window struct {
	OwnerID    string
	ProjectIDs []string
	Posts      []Post
}

// Project groups posts under an owner
type Project struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"project_name"`
	Description string `json:"description,omitempty"`
}
