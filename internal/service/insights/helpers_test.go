package insights

import (
	"fmt"
	"time"

	"socialtrack/internal/domain/post"
)

var testNow = time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)

// postOption customises a test post
type postOption func(*post.Post)

func withType(t post.Type) postOption {
	return func(p *post.Post) { p.Type = t }
}

func withHour(hour int) postOption {
	return func(p *post.Post) { p.Time = fmt.Sprintf("%02d:15", hour) }
}

func withScore(score float64) postOption {
	return func(p *post.Post) { p.PerformanceScore = score }
}

func withWeighted(erw float64) postOption {
	return func(p *post.Post) { p.EngagementRateWeighted = erw }
}

func withEngagement(er float64) postOption {
	return func(p *post.Post) { p.EngagementRate = er }
}

func withCaption(caption string) postOption {
	return func(p *post.Post) { p.Caption = caption }
}

func withCategory(category string) postOption {
	return func(p *post.Post) { p.CaptionCategory = category }
}

func withReach(reach int) postOption {
	return func(p *post.Post) { p.Reach = reach }
}

func withFollowers(n int) postOption {
	return func(p *post.Post) { p.FollowersGained = n }
}

func withHashtags(tags ...string) postOption {
	return func(p *post.Post) { p.Hashtags = tags }
}

var postSeq int

func newPost(date string, opts ...postOption) post.Post {
	d, err := time.Parse(post.DateLayout, date)
	if err != nil {
		panic(err)
	}
	postSeq++
	p := post.Post{
		ID:        fmt.Sprintf("post-%d", postSeq),
		ProjectID: "project-1",
		Type:      post.TypeImage,
		Date:      d,
		Time:      "12:00",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func repeat(n int, date string, opts ...postOption) []post.Post {
	posts := make([]post.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, newPost(date, opts...))
	}
	return posts
}
