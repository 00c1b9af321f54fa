// internal/adapter/storage/post_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"socialtrack/internal/domain/post"
)

// PostStore implements storage for posts and their hashtags
type PostStore struct {
	db *pgxpool.Pool
}

var _ post.Store = (*PostStore)(nil)

// NewPostStore creates a new post store
func NewPostStore(db *pgxpool.Pool) *PostStore {
	return &PostStore{
		db: db,
	}
}

const postColumns = `
	p.id, p.project_id, p.post_type, p.post_date, p.post_time,
	p.caption, p.caption_category,
	p.likes, p.shares, p.comments, p.saves, p.reach, p.followers_gained,
	p.reel_length, p.watch_time, p.avg_view_duration,
	p.engagement_rate, p.engagement_rate_weighted, p.avd_ratio,
	p.follower_gain_rate, p.performance_score,
	COALESCE(
		(SELECT array_agg(h.hashtag ORDER BY h.hashtag) FROM post_hashtags h WHERE h.post_id = p.id),
		'{}'
	) AS hashtags
`

// SavePost saves a post and replaces its hashtags in one transaction
func (s *PostStore) SavePost(ctx context.Context, p post.Post) error {
	query := `
		INSERT INTO posts (
			id, project_id, post_type, post_date, post_time,
			caption, caption_category,
			likes, shares, comments, saves, reach, followers_gained,
			reel_length, watch_time, avg_view_duration,
			engagement_rate, engagement_rate_weighted, avd_ratio,
			follower_gain_rate, performance_score
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19,
			$20, $21
		)
		ON CONFLICT (id) DO UPDATE
		SET
			post_type = $3,
			post_date = $4,
			post_time = $5,
			caption = $6,
			caption_category = $7,
			likes = $8,
			shares = $9,
			comments = $10,
			saves = $11,
			reach = $12,
			followers_gained = $13,
			reel_length = $14,
			watch_time = $15,
			avg_view_duration = $16,
			engagement_rate = $17,
			engagement_rate_weighted = $18,
			avd_ratio = $19,
			follower_gain_rate = $20,
			performance_score = $21
	`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(
		ctx,
		query,
		p.ID,
		p.ProjectID,
		string(p.Type),
		p.Date,
		p.Time,
		p.Caption,
		p.CaptionCategory,
		p.Likes,
		p.Shares,
		p.Comments,
		p.Saves,
		p.Reach,
		p.FollowersGained,
		p.ReelLength,
		p.WatchTime,
		p.AvgViewDuration,
		p.EngagementRate,
		p.EngagementRateWeighted,
		p.AVDRatio,
		p.FollowerGainRate,
		p.PerformanceScore,
	)
	if err != nil {
		return fmt.Errorf("error saving post: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM post_hashtags WHERE post_id = $1`, p.ID); err != nil {
		return fmt.Errorf("error clearing hashtags: %w", err)
	}

	if len(p.Hashtags) > 0 {
		batch := &pgx.Batch{}
		for _, tag := range p.Hashtags {
			batch.Queue(`INSERT INTO post_hashtags (post_id, hashtag) VALUES ($1, $2) ON CONFLICT DO NOTHING`, p.ID, tag)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("error saving hashtags: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing post: %w", err)
	}

	return nil
}

// GetPost retrieves a post by ID
func (s *PostStore) GetPost(ctx context.Context, id string) (*post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	p, err := scanPost(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error querying post %s: %w", id, post.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying post: %w", err)
	}

	return &p, nil
}

// ListPosts returns the posts of the given projects ordered by date and time
func (s *PostStore) ListPosts(ctx context.Context, projectIDs []string) ([]post.Post, error) {
	if len(projectIDs) == 0 {
		return []post.Post{}, nil
	}

	query := `SELECT ` + postColumns + `
		FROM posts p
		WHERE p.project_id = ANY($1)
		ORDER BY p.post_date, p.post_time, p.id
	`

	rows, err := s.db.Query(ctx, query, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	posts := []post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// DeletePosts deletes the given posts. Their hashtags go with them through ON DELETE CASCADE.
func (s *PostStore) DeletePosts(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("error deleting posts: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post
	var postType string

	err := row.Scan(
		&p.ID,
		&p.ProjectID,
		&postType,
		&p.Date,
		&p.Time,
		&p.Caption,
		&p.CaptionCategory,
		&p.Likes,
		&p.Shares,
		&p.Comments,
		&p.Saves,
		&p.Reach,
		&p.FollowersGained,
		&p.ReelLength,
		&p.WatchTime,
		&p.AvgViewDuration,
		&p.EngagementRate,
		&p.EngagementRateWeighted,
		&p.AVDRatio,
		&p.FollowerGainRate,
		&p.PerformanceScore,
		&p.Hashtags,
	)
	if err != nil {
		return p, err
	}

	p.Type = post.Type(postType)
	p.Date = p.Date.UTC()
	return p, nil
}
