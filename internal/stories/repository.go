package stories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	CreateStory(ctx context.Context, story *Story) error
	GetStory(ctx context.Context, id int64) (*Story, error)
	ListUserStories(ctx context.Context, userID int64, now time.Time) ([]*Story, error)
	ListFeedStories(ctx context.Context, viewerID int64, now time.Time, limit, offset int) ([]*Story, error)
	DeleteStory(ctx context.Context, id, userID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	RecordView(ctx context.Context, storyID, viewerID int64) (bool, error)
	ListViews(ctx context.Context, storyID int64) ([]*StoryView, error)
	HasViewed(ctx context.Context, storyID, viewerID int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateStory(ctx context.Context, story *Story) error {
	query := `
        INSERT INTO stories (user_id, media_url, media_type, caption, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, view_count, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		story.UserID, story.MediaURL, story.MediaType, story.Caption, story.ExpiresAt,
	).Scan(&story.ID, &story.ViewCount, &story.CreatedAt)
}

func (r *postgresRepository) GetStory(ctx context.Context, id int64) (*Story, error) {
	var story Story
	err := r.db.GetContext(ctx, &story, `SELECT * FROM stories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// ListUserStories returns a user's live stories. Expired rows are
// filtered in the query even if the cleanup job has not removed them.
func (r *postgresRepository) ListUserStories(ctx context.Context, userID int64, now time.Time) ([]*Story, error) {
	var stories []*Story
	query := `
        SELECT * FROM stories
        WHERE user_id = $1 AND expires_at > $2
        ORDER BY created_at DESC
    `

	err := r.db.SelectContext(ctx, &stories, query, userID, now)
	return stories, err
}

// ListFeedStories returns live stories from the viewer's matches.
func (r *postgresRepository) ListFeedStories(ctx context.Context, viewerID int64, now time.Time, limit, offset int) ([]*Story, error) {
	var stories []*Story
	query := `
        SELECT s.* FROM stories s
        WHERE s.expires_at > $2
          AND s.user_id IN (
              SELECT CASE WHEN requester_id = $1 THEN receiver_id ELSE requester_id END
              FROM connections
              WHERE (requester_id = $1 OR receiver_id = $1) AND status = 'ACCEPTED'
          )
        ORDER BY s.created_at DESC
        LIMIT $3 OFFSET $4
    `

	err := r.db.SelectContext(ctx, &stories, query, viewerID, now, limit, offset)
	return stories, err
}

func (r *postgresRepository) DeleteStory(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RecordView inserts a view and bumps the counter. Re-watching is not
// an error; the unique constraint just makes it a no-op.
func (r *postgresRepository) RecordView(ctx context.Context, storyID, viewerID int64) (bool, error) {
	query := `
        INSERT INTO story_views (story_id, viewer_id)
        VALUES ($1, $2)
        ON CONFLICT (story_id, viewer_id) DO NOTHING
        RETURNING id
    `

	var id int64
	err := r.db.QueryRowxContext(ctx, query, storyID, viewerID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return false, ErrStoryNotFound
		}
		return false, err
	}

	_, err = r.db.ExecContext(ctx, `UPDATE stories SET view_count = view_count + 1 WHERE id = $1`, storyID)
	return true, err
}

func (r *postgresRepository) ListViews(ctx context.Context, storyID int64) ([]*StoryView, error) {
	var views []*StoryView
	query := `SELECT * FROM story_views WHERE story_id = $1 ORDER BY viewed_at DESC`

	err := r.db.SelectContext(ctx, &views, query, storyID)
	return views, err
}

func (r *postgresRepository) HasViewed(ctx context.Context, storyID, viewerID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM story_views WHERE story_id = $1 AND viewer_id = $2)`

	err := r.db.GetContext(ctx, &exists, query, storyID, viewerID)
	return exists, err
}
