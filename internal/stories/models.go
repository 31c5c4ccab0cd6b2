package stories

import "time"

// DefaultLifetime is how long a story stays visible after posting.
const DefaultLifetime = 24 * time.Hour

// Story is an ephemeral media post.
type Story struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	MediaURL  string    `json:"media_url" db:"media_url"`
	MediaType string    `json:"media_type" db:"media_type"` // image or video
	Caption   *string   `json:"caption,omitempty" db:"caption"`
	ViewCount int       `json:"view_count" db:"view_count"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Computed on read
	IsExpired bool `json:"is_expired" db:"-"`
	HasViewed bool `json:"has_viewed,omitempty" db:"-"`
}

// Expired reports whether the story is past its lifetime, regardless
// of whether the cleanup job has removed the row yet.
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StoryView records who watched a story.
type StoryView struct {
	ID       int64     `json:"id" db:"id"`
	StoryID  int64     `json:"story_id" db:"story_id"`
	ViewerID int64     `json:"viewer_id" db:"viewer_id"`
	ViewedAt time.Time `json:"viewed_at" db:"viewed_at"`
}

// CreateStoryRequest is the payload for posting a story.
type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
	Caption   string `json:"caption,omitempty" validate:"omitempty,max=500"`
}
