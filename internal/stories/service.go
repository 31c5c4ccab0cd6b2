package stories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	ErrStoryNotFound = errors.New("story not found")
	ErrStoryExpired  = errors.New("story has expired")
	ErrNotStoryOwner = errors.New("only the story owner can perform this action")
	ErrUserNotFound  = errors.New("user not found")
)

type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Service interface {
	CreateStory(ctx context.Context, userID int64, req *CreateStoryRequest) (*Story, error)
	GetStory(ctx context.Context, storyID, viewerID int64) (*Story, error)
	GetUserStories(ctx context.Context, userID int64) ([]*Story, error)
	GetFeedStories(ctx context.Context, viewerID int64, page, size int) ([]*Story, error)
	DeleteStory(ctx context.Context, storyID, userID int64) error
	ViewStory(ctx context.Context, storyID, viewerID int64) error
	GetStoryViews(ctx context.Context, storyID, callerID int64) ([]*StoryView, error)
	CleanupExpiredStories(ctx context.Context) error
}

type service struct {
	repo     Repository
	users    UserDirectory
	lifetime time.Duration
	now      func() time.Time
}

func NewService(repo Repository, users UserDirectory, lifetime time.Duration) Service {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &service{
		repo:     repo,
		users:    users,
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (s *service) CreateStory(ctx context.Context, userID int64, req *CreateStoryRequest) (*Story, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	story := &Story{
		UserID:    userID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		ExpiresAt: s.now().Add(s.lifetime),
	}
	if req.Caption != "" {
		story.Caption = &req.Caption
	}

	if err := s.repo.CreateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("creating story: %w", err)
	}
	return story, nil
}

// GetStory returns a story. An expired story reads as not found even
// when the cleanup job has not pruned the row yet.
func (s *service) GetStory(ctx context.Context, storyID, viewerID int64) (*Story, error) {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.Expired(s.now()) {
		return nil, ErrStoryNotFound
	}

	if viewerID > 0 && viewerID != story.UserID {
		viewed, err := s.repo.HasViewed(ctx, storyID, viewerID)
		if err == nil {
			story.HasViewed = viewed
		}
	}
	return story, nil
}

func (s *service) GetUserStories(ctx context.Context, userID int64) ([]*Story, error) {
	return s.repo.ListUserStories(ctx, userID, s.now())
}

func (s *service) GetFeedStories(ctx context.Context, viewerID int64, page, size int) ([]*Story, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.repo.ListFeedStories(ctx, viewerID, s.now(), size, page*size)
}

func (s *service) DeleteStory(ctx context.Context, storyID, userID int64) error {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return ErrNotStoryOwner
	}
	return s.repo.DeleteStory(ctx, storyID, userID)
}

func (s *service) ViewStory(ctx context.Context, storyID, viewerID int64) error {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if story.Expired(s.now()) {
		return ErrStoryExpired
	}
	if story.UserID == viewerID {
		return nil
	}

	_, err = s.repo.RecordView(ctx, storyID, viewerID)
	return err
}

func (s *service) GetStoryViews(ctx context.Context, storyID, callerID int64) ([]*StoryView, error) {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != callerID {
		return nil, ErrNotStoryOwner
	}
	return s.repo.ListViews(ctx, storyID)
}

func (s *service) CleanupExpiredStories(ctx context.Context) error {
	deleted, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Removed %d expired stories", deleted)
	}
	return nil
}
