package meetups

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMeetupNotFound    = errors.New("meetup not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMeetupFull        = errors.New("meetup is full")
	ErrMeetupNotJoinable = errors.New("meetup is not open for joining")
	ErrAlreadyJoined     = errors.New("you already joined this meetup")
	ErrNotParticipant    = errors.New("you are not a participant of this meetup")
	ErrNotOrganizer      = errors.New("only the organizer can perform this action")
	ErrOrganizerCantJoin = errors.New("organizers are already part of their own meetup")
)

type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string)
}

type Service interface {
	CreateMeetup(ctx context.Context, organizerID int64, dto *CreateMeetupDTO) (*Meetup, error)
	GetMeetups(ctx context.Context, params *ListMeetupsParams) ([]*Meetup, error)
	GetMyMeetups(ctx context.Context, userID int64, page, size int) ([]*Meetup, error)
	GetMeetupDetails(ctx context.Context, meetupID int64) (*Meetup, []*Participant, error)
	JoinMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error)
	LeaveMeetup(ctx context.Context, meetupID, userID int64) error
	CancelMeetup(ctx context.Context, meetupID, callerID int64) error
	CompleteMeetup(ctx context.Context, meetupID, callerID int64) error
}

type service struct {
	repo     Repository
	users    UserDirectory
	notifier Notifier
}

func NewService(repo Repository, users UserDirectory, notifier Notifier) Service {
	return &service{repo: repo, users: users, notifier: notifier}
}

func (s *service) CreateMeetup(ctx context.Context, organizerID int64, dto *CreateMeetupDTO) (*Meetup, error) {
	exists, err := s.users.UserExists(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("looking up organizer: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	if dto.ScheduledAt.Before(time.Now()) {
		return nil, errors.New("meetup must be scheduled in the future")
	}

	meetup := &Meetup{
		OrganizerID:     organizerID,
		Title:           dto.Title,
		Category:        dto.Category,
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		ScheduledAt:     dto.ScheduledAt,
		MaxParticipants: dto.MaxParticipants,
		Status:          MeetupOpen,
	}
	if dto.Description != "" {
		meetup.Description = &dto.Description
	}
	if dto.LocationName != "" {
		meetup.LocationName = &dto.LocationName
	}

	if err := s.repo.CreateMeetup(ctx, meetup); err != nil {
		return nil, fmt.Errorf("creating meetup: %w", err)
	}

	RecordMeetupCreated(meetup.Category)
	return meetup, nil
}

func (s *service) GetMeetups(ctx context.Context, params *ListMeetupsParams) ([]*Meetup, error) {
	size := params.Size
	if size <= 0 {
		size = 20
	}
	page := params.Page
	if page < 0 {
		page = 0
	}
	return s.repo.ListMeetups(ctx, params.Category, size, page*size)
}

func (s *service) GetMyMeetups(ctx context.Context, userID int64, page, size int) ([]*Meetup, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.repo.ListUserMeetups(ctx, userID, size, page*size)
}

func (s *service) GetMeetupDetails(ctx context.Context, meetupID int64) (*Meetup, []*Participant, error) {
	meetup, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, meetupID)
	if err != nil {
		return nil, nil, err
	}
	return meetup, participants, nil
}

func (s *service) JoinMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	meetup, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if meetup.OrganizerID == userID {
		return nil, ErrOrganizerCantJoin
	}

	// The repository re-checks capacity under a row lock.
	updated, err := s.repo.JoinMeetup(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}

	RecordMeetupJoin()

	if s.notifier != nil {
		s.notifier.Notify(ctx, updated.OrganizerID, "meetup_join", updated.ID, "Someone joined your meetup")
	}
	return updated, nil
}

func (s *service) LeaveMeetup(ctx context.Context, meetupID, userID int64) error {
	return s.repo.LeaveMeetup(ctx, meetupID, userID)
}

func (s *service) CancelMeetup(ctx context.Context, meetupID, callerID int64) error {
	return s.organizerTransition(ctx, meetupID, callerID, MeetupCancelled)
}

func (s *service) CompleteMeetup(ctx context.Context, meetupID, callerID int64) error {
	return s.organizerTransition(ctx, meetupID, callerID, MeetupCompleted)
}

func (s *service) organizerTransition(ctx context.Context, meetupID, callerID int64, status MeetupStatus) error {
	meetup, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return err
	}
	if meetup.OrganizerID != callerID {
		return ErrNotOrganizer
	}
	if meetup.Status == MeetupCancelled || meetup.Status == MeetupCompleted {
		return ErrMeetupNotJoinable
	}
	return s.repo.UpdateMeetupStatus(ctx, meetupID, status)
}
