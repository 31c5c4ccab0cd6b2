package meetups

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	meetups      map[int64]*Meetup
	participants map[int64]map[int64]bool
	nextID       int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		meetups:      make(map[int64]*Meetup),
		participants: make(map[int64]map[int64]bool),
	}
}

func (r *fakeRepository) CreateMeetup(ctx context.Context, meetup *Meetup) error {
	r.nextID++
	meetup.ID = r.nextID
	meetup.CreatedAt = time.Now()
	meetup.UpdatedAt = meetup.CreatedAt
	stored := *meetup
	r.meetups[meetup.ID] = &stored
	r.participants[meetup.ID] = make(map[int64]bool)
	return nil
}

func (r *fakeRepository) GetMeetup(ctx context.Context, id int64) (*Meetup, error) {
	meetup, ok := r.meetups[id]
	if !ok {
		return nil, ErrMeetupNotFound
	}
	copied := *meetup
	return &copied, nil
}

func (r *fakeRepository) ListMeetups(ctx context.Context, category string, limit, offset int) ([]*Meetup, error) {
	var meetups []*Meetup
	for _, meetup := range r.meetups {
		if meetup.Status != MeetupOpen && meetup.Status != MeetupFull {
			continue
		}
		if category != "" && meetup.Category != category {
			continue
		}
		copied := *meetup
		meetups = append(meetups, &copied)
	}
	return meetups, nil
}

func (r *fakeRepository) ListUserMeetups(ctx context.Context, userID int64, limit, offset int) ([]*Meetup, error) {
	var meetups []*Meetup
	for id, meetup := range r.meetups {
		if meetup.OrganizerID == userID || r.participants[id][userID] {
			copied := *meetup
			meetups = append(meetups, &copied)
		}
	}
	return meetups, nil
}

func (r *fakeRepository) UpdateMeetupStatus(ctx context.Context, id int64, status MeetupStatus) error {
	meetup, ok := r.meetups[id]
	if !ok {
		return ErrMeetupNotFound
	}
	meetup.Status = status
	return nil
}

func (r *fakeRepository) JoinMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	meetup, ok := r.meetups[meetupID]
	if !ok {
		return nil, ErrMeetupNotFound
	}
	if meetup.Status != MeetupOpen {
		if meetup.Status == MeetupFull {
			return nil, ErrMeetupFull
		}
		return nil, ErrMeetupNotJoinable
	}
	if meetup.ParticipantCount >= meetup.MaxParticipants {
		return nil, ErrMeetupFull
	}
	if r.participants[meetupID][userID] {
		return nil, ErrAlreadyJoined
	}

	r.participants[meetupID][userID] = true
	meetup.ParticipantCount++
	if meetup.ParticipantCount >= meetup.MaxParticipants {
		meetup.Status = MeetupFull
	}
	copied := *meetup
	return &copied, nil
}

func (r *fakeRepository) LeaveMeetup(ctx context.Context, meetupID, userID int64) error {
	meetup, ok := r.meetups[meetupID]
	if !ok {
		return ErrMeetupNotFound
	}
	if !r.participants[meetupID][userID] {
		return ErrNotParticipant
	}

	delete(r.participants[meetupID], userID)
	if meetup.ParticipantCount > 0 {
		meetup.ParticipantCount--
	}
	if meetup.Status == MeetupFull {
		meetup.Status = MeetupOpen
	}
	return nil
}

func (r *fakeRepository) ListParticipants(ctx context.Context, meetupID int64) ([]*Participant, error) {
	var participants []*Participant
	for userID := range r.participants[meetupID] {
		participants = append(participants, &Participant{MeetupID: meetupID, UserID: userID})
	}
	return participants, nil
}

func (r *fakeRepository) IsParticipant(ctx context.Context, meetupID, userID int64) (bool, error) {
	return r.participants[meetupID][userID], nil
}

type allUsersDirectory struct{}

func (allUsersDirectory) UserExists(ctx context.Context, userID int64) (bool, error) {
	return userID > 0, nil
}

type fakeNotifier struct {
	notified []int64
	kinds    []string
}

func (n *fakeNotifier) Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string) {
	n.notified = append(n.notified, recipientID)
	n.kinds = append(n.kinds, kind)
}

func mustCreateMeetup(t *testing.T, svc Service, organizerID int64, maxParticipants int) *Meetup {
	t.Helper()
	meetup, err := svc.CreateMeetup(context.Background(), organizerID, &CreateMeetupDTO{
		Title:           "Sunday hike",
		Category:        "outdoors",
		ScheduledAt:     time.Now().Add(48 * time.Hour),
		MaxParticipants: maxParticipants,
	})
	require.NoError(t, err)
	return meetup
}

func TestCreateMeetupRejectsPastSchedule(t *testing.T) {
	svc := NewService(newFakeRepository(), allUsersDirectory{}, nil)

	_, err := svc.CreateMeetup(context.Background(), 1, &CreateMeetupDTO{
		Title:           "Yesterday's hike",
		Category:        "outdoors",
		ScheduledAt:     time.Now().Add(-time.Hour),
		MaxParticipants: 5,
	})
	assert.Error(t, err)
}

func TestJoinMeetupNotifiesOrganizer(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewService(newFakeRepository(), allUsersDirectory{}, notifier)
	meetup := mustCreateMeetup(t, svc, 1, 5)

	updated, err := svc.JoinMeetup(context.Background(), meetup.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ParticipantCount)

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, int64(1), notifier.notified[0])
	assert.Equal(t, "meetup_join", notifier.kinds[0])
}

func TestOrganizerCannotJoinOwnMeetup(t *testing.T) {
	svc := NewService(newFakeRepository(), allUsersDirectory{}, nil)
	meetup := mustCreateMeetup(t, svc, 1, 5)

	_, err := svc.JoinMeetup(context.Background(), meetup.ID, 1)
	assert.ErrorIs(t, err, ErrOrganizerCantJoin)
}

func TestDoubleJoinFails(t *testing.T) {
	svc := NewService(newFakeRepository(), allUsersDirectory{}, nil)
	meetup := mustCreateMeetup(t, svc, 1, 5)

	_, err := svc.JoinMeetup(context.Background(), meetup.ID, 2)
	require.NoError(t, err)

	_, err = svc.JoinMeetup(context.Background(), meetup.ID, 2)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestLastSeatFlipsMeetupFull(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil)
	meetup := mustCreateMeetup(t, svc, 1, 2)

	_, err := svc.JoinMeetup(context.Background(), meetup.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, MeetupOpen, repo.meetups[meetup.ID].Status)

	updated, err := svc.JoinMeetup(context.Background(), meetup.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, MeetupFull, updated.Status)

	_, err = svc.JoinMeetup(context.Background(), meetup.ID, 4)
	assert.ErrorIs(t, err, ErrMeetupFull)
}

func TestLeaveReopensFullMeetup(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil)
	meetup := mustCreateMeetup(t, svc, 1, 2)

	_, err := svc.JoinMeetup(context.Background(), meetup.ID, 2)
	require.NoError(t, err)
	_, err = svc.JoinMeetup(context.Background(), meetup.ID, 3)
	require.NoError(t, err)
	require.Equal(t, MeetupFull, repo.meetups[meetup.ID].Status)

	require.NoError(t, svc.LeaveMeetup(context.Background(), meetup.ID, 2))
	assert.Equal(t, MeetupOpen, repo.meetups[meetup.ID].Status)
	assert.Equal(t, 1, repo.meetups[meetup.ID].ParticipantCount)

	// The freed seat can be taken again
	_, err = svc.JoinMeetup(context.Background(), meetup.ID, 4)
	require.NoError(t, err)
}

func TestLeaveWithoutJoiningFails(t *testing.T) {
	svc := NewService(newFakeRepository(), allUsersDirectory{}, nil)
	meetup := mustCreateMeetup(t, svc, 1, 5)

	err := svc.LeaveMeetup(context.Background(), meetup.ID, 2)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCancelMeetupOrganizerOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil)
	meetup := mustCreateMeetup(t, svc, 1, 5)

	err := svc.CancelMeetup(context.Background(), meetup.ID, 2)
	assert.ErrorIs(t, err, ErrNotOrganizer)

	require.NoError(t, svc.CancelMeetup(context.Background(), meetup.ID, 1))
	assert.Equal(t, MeetupCancelled, repo.meetups[meetup.ID].Status)

	// A cancelled meetup cannot be joined or completed
	_, err = svc.JoinMeetup(context.Background(), meetup.ID, 2)
	assert.ErrorIs(t, err, ErrMeetupNotJoinable)
	err = svc.CompleteMeetup(context.Background(), meetup.ID, 1)
	assert.ErrorIs(t, err, ErrMeetupNotJoinable)
}
