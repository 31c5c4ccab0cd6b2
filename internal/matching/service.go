package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	ErrCannotSwipeSelf    = errors.New("cannot swipe on yourself")
	ErrInvalidSwipeType   = errors.New("invalid swipe type")
	ErrUserNotFound       = errors.New("user not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrNotParticipant     = errors.New("not a participant of this connection")
)

// UserDirectory is the narrow identity lookup the engine depends on.
type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Notifier is a fire-and-forget sink; failures never surface to callers.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string)
}

type Service interface {
	Swipe(ctx context.Context, actorID, targetID int64, swipeType SwipeType) (*SwipeResult, error)
	Discover(ctx context.Context, userID int64, params *DiscoverParams) ([]*DiscoverProfile, error)
	GetMatches(ctx context.Context, userID int64) ([]*MatchProfile, error)
	HasMutualLike(ctx context.Context, userA, userB int64) (bool, error)
	Unmatch(ctx context.Context, connectionID, userID int64) error
	BlockUser(ctx context.Context, userID, otherUserID int64) error
}

type service struct {
	repo     Repository
	scores   ScoreEngine
	users    UserDirectory
	notifier Notifier
	hub      *Hub
}

func NewService(repo Repository, scores ScoreEngine, users UserDirectory, notifier Notifier, hub *Hub) Service {
	return &service{
		repo:     repo,
		scores:   scores,
		users:    users,
		notifier: notifier,
		hub:      hub,
	}
}

// Swipe records a one-directional preference and, for a positive swipe that
// completes a mutual like, creates the connection. A repeat swipe on the
// same target is reported as a no-op, never an error.
func (s *service) Swipe(ctx context.Context, actorID, targetID int64, swipeType SwipeType) (*SwipeResult, error) {
	if !swipeType.Valid() {
		return nil, ErrInvalidSwipeType
	}
	if actorID == targetID {
		return nil, ErrCannotSwipeSelf
	}

	for _, id := range []int64{actorID, targetID} {
		exists, err := s.users.UserExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("looking up user %d: %w", id, err)
		}
		if !exists {
			return nil, ErrUserNotFound
		}
	}

	action := &SwipeAction{
		ActorID:    actorID,
		TargetID:   targetID,
		ActionType: swipeType,
	}

	inserted, err := s.repo.InsertSwipe(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("recording swipe: %w", err)
	}
	if !inserted {
		return &SwipeResult{Recorded: false, Message: "already recorded"}, nil
	}

	RecordSwipe(string(swipeType))

	if !swipeType.IsPositive() {
		return &SwipeResult{Recorded: true, Message: "swipe recorded", Action: action}, nil
	}

	reciprocated, err := s.repo.HasPositiveSwipe(ctx, targetID, actorID)
	if err != nil {
		return nil, fmt.Errorf("checking reverse swipe: %w", err)
	}
	if !reciprocated {
		return &SwipeResult{Recorded: true, Message: "swipe recorded", Action: action}, nil
	}

	action.IsMutual = true
	if err := s.createMutualConnection(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	return &SwipeResult{Recorded: true, IsMatch: true, Message: "it's a match", Action: action}, nil
}

// createMutualConnection inserts the single directed ACCEPTED row for a
// mutual like. A conflicting concurrent insert means the match already
// exists and is treated as success.
func (s *service) createMutualConnection(ctx context.Context, actorID, targetID int64) error {
	source := MatchSourceSwipe
	conn := &Connection{
		RequesterID:    actorID,
		ReceiverID:     targetID,
		ConnectionType: "FRIEND",
		Status:         ConnectionAccepted,
		MatchSource:    &source,
	}

	if actor, aErr := s.repo.GetProfile(ctx, actorID); aErr == nil {
		if target, tErr := s.repo.GetProfile(ctx, targetID); tErr == nil {
			breakdown := s.scores.Score(actor, target)
			conn.MatchScore = &breakdown.Total
			conn.MatchedInterests = breakdown.CommonInterests
		}
	}

	inserted, err := s.repo.InsertMutualConnection(ctx, conn)
	if err != nil {
		return fmt.Errorf("creating connection: %w", err)
	}
	if !inserted {
		return nil // already matched, e.g. concurrent swipes from both sides
	}

	if err := s.repo.MarkMutual(ctx, actorID, targetID); err != nil {
		log.Printf("Failed to flag mutual swipes for %d/%d: %v", actorID, targetID, err)
	}

	RecordMatch()

	if s.notifier != nil {
		s.notifier.Notify(ctx, actorID, "match", conn.ID, "You have a new match!")
		s.notifier.Notify(ctx, targetID, "match", conn.ID, "You have a new match!")
	}
	if s.hub != nil {
		s.hub.PushMatch(actorID, targetID, conn)
	}
	return nil
}

// Discover returns candidates the user has not swiped on, excluding the
// user themselves, each annotated with a deterministic match score.
func (s *service) Discover(ctx context.Context, userID int64, params *DiscoverParams) ([]*DiscoverProfile, error) {
	viewer, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Size <= 0 {
		params.Size = 20
	}
	if params.Page < 0 {
		params.Page = 0
	}

	candidates, err := s.repo.FindCandidates(ctx, userID, params.Size, params.Page*params.Size)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	profiles := make([]*DiscoverProfile, 0, len(candidates))
	for _, candidate := range candidates {
		profiles = append(profiles, s.toDiscoverProfile(viewer, candidate))
	}
	return profiles, nil
}

func (s *service) GetMatches(ctx context.Context, userID int64) ([]*MatchProfile, error) {
	conns, err := s.repo.GetUserConnections(ctx, userID, MatchSourceSwipe)
	if err != nil {
		return nil, err
	}

	viewer, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches := make([]*MatchProfile, 0, len(conns))
	for _, conn := range conns {
		other, err := s.repo.GetProfile(ctx, conn.OtherSide(userID))
		if err != nil {
			log.Printf("Skipping match %d, profile lookup failed: %v", conn.ID, err)
			continue
		}
		matches = append(matches, &MatchProfile{
			ConnectionID: conn.ID,
			Profile:      *s.toDiscoverProfile(viewer, other),
			MatchedAt:    conn.RequestedAt.Format(time.RFC3339),
		})
	}
	return matches, nil
}

func (s *service) HasMutualLike(ctx context.Context, userA, userB int64) (bool, error) {
	forward, err := s.repo.HasPositiveSwipe(ctx, userA, userB)
	if err != nil || !forward {
		return false, err
	}
	return s.repo.HasPositiveSwipe(ctx, userB, userA)
}

func (s *service) Unmatch(ctx context.Context, connectionID, userID int64) error {
	conn, err := s.repo.GetConnection(ctx, connectionID)
	if err != nil {
		return err
	}
	if !conn.Involves(userID) {
		return ErrNotParticipant
	}
	return s.repo.DeleteConnection(ctx, conn.ID)
}

// BlockUser removes the connection between the two users in whichever
// direction it was stored.
func (s *service) BlockUser(ctx context.Context, userID, otherUserID int64) error {
	conn, err := s.repo.FindConnectionBetween(ctx, userID, otherUserID)
	if err != nil {
		return err
	}
	return s.repo.DeleteConnection(ctx, conn.ID)
}

func (s *service) toDiscoverProfile(viewer, candidate *CandidateProfile) *DiscoverProfile {
	breakdown := s.scores.Score(viewer, candidate)
	RecordMatchScore(breakdown.Total)
	return &DiscoverProfile{
		UserID:          candidate.UserID,
		Username:        candidate.Username,
		DisplayName:     candidate.DisplayName,
		Bio:             candidate.Bio,
		AvatarURL:       candidate.AvatarURL,
		MatchScore:      breakdown.Total,
		CommonInterests: breakdown.CommonInterests,
		DistanceKm:      breakdown.DistanceKm,
	}
}
