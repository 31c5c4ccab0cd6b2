package matching

import (
	"time"

	"github.com/lib/pq"
)

// SwipeType is the kind of one-directional preference signal a user sends.
type SwipeType string

const (
	SwipeLike      SwipeType = "LIKE"
	SwipeDislike   SwipeType = "DISLIKE"
	SwipeSuperlike SwipeType = "SUPERLIKE"
)

// Valid reports whether t is a known swipe type.
func (t SwipeType) Valid() bool {
	switch t {
	case SwipeLike, SwipeDislike, SwipeSuperlike:
		return true
	}
	return false
}

// IsPositive reports whether the swipe can participate in a mutual match.
func (t SwipeType) IsPositive() bool {
	return t == SwipeLike || t == SwipeSuperlike
}

// SwipeAction is one immutable ledger row. At most one row exists per
// ordered (actor, target) pair, enforced by a unique index.
type SwipeAction struct {
	ID         int64     `json:"id" db:"id"`
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	TargetID   int64     `json:"target_id" db:"target_id"`
	ActionType SwipeType `json:"action_type" db:"action_type"`
	IsMutual   bool      `json:"is_mutual" db:"is_mutual"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ConnectionStatus is the lifecycle state of a connection.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
	ConnectionBlocked  ConnectionStatus = "BLOCKED"
	ConnectionExpired  ConnectionStatus = "EXPIRED"
)

// MatchSourceSwipe marks connections created by the swipe engine.
const MatchSourceSwipe = "SWIPE"

// Connection is a confirmed relationship between two users, stored as a
// single directed row. Lookups must check both directions. The canonical
// unordered pair (least id, greatest id) carries a unique index so that
// concurrent mutual-like detection cannot double-insert.
type Connection struct {
	ID               int64            `json:"id" db:"id"`
	RequesterID      int64            `json:"requester_id" db:"requester_id"`
	ReceiverID       int64            `json:"receiver_id" db:"receiver_id"`
	ConnectionType   string           `json:"connection_type" db:"connection_type"`
	Status           ConnectionStatus `json:"status" db:"status"`
	MatchScore       *float64         `json:"match_score,omitempty" db:"match_score"`
	MatchedInterests pq.StringArray   `json:"matched_interests,omitempty" db:"matched_interests"`
	MatchSource      *string          `json:"match_source,omitempty" db:"match_source"`
	RequestedAt      time.Time        `json:"requested_at" db:"requested_at"`
	RespondedAt      *time.Time       `json:"responded_at,omitempty" db:"responded_at"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty" db:"expires_at"`
}

// Involves reports whether userID is on either side of the connection.
func (c *Connection) Involves(userID int64) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// OtherSide returns the peer of userID in the connection.
func (c *Connection) OtherSide(userID int64) int64 {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// CandidateProfile is the slice of a user profile the matching engine
// scores against: interests, location and age.
type CandidateProfile struct {
	UserID      int64          `json:"user_id" db:"user_id"`
	Username    string         `json:"username" db:"username"`
	DisplayName *string        `json:"display_name,omitempty" db:"display_name"`
	Bio         *string        `json:"bio,omitempty" db:"bio"`
	AvatarURL   *string        `json:"avatar_url,omitempty" db:"avatar_url"`
	Interests   pq.StringArray `json:"interests,omitempty" db:"interests"`
	Latitude    *float64       `json:"-" db:"latitude"`
	Longitude   *float64       `json:"-" db:"longitude"`
	BirthDate   *time.Time     `json:"-" db:"birth_date"`
}

// Age derives the candidate's age in whole years, or 0 if unknown.
func (p *CandidateProfile) Age(now time.Time) int {
	if p.BirthDate == nil {
		return 0
	}
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
