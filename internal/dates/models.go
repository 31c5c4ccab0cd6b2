package dates

import "time"

// DateStatus is the lifecycle state of a date plan.
type DateStatus string

const (
	DateOpen            DateStatus = "OPEN"             // open for proposals
	DateProposalPending DateStatus = "PROPOSAL_PENDING" // has pending proposals
	DateAccepted        DateStatus = "ACCEPTED"         // proposal accepted, date confirmed
	DateRejected        DateStatus = "REJECTED"         // all proposals rejected
	DateCompleted       DateStatus = "COMPLETED"        // date happened
	DateCancelled       DateStatus = "CANCELLED"        // owner cancelled
	DateExpired         DateStatus = "EXPIRED"          // passed scheduled time without acceptance
	DateNoShow          DateStatus = "NO_SHOW"          // partner didn't show up
)

// terminal statuses cannot be cancelled out of
func (s DateStatus) terminal() bool {
	switch s {
	case DateCompleted, DateCancelled, DateExpired, DateNoShow:
		return true
	}
	return false
}

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalPending         ProposalStatus = "PENDING"
	ProposalAccepted        ProposalStatus = "ACCEPTED"
	ProposalRejected        ProposalStatus = "REJECTED"
	ProposalCounterProposed ProposalStatus = "COUNTER_PROPOSED"
	ProposalWithdrawn       ProposalStatus = "WITHDRAWN"
)

// PlaceType categorizes where a date happens.
type PlaceType string

const (
	PlaceRestaurant PlaceType = "RESTAURANT"
	PlaceCafe       PlaceType = "CAFE"
	PlaceBar        PlaceType = "BAR"
	PlacePark       PlaceType = "PARK"
	PlaceCinema     PlaceType = "CINEMA"
	PlaceGym        PlaceType = "GYM"
	PlaceMuseum     PlaceType = "MUSEUM"
	PlaceOther      PlaceType = "OTHER"
)

// DatePlan is an owner-published slot open to proposals. PartnerID stays
// NULL until a proposal is accepted.
type DatePlan struct {
	ID              int64      `json:"id" db:"id"`
	OwnerID         int64      `json:"owner_id" db:"owner_id"`
	PartnerID       *int64     `json:"partner_id,omitempty" db:"partner_id"`
	Title           string     `json:"title" db:"title"`
	Description     *string    `json:"description,omitempty" db:"description"`
	PlaceType       PlaceType  `json:"place_type" db:"place_type"`
	PlaceName       *string    `json:"place_name,omitempty" db:"place_name"`
	PlaceAddress    *string    `json:"place_address,omitempty" db:"place_address"`
	Latitude        *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64   `json:"longitude,omitempty" db:"longitude"`
	ScheduledAt     time.Time  `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	IsPublic        bool       `json:"is_public" db:"is_public"`
	Status          DateStatus `json:"status" db:"status"`
	ConnectionType  string     `json:"connection_type" db:"connection_type"`
	MaxProposals    int        `json:"max_proposals" db:"max_proposals"`
	ProposalCount   int        `json:"proposal_count" db:"proposal_count"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the plan is still open for proposals.
func (d *DatePlan) IsOpen() bool {
	return d.Status == DateOpen || d.Status == DateProposalPending
}

// CanReceiveProposals holds while the plan is open and under its cap.
func (d *DatePlan) CanReceiveProposals() bool {
	return d.IsOpen() && d.ProposalCount < d.MaxProposals
}

// EffectiveStatus computes expiry lazily: an open plan past its scheduled
// time reads as EXPIRED without a background job ever touching the row.
func (d *DatePlan) EffectiveStatus(now time.Time) DateStatus {
	if d.IsOpen() && now.After(d.ScheduledAt) {
		return DateExpired
	}
	return d.Status
}

// DateProposal is another user's request to fill a plan's slot. Unique
// per (date_plan_id, proposer_id).
type DateProposal struct {
	ID           int64          `json:"id" db:"id"`
	DatePlanID   int64          `json:"date_plan_id" db:"date_plan_id"`
	ProposerID   int64          `json:"proposer_id" db:"proposer_id"`
	Message      *string        `json:"message,omitempty" db:"message"`
	ProposedTime *time.Time     `json:"proposed_time,omitempty" db:"proposed_time"`
	Status       ProposalStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// IsPending reports whether the proposal still awaits the owner.
func (p *DateProposal) IsPending() bool {
	return p.Status == ProposalPending
}
