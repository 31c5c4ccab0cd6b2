package dates

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	// Date plans
	CreateDatePlan(ctx context.Context, plan *DatePlan) error
	GetDatePlan(ctx context.Context, id int64) (*DatePlan, error)
	ListPublicDates(ctx context.Context, connectionType string, limit, offset int) ([]*DatePlan, error)
	ListOwnerDates(ctx context.Context, ownerID int64, status DateStatus, limit, offset int) ([]*DatePlan, error)
	UpdateDateStatus(ctx context.Context, id int64, status DateStatus) error

	// Proposals
	CreateProposal(ctx context.Context, proposal *DateProposal) error
	GetProposal(ctx context.Context, id int64) (*DateProposal, error)
	ListProposals(ctx context.Context, datePlanID int64, limit, offset int) ([]*DateProposal, error)
	AcceptProposal(ctx context.Context, proposalID int64) (*DateProposal, *DatePlan, error)
	UpdateProposalStatus(ctx context.Context, id int64, status ProposalStatus) error
	SetCounterProposal(ctx context.Context, proposalID int64, proposedTime time.Time) error
	WithdrawProposal(ctx context.Context, proposalID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Date Plan Methods

func (r *postgresRepository) CreateDatePlan(ctx context.Context, plan *DatePlan) error {
	query := `
        INSERT INTO date_plans (
            owner_id, title, description, place_type, place_name, place_address,
            latitude, longitude, scheduled_at, duration_minutes, is_public,
            status, connection_type, max_proposals
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, proposal_count, created_at, updated_at
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		plan.OwnerID, plan.Title, plan.Description, plan.PlaceType,
		plan.PlaceName, plan.PlaceAddress, plan.Latitude, plan.Longitude,
		plan.ScheduledAt, plan.DurationMinutes, plan.IsPublic,
		plan.Status, plan.ConnectionType, plan.MaxProposals,
	).Scan(&plan.ID, &plan.ProposalCount, &plan.CreatedAt, &plan.UpdatedAt)

	return err
}

func (r *postgresRepository) GetDatePlan(ctx context.Context, id int64) (*DatePlan, error) {
	var plan DatePlan
	query := `SELECT * FROM date_plans WHERE id = $1`

	err := r.db.GetContext(ctx, &plan, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrDateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *postgresRepository) ListPublicDates(ctx context.Context, connectionType string, limit, offset int) ([]*DatePlan, error) {
	var plans []*DatePlan
	query := `
        SELECT * FROM date_plans
        WHERE is_public = TRUE
          AND status IN ('OPEN', 'PROPOSAL_PENDING')
          AND scheduled_at > CURRENT_TIMESTAMP
    `
	args := []interface{}{}

	if connectionType != "" {
		query += fmt.Sprintf(" AND connection_type = $%d", len(args)+1)
		args = append(args, connectionType)
	}
	query += fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	err := r.db.SelectContext(ctx, &plans, query, args...)
	return plans, err
}

func (r *postgresRepository) ListOwnerDates(ctx context.Context, ownerID int64, status DateStatus, limit, offset int) ([]*DatePlan, error) {
	var plans []*DatePlan
	query := `SELECT * FROM date_plans WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	err := r.db.SelectContext(ctx, &plans, query, args...)
	return plans, err
}

func (r *postgresRepository) UpdateDateStatus(ctx context.Context, id int64, status DateStatus) error {
	query := `
        UPDATE date_plans
        SET status = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDateNotFound
	}
	return nil
}

// Proposal Methods

// CreateProposal inserts the proposal and bumps the plan's proposal count
// in one transaction. The plan row is locked first so concurrent proposals
// serialize against the max_proposals cap instead of racing past it.
func (r *postgresRepository) CreateProposal(ctx context.Context, proposal *DateProposal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var plan DatePlan
	err = tx.GetContext(ctx, &plan, `SELECT * FROM date_plans WHERE id = $1 FOR UPDATE`, proposal.DatePlanID)
	if err == sql.ErrNoRows {
		return ErrDateNotFound
	}
	if err != nil {
		return err
	}

	if !plan.CanReceiveProposals() {
		return ErrDateNotAcceptingProposals
	}

	insertQuery := `
        INSERT INTO date_proposals (date_plan_id, proposer_id, message, proposed_time, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `

	err = tx.QueryRowxContext(
		ctx, insertQuery,
		proposal.DatePlanID, proposal.ProposerID,
		proposal.Message, proposal.ProposedTime, proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAlreadyProposed
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE date_plans
        SET proposal_count = proposal_count + 1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, proposal.DatePlanID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresRepository) GetProposal(ctx context.Context, id int64) (*DateProposal, error) {
	var proposal DateProposal
	query := `SELECT * FROM date_proposals WHERE id = $1`

	err := r.db.GetContext(ctx, &proposal, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *postgresRepository) ListProposals(ctx context.Context, datePlanID int64, limit, offset int) ([]*DateProposal, error) {
	var proposals []*DateProposal
	query := `
        SELECT * FROM date_proposals
        WHERE date_plan_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	err := r.db.SelectContext(ctx, &proposals, query, datePlanID, limit, offset)
	return proposals, err
}

// AcceptProposal applies the whole acceptance in one transaction: the
// target proposal flips to ACCEPTED, every other PENDING proposal on the
// plan flips to REJECTED, and the plan gains its partner. Any failure
// rolls the lot back, so at most one proposal per plan is ever ACCEPTED.
func (r *postgresRepository) AcceptProposal(ctx context.Context, proposalID int64) (*DateProposal, *DatePlan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var proposal DateProposal
	err = tx.GetContext(ctx, &proposal, `SELECT * FROM date_proposals WHERE id = $1`, proposalID)
	if err == sql.ErrNoRows {
		return nil, nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var plan DatePlan
	err = tx.GetContext(ctx, &plan, `SELECT * FROM date_plans WHERE id = $1 FOR UPDATE`, proposal.DatePlanID)
	if err != nil {
		return nil, nil, err
	}

	// A cancelled or otherwise closed plan must never come back as
	// ACCEPTED through a stale pending proposal.
	if !plan.IsOpen() {
		return nil, nil, ErrDateNotOpen
	}
	if !proposal.IsPending() {
		return nil, nil, ErrProposalNotPending
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE date_proposals
        SET status = 'ACCEPTED', updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, proposalID)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE date_proposals
        SET status = 'REJECTED', updated_at = CURRENT_TIMESTAMP
        WHERE date_plan_id = $1 AND id != $2 AND status = 'PENDING'
    `, proposal.DatePlanID, proposalID)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE date_plans
        SET partner_id = $2, status = 'ACCEPTED', updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, proposal.DatePlanID, proposal.ProposerID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	proposal.Status = ProposalAccepted
	plan.PartnerID = &proposal.ProposerID
	plan.Status = DateAccepted
	return &proposal, &plan, nil
}

func (r *postgresRepository) UpdateProposalStatus(ctx context.Context, id int64, status ProposalStatus) error {
	query := `
        UPDATE date_proposals
        SET status = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProposalNotFound
	}
	return nil
}

func (r *postgresRepository) SetCounterProposal(ctx context.Context, proposalID int64, proposedTime time.Time) error {
	query := `
        UPDATE date_proposals
        SET status = 'COUNTER_PROPOSED', proposed_time = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	result, err := r.db.ExecContext(ctx, query, proposalID, proposedTime)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// WithdrawProposal flips a pending proposal to WITHDRAWN and releases its
// slot on the plan's proposal count, transactionally.
func (r *postgresRepository) WithdrawProposal(ctx context.Context, proposalID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var proposal DateProposal
	err = tx.GetContext(ctx, &proposal, `SELECT * FROM date_proposals WHERE id = $1`, proposalID)
	if err == sql.ErrNoRows {
		return ErrProposalNotFound
	}
	if err != nil {
		return err
	}

	if !proposal.IsPending() {
		return ErrProposalNotPending
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE date_proposals
        SET status = 'WITHDRAWN', updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, proposalID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE date_plans
        SET proposal_count = GREATEST(proposal_count - 1, 0), updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, proposal.DatePlanID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
