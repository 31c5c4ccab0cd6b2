package dates

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrDateNotFound              = errors.New("date not found")
	ErrProposalNotFound          = errors.New("proposal not found")
	ErrUserNotFound              = errors.New("user not found")
	ErrDateNotAcceptingProposals = errors.New("this date is not accepting proposals")
	ErrCannotProposeOwnDate      = errors.New("cannot propose to your own date")
	ErrAlreadyProposed           = errors.New("you already sent a proposal")
	ErrNotDateOwner              = errors.New("only the date owner can perform this action")
	ErrNotProposer               = errors.New("only the proposer can withdraw this proposal")
	ErrProposalNotPending        = errors.New("proposal is no longer pending")
	ErrDateNotCancellable        = errors.New("date can no longer be cancelled")
	ErrDateNotAccepted           = errors.New("date has no accepted partner")
	ErrDateNotOpen               = errors.New("date is no longer open")
)

// UserDirectory is the narrow identity lookup the workflow depends on.
type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Notifier is a fire-and-forget sink; failures never surface to callers.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string)
}

type Service interface {
	// Date plans
	CreateDate(ctx context.Context, ownerID int64, dto *CreateDateDTO) (*DatePlan, error)
	GetPublicDates(ctx context.Context, params *ListDatesParams) ([]*DatePlan, error)
	GetMyDates(ctx context.Context, ownerID int64, params *ListDatesParams) ([]*DatePlan, error)
	GetDateDetails(ctx context.Context, dateID int64) (*DatePlan, error)
	CancelDate(ctx context.Context, dateID, callerID int64) error
	CompleteDate(ctx context.Context, dateID, callerID int64) error
	MarkNoShow(ctx context.Context, dateID, callerID int64) error

	// Proposals
	SendProposal(ctx context.Context, dateID, proposerID int64, dto *ProposalDTO) (*DateProposal, error)
	GetProposals(ctx context.Context, dateID, callerID int64, page, size int) ([]*DateProposal, error)
	AcceptProposal(ctx context.Context, proposalID, callerID int64) (*DatePlan, error)
	RejectProposal(ctx context.Context, proposalID, callerID int64) error
	CounterPropose(ctx context.Context, proposalID, callerID int64, dto *CounterProposalDTO) error
	WithdrawProposal(ctx context.Context, proposalID, callerID int64) error
}

type service struct {
	repo                Repository
	users               UserDirectory
	notifier            Notifier
	defaultMaxProposals int
	now                 func() time.Time
}

func NewService(repo Repository, users UserDirectory, notifier Notifier, defaultMaxProposals int) Service {
	if defaultMaxProposals <= 0 {
		defaultMaxProposals = 10
	}
	return &service{
		repo:                repo,
		users:               users,
		notifier:            notifier,
		defaultMaxProposals: defaultMaxProposals,
		now:                 time.Now,
	}
}

// Date Plans

func (s *service) CreateDate(ctx context.Context, ownerID int64, dto *CreateDateDTO) (*DatePlan, error) {
	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("looking up owner: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	plan := &DatePlan{
		OwnerID:         ownerID,
		Title:           dto.Title,
		PlaceType:       dto.PlaceType,
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		ScheduledAt:     dto.ScheduledAt,
		DurationMinutes: dto.DurationMinutes,
		IsPublic:        dto.IsPublic,
		Status:          DateOpen,
		ConnectionType:  dto.ConnectionType,
		MaxProposals:    dto.MaxProposals,
	}

	if dto.Description != "" {
		plan.Description = &dto.Description
	}
	if dto.PlaceName != "" {
		plan.PlaceName = &dto.PlaceName
	}
	if dto.PlaceAddress != "" {
		plan.PlaceAddress = &dto.PlaceAddress
	}
	if plan.PlaceType == "" {
		plan.PlaceType = PlaceOther
	}
	if plan.ConnectionType == "" {
		plan.ConnectionType = "DATING"
	}
	if plan.DurationMinutes <= 0 {
		plan.DurationMinutes = 120
	}
	if plan.MaxProposals <= 0 {
		plan.MaxProposals = s.defaultMaxProposals
	}

	if err := s.repo.CreateDatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("creating date plan: %w", err)
	}

	RecordDateCreated()
	return plan, nil
}

func (s *service) GetPublicDates(ctx context.Context, params *ListDatesParams) ([]*DatePlan, error) {
	limit, offset := pageBounds(params)
	plans, err := s.repo.ListPublicDates(ctx, params.ConnectionType, limit, offset)
	if err != nil {
		return nil, err
	}
	s.applyLazyExpiry(plans)

	// The public feed only lists dates that can still be proposed to
	open := plans[:0]
	for _, plan := range plans {
		if plan.Status != DateExpired {
			open = append(open, plan)
		}
	}
	return open, nil
}

func (s *service) GetMyDates(ctx context.Context, ownerID int64, params *ListDatesParams) ([]*DatePlan, error) {
	limit, offset := pageBounds(params)
	plans, err := s.repo.ListOwnerDates(ctx, ownerID, params.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	s.applyLazyExpiry(plans)
	return plans, nil
}

func (s *service) GetDateDetails(ctx context.Context, dateID int64) (*DatePlan, error) {
	plan, err := s.repo.GetDatePlan(ctx, dateID)
	if err != nil {
		return nil, err
	}
	plan.Status = plan.EffectiveStatus(s.now())
	return plan, nil
}

func (s *service) CancelDate(ctx context.Context, dateID, callerID int64) error {
	plan, err := s.repo.GetDatePlan(ctx, dateID)
	if err != nil {
		return err
	}
	if plan.OwnerID != callerID {
		return ErrNotDateOwner
	}
	if plan.EffectiveStatus(s.now()).terminal() {
		return ErrDateNotCancellable
	}
	return s.repo.UpdateDateStatus(ctx, dateID, DateCancelled)
}

func (s *service) CompleteDate(ctx context.Context, dateID, callerID int64) error {
	return s.closeAcceptedDate(ctx, dateID, callerID, DateCompleted)
}

func (s *service) MarkNoShow(ctx context.Context, dateID, callerID int64) error {
	return s.closeAcceptedDate(ctx, dateID, callerID, DateNoShow)
}

func (s *service) closeAcceptedDate(ctx context.Context, dateID, callerID int64, status DateStatus) error {
	plan, err := s.repo.GetDatePlan(ctx, dateID)
	if err != nil {
		return err
	}
	if plan.OwnerID != callerID {
		return ErrNotDateOwner
	}
	if plan.Status != DateAccepted {
		return ErrDateNotAccepted
	}
	return s.repo.UpdateDateStatus(ctx, dateID, status)
}

// Proposals

func (s *service) SendProposal(ctx context.Context, dateID, proposerID int64, dto *ProposalDTO) (*DateProposal, error) {
	plan, err := s.repo.GetDatePlan(ctx, dateID)
	if err != nil {
		return nil, err
	}

	if plan.OwnerID == proposerID {
		return nil, ErrCannotProposeOwnDate
	}
	if !plan.CanReceiveProposals() || plan.EffectiveStatus(s.now()) == DateExpired {
		return nil, ErrDateNotAcceptingProposals
	}

	exists, err := s.users.UserExists(ctx, proposerID)
	if err != nil {
		return nil, fmt.Errorf("looking up proposer: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	proposal := &DateProposal{
		DatePlanID:   dateID,
		ProposerID:   proposerID,
		ProposedTime: dto.ProposedTime,
		Status:       ProposalPending,
	}
	if dto.Message != "" {
		proposal.Message = &dto.Message
	}

	// The repository re-checks the cap under a row lock; this pre-check
	// only exists for a friendly error before user lookup.
	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}

	RecordProposal("sent")

	if s.notifier != nil {
		s.notifier.Notify(ctx, plan.OwnerID, "date_proposal", proposal.ID, "Someone proposed to join your date")
	}
	return proposal, nil
}

func (s *service) GetProposals(ctx context.Context, dateID, callerID int64, page, size int) ([]*DateProposal, error) {
	plan, err := s.repo.GetDatePlan(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != callerID {
		return nil, ErrNotDateOwner
	}

	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.repo.ListProposals(ctx, dateID, size, page*size)
}

// AcceptProposal confirms one proposal and rejects every other pending one
// on the same plan as a single transactional side effect.
func (s *service) AcceptProposal(ctx context.Context, proposalID, callerID int64) (*DatePlan, error) {
	proposal, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetDatePlan(ctx, proposal.DatePlanID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != callerID {
		return nil, ErrNotDateOwner
	}
	if effective := plan.EffectiveStatus(s.now()); effective != DateOpen && effective != DateProposalPending {
		return nil, ErrDateNotOpen
	}

	accepted, updatedPlan, err := s.repo.AcceptProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	RecordProposal("accepted")

	if s.notifier != nil {
		s.notifier.Notify(ctx, accepted.ProposerID, "proposal_accepted", accepted.ID, "Your date proposal was accepted")
	}
	return updatedPlan, nil
}

func (s *service) RejectProposal(ctx context.Context, proposalID, callerID int64) error {
	proposal, err := s.ownerProposal(ctx, proposalID, callerID)
	if err != nil {
		return err
	}
	if !proposal.IsPending() {
		return ErrProposalNotPending
	}

	if err := s.repo.UpdateProposalStatus(ctx, proposalID, ProposalRejected); err != nil {
		return err
	}

	RecordProposal("rejected")

	if s.notifier != nil {
		s.notifier.Notify(ctx, proposal.ProposerID, "proposal_rejected", proposal.ID, "Your date proposal was declined")
	}
	return nil
}

func (s *service) CounterPropose(ctx context.Context, proposalID, callerID int64, dto *CounterProposalDTO) error {
	proposal, err := s.ownerProposal(ctx, proposalID, callerID)
	if err != nil {
		return err
	}
	if !proposal.IsPending() {
		return ErrProposalNotPending
	}

	if err := s.repo.SetCounterProposal(ctx, proposalID, dto.ProposedTime); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, proposal.ProposerID, "proposal_countered", proposal.ID, "The date owner suggested a different time")
	}
	return nil
}

func (s *service) WithdrawProposal(ctx context.Context, proposalID, callerID int64) error {
	proposal, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.ProposerID != callerID {
		return ErrNotProposer
	}
	return s.repo.WithdrawProposal(ctx, proposalID)
}

// ownerProposal loads a proposal and verifies the caller owns its plan.
func (s *service) ownerProposal(ctx context.Context, proposalID, callerID int64) (*DateProposal, error) {
	proposal, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetDatePlan(ctx, proposal.DatePlanID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != callerID {
		return nil, ErrNotDateOwner
	}
	return proposal, nil
}

func (s *service) applyLazyExpiry(plans []*DatePlan) {
	now := s.now()
	for _, plan := range plans {
		plan.Status = plan.EffectiveStatus(now)
	}
}

func pageBounds(params *ListDatesParams) (limit, offset int) {
	size := params.Size
	if size <= 0 {
		size = 20
	}
	page := params.Page
	if page < 0 {
		page = 0
	}
	return size, page * size
}
