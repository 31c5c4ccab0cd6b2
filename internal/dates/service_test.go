package dates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	plans     map[int64]*DatePlan
	proposals map[int64]*DateProposal
	nextID    int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		plans:     make(map[int64]*DatePlan),
		proposals: make(map[int64]*DateProposal),
	}
}

func (r *fakeRepository) CreateDatePlan(ctx context.Context, plan *DatePlan) error {
	r.nextID++
	plan.ID = r.nextID
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	stored := *plan
	r.plans[plan.ID] = &stored
	return nil
}

func (r *fakeRepository) GetDatePlan(ctx context.Context, id int64) (*DatePlan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, ErrDateNotFound
	}
	copied := *plan
	return &copied, nil
}

func (r *fakeRepository) ListPublicDates(ctx context.Context, connectionType string, limit, offset int) ([]*DatePlan, error) {
	var plans []*DatePlan
	for _, plan := range r.plans {
		if plan.IsPublic && plan.IsOpen() {
			copied := *plan
			plans = append(plans, &copied)
		}
	}
	return plans, nil
}

func (r *fakeRepository) ListOwnerDates(ctx context.Context, ownerID int64, status DateStatus, limit, offset int) ([]*DatePlan, error) {
	var plans []*DatePlan
	for _, plan := range r.plans {
		if plan.OwnerID == ownerID && (status == "" || plan.Status == status) {
			copied := *plan
			plans = append(plans, &copied)
		}
	}
	return plans, nil
}

func (r *fakeRepository) UpdateDateStatus(ctx context.Context, id int64, status DateStatus) error {
	plan, ok := r.plans[id]
	if !ok {
		return ErrDateNotFound
	}
	plan.Status = status
	return nil
}

func (r *fakeRepository) CreateProposal(ctx context.Context, proposal *DateProposal) error {
	plan, ok := r.plans[proposal.DatePlanID]
	if !ok {
		return ErrDateNotFound
	}
	if !plan.CanReceiveProposals() {
		return ErrDateNotAcceptingProposals
	}
	for _, existing := range r.proposals {
		if existing.DatePlanID == proposal.DatePlanID && existing.ProposerID == proposal.ProposerID {
			return ErrAlreadyProposed
		}
	}

	r.nextID++
	proposal.ID = r.nextID
	proposal.CreatedAt = time.Now()
	proposal.UpdatedAt = proposal.CreatedAt
	stored := *proposal
	r.proposals[proposal.ID] = &stored
	plan.ProposalCount++
	return nil
}

func (r *fakeRepository) GetProposal(ctx context.Context, id int64) (*DateProposal, error) {
	proposal, ok := r.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	copied := *proposal
	return &copied, nil
}

func (r *fakeRepository) ListProposals(ctx context.Context, datePlanID int64, limit, offset int) ([]*DateProposal, error) {
	var proposals []*DateProposal
	for _, proposal := range r.proposals {
		if proposal.DatePlanID == datePlanID {
			copied := *proposal
			proposals = append(proposals, &copied)
		}
	}
	return proposals, nil
}

func (r *fakeRepository) AcceptProposal(ctx context.Context, proposalID int64) (*DateProposal, *DatePlan, error) {
	proposal, ok := r.proposals[proposalID]
	if !ok {
		return nil, nil, ErrProposalNotFound
	}
	if plan, ok := r.plans[proposal.DatePlanID]; !ok || !plan.IsOpen() {
		return nil, nil, ErrDateNotOpen
	}
	if !proposal.IsPending() {
		return nil, nil, ErrProposalNotPending
	}

	proposal.Status = ProposalAccepted
	for _, other := range r.proposals {
		if other.DatePlanID == proposal.DatePlanID && other.ID != proposalID && other.IsPending() {
			other.Status = ProposalRejected
		}
	}

	plan := r.plans[proposal.DatePlanID]
	plan.Status = DateAccepted
	partnerID := proposal.ProposerID
	plan.PartnerID = &partnerID

	acceptedCopy := *proposal
	planCopy := *plan
	return &acceptedCopy, &planCopy, nil
}

func (r *fakeRepository) UpdateProposalStatus(ctx context.Context, id int64, status ProposalStatus) error {
	proposal, ok := r.proposals[id]
	if !ok {
		return ErrProposalNotFound
	}
	proposal.Status = status
	return nil
}

func (r *fakeRepository) SetCounterProposal(ctx context.Context, proposalID int64, proposedTime time.Time) error {
	proposal, ok := r.proposals[proposalID]
	if !ok {
		return ErrProposalNotFound
	}
	proposal.Status = ProposalCounterProposed
	proposal.ProposedTime = &proposedTime
	return nil
}

func (r *fakeRepository) WithdrawProposal(ctx context.Context, proposalID int64) error {
	proposal, ok := r.proposals[proposalID]
	if !ok {
		return ErrProposalNotFound
	}
	if !proposal.IsPending() {
		return ErrProposalNotPending
	}
	proposal.Status = ProposalWithdrawn
	if plan, ok := r.plans[proposal.DatePlanID]; ok && plan.ProposalCount > 0 {
		plan.ProposalCount--
	}
	return nil
}

type allUsersDirectory struct{}

func (allUsersDirectory) UserExists(ctx context.Context, userID int64) (bool, error) {
	return userID > 0 && userID < 100, nil
}

type fakeNotifier struct {
	notified []int64
	kinds    []string
}

func (n *fakeNotifier) Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string) {
	n.notified = append(n.notified, recipientID)
	n.kinds = append(n.kinds, kind)
}

// newTestService takes the Notifier interface so a nil argument stays a
// nil interface instead of a typed nil that dodges the service's guard.
func newTestService(repo *fakeRepository, notifier Notifier) *service {
	svc := NewService(repo, allUsersDirectory{}, notifier, 10).(*service)
	return svc
}

func mustCreateDate(t *testing.T, svc Service, ownerID int64, scheduledAt time.Time) *DatePlan {
	t.Helper()
	plan, err := svc.CreateDate(context.Background(), ownerID, &CreateDateDTO{
		Title:       "Coffee downtown",
		ScheduledAt: scheduledAt,
		IsPublic:    true,
	})
	require.NoError(t, err)
	return plan
}

func TestCreateDateAppliesDefaults(t *testing.T) {
	svc := newTestService(newFakeRepository(), nil)

	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	assert.Equal(t, DateOpen, plan.Status)
	assert.Equal(t, PlaceOther, plan.PlaceType)
	assert.Equal(t, "DATING", plan.ConnectionType)
	assert.Equal(t, 120, plan.DurationMinutes)
	assert.Equal(t, 10, plan.MaxProposals)
}

func TestSendProposalToOwnDateFails(t *testing.T) {
	svc := newTestService(newFakeRepository(), nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	_, err := svc.SendProposal(context.Background(), plan.ID, 1, &ProposalDTO{})
	assert.ErrorIs(t, err, ErrCannotProposeOwnDate)
}

func TestSendProposalTwiceFails(t *testing.T) {
	svc := newTestService(newFakeRepository(), nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	_, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	_, err = svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	assert.ErrorIs(t, err, ErrAlreadyProposed)
}

func TestSendProposalNotifiesOwner(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(newFakeRepository(), notifier)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	_, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{Message: "Love coffee"})
	require.NoError(t, err)

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, int64(1), notifier.notified[0])
	assert.Equal(t, "date_proposal", notifier.kinds[0])
}

func TestSendProposalRespectsCap(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil, 10)

	plan, err := svc.CreateDate(context.Background(), 1, &CreateDateDTO{
		Title:        "Dinner",
		ScheduledAt:  time.Now().Add(48 * time.Hour),
		MaxProposals: 2,
	})
	require.NoError(t, err)

	_, err = svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)
	_, err = svc.SendProposal(context.Background(), plan.ID, 3, &ProposalDTO{})
	require.NoError(t, err)

	_, err = svc.SendProposal(context.Background(), plan.ID, 4, &ProposalDTO{})
	assert.ErrorIs(t, err, ErrDateNotAcceptingProposals)
}

func TestSendProposalToExpiredDateFails(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(time.Hour))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	assert.ErrorIs(t, err, ErrDateNotAcceptingProposals)
}

func TestAcceptProposalRejectsOthers(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	first, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)
	second, err := svc.SendProposal(context.Background(), plan.ID, 3, &ProposalDTO{})
	require.NoError(t, err)

	updated, err := svc.AcceptProposal(context.Background(), first.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, DateAccepted, updated.Status)
	require.NotNil(t, updated.PartnerID)
	assert.Equal(t, int64(2), *updated.PartnerID)

	assert.Equal(t, ProposalAccepted, repo.proposals[first.ID].Status)
	assert.Equal(t, ProposalRejected, repo.proposals[second.ID].Status)

	// Only the accepted proposer is notified by the acceptance itself
	assert.Equal(t, "proposal_accepted", notifier.kinds[len(notifier.kinds)-1])
}

func TestAcceptProposalRequiresOwner(t *testing.T) {
	svc := newTestService(newFakeRepository(), nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	_, err = svc.AcceptProposal(context.Background(), proposal.ID, 3)
	assert.ErrorIs(t, err, ErrNotDateOwner)
}

func TestAcceptNonPendingProposalFails(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	require.NoError(t, svc.RejectProposal(context.Background(), proposal.ID, 1))

	_, err = svc.AcceptProposal(context.Background(), proposal.ID, 1)
	assert.ErrorIs(t, err, ErrProposalNotPending)
}

func TestAcceptProposalOnCancelledDateFails(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeNotifier{})
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	require.NoError(t, svc.CancelDate(context.Background(), plan.ID, 1))

	_, err = svc.AcceptProposal(context.Background(), proposal.ID, 1)
	assert.ErrorIs(t, err, ErrDateNotOpen)

	// The cancelled plan must not come back to life
	assert.Equal(t, DateCancelled, repo.plans[plan.ID].Status)
	assert.Nil(t, repo.plans[plan.ID].PartnerID)
	assert.Equal(t, ProposalPending, repo.proposals[proposal.ID].Status)
}

func TestAcceptProposalOnExpiredDateFails(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeNotifier{})
	plan := mustCreateDate(t, svc, 1, time.Now().Add(time.Hour))

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.AcceptProposal(context.Background(), proposal.ID, 1)
	assert.ErrorIs(t, err, ErrDateNotOpen)
	assert.Nil(t, repo.plans[plan.ID].PartnerID)
}

func TestCancelExpiredDateFails(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(time.Hour))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	err := svc.CancelDate(context.Background(), plan.ID, 1)
	assert.ErrorIs(t, err, ErrDateNotCancellable)
	assert.Equal(t, DateOpen, repo.plans[plan.ID].Status)
}

func TestWithdrawProposalRequiresProposer(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	err = svc.WithdrawProposal(context.Background(), proposal.ID, 3)
	assert.ErrorIs(t, err, ErrNotProposer)

	require.NoError(t, svc.WithdrawProposal(context.Background(), proposal.ID, 2))
	assert.Equal(t, ProposalWithdrawn, repo.proposals[proposal.ID].Status)
	assert.Equal(t, 0, repo.plans[plan.ID].ProposalCount)
}

func TestCounterProposeSetsNewTime(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)

	counter := time.Now().Add(72 * time.Hour)
	require.NoError(t, svc.CounterPropose(context.Background(), proposal.ID, 1, &CounterProposalDTO{ProposedTime: counter}))

	stored := repo.proposals[proposal.ID]
	assert.Equal(t, ProposalCounterProposed, stored.Status)
	require.NotNil(t, stored.ProposedTime)
	assert.WithinDuration(t, counter, *stored.ProposedTime, time.Second)
}

func TestCancelDateOwnerOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	err := svc.CancelDate(context.Background(), plan.ID, 2)
	assert.ErrorIs(t, err, ErrNotDateOwner)

	require.NoError(t, svc.CancelDate(context.Background(), plan.ID, 1))
	assert.Equal(t, DateCancelled, repo.plans[plan.ID].Status)

	err = svc.CancelDate(context.Background(), plan.ID, 1)
	assert.ErrorIs(t, err, ErrDateNotCancellable)
}

func TestCompleteRequiresAcceptedDate(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(48*time.Hour))

	err := svc.CompleteDate(context.Background(), plan.ID, 1)
	assert.ErrorIs(t, err, ErrDateNotAccepted)

	proposal, err := svc.SendProposal(context.Background(), plan.ID, 2, &ProposalDTO{})
	require.NoError(t, err)
	_, err = svc.AcceptProposal(context.Background(), proposal.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteDate(context.Background(), plan.ID, 1))
	assert.Equal(t, DateCompleted, repo.plans[plan.ID].Status)
}

func TestPublicFeedExcludesExpiredDates(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	soon := mustCreateDate(t, svc, 1, time.Now().Add(time.Hour))
	later := mustCreateDate(t, svc, 2, time.Now().Add(72*time.Hour))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	plans, err := svc.GetPublicDates(context.Background(), &ListDatesParams{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, later.ID, plans[0].ID)
	assert.NotEqual(t, soon.ID, plans[0].ID)
}

func TestOpenDatePastScheduleReadsExpired(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, nil)
	plan := mustCreateDate(t, svc, 1, time.Now().Add(time.Hour))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	details, err := svc.GetDateDetails(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, DateExpired, details.Status)

	// The stored row is untouched, expiry is computed on read
	assert.Equal(t, DateOpen, repo.plans[plan.ID].Status)
}
