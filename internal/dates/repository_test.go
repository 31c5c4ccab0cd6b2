package dates

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func proposalRow(id, planID, proposerID int64, status ProposalStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "date_plan_id", "proposer_id", "status", "created_at", "updated_at",
	}).AddRow(id, planID, proposerID, status, now, now)
}

func planRow(id, ownerID int64, status DateStatus, scheduledAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "title", "status", "scheduled_at", "max_proposals", "proposal_count",
	}).AddRow(id, ownerID, "Coffee downtown", status, scheduledAt, 10, 1)
}

func TestAcceptProposalRefusesClosedPlan(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM date_proposals").
		WithArgs(int64(7)).
		WillReturnRows(proposalRow(7, 3, 2, ProposalPending))
	mock.ExpectQuery("SELECT \\* FROM date_plans").
		WithArgs(int64(3)).
		WillReturnRows(planRow(3, 1, DateCancelled, time.Now().Add(48*time.Hour)))
	mock.ExpectRollback()

	_, _, err := repo.AcceptProposal(context.Background(), 7)
	assert.ErrorIs(t, err, ErrDateNotOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptProposalCommitsWholeTransition(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM date_proposals").
		WithArgs(int64(7)).
		WillReturnRows(proposalRow(7, 3, 2, ProposalPending))
	mock.ExpectQuery("SELECT \\* FROM date_plans").
		WithArgs(int64(3)).
		WillReturnRows(planRow(3, 1, DateProposalPending, time.Now().Add(48*time.Hour)))
	mock.ExpectExec("UPDATE date_proposals").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE date_proposals").
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE date_plans").
		WithArgs(int64(3), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	accepted, plan, err := repo.AcceptProposal(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, ProposalAccepted, accepted.Status)
	assert.Equal(t, DateAccepted, plan.Status)
	require.NotNil(t, plan.PartnerID)
	assert.Equal(t, int64(2), *plan.PartnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
