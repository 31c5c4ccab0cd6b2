package matching

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

func TestInsertSwipeReturnsRow(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO swipe_actions").
		WithArgs(int64(1), int64(2), SwipeLike).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), time.Now()))

	action := &SwipeAction{ActorID: 1, TargetID: 2, ActionType: SwipeLike}
	inserted, err := repo.InsertSwipe(context.Background(), action)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(11), action.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSwipeConflictIsNotAnError(t *testing.T) {
	repo, mock := newMockDB(t)

	// ON CONFLICT DO NOTHING yields zero rows from RETURNING
	mock.ExpectQuery("INSERT INTO swipe_actions").
		WithArgs(int64(1), int64(2), SwipeLike).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	inserted, err := repo.InsertSwipe(context.Background(), &SwipeAction{
		ActorID: 1, TargetID: 2, ActionType: SwipeLike,
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMutualConnectionConflictReportsExisting(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO connections").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requested_at"}))

	source := MatchSourceSwipe
	inserted, err := repo.InsertMutualConnection(context.Background(), &Connection{
		RequesterID: 1, ReceiverID: 2,
		ConnectionType: "FRIEND", Status: ConnectionAccepted,
		MatchSource: &source,
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPositiveSwipe(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasPositiveSwipe(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteConnectionMissingRow(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM connections").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteConnection(context.Background(), 5)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
