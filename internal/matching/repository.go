package matching

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Swipe ledger
	InsertSwipe(ctx context.Context, action *SwipeAction) (bool, error)
	HasPositiveSwipe(ctx context.Context, actorID, targetID int64) (bool, error)
	ListSwipedTargets(ctx context.Context, actorID int64) ([]int64, error)
	MarkMutual(ctx context.Context, userA, userB int64) error

	// Connection store
	InsertMutualConnection(ctx context.Context, conn *Connection) (bool, error)
	FindConnectionBetween(ctx context.Context, userA, userB int64) (*Connection, error)
	GetConnection(ctx context.Context, id int64) (*Connection, error)
	GetUserConnections(ctx context.Context, userID int64, source string) ([]*Connection, error)
	DeleteConnection(ctx context.Context, id int64) error

	// Candidate profiles
	GetProfile(ctx context.Context, userID int64) (*CandidateProfile, error)
	FindCandidates(ctx context.Context, userID int64, limit, offset int) ([]*CandidateProfile, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Swipe Ledger

// InsertSwipe records a swipe once per ordered pair. The unique index on
// (actor_id, target_id) closes the check-then-insert race: a conflicting
// insert returns false instead of an error.
func (r *postgresRepository) InsertSwipe(ctx context.Context, action *SwipeAction) (bool, error) {
	query := `
        INSERT INTO swipe_actions (actor_id, target_id, action_type)
        VALUES ($1, $2, $3)
        ON CONFLICT (actor_id, target_id) DO NOTHING
        RETURNING id, created_at
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		action.ActorID, action.TargetID, action.ActionType,
	).Scan(&action.ID, &action.CreatedAt)

	if err == sql.ErrNoRows {
		return false, nil // already swiped
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresRepository) HasPositiveSwipe(ctx context.Context, actorID, targetID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM swipe_actions
            WHERE actor_id = $1 AND target_id = $2
              AND action_type IN ('LIKE', 'SUPERLIKE')
        )
    `

	err := r.db.GetContext(ctx, &exists, query, actorID, targetID)
	return exists, err
}

func (r *postgresRepository) ListSwipedTargets(ctx context.Context, actorID int64) ([]int64, error) {
	var targets []int64
	query := `SELECT target_id FROM swipe_actions WHERE actor_id = $1`

	err := r.db.SelectContext(ctx, &targets, query, actorID)
	return targets, err
}

func (r *postgresRepository) MarkMutual(ctx context.Context, userA, userB int64) error {
	query := `
        UPDATE swipe_actions
        SET is_mutual = TRUE
        WHERE (actor_id = $1 AND target_id = $2)
           OR (actor_id = $2 AND target_id = $1)
    `

	_, err := r.db.ExecContext(ctx, query, userA, userB)
	return err
}

// Connection Store

// InsertMutualConnection creates one directed ACCEPTED row. The unique
// index on the canonical (least, greatest) pair makes concurrent mutual
// detection collapse to a single row; conflict means "already matched"
// and returns false.
func (r *postgresRepository) InsertMutualConnection(ctx context.Context, conn *Connection) (bool, error) {
	query := `
        INSERT INTO connections (
            requester_id, receiver_id, connection_type, status,
            match_score, matched_interests, match_source, responded_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT ((LEAST(requester_id, receiver_id)), (GREATEST(requester_id, receiver_id)))
        DO NOTHING
        RETURNING id, requested_at
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		conn.RequesterID, conn.ReceiverID, conn.ConnectionType, conn.Status,
		conn.MatchScore, conn.MatchedInterests, conn.MatchSource,
	).Scan(&conn.ID, &conn.RequestedAt)

	if err == sql.ErrNoRows {
		return false, nil // already connected
	}
	if err != nil {
		return false, err
	}
	now := time.Now()
	conn.RespondedAt = &now
	return true, nil
}

func (r *postgresRepository) FindConnectionBetween(ctx context.Context, userA, userB int64) (*Connection, error) {
	var conn Connection
	query := `
        SELECT * FROM connections
        WHERE (requester_id = $1 AND receiver_id = $2)
           OR (requester_id = $2 AND receiver_id = $1)
        LIMIT 1
    `

	err := r.db.GetContext(ctx, &conn, query, userA, userB)
	if err == sql.ErrNoRows {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *postgresRepository) GetConnection(ctx context.Context, id int64) (*Connection, error) {
	var conn Connection
	query := `SELECT * FROM connections WHERE id = $1`

	err := r.db.GetContext(ctx, &conn, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *postgresRepository) GetUserConnections(ctx context.Context, userID int64, source string) ([]*Connection, error) {
	var conns []*Connection
	query := `
        SELECT * FROM connections
        WHERE (requester_id = $1 OR receiver_id = $1)
          AND status = 'ACCEPTED'
    `
	args := []interface{}{userID}

	if source != "" {
		query += ` AND match_source = $2`
		args = append(args, source)
	}
	query += ` ORDER BY requested_at DESC`

	err := r.db.SelectContext(ctx, &conns, query, args...)
	return conns, err
}

func (r *postgresRepository) DeleteConnection(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

// Candidate Profiles

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*CandidateProfile, error) {
	var profile CandidateProfile
	query := `
        SELECT u.id AS user_id, u.username,
               p.display_name, p.bio, p.avatar_url,
               p.interests, p.latitude, p.longitude, p.birth_date
        FROM users u
        LEFT JOIN user_profiles p ON p.user_id = u.id
        WHERE u.id = $1
    `

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindCandidates lists profiles the user has not swiped on, excluding the
// user themselves, in the host's general listing order.
func (r *postgresRepository) FindCandidates(ctx context.Context, userID int64, limit, offset int) ([]*CandidateProfile, error) {
	var candidates []*CandidateProfile
	query := `
        SELECT u.id AS user_id, u.username,
               p.display_name, p.bio, p.avatar_url,
               p.interests, p.latitude, p.longitude, p.birth_date
        FROM users u
        LEFT JOIN user_profiles p ON p.user_id = u.id
        WHERE u.id != $1
          AND u.id NOT IN (
              SELECT target_id FROM swipe_actions WHERE actor_id = $1
          )
        ORDER BY u.id
        LIMIT $2 OFFSET $3
    `

	err := r.db.SelectContext(ctx, &candidates, query, userID, limit, offset)
	return candidates, err
}
