package meetups

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	CreateMeetup(ctx context.Context, meetup *Meetup) error
	GetMeetup(ctx context.Context, id int64) (*Meetup, error)
	ListMeetups(ctx context.Context, category string, limit, offset int) ([]*Meetup, error)
	ListUserMeetups(ctx context.Context, userID int64, limit, offset int) ([]*Meetup, error)
	UpdateMeetupStatus(ctx context.Context, id int64, status MeetupStatus) error

	JoinMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error)
	LeaveMeetup(ctx context.Context, meetupID, userID int64) error
	ListParticipants(ctx context.Context, meetupID int64) ([]*Participant, error)
	IsParticipant(ctx context.Context, meetupID, userID int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateMeetup(ctx context.Context, meetup *Meetup) error {
	query := `
        INSERT INTO meetups (
            organizer_id, title, description, category, location_name,
            latitude, longitude, scheduled_at, max_participants, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, participant_count, created_at, updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		meetup.OrganizerID, meetup.Title, meetup.Description, meetup.Category,
		meetup.LocationName, meetup.Latitude, meetup.Longitude,
		meetup.ScheduledAt, meetup.MaxParticipants, meetup.Status,
	).Scan(&meetup.ID, &meetup.ParticipantCount, &meetup.CreatedAt, &meetup.UpdatedAt)
}

func (r *postgresRepository) GetMeetup(ctx context.Context, id int64) (*Meetup, error) {
	var meetup Meetup
	query := `SELECT * FROM meetups WHERE id = $1`

	err := r.db.GetContext(ctx, &meetup, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meetup, nil
}

func (r *postgresRepository) ListMeetups(ctx context.Context, category string, limit, offset int) ([]*Meetup, error) {
	var meetups []*Meetup
	query := `SELECT * FROM meetups WHERE status IN ('OPEN', 'FULL')`
	args := []interface{}{}

	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, category)
	}
	query += fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	err := r.db.SelectContext(ctx, &meetups, query, args...)
	return meetups, err
}

func (r *postgresRepository) ListUserMeetups(ctx context.Context, userID int64, limit, offset int) ([]*Meetup, error) {
	var meetups []*Meetup
	query := `
        SELECT m.* FROM meetups m
        WHERE m.organizer_id = $1
           OR m.id IN (SELECT meetup_id FROM meetup_participants WHERE user_id = $1)
        ORDER BY m.scheduled_at DESC
        LIMIT $2 OFFSET $3
    `

	err := r.db.SelectContext(ctx, &meetups, query, userID, limit, offset)
	return meetups, err
}

func (r *postgresRepository) UpdateMeetupStatus(ctx context.Context, id int64, status MeetupStatus) error {
	query := `
        UPDATE meetups
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
		return ErrMeetupNotFound
	}
	return nil
}

// JoinMeetup adds the user and bumps the participant count in one
// transaction. The meetup row is locked first so concurrent joins
// serialize against the capacity instead of racing past it; the last
// seat taken flips the meetup to FULL in the same transaction.
func (r *postgresRepository) JoinMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var meetup Meetup
	err = tx.GetContext(ctx, &meetup, `SELECT * FROM meetups WHERE id = $1 FOR UPDATE`, meetupID)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, err
	}

	if meetup.Status != MeetupOpen {
		return nil, ErrMeetupNotJoinable
	}
	if meetup.ParticipantCount >= meetup.MaxParticipants {
		return nil, ErrMeetupFull
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO meetup_participants (meetup_id, user_id) VALUES ($1, $2)
    `, meetupID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrAlreadyJoined
		}
		return nil, err
	}

	meetup.ParticipantCount++
	if meetup.ParticipantCount >= meetup.MaxParticipants {
		meetup.Status = MeetupFull
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE meetups
        SET participant_count = $2, status = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, meetupID, meetup.ParticipantCount, meetup.Status)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &meetup, nil
}

// LeaveMeetup removes the user and releases their seat. A FULL meetup
// reopens when a seat frees up.
func (r *postgresRepository) LeaveMeetup(ctx context.Context, meetupID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var meetup Meetup
	err = tx.GetContext(ctx, &meetup, `SELECT * FROM meetups WHERE id = $1 FOR UPDATE`, meetupID)
	if err == sql.ErrNoRows {
		return ErrMeetupNotFound
	}
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
        DELETE FROM meetup_participants WHERE meetup_id = $1 AND user_id = $2
    `, meetupID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotParticipant
	}

	status := meetup.Status
	if status == MeetupFull {
		status = MeetupOpen
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE meetups
        SET participant_count = GREATEST(participant_count - 1, 0),
            status = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `, meetupID, status)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresRepository) ListParticipants(ctx context.Context, meetupID int64) ([]*Participant, error) {
	var participants []*Participant
	query := `
        SELECT * FROM meetup_participants
        WHERE meetup_id = $1
        ORDER BY joined_at ASC
    `

	err := r.db.SelectContext(ctx, &participants, query, meetupID)
	return participants, err
}

func (r *postgresRepository) IsParticipant(ctx context.Context, meetupID, userID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM meetup_participants WHERE meetup_id = $1 AND user_id = $2
        )
    `

	err := r.db.GetContext(ctx, &exists, query, meetupID, userID)
	return exists, err
}
