package profiles

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
	SetAvatar(ctx context.Context, userID int64, avatarURL string) error
	SetProfileComplete(ctx context.Context, userID int64, complete bool) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM user_profiles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresRepository) UpsertProfile(ctx context.Context, profile *Profile) error {
	query := `
        INSERT INTO user_profiles (
            user_id, display_name, bio, birth_date, gender, interests,
            city, country, latitude, longitude
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (user_id) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            bio          = EXCLUDED.bio,
            birth_date   = EXCLUDED.birth_date,
            gender       = EXCLUDED.gender,
            interests    = EXCLUDED.interests,
            city         = EXCLUDED.city,
            country      = EXCLUDED.country,
            latitude     = EXCLUDED.latitude,
            longitude    = EXCLUDED.longitude,
            updated_at   = CURRENT_TIMESTAMP
        RETURNING created_at, updated_at
    `

	interests := profile.Interests
	if interests == nil {
		interests = pq.StringArray{}
	}

	return r.db.QueryRowxContext(
		ctx, query,
		profile.UserID, profile.DisplayName, profile.Bio, profile.BirthDate,
		profile.Gender, interests, profile.City, profile.Country,
		profile.Latitude, profile.Longitude,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *postgresRepository) SetAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `
        UPDATE user_profiles
        SET avatar_url = $2, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `

	result, err := r.db.ExecContext(ctx, query, userID, avatarURL)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *postgresRepository) SetProfileComplete(ctx context.Context, userID int64, complete bool) error {
	query := `UPDATE users SET is_profile_complete = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, complete)
	return err
}
