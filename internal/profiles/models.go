package profiles

import (
	"time"

	"github.com/lib/pq"
)

// Profile is the dating profile attached to a user account.
type Profile struct {
	UserID      int64          `json:"user_id" db:"user_id"`
	DisplayName *string        `json:"display_name,omitempty" db:"display_name"`
	Bio         *string        `json:"bio,omitempty" db:"bio"`
	BirthDate   *time.Time     `json:"birth_date,omitempty" db:"birth_date"`
	Gender      *string        `json:"gender,omitempty" db:"gender"`
	Interests   pq.StringArray `json:"interests" db:"interests"`
	City        *string        `json:"city,omitempty" db:"city"`
	Country     *string        `json:"country,omitempty" db:"country"`
	Latitude    *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64       `json:"longitude,omitempty" db:"longitude"`
	AvatarURL   *string        `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Complete reports whether the profile carries enough data to take
// part in matching.
func (p *Profile) Complete() bool {
	return p.DisplayName != nil && p.BirthDate != nil && len(p.Interests) > 0
}

// UpdateProfileRequest is the payload for editing a profile. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string    `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string    `json:"bio,omitempty" validate:"omitempty,max=1000"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Gender      *string    `json:"gender,omitempty" validate:"omitempty,max=20"`
	Interests   []string   `json:"interests,omitempty" validate:"omitempty,max=30,dive,max=50"`
	City        *string    `json:"city,omitempty" validate:"omitempty,max=100"`
	Country     *string    `json:"country,omitempty" validate:"omitempty,max=100"`
	Latitude    *float64   `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64   `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}
