package auth

import "time"

// User is an account row. Email and phone are nullable because either
// one alone is enough to register.
type User struct {
	ID                int64     `json:"id" db:"id"`
	Email             *string   `json:"email" db:"email"`
	Username          string    `json:"username" db:"username"`
	PasswordHash      *string   `json:"-" db:"password_hash"`
	Phone             *string   `json:"phone" db:"phone"`
	IsVerified        bool      `json:"is_verified" db:"is_verified"`
	IsProfileComplete bool      `json:"is_profile_complete" db:"is_profile_complete"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Session is an active device login. Sessions live in the database so
// a user can be logged out of every device at once.
type Session struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Token        string    `json:"token" db:"token"`
	RefreshToken string    `json:"refresh_token" db:"refresh_token"`
	DeviceInfo   *string   `json:"device_info" db:"device_info"`
	IPAddress    *string   `json:"ip_address" db:"ip_address"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type SignupRequest struct {
	Email           *string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone           *string `json:"phone" validate:"required_without=Email,omitempty,e164"`
	Username        string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password        string  `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SignupResponse struct {
	User                 *User  `json:"user"`
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requires_verification"`
}

type SigninRequest struct {
	EmailOrPhone string `json:"email_or_phone" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type OTPVerificationRequest struct {
	EmailOrPhone string `json:"email_or_phone" validate:"required"`
	OTP          string `json:"otp" validate:"required,len=6,numeric"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=100"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
