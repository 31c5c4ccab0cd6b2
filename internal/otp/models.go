package otp

import "time"

// OTPType represents different OTP use cases
type OTPType string

const (
	OTPTypeSignup        OTPType = "signup"
	OTPTypeSignin        OTPType = "signin"
	OTPTypePasswordReset OTPType = "password_reset"
)

// DeliveryMethod represents how an OTP is sent
type DeliveryMethod string

const (
	DeliveryMethodEmail DeliveryMethod = "email"
	DeliveryMethodSMS   DeliveryMethod = "sms"
)

// Challenge is the cached OTP state. It lives in Redis under a key
// derived from the recipient and type, and disappears when its TTL
// runs out, so expiry never needs a cleanup job.
type Challenge struct {
	Code      string    `json:"code"`
	UserID    int64     `json:"user_id"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// SendOTPRequest represents a request to send an OTP
type SendOTPRequest struct {
	UserID int64          `json:"user_id,omitempty"`
	Email  string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone  string         `json:"phone,omitempty" validate:"omitempty,e164"`
	Type   OTPType        `json:"type" validate:"required,oneof=signup signin password_reset"`
	Method DeliveryMethod `json:"method" validate:"required,oneof=email sms"`
}

// VerifyOTPRequest represents a request to verify an OTP
type VerifyOTPRequest struct {
	Email string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone string  `json:"phone,omitempty" validate:"omitempty,e164"`
	Code  string  `json:"code" validate:"required,len=6,numeric"`
	Type  OTPType `json:"type" validate:"required"`
}

// ResendOTPRequest represents a request to resend an OTP
type ResendOTPRequest struct {
	UserID int64          `json:"user_id,omitempty"`
	Email  string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone  string         `json:"phone,omitempty" validate:"omitempty,e164"`
	Type   OTPType        `json:"type" validate:"required"`
	Method DeliveryMethod `json:"method" validate:"required,oneof=email sms"`
}

// OTPResponse represents the result of an OTP operation
type OTPResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Config holds OTP configuration
type Config struct {
	Length      int
	Expiry      time.Duration
	MaxAttempts int
	RateLimit   RateLimitConfig
}

// RateLimitConfig caps how many OTPs a recipient can request per window.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// EmailTemplate represents email template data
type EmailTemplate struct {
	To      string
	Subject string
	Data    map[string]interface{}
}

// SMSMessage represents SMS message data
type SMSMessage struct {
	To      string
	Message string
}
