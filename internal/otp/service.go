package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"
)

var (
	ErrOTPNotFound       = errors.New("no pending verification code")
	ErrOTPInvalid        = errors.New("invalid OTP code")
	ErrOTPMaxAttempts    = errors.New("maximum verification attempts exceeded")
	ErrRateLimitExceeded = errors.New("rate limit exceeded, please try again later")
)

type Service interface {
	GenerateOTP(ctx context.Context, req *SendOTPRequest) (*OTPResponse, error)
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error
	ResendOTP(ctx context.Context, req *ResendOTPRequest) (*OTPResponse, error)
}

type service struct {
	repo          Repository
	emailProvider EmailProvider
	smsProvider   SMSProvider
	config        *Config
}

func NewService(repo Repository, emailProvider EmailProvider, smsProvider SMSProvider, config *Config) Service {
	if config == nil {
		config = &Config{
			Length:      6,
			Expiry:      10 * time.Minute,
			MaxAttempts: 3,
			RateLimit: RateLimitConfig{
				MaxRequests: 3,
				Window:      time.Hour,
			},
		}
	}

	return &service{
		repo:          repo,
		emailProvider: emailProvider,
		smsProvider:   smsProvider,
		config:        config,
	}
}

// GenerateOTP creates a challenge in the cache and sends the code. A
// fresh request replaces any earlier code of the same type for the same
// recipient.
func (s *service) GenerateOTP(ctx context.Context, req *SendOTPRequest) (*OTPResponse, error) {
	recipient := req.Email
	if req.Method == DeliveryMethodSMS {
		recipient = req.Phone
	}
	if recipient == "" {
		return nil, errors.New("email or phone is required")
	}

	count, err := s.repo.CountRecentSends(ctx, recipient, s.config.RateLimit.Window)
	if err != nil {
		log.Printf("OTP rate limit check failed: %v", err)
	} else if count > s.config.RateLimit.MaxRequests {
		return nil, ErrRateLimitExceeded
	}

	code, err := s.generateCode(s.config.Length)
	if err != nil {
		return nil, fmt.Errorf("generating OTP code: %w", err)
	}

	challenge := &Challenge{
		Code:      code,
		UserID:    req.UserID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveChallenge(ctx, recipient, req.Type, challenge, s.config.Expiry); err != nil {
		return nil, fmt.Errorf("saving OTP: %w", err)
	}

	if err := s.send(ctx, req.Type, req.Method, recipient, code); err != nil {
		return nil, fmt.Errorf("sending OTP: %w", err)
	}

	return &OTPResponse{
		Success:   true,
		Message:   fmt.Sprintf("OTP sent successfully to %s", recipient),
		ExpiresAt: time.Now().Add(s.config.Expiry),
	}, nil
}

// VerifyOTP checks a submitted code. Expired codes simply vanish from
// the cache, so a missing challenge covers both the never-sent and the
// expired case.
func (s *service) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error {
	recipient := req.Email
	if recipient == "" {
		recipient = req.Phone
	}
	if recipient == "" {
		return errors.New("email or phone is required")
	}

	challenge, err := s.repo.GetChallenge(ctx, recipient, req.Type)
	if err != nil {
		return err
	}

	if challenge.Attempts >= s.config.MaxAttempts {
		return ErrOTPMaxAttempts
	}

	challenge.Attempts++
	if err := s.repo.IncrementAttempts(ctx, recipient, req.Type, challenge); err != nil {
		log.Printf("Failed to update OTP attempts: %v", err)
	}

	if challenge.Code != req.Code {
		return ErrOTPInvalid
	}

	// Single use.
	if err := s.repo.DeleteChallenge(ctx, recipient, req.Type); err != nil {
		log.Printf("Failed to delete verified OTP: %v", err)
	}
	return nil
}

func (s *service) ResendOTP(ctx context.Context, req *ResendOTPRequest) (*OTPResponse, error) {
	return s.GenerateOTP(ctx, &SendOTPRequest{
		UserID: req.UserID,
		Email:  req.Email,
		Phone:  req.Phone,
		Type:   req.Type,
		Method: req.Method,
	})
}

func (s *service) generateCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}
	return string(code), nil
}

func (s *service) send(ctx context.Context, otpType OTPType, method DeliveryMethod, recipient, code string) error {
	expiresIn := int(s.config.Expiry.Minutes())

	switch method {
	case DeliveryMethodEmail:
		if s.emailProvider == nil {
			return errors.New("email provider not configured")
		}
		return s.emailProvider.SendEmail(ctx, &EmailTemplate{
			To:      recipient,
			Subject: emailSubject(otpType),
			Data: map[string]interface{}{
				"code":      code,
				"type":      string(otpType),
				"expiresIn": expiresIn,
			},
		})
	case DeliveryMethodSMS:
		if s.smsProvider == nil {
			return errors.New("SMS provider not configured")
		}
		return s.smsProvider.SendSMS(ctx, &SMSMessage{
			To:      recipient,
			Message: fmt.Sprintf("Your verification code is: %s. It will expire in %d minutes.", code, expiresIn),
		})
	default:
		return fmt.Errorf("unsupported delivery method: %s", method)
	}
}

func emailSubject(otpType OTPType) string {
	switch otpType {
	case OTPTypeSignup:
		return "Verify Your Account"
	case OTPTypeSignin:
		return "Two-Factor Authentication Code"
	case OTPTypePasswordReset:
		return "Password Reset Code"
	}
	return "Verification Code"
}
