package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/fynlabs/fyn-backend/internal/common/utils"
	"github.com/fynlabs/fyn-backend/internal/otp"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrPhoneAlreadyExists    = errors.New("phone number already registered")
	ErrInvalidToken          = errors.New("invalid token")
	ErrSessionNotFound       = errors.New("session not found")
)

type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error)
	VerifySignupOTP(ctx context.Context, req *OTPVerificationRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	Logout(ctx context.Context, token string) error
	LogoutAllDevices(ctx context.Context, userID int64) error

	InitiatePasswordReset(ctx context.Context, email string) error
	VerifyPasswordResetOTP(ctx context.Context, email, otpCode string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error

	GetUserByID(ctx context.Context, userID int64) (*User, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
	Issuer             string
}

type service struct {
	repo       Repository
	redis      *redis.Client
	otpService otp.Service
	config     *Config
}

func NewService(repo Repository, redisClient *redis.Client, otpService otp.Service, config *Config) Service {
	return &service{
		repo:       repo,
		redis:      redisClient,
		otpService: otpService,
		config:     config,
	}
}

// Signup creates an unverified account and sends a verification code to
// the email or phone the user registered with.
func (s *service) Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, errors.New("passwords do not match")
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	var email *string
	if req.Email != nil && *req.Email != "" {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &normalized

		if taken, err := s.repo.IsEmailTaken(ctx, normalized); err != nil {
			return nil, fmt.Errorf("checking email: %w", err)
		} else if taken {
			return nil, ErrEmailAlreadyExists
		}
	}

	var phone *string
	if req.Phone != nil && *req.Phone != "" {
		phone = req.Phone

		if taken, err := s.repo.IsPhoneTaken(ctx, *req.Phone); err != nil {
			return nil, fmt.Errorf("checking phone: %w", err)
		} else if taken {
			return nil, ErrPhoneAlreadyExists
		}
	}

	if email == nil && phone == nil {
		return nil, errors.New("either email or phone number is required")
	}

	if taken, err := s.repo.IsUsernameTaken(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	} else if taken {
		return nil, ErrUsernameAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	hashStr := string(hash)

	user := &User{
		Email:        email,
		Username:     req.Username,
		PasswordHash: &hashStr,
		Phone:        phone,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	message := s.sendSignupOTP(ctx, user)

	return &SignupResponse{
		User:                 user,
		Message:              message,
		RequiresVerification: true,
	}, nil
}

func (s *service) sendSignupOTP(ctx context.Context, user *User) string {
	otpReq := &otp.SendOTPRequest{
		UserID: user.ID,
		Type:   otp.OTPTypeSignup,
	}

	switch {
	case user.Email != nil:
		otpReq.Email = *user.Email
		otpReq.Method = otp.DeliveryMethodEmail
	case user.Phone != nil:
		otpReq.Phone = *user.Phone
		otpReq.Method = otp.DeliveryMethodSMS
	default:
		return "No delivery channel for verification code"
	}

	if _, err := s.otpService.GenerateOTP(ctx, otpReq); err != nil {
		log.Printf("Failed to send signup OTP: %v", err)
		return "Failed to send verification code. Please use resend OTP."
	}

	recipient := otpReq.Email
	if recipient == "" {
		recipient = otpReq.Phone
	}
	return fmt.Sprintf("Verification code sent to %s", recipient)
}

// VerifySignupOTP verifies the code sent during signup and opens the
// first session.
func (s *service) VerifySignupOTP(ctx context.Context, req *OTPVerificationRequest) (*AuthResponse, error) {
	otpReq := &otp.VerifyOTPRequest{
		Code: req.OTP,
		Type: otp.OTPTypeSignup,
	}

	var user *User
	var err error

	switch {
	case isEmail(req.EmailOrPhone):
		otpReq.Email = req.EmailOrPhone
		user, err = s.repo.GetUserByEmail(ctx, req.EmailOrPhone)
	case isPhone(req.EmailOrPhone):
		otpReq.Phone = req.EmailOrPhone
		user, err = s.repo.GetUserByPhone(ctx, req.EmailOrPhone)
	default:
		return nil, errors.New("invalid email or phone format")
	}
	if err != nil {
		return nil, err
	}

	if err := s.otpService.VerifyOTP(ctx, otpReq); err != nil {
		return nil, fmt.Errorf("OTP verification failed: %w", err)
	}

	if err := s.repo.VerifyUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("verifying user: %w", err)
	}
	user.IsVerified = true

	return s.createAuthSession(ctx, user)
}

func (s *service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	var user *User
	var err error

	switch {
	case isEmail(req.EmailOrPhone):
		user, err = s.repo.GetUserByEmail(ctx, req.EmailOrPhone)
	case isPhone(req.EmailOrPhone):
		user, err = s.repo.GetUserByPhone(ctx, req.EmailOrPhone)
	default:
		user, err = s.repo.GetUserByUsername(ctx, req.EmailOrPhone)
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedAttempt(ctx, req.EmailOrPhone)
		return nil, ErrInvalidCredentials
	}
	s.clearFailedAttempts(ctx, req.EmailOrPhone)

	if !user.IsVerified {
		s.sendSignupOTP(ctx, user)
		return nil, errors.New("account not verified, verification code sent")
	}

	return s.createAuthSession(ctx, user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}

	session, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return s.createAuthSession(ctx, user)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	return utils.ValidateJWT(token, s.config.JWTSecret)
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSessionByToken(ctx, token)
}

func (s *service) LogoutAllDevices(ctx context.Context, userID int64) error {
	return s.repo.DeleteUserSessions(ctx, userID)
}

// InitiatePasswordReset sends a reset code. An unknown email still
// returns success so addresses can't be enumerated.
func (s *service) InitiatePasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil
	}

	_, err = s.otpService.GenerateOTP(ctx, &otp.SendOTPRequest{
		UserID: user.ID,
		Email:  email,
		Type:   otp.OTPTypePasswordReset,
		Method: otp.DeliveryMethodEmail,
	})
	return err
}

// VerifyPasswordResetOTP trades a correct code for a short-lived reset
// token held in Redis.
func (s *service) VerifyPasswordResetOTP(ctx context.Context, email, otpCode string) (string, error) {
	err := s.otpService.VerifyOTP(ctx, &otp.VerifyOTPRequest{
		Email: email,
		Code:  otpCode,
		Type:  otp.OTPTypePasswordReset,
	})
	if err != nil {
		return "", err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	resetToken := generateSecureToken()
	data, _ := json.Marshal(map[string]int64{"user_id": user.ID})
	if err := s.redis.Set(ctx, "password_reset:"+resetToken, data, 30*time.Minute).Err(); err != nil {
		return "", fmt.Errorf("storing reset token: %w", err)
	}
	return resetToken, nil
}

func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	key := "password_reset:" + resetToken

	data, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return ErrInvalidToken
	}

	var payload map[string]int64
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return ErrInvalidToken
	}
	userID := payload["user_id"]

	s.redis.Del(ctx, key)

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BCryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	// Every device logs out after a reset.
	return s.repo.DeleteUserSessions(ctx, userID)
}

func (s *service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *service) UserExists(ctx context.Context, userID int64) (bool, error) {
	return s.repo.UserExists(ctx, userID)
}

func (s *service) createAuthSession(ctx context.Context, user *User) (*AuthResponse, error) {
	accessToken, err := s.generateToken(user, "access", s.config.AccessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}
	refreshToken, err := s.generateToken(user, "refresh", s.config.RefreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	session := &Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.config.AccessTokenExpiry),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.config.AccessTokenExpiry.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *service) generateToken(user *User, tokenType string, expiry time.Duration) (string, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	claims := &utils.JWTClaims{
		UserID:    user.ID,
		Email:     email,
		Username:  user.Username,
		Type:      tokenType,
		ExpiresAt: time.Now().Add(expiry).Unix(),
		IssuedAt:  time.Now().Unix(),
		NotBefore: time.Now().Unix(),
		Issuer:    s.config.Issuer,
		Subject:   fmt.Sprintf("%d", user.ID),
	}
	return utils.GenerateJWT(claims, s.config.JWTSecret)
}

func (s *service) recordFailedAttempt(ctx context.Context, identifier string) {
	if s.redis == nil {
		return
	}
	key := "failed_signin:" + identifier
	s.redis.Incr(ctx, key)
	s.redis.Expire(ctx, key, 15*time.Minute)
}

func (s *service) clearFailedAttempts(ctx context.Context, identifier string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, "failed_signin:"+identifier)
}

func generateSecureToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

func isEmail(input string) bool {
	return emailRegex.MatchString(input)
}

func isPhone(input string) bool {
	return phoneRegex.MatchString(input)
}
