package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Repository stores OTP challenges. The Redis implementation keys each
// challenge by recipient and type, so a new code for the same purpose
// replaces the old one.
type Repository interface {
	SaveChallenge(ctx context.Context, recipient string, otpType OTPType, challenge *Challenge, ttl time.Duration) error
	GetChallenge(ctx context.Context, recipient string, otpType OTPType) (*Challenge, error)
	IncrementAttempts(ctx context.Context, recipient string, otpType OTPType, challenge *Challenge) error
	DeleteChallenge(ctx context.Context, recipient string, otpType OTPType) error
	CountRecentSends(ctx context.Context, recipient string, window time.Duration) (int, error)
}

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

func challengeKey(recipient string, otpType OTPType) string {
	return fmt.Sprintf("otp:%s:%s", otpType, recipient)
}

func rateKey(recipient string) string {
	return fmt.Sprintf("otp_rate:%s", recipient)
}

func (r *redisRepository) SaveChallenge(ctx context.Context, recipient string, otpType OTPType, challenge *Challenge, ttl time.Duration) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, challengeKey(recipient, otpType), data, ttl).Err()
}

func (r *redisRepository) GetChallenge(ctx context.Context, recipient string, otpType OTPType) (*Challenge, error) {
	data, err := r.client.Get(ctx, challengeKey(recipient, otpType)).Result()
	if err == redis.Nil {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}

	var challenge Challenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// IncrementAttempts rewrites the challenge preserving its remaining TTL.
func (r *redisRepository) IncrementAttempts(ctx context.Context, recipient string, otpType OTPType, challenge *Challenge) error {
	key := challengeKey(recipient, otpType)

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return ErrOTPNotFound
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisRepository) DeleteChallenge(ctx context.Context, recipient string, otpType OTPType) error {
	return r.client.Del(ctx, challengeKey(recipient, otpType)).Err()
}

// CountRecentSends bumps and returns a per-recipient counter whose TTL
// is the rate limit window.
func (r *redisRepository) CountRecentSends(ctx context.Context, recipient string, window time.Duration) (int, error) {
	key := rateKey(recipient)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}
	return int(count), nil
}
