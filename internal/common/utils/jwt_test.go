package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims() *JWTClaims {
	now := time.Now()
	return &JWTClaims{
		UserID:    42,
		Email:     "dana@example.com",
		Username:  "dana",
		Type:      "access",
		ExpiresAt: now.Add(time.Hour).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    "fyn-api",
		Subject:   "42",
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(testClaims(), "secret")
	require.NoError(t, err)

	parsed, err := ValidateJWT(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, int64(42), parsed.UserID)
	assert.Equal(t, "dana@example.com", parsed.Email)
	assert.Equal(t, "access", parsed.Type)
	assert.Equal(t, "fyn-api", parsed.Issuer)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	token, err := GenerateJWT(testClaims(), "secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTExpiredRejected(t *testing.T) {
	claims := testClaims()
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()

	token, err := GenerateJWT(claims, "secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	assert.Error(t, err)
}

func TestJWTGarbageRejected(t *testing.T) {
	_, err := ValidateJWT("not.a.token", "secret")
	assert.Error(t, err)
}
