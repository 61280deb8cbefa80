package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall-api/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestVerifier(t *testing.T, now time.Time) *hmacVerifier {
	t.Helper()
	v, err := NewVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	hv := v.(*hmacVerifier)
	hv.timeFunc = func() time.Time { return now }
	return hv
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewVerifierRejectsShortSecret(t *testing.T) {
	t.Parallel() // Enable parallel execution

	_, err := NewVerifier(config.AuthConfig{JWTSecret: "too-short"})
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		token := signToken(t, testSecret, jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		claims, err := v.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, ownerID, claims.OwnerID)
		assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		token := signToken(t, testSecret, jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		})

		_, err := v.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		token := signToken(t, testSecret, jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		})

		_, err := v.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		token := signToken(t, "ffffffffffffffffffffffffffffffff", jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		_, err := v.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject not a uuid", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		token := signToken(t, testSecret, jwt.RegisteredClaims{
			Subject:   "learner-42",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		_, err := v.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		token := signToken(t, testSecret, jwt.RegisteredClaims{
			Subject: ownerID.String(),
		})

		_, err := v.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		_, err := v.ValidateToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		v := newTestVerifier(t, now)
		_, err := v.ValidateToken(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}
