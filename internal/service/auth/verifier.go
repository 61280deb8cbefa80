// Package auth verifies bearer tokens on incoming requests. The API does
// not mint tokens; learners authenticate against the surrounding platform,
// which issues HS256 JWTs with the owner ID as the subject claim.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/config"
)

// Claims carries the validated identity extracted from a bearer token.
type Claims struct {
	// OwnerID is the learner the token was issued for.
	OwnerID uuid.UUID

	// IssuedAt and ExpiresAt are the token's validity window.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier validates bearer tokens and extracts their claims.
type TokenVerifier interface {
	// ValidateToken checks the token's signature and time claims and
	// returns the owner identity it encodes.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// hmacVerifier validates HS256-signed tokens against a shared secret.
type hmacVerifier struct {
	signingKey []byte
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration
}

var _ TokenVerifier = (*hmacVerifier)(nil)

// NewVerifier creates a TokenVerifier from the auth configuration.
func NewVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacVerifier{
		signingKey: []byte(cfg.JWTSecret),
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute, // tolerate minor drift against the issuer
	}, nil
}

// ValidateToken implements TokenVerifier.
func (v *hmacVerifier) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := v.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	ownerID, err := uuid.Parse(claims.Subject)
	if err != nil || ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: subject is not an owner ID", ErrInvalidToken)
	}

	out := &Claims{OwnerID: ownerID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
