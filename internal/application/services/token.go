package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// Claims are the session token claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int64         `json:"uid"`
	Role   entities.Role `json:"role"`
}

// Requester returns the caller identity carried by the token
func (c *Claims) Requester() Requester {
	return Requester{UserID: c.UserID, Role: c.Role}
}

// TokenIssuer signs and verifies HS256 session tokens
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token for user
func (t *TokenIssuer) Issue(user *entities.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: user.ID,
		Role:   user.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError("failed to sign session token", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns its claims
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid or expired session token")
	}
	if claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, apperrors.NewUnauthorizedError("invalid session token claims")
	}
	return claims, nil
}
