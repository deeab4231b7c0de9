package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-auth-service/internal/model"
)

// Purpose scopes a token to a single use. A session token can never be
// redeemed as a reset token and vice versa; Verify enforces the match.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

// Claims are the verified contents of a token. The email claim is only
// trustworthy after Verify has checked signature, expiry and purpose.
type Claims struct {
	Email     string
	Purpose   Purpose
	TokenID   string
	ExpiresAt time.Time
}

// Manager signs and verifies compact session/reset tokens. The secret is
// loaded once at startup and never exposed afterwards.
type Manager struct {
	secret []byte
}

func NewManager(secret string) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}

	return &Manager{secret: []byte(secret)}, nil
}

func (m *Manager) Issue(email string, purpose Purpose, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     email,
		"purpose": string(purpose),
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify decodes tokenString and returns its claims. Expired tokens fail
// with model.ErrTokenExpired; every other failure (bad signature, malformed
// input, wrong purpose, missing subject) is model.ErrInvalidToken so callers
// cannot accidentally leak why verification failed.
func (m *Manager) Verify(tokenString string, want Purpose) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, model.ErrTokenExpired
		}
		return Claims{}, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, model.ErrInvalidToken
	}

	purpose, _ := claimsMap["purpose"].(string)
	if Purpose(purpose) != want {
		return Claims{}, model.ErrInvalidToken
	}

	email, _ := claimsMap["sub"].(string)
	if email == "" {
		return Claims{}, model.ErrInvalidToken
	}

	claims := Claims{
		Email:   email,
		Purpose: Purpose(purpose),
	}
	claims.TokenID, _ = claimsMap["jti"].(string)

	if exp, expErr := claimsMap.GetExpirationTime(); expErr == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
