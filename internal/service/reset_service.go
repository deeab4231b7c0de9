package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-auth-service/internal/email"
	"go-auth-service/internal/model"
	"go-auth-service/internal/password"
	"go-auth-service/internal/token"
)

// ResetTokenStore tracks redeemed reset tokens so each one is single use.
// Consume returns model.ErrInvalidToken when the token id was already
// recorded.
type ResetTokenStore interface {
	Consume(ctx context.Context, tokenID string, email string, expiresAt time.Time) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ResetService implements the self-service password-reset flow: a short
// lived reset token is mailed to the account holder, and redeeming it
// rewrites the stored credential exactly once.
type ResetService struct {
	users        UserStore
	consumed     ResetTokenStore
	hasher       PasswordHasher
	tokens       TokenManager
	sender       email.Sender
	resetTTL     time.Duration
	resetURLBase string
	minEntropy   float64
}

func NewResetService(users UserStore, consumed ResetTokenStore, hasher PasswordHasher, tokens TokenManager, sender email.Sender, resetTTL time.Duration, resetURLBase string, minEntropy float64) *ResetService {
	return &ResetService{
		users:        users,
		consumed:     consumed,
		hasher:       hasher,
		tokens:       tokens,
		sender:       sender,
		resetTTL:     resetTTL,
		resetURLBase: resetURLBase,
		minEntropy:   minEntropy,
	}
}

// Request issues a reset token for the account and mails the redemption
// link. An unknown email fails with model.ErrUserNotFound, which does reveal
// account existence to the caller; accepted as-is from the original design.
func (s *ResetService) Request(ctx context.Context, emailAddr string) error {
	if emailAddr == "" {
		return fmt.Errorf("%w: email is required", model.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	signed, err := s.tokens.Issue(user.Email, token.PurposeReset, s.resetTTL)
	if err != nil {
		return err
	}

	msg := email.Message{
		To:      user.Email,
		Subject: "Reset password",
		Body:    strings.TrimRight(s.resetURLBase, "/") + "/" + signed,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		slog.Error("reset email delivery failed", "error", err)
		return model.ErrDeliveryFailed
	}

	return nil
}

// Redeem verifies the reset token, enforces the confirm-password match, and
// overwrites the stored hash. The token id is marked consumed before the
// credential is rewritten, so a replayed token fails even when it has not
// expired yet.
func (s *ResetService) Redeem(ctx context.Context, tokenString string, newPassword string, confirmPassword string) error {
	claims, err := s.tokens.Verify(tokenString, token.PurposeReset)
	if err != nil {
		return err
	}

	if newPassword == "" || confirmPassword == "" {
		return fmt.Errorf("%w: password and confirmation are required", model.ErrValidation)
	}
	if newPassword != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", model.ErrValidation)
	}
	if err := password.CheckStrength(newPassword, s.minEntropy); err != nil {
		return err
	}

	if claims.TokenID == "" {
		return model.ErrInvalidToken
	}
	if err := s.consumed.Consume(ctx, claims.TokenID, claims.Email, claims.ExpiresAt); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePasswordHash(ctx, claims.Email, hash)
}

// StartGC deletes consumed-token rows whose backing tokens have expired.
// Blocks until ctx is cancelled.
func (s *ResetService) StartGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.consumed.DeleteExpired(ctx)
			if err != nil {
				slog.Warn("reset token gc failed", "error", err)
				continue
			}
			if deleted > 0 {
				slog.Info("reset token gc", "deleted", deleted)
			}
		}
	}
}
