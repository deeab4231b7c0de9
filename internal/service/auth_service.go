package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-auth-service/internal/model"
	"go-auth-service/internal/password"
	"go-auth-service/internal/token"
)

// UserStore is the narrow view of persistent storage the auth core needs.
// Implementations map storage-level outcomes to the model sentinels:
// FindByEmail and UpdatePasswordHash return model.ErrUserNotFound for absent
// accounts, Create returns model.ErrUserAlreadyExists when the email is
// taken. Create must be conditional at the storage layer so concurrent
// signups for one email cannot both succeed.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, user model.User) error
	UpdatePasswordHash(ctx context.Context, email string, passwordHash string) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, digest string) bool
}

type TokenManager interface {
	Issue(email string, purpose token.Purpose, ttl time.Duration) (string, error)
	Verify(tokenString string, want token.Purpose) (token.Claims, error)
}

// AuthService orchestrates signup and signin. It holds no per-request state;
// all durable state lives behind UserStore.
type AuthService struct {
	users      UserStore
	hasher     PasswordHasher
	tokens     TokenManager
	sessionTTL time.Duration
	minEntropy float64
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenManager, sessionTTL time.Duration, minEntropy float64) *AuthService {
	return &AuthService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		minEntropy: minEntropy,
	}
}

// Signup validates the request shape before touching the hasher or the
// store, then creates the account and issues a session token. Emails are
// stored exactly as submitted; no case normalization happens anywhere.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.Session, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return model.Session{}, fmt.Errorf("%w: all fields are required", model.ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return model.Session{}, fmt.Errorf("%w: passwords do not match", model.ErrValidation)
	}
	if err := password.CheckStrength(req.Password, s.minEntropy); err != nil {
		return model.Session{}, err
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return model.Session{}, model.ErrUserAlreadyExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.Session{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.Session{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store insert is conditional on the email being absent, which
	// closes the race between the lookup above and this write.
	if err := s.users.Create(ctx, user); err != nil {
		return model.Session{}, err
	}

	return s.newSession(user)
}

func (s *AuthService) Signin(ctx context.Context, email string, plaintext string) (model.Session, error) {
	if email == "" || plaintext == "" {
		return model.Session{}, fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.Session{}, err
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return model.Session{}, model.ErrInvalidCredentials
	}

	return s.newSession(user)
}

// Profile loads the account identified by a verified session claim. The
// email comes from the token, so it is trusted only to name which account to
// load.
func (s *AuthService) Profile(ctx context.Context, email string) (model.Profile, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.Profile{}, err
	}

	return model.Profile{Username: user.Username, Email: user.Email}, nil
}

func (s *AuthService) newSession(user model.User) (model.Session, error) {
	signed, err := s.tokens.Issue(user.Email, token.PurposeSession, s.sessionTTL)
	if err != nil {
		return model.Session{}, err
	}

	return model.Session{
		Token:     signed,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
		User:      model.Profile{Username: user.Username, Email: user.Email},
	}, nil
}
