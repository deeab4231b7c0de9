package service

import (
	"context"
	"sync"
	"time"

	"go-auth-service/internal/model"
	"go-auth-service/internal/password"
	"go-auth-service/internal/token"
)

// fakeUserStore is an in-memory UserStore that counts calls so tests can
// assert which operations ran.
type fakeUserStore struct {
	mu          sync.Mutex
	users       map[string]model.User
	findCalls   int
	createCalls int
	updateCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.findCalls++
	user, ok := f.users[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) Create(_ context.Context, user model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if _, ok := f.users[user.Email]; ok {
		return model.ErrUserAlreadyExists
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, email string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	user, ok := f.users[email]
	if !ok {
		return model.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	f.users[email] = user
	return nil
}

func (f *fakeUserStore) storedHash(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.users[email].PasswordHash
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.users)
}

// countingHasher wraps the real bcrypt hasher and records Hash calls.
type countingHasher struct {
	*password.Hasher
	mu        sync.Mutex
	hashCalls int
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.mu.Lock()
	h.hashCalls++
	h.mu.Unlock()

	return h.Hasher.Hash(plaintext)
}

// fakeResetTokenStore mirrors the conditional-insert semantics of the
// Postgres implementation.
type fakeResetTokenStore struct {
	mu       sync.Mutex
	consumed map[string]time.Time
}

func newFakeResetTokenStore() *fakeResetTokenStore {
	return &fakeResetTokenStore{consumed: map[string]time.Time{}}
}

func (f *fakeResetTokenStore) Consume(_ context.Context, tokenID string, _ string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.consumed[tokenID]; ok {
		return model.ErrInvalidToken
	}
	f.consumed[tokenID] = expiresAt
	return nil
}

func (f *fakeResetTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	now := time.Now().UTC()
	for id, expiresAt := range f.consumed {
		if !expiresAt.After(now) {
			delete(f.consumed, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeResetTokenStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.consumed)
}

func mustManager(secret string) *token.Manager {
	m, err := token.NewManager(secret)
	if err != nil {
		panic(err)
	}
	return m
}
