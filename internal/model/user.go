package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the authenticated view of an account. It never carries the
// password hash.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the outcome of a successful signup or signin. The token is
// opaque to the transport layer; it only stores and forwards it.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}
