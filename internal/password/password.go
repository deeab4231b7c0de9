package password

import (
	"fmt"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"

	"go-auth-service/internal/model"
)

const DefaultCost = 10

// Hasher wraps bcrypt with a fixed work factor. bcrypt embeds a random
// per-call salt in the digest, so hashing the same plaintext twice yields
// different digests.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. Malformed digests
// verify as false, they are never an error surface.
func (h *Hasher) Verify(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// CheckStrength rejects passwords below minEntropy bits. A minEntropy of
// zero disables the gate.
func CheckStrength(plaintext string, minEntropy float64) error {
	if minEntropy <= 0 {
		return nil
	}

	if err := passwordvalidator.Validate(plaintext, minEntropy); err != nil {
		return fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
	}

	return nil
}
