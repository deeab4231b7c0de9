package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-auth-service/internal/model"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager("test-secret")
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager("")
	require.Error(t, err)

	_, err = NewManager("   ")
	require.Error(t, err)
}

func TestManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	signed, err := m.Issue("a@x.com", PurposeSession, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Verify(signed, PurposeSession)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, PurposeSession, claims.Purpose)
	require.NotEmpty(t, claims.TokenID)
	require.WithinDuration(t, time.Now().UTC().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestManager_Expiry(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	signed, err := m.Issue("a@x.com", PurposeSession, -time.Second)
	require.NoError(t, err)

	_, err = m.Verify(signed, PurposeSession)
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestManager_TamperDetection(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	signed, err := m.Issue("a@x.com", PurposeSession, time.Hour)
	require.NoError(t, err)

	// Corrupt one character at several positions: header, payload and
	// signature. Verification must fail closed every time.
	for _, idx := range []int{2, len(signed) / 2, len(signed) - 2} {
		raw := []byte(signed)
		if raw[idx] == '.' {
			idx++
		}
		if raw[idx] == 'x' {
			raw[idx] = 'y'
		} else {
			raw[idx] = 'x'
		}

		_, err := m.Verify(string(raw), PurposeSession)
		require.ErrorIs(t, err, model.ErrInvalidToken, "tampered at index %d", idx)
	}
}

func TestManager_WrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	other, err := NewManager("different-secret")
	require.NoError(t, err)

	signed, err := other.Issue("a@x.com", PurposeSession, time.Hour)
	require.NoError(t, err)

	_, err = m.Verify(signed, PurposeSession)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestManager_PurposeMismatch(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	session, err := m.Issue("a@x.com", PurposeSession, time.Hour)
	require.NoError(t, err)
	reset, err := m.Issue("a@x.com", PurposeReset, time.Hour)
	require.NoError(t, err)

	// A session token must not redeem as a reset token and vice versa.
	_, err = m.Verify(session, PurposeReset)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	_, err = m.Verify(reset, PurposeSession)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	for _, input := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..sig"} {
		_, err := m.Verify(input, PurposeSession)
		require.ErrorIs(t, err, model.ErrInvalidToken)
	}
}
