//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-service/internal/config"
	"go-auth-service/internal/database"
	"go-auth-service/internal/email"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/middleware"
	"go-auth-service/internal/password"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/router"
	"go-auth-service/internal/service"
	"go-auth-service/internal/token"
)

const testResetURLBase = "http://localhost:5173/resetPassword"

type env struct {
	server *httptest.Server
	sender *email.MemorySender
}

// newEnv stands up the full stack against the database named by
// TEST_DATABASE_URL and wipes the tables so each test starts clean.
func newEnv(t *testing.T) *env {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE users, consumed_reset_tokens, auth_audit")
	require.NoError(t, err)

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	resetTokenRepo := repository.NewResetTokenRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	tokens, err := token.NewManager("test-secret")
	require.NoError(t, err)
	hasher := password.NewHasher(bcrypt.MinCost)
	sender := email.NewMemorySender()

	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, hasher, tokens, time.Hour, 0)
	resetService := service.NewResetService(userRepo, resetTokenRepo, hasher, tokens, sender, 15*time.Minute, testResetURLBase, 0)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(tokens), router.Handlers{
		Auth:  handler.NewAuthHandler(authService, auditService),
		Reset: handler.NewResetHandler(resetService, auditService),
		Audit: handler.NewAuditHandler(auditService),
	}))
	t.Cleanup(server.Close)

	return &env{server: server, sender: sender}
}

func (e *env) post(t *testing.T, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func (e *env) signup(t *testing.T, username, address, pw string) *http.Response {
	t.Helper()

	return e.post(t, "/api/v1/auth/signup", map[string]string{
		"username":         username,
		"email":            address,
		"password":         pw,
		"confirm_password": pw,
	})
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}

	t.Fatal("no session cookie in response")
	return nil
}

func (e *env) mailedToken(t *testing.T) string {
	t.Helper()

	messages := e.sender.Messages()
	require.NotEmpty(t, messages)

	last := messages[len(messages)-1]
	require.True(t, strings.HasPrefix(last.Body, testResetURLBase+"/"))
	return strings.TrimPrefix(last.Body, testResetURLBase+"/")
}

func TestSignupSigninProfileLogout(t *testing.T) {
	e := newEnv(t)

	resp := e.signup(t, "abhi", "a@x.com", "oldPw")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	require.True(t, cookie.HttpOnly)

	// The cookie set at signup authenticates the profile endpoint.
	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/api/v1/auth/profile", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	profileResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = profileResp.Body.Close() })
	require.Equal(t, http.StatusOK, profileResp.StatusCode)

	signinResp := e.post(t, "/api/v1/auth/signin", map[string]string{
		"email":    "a@x.com",
		"password": "oldPw",
	})
	require.Equal(t, http.StatusOK, signinResp.StatusCode)

	logoutResp := e.post(t, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)
	require.Negative(t, sessionCookie(t, logoutResp).MaxAge)
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newEnv(t)

	require.Equal(t, http.StatusCreated, e.signup(t, "abhi", "a@x.com", "oldPw").StatusCode)

	// The unique index backs this, so concurrent signups cannot both win.
	require.Equal(t, http.StatusConflict, e.signup(t, "other", "a@x.com", "otherPw").StatusCode)
}

func TestPasswordResetAgainstDatabase(t *testing.T) {
	e := newEnv(t)

	require.Equal(t, http.StatusCreated, e.signup(t, "abhi", "a@x.com", "oldPw").StatusCode)

	forgotResp := e.post(t, "/api/v1/auth/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, forgotResp.StatusCode)
	reset := e.mailedToken(t)

	redeemResp := e.post(t, "/api/v1/auth/reset-password/"+reset, map[string]string{
		"password":         "newPw",
		"confirm_password": "newPw",
	})
	require.Equal(t, http.StatusOK, redeemResp.StatusCode)

	// The consumed row persists, so the replay fails even across restarts.
	replayResp := e.post(t, "/api/v1/auth/reset-password/"+reset, map[string]string{
		"password":         "attackerPw",
		"confirm_password": "attackerPw",
	})
	require.Equal(t, http.StatusUnauthorized, replayResp.StatusCode)

	signinResp := e.post(t, "/api/v1/auth/signin", map[string]string{
		"email":    "a@x.com",
		"password": "newPw",
	})
	require.Equal(t, http.StatusOK, signinResp.StatusCode)
}

func TestAuditTrailPersists(t *testing.T) {
	e := newEnv(t)

	resp := e.signup(t, "abhi", "a@x.com", "oldPw")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)

	e.post(t, "/api/v1/auth/signin", map[string]string{"email": "a@x.com", "password": "wrongPw"})

	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/api/v1/audit", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	auditResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditResp.Body.Close() })
	require.Equal(t, http.StatusOK, auditResp.StatusCode)

	var envelope struct {
		Success bool `json:"success"`
		Data    []struct {
			Action  string `json:"action"`
			Outcome string `json:"outcome"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(auditResp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.GreaterOrEqual(t, len(envelope.Data), 2)
}
