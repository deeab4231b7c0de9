package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-auth-service/internal/model"
	"go-auth-service/internal/token"
)

// SessionCookie is the credential carrier set by signup/signin and cleared
// by logout.
const SessionCookie = "token"

type tokenVerifier interface {
	Verify(tokenString string, want token.Purpose) (token.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth extracts the session token from the cookie or the
// Authorization header and verifies it. On failure the wrapped handler never
// runs; on success the verified claims are attached to the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			writeUnauthorized(w, "missing credentials")
			return
		}

		claims, err := m.verifier.Verify(raw, token.PurposeSession)
		if err != nil {
			// Signature failures and expiry both read as "unauthenticated"
			// to the client.
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(token.Claims)
	return claims, ok
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}

	return strings.TrimSpace(header[7:])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
