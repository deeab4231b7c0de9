package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-auth-service/internal/middleware"
	"go-auth-service/internal/model"
	"go-auth-service/internal/service"
	"go-auth-service/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
	audit   *service.AuditService
}

func NewAuthHandler(service *service.AuthService, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{service: service, audit: audit}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	session, err := h.service.Signup(r.Context(), payload)
	if err != nil {
		h.audit.Record(r.Context(), model.AuditActionSignup, auditOutcome(err), payload.Email, middleware.ExtractClientIP(r), auditDetail(err))
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditActionSignup, model.AuditOutcomeOK, session.User.Email, middleware.ExtractClientIP(r), "")
	setSessionCookie(w, session.Token, session.ExpiresAt)
	writeSuccess(w, http.StatusCreated, model.SessionResponse{
		Message:   "User created Successfully",
		User:      session.User,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	session, err := h.service.Signin(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.audit.Record(r.Context(), model.AuditActionSignin, auditOutcome(err), payload.Email, middleware.ExtractClientIP(r), auditDetail(err))
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditActionSignin, model.AuditOutcomeOK, session.User.Email, middleware.ExtractClientIP(r), "")
	setSessionCookie(w, session.Token, session.ExpiresAt)
	writeSuccess(w, http.StatusOK, model.SessionResponse{
		Message:   "Signin successful",
		User:      session.User,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil)
}

// Logout is stateless on the server: it only instructs the client to drop
// the cookie. An already-issued token stays valid until its TTL runs out;
// there is no revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeSuccess(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"}, nil)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	profile, err := h.service.Profile(r.Context(), claims.Email)
	if err != nil {
		h.audit.Record(r.Context(), model.AuditActionProfile, auditOutcome(err), claims.Email, middleware.ExtractClientIP(r), auditDetail(err))
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, nil)
}

func setSessionCookie(w http.ResponseWriter, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func auditOutcome(err error) string {
	switch {
	case err == nil:
		return model.AuditOutcomeOK
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrUserAlreadyExists),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrUnauthenticated):
		return model.AuditOutcomeDenied
	default:
		return model.AuditOutcomeError
	}
}

// auditDetail keeps operator context without ever copying request bodies:
// the sentinel text is static and contains no credential material.
func auditDetail(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrValidation):
		return model.ErrValidation.Error()
	case errors.Is(err, model.ErrUserAlreadyExists):
		return model.ErrUserAlreadyExists.Error()
	case errors.Is(err, model.ErrUserNotFound):
		return model.ErrUserNotFound.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		return model.ErrInvalidCredentials.Error()
	case errors.Is(err, model.ErrTokenExpired):
		return model.ErrTokenExpired.Error()
	case errors.Is(err, model.ErrInvalidToken):
		return model.ErrInvalidToken.Error()
	case errors.Is(err, model.ErrDeliveryFailed):
		return model.ErrDeliveryFailed.Error()
	default:
		return "internal error"
	}
}
