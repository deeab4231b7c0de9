package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-auth-service/internal/middleware"
	"go-auth-service/internal/model"
	"go-auth-service/internal/service"
	"go-auth-service/pkg/apierror"
)

type ResetHandler struct {
	service *service.ResetService
	audit   *service.AuditService
}

func NewResetHandler(service *service.ResetService, audit *service.AuditService) *ResetHandler {
	return &ResetHandler{service: service, audit: audit}
}

func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := h.service.Request(r.Context(), payload.Email); err != nil {
		h.audit.Record(r.Context(), model.AuditActionResetRequest, auditOutcome(err), payload.Email, middleware.ExtractClientIP(r), auditDetail(err))
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditActionResetRequest, model.AuditOutcomeOK, payload.Email, middleware.ExtractClientIP(r), "")
	writeSuccess(w, http.StatusOK, model.MessageResponse{Message: "email sent"}, nil)
}

// Redeem takes the reset token as a URL segment, mirroring the redemption
// link placed in the email.
func (h *ResetHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	tokenString := chi.URLParam(r, "token")

	var payload model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := h.service.Redeem(r.Context(), tokenString, payload.Password, payload.ConfirmPassword); err != nil {
		h.audit.Record(r.Context(), model.AuditActionResetRedeem, auditOutcome(err), "", middleware.ExtractClientIP(r), auditDetail(err))
		writeError(w, err)
		return
	}

	h.audit.Record(r.Context(), model.AuditActionResetRedeem, model.AuditOutcomeOK, "", middleware.ExtractClientIP(r), "")
	writeSuccess(w, http.StatusOK, model.MessageResponse{Message: "password updated"}, nil)
}
