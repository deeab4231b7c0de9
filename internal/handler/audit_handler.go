package handler

import (
	"net/http"
	"strconv"

	"go-auth-service/internal/model"
	"go-auth-service/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	events, total, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	writeSuccess(w, http.StatusOK, events, &model.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}
