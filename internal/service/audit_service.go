package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-auth-service/internal/model"
)

type auditStore interface {
	Insert(ctx context.Context, event model.AuditEvent) error
	List(ctx context.Context, limit int, offset int) ([]model.AuditEvent, int, error)
}

// AuditService records auth events for operators. Recording is best effort:
// a failed insert is logged and never surfaced to the user whose request
// triggered it.
type AuditService struct {
	store auditStore
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) Record(ctx context.Context, action string, outcome string, actorEmail string, clientIP string, detail string) {
	if s == nil || s.store == nil {
		return
	}

	event := model.AuditEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Outcome:    outcome,
		ActorEmail: actorEmail,
		ClientIP:   clientIP,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, event); err != nil {
		slog.Warn("audit record failed", "action", action, "error", err)
	}
}

func (s *AuditService) List(ctx context.Context, page int, limit int) ([]model.AuditEvent, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	return s.store.List(ctx, limit, (page-1)*limit)
}
