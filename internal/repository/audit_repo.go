package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-auth-service/internal/model"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, event model.AuditEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_audit (id, action, outcome, actor_email, client_ip, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Action, event.Outcome, event.ActorEmail, event.ClientIP, event.Detail, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit int, offset int) ([]model.AuditEvent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM auth_audit`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, action, outcome, actor_email, client_ip, detail, occurred_at
		 FROM auth_audit ORDER BY occurred_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]model.AuditEvent, 0)
	for rows.Next() {
		var e model.AuditEvent
		if err := rows.Scan(&e.ID, &e.Action, &e.Outcome, &e.ActorEmail, &e.ClientIP, &e.Detail, &e.OccurredAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}
