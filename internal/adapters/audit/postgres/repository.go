package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"3tcapital/ms_admision_facturas/internal/core/audit"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the audit.Recorder interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL audit recorder.
func NewRepository(pool *pgxpool.Pool) audit.Recorder {
	return &Repository{pool: pool}
}

// Record persists an audit event.
func (r *Repository) Record(ctx context.Context, event audit.Event) error {
	detailJSON, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO admission_audit_log (kind, actor, correlation_id, detail)
		 VALUES ($1, $2, $3, $4)`,
		event.Kind, event.Actor, event.CorrelationID, detailJSON,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// FindByCorrelationID retrieves all events recorded for a correlation ID.
func (r *Repository) FindByCorrelationID(ctx context.Context, correlationID string) ([]audit.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, actor, correlation_id, detail, fecha_creacion
		 FROM admission_audit_log
		 WHERE correlation_id = $1
		 ORDER BY id`,
		correlationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event      audit.Event
			detailJSON []byte
		)
		if err := rows.Scan(&event.ID, &event.Kind, &event.Actor, &event.CorrelationID, &detailJSON, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &event.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal audit detail: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
