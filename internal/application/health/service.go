package health

import (
	"context"
	"time"

	corehealth "3tcapital/ms_admision_facturas/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Pinger checks reachability of the datastore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	db        Pinger
	startedAt time.Time
}

func NewService(meta Metadata, db Pinger) *Service {
	return &Service{
		meta:      meta,
		db:        db,
		startedAt: time.Now().UTC(),
	}
}

// Status returns the current availability snapshot. The invoice datastore is
// the single source of truth for sequencing, so its reachability decides
// whether the service reports UP or DEGRADED.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)

	overall := "UP"
	database := "UP"
	if s.db == nil {
		database = "NOT_CONFIGURED"
		overall = "DEGRADED"
	} else if err := s.db.Ping(ctx); err != nil {
		database = "DOWN"
		overall = "DEGRADED"
	}

	return corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      overall,
		Database:    database,
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}
}
