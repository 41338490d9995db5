package audit

import (
	"context"
	"time"
)

// Event kinds recorded by the admission pipeline.
const (
	KindRolloverAuto    = "rollover_auto"
	KindRolloverManual  = "rollover_manual"
	KindSupplierCreated = "supplier_created"
)

// Event represents a fire-and-forget audit record for rollover and
// supplier-creation events. Recording failures must never fail the operation
// that produced the event.
type Event struct {
	ID            int64
	Kind          string
	Actor         string
	CorrelationID string
	Detail        map[string]any
	CreatedAt     time.Time
}

// Recorder defines the contract for persisting audit events.
type Recorder interface {
	// Record persists an audit event.
	Record(ctx context.Context, event Event) error

	// FindByCorrelationID retrieves all events associated with a correlation
	// ID, for debugging a request end to end.
	FindByCorrelationID(ctx context.Context, correlationID string) ([]Event, error)
}
