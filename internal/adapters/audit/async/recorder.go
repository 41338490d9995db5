package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"3tcapital/ms_admision_facturas/internal/core/audit"
)

// recordTimeout bounds each background write so a stalled database cannot
// pile up workers.
const recordTimeout = 5 * time.Second

// Recorder decouples audit writes from the operations that produce them. A
// bounded queue feeds a fixed set of workers; when the queue is full the
// event is dropped and logged rather than blocking the caller.
type Recorder struct {
	next    audit.Recorder
	events  chan audit.Event
	log     *slog.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewRecorder wraps next with workerCount background writers over a queue of
// queueSize events and starts them.
func NewRecorder(next audit.Recorder, workerCount, queueSize int, log *slog.Logger) *Recorder {
	if workerCount <= 0 {
		workerCount = 2
	}
	if queueSize <= 0 {
		queueSize = workerCount * 32
	}

	r := &Recorder{
		next:   next,
		events: make(chan audit.Event, queueSize),
		log:    log,
	}
	for i := 0; i < workerCount; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// Record enqueues the event and returns immediately. A full queue drops the
// event; audit must never slow down or fail the producing operation.
func (r *Recorder) Record(ctx context.Context, event audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("audit recorder closed, event dropped", "kind", event.Kind)
		return nil
	}

	select {
	case r.events <- event:
	default:
		r.log.Warn("audit queue full, event dropped",
			"kind", event.Kind,
			"correlation_id", event.CorrelationID,
		)
	}
	return nil
}

// FindByCorrelationID delegates to the wrapped recorder.
func (r *Recorder) FindByCorrelationID(ctx context.Context, correlationID string) ([]audit.Event, error) {
	return r.next.FindByCorrelationID(ctx, correlationID)
}

// Close stops accepting events, drains the queue and waits for the workers.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for event := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := r.next.Record(ctx, event); err != nil {
			r.log.Error("failed to persist audit event",
				"kind", event.Kind,
				"correlation_id", event.CorrelationID,
				"error", err,
			)
		}
		cancel()
	}
}
