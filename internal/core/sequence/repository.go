package sequence

import "context"

// Repository defines the interface for fiscal-year counter persistence.
type Repository interface {
	// Get retrieves the counter for a fiscal year.
	// Returns nil if no counter exists yet.
	Get(ctx context.Context, fiscalYear string) (*Counter, error)

	// Init creates the counter for a fiscal year at 0 if it does not exist,
	// and returns the row that is now present. Existing counters are never
	// reset.
	Init(ctx context.Context, fiscalYear string) (Counter, error)

	// Advance sets last_number to confirmed with the conditional update
	// `WHERE last_number = confirmed-1`. A false result means a concurrent
	// writer already advanced the counter and the caller must retry.
	Advance(ctx context.Context, fiscalYear string, confirmed int) (bool, error)
}
