package postgres

import (
	"context"
	"errors"
	"fmt"

	"3tcapital/ms_admision_facturas/internal/core/sequence"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the sequence.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL fiscal-year counter repository.
func NewRepository(pool *pgxpool.Pool) sequence.Repository {
	return &Repository{pool: pool}
}

// Get retrieves the counter for a fiscal year, or nil if absent.
func (r *Repository) Get(ctx context.Context, fiscalYear string) (*sequence.Counter, error) {
	var counter sequence.Counter
	err := r.pool.QueryRow(ctx,
		`SELECT fiscal_year, last_number FROM fiscal_year_counter WHERE fiscal_year = $1`,
		fiscalYear,
	).Scan(&counter.FiscalYear, &counter.LastNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query counter: %w", err)
	}
	return &counter, nil
}

// Init creates the counter at 0 if absent and returns the present row.
// ON CONFLICT DO NOTHING keeps concurrent first uses of a year idempotent and
// never resets an existing counter.
func (r *Repository) Init(ctx context.Context, fiscalYear string) (sequence.Counter, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO fiscal_year_counter (fiscal_year, last_number) VALUES ($1, 0)
		 ON CONFLICT (fiscal_year) DO NOTHING`,
		fiscalYear,
	)
	if err != nil {
		return sequence.Counter{}, fmt.Errorf("init counter: %w", err)
	}

	counter, err := r.Get(ctx, fiscalYear)
	if err != nil {
		return sequence.Counter{}, err
	}
	if counter == nil {
		return sequence.Counter{}, fmt.Errorf("counter for %s missing after init", fiscalYear)
	}
	return *counter, nil
}

// Advance performs the conditional update that closes the check-then-act
// race: it only succeeds when last_number still equals confirmed-1.
func (r *Repository) Advance(ctx context.Context, fiscalYear string, confirmed int) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE fiscal_year_counter SET last_number = $1
		 WHERE fiscal_year = $2 AND last_number = $3`,
		confirmed, fiscalYear, confirmed-1,
	)
	if err != nil {
		return false, fmt.Errorf("advance counter: %w", err)
	}
	return result.RowsAffected() == 1, nil
}
