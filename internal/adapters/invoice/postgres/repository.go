package postgres

import (
	"context"
	"errors"
	"fmt"

	"3tcapital/ms_admision_facturas/internal/core/invoice"
	"3tcapital/ms_admision_facturas/internal/core/sequence"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository implements the invoice.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL invoice repository.
func NewRepository(pool *pgxpool.Pool) invoice.Repository {
	return &Repository{pool: pool}
}

// ExistsNumInvoice checks global num_invoice uniqueness.
func (r *Repository) ExistsNumInvoice(ctx context.Context, numInvoice string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoice WHERE num_invoice = $1)`,
		numInvoice,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check num_invoice: %w", err)
	}
	return exists, nil
}

// ExistsNumCmdt checks num_cmdt uniqueness within one fiscal year.
func (r *Repository) ExistsNumCmdt(ctx context.Context, fiscalYear, numCmdt string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoice WHERE fiscal_year = $1 AND num_cmdt = $2)`,
		fiscalYear, numCmdt,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check num_cmdt: %w", err)
	}
	return exists, nil
}

// CreateAdmitted persists the invoice and advances the fiscal-year counter
// inside one transaction. The conditional counter update runs first: when it
// touches zero rows a concurrent admission already claimed the slot, the
// transaction rolls back and sequence.ErrCounterConflict is returned.
func (r *Repository) CreateAdmitted(ctx context.Context, inv invoice.Invoice, confirmedNumber int) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin admission transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE fiscal_year_counter SET last_number = $1
		 WHERE fiscal_year = $2 AND last_number = $3`,
		confirmedNumber, inv.FiscalYear, confirmedNumber-1,
	)
	if err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return 0, sequence.ErrCounterConflict
	}

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO invoice (
			num_invoice, num_cmdt, fiscal_year, supplier_id, monto,
			fecha_factura, fecha_llegada, naturaleza, folio, estado, tipo, creado_por
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		inv.NumInvoice,
		inv.NumCmdt,
		inv.FiscalYear,
		inv.SupplierID,
		inv.Amount,
		inv.InvoiceDate,
		inv.ArrivalDate,
		inv.Nature,
		inv.Folio,
		inv.Status,
		inv.Type,
		inv.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "invoice_num_invoice_key" {
				return 0, invoice.ErrDuplicateNumInvoice
			}
			// The (fiscal_year, num_cmdt) constraint can only fire here if a
			// concurrent writer slipped in; treat it like a lost advance.
			return 0, sequence.ErrCounterConflict
		}
		return 0, fmt.Errorf("insert invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit admission: %w", err)
	}
	return id, nil
}

// CountBySupplier returns how many invoices reference a supplier.
func (r *Repository) CountBySupplier(ctx context.Context, supplierID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoice WHERE supplier_id = $1`,
		supplierID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count supplier invoices: %w", err)
	}
	return count, nil
}
