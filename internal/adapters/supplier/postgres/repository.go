package postgres

import (
	"context"
	"errors"
	"fmt"

	"3tcapital/ms_admision_facturas/internal/core/supplier"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository implements the supplier.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL supplier repository.
func NewRepository(pool *pgxpool.Pool) supplier.Repository {
	return &Repository{pool: pool}
}

const supplierColumns = "id, nombre, numero_cuenta, telefono, creado_por, fecha_creacion"

// FindExact retrieves the supplier matching all three identity attributes.
func (r *Repository) FindExact(ctx context.Context, name, accountNumber, phone string) (*supplier.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM supplier
		WHERE nombre = $1 AND numero_cuenta = $2 AND telefono = $3
	`
	return r.findOne(ctx, query, name, accountNumber, phone)
}

// FindByAccountNumber retrieves the supplier owning the canonical account number.
func (r *Repository) FindByAccountNumber(ctx context.Context, accountNumber string) (*supplier.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM supplier
		WHERE numero_cuenta = $1
	`
	return r.findOne(ctx, query, accountNumber)
}

// FindByPhone retrieves the supplier owning the phone.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*supplier.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM supplier
		WHERE telefono = $1 AND telefono <> ''
	`
	return r.findOne(ctx, query, phone)
}

// FindByID retrieves a supplier by id, or supplier.ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64) (*supplier.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM supplier
		WHERE id = $1
	`
	found, err := r.findOne(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, supplier.ErrNotFound
	}
	return found, nil
}

// Create persists a new supplier and returns its id. Unique-constraint
// violations map to the typed conflict errors.
func (r *Repository) Create(ctx context.Context, s supplier.Supplier) (int64, error) {
	query := `
		INSERT INTO supplier (nombre, numero_cuenta, telefono, creado_por)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, s.Name, s.AccountNumber, s.Phone, s.CreatedBy).Scan(&id)
	if err != nil {
		if conflictErr := translateUnique(err); conflictErr != nil {
			return 0, conflictErr
		}
		return 0, fmt.Errorf("create supplier: %w", err)
	}
	return id, nil
}

// Update corrects an existing supplier.
func (r *Repository) Update(ctx context.Context, id int64, s supplier.Supplier) error {
	query := `
		UPDATE supplier
		SET nombre = $1, numero_cuenta = $2, telefono = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, s.Name, s.AccountNumber, s.Phone, id)
	if err != nil {
		if conflictErr := translateUnique(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return supplier.ErrNotFound
	}
	return nil
}

// Delete removes a supplier. Foreign-key violations from referencing
// invoices surface as supplier.ErrHasInvoices.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM supplier WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return supplier.ErrHasInvoices
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return supplier.ErrNotFound
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*supplier.Supplier, error) {
	var s supplier.Supplier
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.Name,
		&s.AccountNumber,
		&s.Phone,
		&s.CreatedBy,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query supplier: %w", err)
	}
	return &s, nil
}

// translateUnique maps unique-constraint violations onto the typed conflict
// errors, so a concurrent duplicate create fails fast as a conflict instead
// of corrupting state.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case "supplier_telefono_key":
		return supplier.ErrPhoneTaken
	default:
		return supplier.ErrAccountNumberTaken
	}
}
