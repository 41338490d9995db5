package supplier

import (
	"context"
	"errors"
)

var (
	// ErrAccountNumberTaken is returned by Create when the canonical account
	// number is already claimed. Backed by a unique constraint, so concurrent
	// duplicate creates fail fast instead of corrupting state.
	ErrAccountNumberTaken = errors.New("el numero de cuenta ya pertenece a otro proveedor")

	// ErrPhoneTaken is returned by Create when the phone is already claimed.
	ErrPhoneTaken = errors.New("el telefono ya pertenece a otro proveedor")

	// ErrNotFound is returned when a supplier lookup by id finds nothing.
	ErrNotFound = errors.New("el proveedor no existe")

	// ErrHasInvoices is returned by Delete when invoices still reference the
	// supplier.
	ErrHasInvoices = errors.New("el proveedor tiene facturas asociadas y no puede eliminarse")
)

// Repository defines the interface for supplier persistence operations.
// Account numbers passed to any method must already be canonical.
type Repository interface {
	// FindExact retrieves the supplier whose (account_number, phone, name)
	// all equal the input. Returns nil if none matches.
	FindExact(ctx context.Context, name, accountNumber, phone string) (*Supplier, error)

	// FindByAccountNumber retrieves the supplier owning the account number.
	// Returns nil if none.
	FindByAccountNumber(ctx context.Context, accountNumber string) (*Supplier, error)

	// FindByPhone retrieves the supplier owning the phone. Returns nil if
	// none. Never called with an empty phone.
	FindByPhone(ctx context.Context, phone string) (*Supplier, error)

	// FindByID retrieves a supplier by id, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Supplier, error)

	// Create persists a new supplier and returns its id. Unique-constraint
	// violations surface as ErrAccountNumberTaken or ErrPhoneTaken.
	Create(ctx context.Context, s Supplier) (int64, error)

	// Update corrects an existing supplier's attributes (admin path).
	Update(ctx context.Context, id int64, s Supplier) error

	// Delete removes a supplier that no invoice references, or returns
	// ErrHasInvoices.
	Delete(ctx context.Context, id int64) error
}
