package invoice

import (
	"context"
	"errors"
)

// ErrDuplicateNumInvoice is returned by CreateAdmitted when the global
// num_invoice uniqueness constraint rejects the insert.
var ErrDuplicateNumInvoice = errors.New("ya existe una factura con ese num_invoice")

// Repository defines the interface for invoice persistence.
type Repository interface {
	// ExistsNumInvoice checks global num_invoice uniqueness.
	ExistsNumInvoice(ctx context.Context, numInvoice string) (bool, error)

	// ExistsNumCmdt checks num_cmdt uniqueness within one fiscal year.
	ExistsNumCmdt(ctx context.Context, fiscalYear, numCmdt string) (bool, error)

	// CreateAdmitted persists the invoice and advances the fiscal-year
	// counter to confirmedNumber inside a single transaction. The advance is
	// the conditional update `WHERE last_number = confirmedNumber-1`; when it
	// touches zero rows a concurrent admission already won, the transaction
	// rolls back and sequence.ErrCounterConflict is returned so the caller
	// can revalidate against the fresh counter.
	CreateAdmitted(ctx context.Context, inv Invoice, confirmedNumber int) (int64, error)

	// CountBySupplier returns how many invoices reference a supplier.
	CountBySupplier(ctx context.Context, supplierID int64) (int, error)
}
