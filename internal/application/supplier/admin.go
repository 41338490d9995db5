package supplier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	coresupplier "3tcapital/ms_admision_facturas/internal/core/supplier"
)

// InvoiceCounter is the slice of the invoice repository the admin service
// needs to guard deletions.
type InvoiceCounter interface {
	CountBySupplier(ctx context.Context, supplierID int64) (int, error)
}

// Admin handles explicit corrections to supplier records. Suppliers are
// created only by the resolver; this service covers the admin update and the
// guarded delete from the supplier lifecycle.
type Admin struct {
	repo     coresupplier.Repository
	invoices InvoiceCounter
	log      *slog.Logger
}

// NewAdmin creates a new supplier admin service.
func NewAdmin(repo coresupplier.Repository, invoices InvoiceCounter, log *slog.Logger) *Admin {
	return &Admin{
		repo:     repo,
		invoices: invoices,
		log:      log,
	}
}

// UpdateRequest carries the corrected supplier attributes.
type UpdateRequest struct {
	Name          string `json:"nombre"`
	AccountNumber string `json:"numero_cuenta"`
	Phone         string `json:"telefono"`
}

// Get retrieves a supplier by id.
func (a *Admin) Get(ctx context.Context, id int64) (*coresupplier.Supplier, error) {
	return a.repo.FindByID(ctx, id)
}

// Update corrects an existing supplier. The account number is canonicalized
// before storage; uniqueness violations surface as the repository's typed
// errors.
func (a *Admin) Update(ctx context.Context, id int64, req UpdateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("nombre es requerido")
	}

	canonical, err := coresupplier.ValidateAccountNumber(req.AccountNumber)
	if err != nil {
		return err
	}

	if _, err := a.repo.FindByID(ctx, id); err != nil {
		return err
	}

	updated := coresupplier.Supplier{
		Name:          strings.TrimSpace(req.Name),
		AccountNumber: canonical,
		Phone:         coresupplier.NormalizePhone(req.Phone),
	}
	if err := a.repo.Update(ctx, id, updated); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}

	a.log.Info("supplier updated", "supplier_id", id)
	return nil
}

// Delete removes a supplier only when no invoices reference it.
func (a *Admin) Delete(ctx context.Context, id int64) error {
	if _, err := a.repo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := a.invoices.CountBySupplier(ctx, id)
	if err != nil {
		return fmt.Errorf("count supplier invoices: %w", err)
	}
	if count > 0 {
		return coresupplier.ErrHasInvoices
	}

	if err := a.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}

	a.log.Info("supplier deleted", "supplier_id", id)
	return nil
}
