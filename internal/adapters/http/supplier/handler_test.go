package supplier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	appsupplier "3tcapital/ms_admision_facturas/internal/application/supplier"
	coresupplier "3tcapital/ms_admision_facturas/internal/core/supplier"
	"3tcapital/ms_admision_facturas/internal/testutil"
)

func newTestHandler(suppliers *testutil.MockSupplierRepository, invoices *testutil.MockInvoiceRepository) *Handler {
	log := testutil.NewNullLogger()
	resolver := appsupplier.NewResolver(suppliers, nil, log)
	admin := appsupplier.NewAdmin(suppliers, invoices, log)
	return NewHandler(resolver, admin, log)
}

// routedRequest dispatches through a chi router so URL params resolve.
func routedRequest(handler *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/proveedores/resolver", handler.Resolve)
	r.Get("/proveedores/{id}", handler.Get)
	r.Put("/proveedores/{id}", handler.Update)
	r.Delete("/proveedores/{id}", handler.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Resolve(t *testing.T) {
	owner := &coresupplier.Supplier{ID: 5, Name: "DUENO SAS", AccountNumber: "CO01234567", Phone: "3009998877"}

	tests := []struct {
		name           string
		body           map[string]string
		accountOwner   *coresupplier.Supplier
		expectedStatus int
		expectOwner    bool
	}{
		{
			name: "no conflicts",
			body: map[string]string{
				"nombre":        "NUEVO SAS",
				"numero_cuenta": "GB29NWBK60161331926819",
				"telefono":      "3001112233",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "account number claimed",
			body: map[string]string{
				"nombre":        "NUEVO SAS",
				"numero_cuenta": "CO01234567",
			},
			accountOwner:   owner,
			expectedStatus: http.StatusOK,
			expectOwner:    true,
		},
		{
			name: "invalid account number",
			body: map[string]string{
				"nombre":        "NUEVO SAS",
				"numero_cuenta": "AB1",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suppliers := &testutil.MockSupplierRepository{
				FindByAccountNumberFunc: func(ctx context.Context, accountNumber string) (*coresupplier.Supplier, error) {
					return tt.accountOwner, nil
				},
			}
			handler := newTestHandler(suppliers, &testutil.MockInvoiceRepository{})

			w := routedRequest(handler, testutil.CreateRequest(http.MethodPost, "/proveedores/resolver", tt.body, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			body := testutil.ReadErrorResponse(t, w)
			_, hasOwner := body["accountOwner"]
			if hasOwner != tt.expectOwner {
				t.Errorf("expected accountOwner presence=%v, got %v", tt.expectOwner, body)
			}
			if suppliers.CreateCalls != 0 {
				t.Errorf("pre-check must not create suppliers, got %d creates", suppliers.CreateCalls)
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	suppliers := &testutil.MockSupplierRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*coresupplier.Supplier, error) {
			if id == 7 {
				return &coresupplier.Supplier{ID: 7, Name: "ACME LTDA", AccountNumber: "CO01234567"}, nil
			}
			return nil, coresupplier.ErrNotFound
		},
	}
	handler := newTestHandler(suppliers, &testutil.MockInvoiceRepository{})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "existing supplier", path: "/proveedores/7", expectedStatus: http.StatusOK},
		{name: "unknown supplier", path: "/proveedores/99", expectedStatus: http.StatusNotFound},
		{name: "non numeric id", path: "/proveedores/abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := routedRequest(handler, testutil.CreateRequest(http.MethodGet, tt.path, nil, nil))
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		updateErr      error
		expectedStatus int
	}{
		{name: "successful correction", expectedStatus: http.StatusOK},
		{name: "account claimed elsewhere", updateErr: coresupplier.ErrAccountNumberTaken, expectedStatus: http.StatusConflict},
		{name: "phone claimed elsewhere", updateErr: coresupplier.ErrPhoneTaken, expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suppliers := &testutil.MockSupplierRepository{
				FindByIDFunc: func(ctx context.Context, id int64) (*coresupplier.Supplier, error) {
					return &coresupplier.Supplier{ID: id, Name: "ACME LTDA"}, nil
				},
				UpdateFunc: func(ctx context.Context, id int64, s coresupplier.Supplier) error {
					return tt.updateErr
				},
			}
			handler := newTestHandler(suppliers, &testutil.MockInvoiceRepository{})

			body := map[string]string{"nombre": "ACME CORREGIDO", "numero_cuenta": "CO01234567"}
			w := routedRequest(handler, testutil.CreateRequest(http.MethodPut, "/proveedores/7", body, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		invoiceCount   int
		expectedStatus int
	}{
		{name: "unreferenced supplier", expectedStatus: http.StatusOK},
		{name: "referenced supplier", invoiceCount: 2, expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suppliers := &testutil.MockSupplierRepository{
				FindByIDFunc: func(ctx context.Context, id int64) (*coresupplier.Supplier, error) {
					return &coresupplier.Supplier{ID: id, Name: "ACME LTDA"}, nil
				},
			}
			invoices := &testutil.MockInvoiceRepository{
				CountBySupplierFunc: func(ctx context.Context, supplierID int64) (int, error) {
					return tt.invoiceCount, nil
				},
			}
			handler := newTestHandler(suppliers, invoices)

			w := routedRequest(handler, testutil.CreateRequest(http.MethodDelete, "/proveedores/7", nil, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
