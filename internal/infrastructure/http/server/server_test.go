package server

import (
	"testing"
	"time"

	fiscalyearhandler "3tcapital/ms_admision_facturas/internal/adapters/http/fiscalyear"
	healthhandler "3tcapital/ms_admision_facturas/internal/adapters/http/health"
	invoicehandler "3tcapital/ms_admision_facturas/internal/adapters/http/invoice"
	supplierhandler "3tcapital/ms_admision_facturas/internal/adapters/http/supplier"
	appadmission "3tcapital/ms_admision_facturas/internal/application/admission"
	apphealth "3tcapital/ms_admision_facturas/internal/application/health"
	appsequence "3tcapital/ms_admision_facturas/internal/application/sequence"
	appsupplier "3tcapital/ms_admision_facturas/internal/application/supplier"
	"3tcapital/ms_admision_facturas/internal/infrastructure/config"
	"3tcapital/ms_admision_facturas/internal/testutil"
)

func testHandlers() Handlers {
	log := testutil.NewNullLogger()
	invoices := &testutil.MockInvoiceRepository{}

	sequencer := appsequence.NewService(testutil.NewInMemoryCounter(), testutil.NewMockSettingsStore(), invoices, nil, log)
	resolver := appsupplier.NewResolver(&testutil.MockSupplierRepository{}, nil, log)
	admin := appsupplier.NewAdmin(&testutil.MockSupplierRepository{}, invoices, log)
	admission := appadmission.NewService(sequencer, resolver, invoices, log)
	health := apphealth.NewService(apphealth.Metadata{Service: "test"}, nil)

	return Handlers{
		Invoice:    invoicehandler.NewHandler(admission, sequencer, log),
		Supplier:   supplierhandler.NewHandler(resolver, admin, log),
		FiscalYear: fiscalyearhandler.NewHandler(sequencer, log),
		Health:     healthhandler.NewHandler(health),
	}
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		HTTP: config.HTTPSettings{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Auth: config.AuthSettings{
			Enabled: false,
		},
	}
}

func TestNew_NilLogger(t *testing.T) {
	_, err := New(Options{
		Config:   testConfig(),
		Logger:   nil,
		Handlers: testHandlers(),
	})

	if err == nil {
		t.Fatal("expected error for nil logger")
	}

	if err.Error() != "logger is required" {
		t.Errorf("expected error 'logger is required', got %q", err.Error())
	}
}

func TestNew_MissingHandlers(t *testing.T) {
	handlers := testHandlers()
	handlers.Invoice = nil

	_, err := New(Options{
		Config:   testConfig(),
		Logger:   testutil.NewTestLogger(),
		Handlers: handlers,
	})

	if err == nil {
		t.Fatal("expected error for missing invoice handler")
	}
}

func TestNew_ValidOptions(t *testing.T) {
	server, err := New(Options{
		Config:   testConfig(),
		Logger:   testutil.NewTestLogger(),
		Handlers: testHandlers(),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if server == nil {
		t.Fatal("expected server to be created, got nil")
	}

	if server.httpServer.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %s", server.httpServer.Addr)
	}
}
