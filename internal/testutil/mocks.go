package testutil

import (
	"context"
	"errors"
	"sync"

	"3tcapital/ms_admision_facturas/internal/core/audit"
	"3tcapital/ms_admision_facturas/internal/core/invoice"
	"3tcapital/ms_admision_facturas/internal/core/sequence"
	"3tcapital/ms_admision_facturas/internal/core/settings"
	"3tcapital/ms_admision_facturas/internal/core/supplier"
)

// MockCounterRepository is a configurable mock of sequence.Repository.
type MockCounterRepository struct {
	GetFunc     func(ctx context.Context, fiscalYear string) (*sequence.Counter, error)
	InitFunc    func(ctx context.Context, fiscalYear string) (sequence.Counter, error)
	AdvanceFunc func(ctx context.Context, fiscalYear string, confirmed int) (bool, error)
}

func (m *MockCounterRepository) Get(ctx context.Context, fiscalYear string) (*sequence.Counter, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, fiscalYear)
	}
	return nil, nil
}

func (m *MockCounterRepository) Init(ctx context.Context, fiscalYear string) (sequence.Counter, error) {
	if m.InitFunc != nil {
		return m.InitFunc(ctx, fiscalYear)
	}
	return sequence.Counter{FiscalYear: fiscalYear}, nil
}

func (m *MockCounterRepository) Advance(ctx context.Context, fiscalYear string, confirmed int) (bool, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, fiscalYear, confirmed)
	}
	return true, nil
}

// MockSettingsStore is a configurable mock of settings.Store with sensible
// defaults: year 2025, 4-digit numbers up to 9999, auto switch on,
// threshold 50.
type MockSettingsStore struct {
	FiscalYear           string
	FormatValue          sequence.Format
	AutoSwitch           bool
	Threshold            int
	FormatErr            error
	SetActiveFunc        func(ctx context.Context, year string) error
	ActiveFiscalYearFunc func(ctx context.Context) (string, error)
	ActiveFiscalYearErr  error
}

// NewMockSettingsStore returns a store preloaded with the defaults.
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{
		FiscalYear:  "2025",
		FormatValue: sequence.Format{Padding: 4, Max: 9999},
		AutoSwitch:  true,
		Threshold:   50,
	}
}

func (m *MockSettingsStore) ActiveFiscalYear(ctx context.Context) (string, error) {
	if m.ActiveFiscalYearFunc != nil {
		return m.ActiveFiscalYearFunc(ctx)
	}
	if m.ActiveFiscalYearErr != nil {
		return "", m.ActiveFiscalYearErr
	}
	return m.FiscalYear, nil
}

func (m *MockSettingsStore) SetActiveFiscalYear(ctx context.Context, year string) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, year)
	}
	m.FiscalYear = year
	return nil
}

func (m *MockSettingsStore) Format(ctx context.Context) (sequence.Format, error) {
	if m.FormatErr != nil {
		return sequence.Format{}, m.FormatErr
	}
	return m.FormatValue, nil
}

func (m *MockSettingsStore) AutoYearSwitch(ctx context.Context) (bool, error) {
	return m.AutoSwitch, nil
}

func (m *MockSettingsStore) WarningThreshold(ctx context.Context) (int, error) {
	return m.Threshold, nil
}

// MockSupplierRepository is a configurable mock of supplier.Repository.
type MockSupplierRepository struct {
	FindExactFunc           func(ctx context.Context, name, accountNumber, phone string) (*supplier.Supplier, error)
	FindByAccountNumberFunc func(ctx context.Context, accountNumber string) (*supplier.Supplier, error)
	FindByPhoneFunc         func(ctx context.Context, phone string) (*supplier.Supplier, error)
	FindByIDFunc            func(ctx context.Context, id int64) (*supplier.Supplier, error)
	CreateFunc              func(ctx context.Context, s supplier.Supplier) (int64, error)
	UpdateFunc              func(ctx context.Context, id int64, s supplier.Supplier) error
	DeleteFunc              func(ctx context.Context, id int64) error

	CreateCalls int
}

func (m *MockSupplierRepository) FindExact(ctx context.Context, name, accountNumber, phone string) (*supplier.Supplier, error) {
	if m.FindExactFunc != nil {
		return m.FindExactFunc(ctx, name, accountNumber, phone)
	}
	return nil, nil
}

func (m *MockSupplierRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*supplier.Supplier, error) {
	if m.FindByAccountNumberFunc != nil {
		return m.FindByAccountNumberFunc(ctx, accountNumber)
	}
	return nil, nil
}

func (m *MockSupplierRepository) FindByPhone(ctx context.Context, phone string) (*supplier.Supplier, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, nil
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id int64) (*supplier.Supplier, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, supplier.ErrNotFound
}

func (m *MockSupplierRepository) Create(ctx context.Context, s supplier.Supplier) (int64, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return 1, nil
}

func (m *MockSupplierRepository) Update(ctx context.Context, id int64, s supplier.Supplier) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, s)
	}
	return nil
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockInvoiceRepository is a configurable mock of invoice.Repository.
type MockInvoiceRepository struct {
	ExistsNumInvoiceFunc func(ctx context.Context, numInvoice string) (bool, error)
	ExistsNumCmdtFunc    func(ctx context.Context, fiscalYear, numCmdt string) (bool, error)
	CreateAdmittedFunc   func(ctx context.Context, inv invoice.Invoice, confirmedNumber int) (int64, error)
	CountBySupplierFunc  func(ctx context.Context, supplierID int64) (int, error)

	CreateCalls int
}

func (m *MockInvoiceRepository) ExistsNumInvoice(ctx context.Context, numInvoice string) (bool, error) {
	if m.ExistsNumInvoiceFunc != nil {
		return m.ExistsNumInvoiceFunc(ctx, numInvoice)
	}
	return false, nil
}

func (m *MockInvoiceRepository) ExistsNumCmdt(ctx context.Context, fiscalYear, numCmdt string) (bool, error) {
	if m.ExistsNumCmdtFunc != nil {
		return m.ExistsNumCmdtFunc(ctx, fiscalYear, numCmdt)
	}
	return false, nil
}

func (m *MockInvoiceRepository) CreateAdmitted(ctx context.Context, inv invoice.Invoice, confirmedNumber int) (int64, error) {
	m.CreateCalls++
	if m.CreateAdmittedFunc != nil {
		return m.CreateAdmittedFunc(ctx, inv, confirmedNumber)
	}
	return 1, nil
}

func (m *MockInvoiceRepository) CountBySupplier(ctx context.Context, supplierID int64) (int, error) {
	if m.CountBySupplierFunc != nil {
		return m.CountBySupplierFunc(ctx, supplierID)
	}
	return 0, nil
}

// MockAuditRecorder captures recorded events in memory.
type MockAuditRecorder struct {
	mu     sync.Mutex
	Events []audit.Event
	Err    error
}

func (m *MockAuditRecorder) Record(ctx context.Context, event audit.Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockAuditRecorder) FindByCorrelationID(ctx context.Context, correlationID string) ([]audit.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []audit.Event
	for _, e := range m.Events {
		if e.CorrelationID == correlationID {
			events = append(events, e)
		}
	}
	return events, nil
}

// InMemoryCounter backs a sequence.Repository with a real in-memory counter
// so concurrent admission tests exercise the conditional-advance discipline.
type InMemoryCounter struct {
	mu       sync.Mutex
	Counters map[string]int
}

func NewInMemoryCounter() *InMemoryCounter {
	return &InMemoryCounter{Counters: make(map[string]int)}
}

func (c *InMemoryCounter) Get(ctx context.Context, fiscalYear string) (*sequence.Counter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.Counters[fiscalYear]
	if !ok {
		return nil, nil
	}
	return &sequence.Counter{FiscalYear: fiscalYear, LastNumber: last}, nil
}

func (c *InMemoryCounter) Init(ctx context.Context, fiscalYear string) (sequence.Counter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Counters[fiscalYear]; !ok {
		c.Counters[fiscalYear] = 0
	}
	return sequence.Counter{FiscalYear: fiscalYear, LastNumber: c.Counters[fiscalYear]}, nil
}

func (c *InMemoryCounter) Advance(ctx context.Context, fiscalYear string, confirmed int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Counters[fiscalYear] != confirmed-1 {
		return false, nil
	}
	c.Counters[fiscalYear] = confirmed
	return true, nil
}

// ErrStore is a reusable fatal-store error for settings failures in tests.
var ErrStore = errors.New("store unavailable")

var _ settings.Store = (*MockSettingsStore)(nil)
var _ sequence.Repository = (*MockCounterRepository)(nil)
var _ sequence.Repository = (*InMemoryCounter)(nil)
var _ supplier.Repository = (*MockSupplierRepository)(nil)
var _ invoice.Repository = (*MockInvoiceRepository)(nil)
var _ audit.Recorder = (*MockAuditRecorder)(nil)
