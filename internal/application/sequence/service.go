package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"3tcapital/ms_admision_facturas/internal/core/audit"
	coresequence "3tcapital/ms_admision_facturas/internal/core/sequence"
	"3tcapital/ms_admision_facturas/internal/core/settings"
	ctxutil "3tcapital/ms_admision_facturas/internal/infrastructure/context"
)

// InvoiceLookup is the slice of the invoice repository the engine needs to
// check per-year uniqueness of a submitted number.
type InvoiceLookup interface {
	ExistsNumCmdt(ctx context.Context, fiscalYear, numCmdt string) (bool, error)
}

// Service is the fiscal-year sequencing engine. It guarantees a contiguous,
// strictly increasing, zero-padded numeric sequence per fiscal year with a
// configurable ceiling, and owns fiscal-year rollover.
type Service struct {
	repo     coresequence.Repository
	store    settings.Store
	invoices InvoiceLookup
	auditor  audit.Recorder
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new sequencing engine.
func NewService(repo coresequence.Repository, store settings.Store, invoices InvoiceLookup, auditor audit.Recorder, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		invoices: invoices,
		auditor:  auditor,
		log:      log,
		now:      time.Now,
	}
}

// CurrentCounter returns the active fiscal year's counter and the number
// format, lazily initializing the counter at 0 on first use of the year.
// Missing format settings are fatal (sequence.ErrConfiguration).
func (s *Service) CurrentCounter(ctx context.Context) (coresequence.Counter, coresequence.Format, error) {
	format, err := s.store.Format(ctx)
	if err != nil {
		return coresequence.Counter{}, coresequence.Format{}, fmt.Errorf("%w: %v", coresequence.ErrConfiguration, err)
	}
	if format.Padding <= 0 || format.Max <= 0 {
		return coresequence.Counter{}, coresequence.Format{}, coresequence.ErrConfiguration
	}

	year, err := s.store.ActiveFiscalYear(ctx)
	if err != nil {
		return coresequence.Counter{}, coresequence.Format{}, fmt.Errorf("%w: %v", coresequence.ErrConfiguration, err)
	}

	counter, err := s.repo.Init(ctx, year)
	if err != nil {
		return coresequence.Counter{}, coresequence.Format{}, fmt.Errorf("init counter for %s: %w", year, err)
	}

	return counter, format, nil
}

// NextExpected computes the zero-padded next number for the active fiscal
// year, or sequence.ErrCapacityExhausted when the counter reached its
// ceiling.
func (s *Service) NextExpected(ctx context.Context) (coresequence.NextNumber, error) {
	counter, format, err := s.CurrentCounter(ctx)
	if err != nil {
		return coresequence.NextNumber{}, err
	}

	if counter.LastNumber >= format.Max {
		return coresequence.NextNumber{}, fmt.Errorf("%w: %s", coresequence.ErrCapacityExhausted, counter.FiscalYear)
	}

	next := counter.LastNumber + 1
	return coresequence.NextNumber{
		Number:     format.Render(next),
		Value:      next,
		FiscalYear: counter.FiscalYear,
	}, nil
}

// ValidateNumber validates a submitted sequential number against the active
// fiscal year, in order: format, per-year uniqueness, exact equality with the
// next expected number. Failures are structured results; the only errors are
// configuration/store failures and capacity exhaustion, which fails closed.
func (s *Service) ValidateNumber(ctx context.Context, candidate string) (coresequence.NumberValidation, error) {
	counter, format, err := s.CurrentCounter(ctx)
	if err != nil {
		return coresequence.NumberValidation{}, err
	}

	if !format.Matches(candidate) {
		return coresequence.NumberValidation{
			Code:          coresequence.VerdictFormat,
			Message:       fmt.Sprintf("el numero debe tener exactamente %d digitos", format.Padding),
			ExpectedWidth: format.Padding,
		}, nil
	}

	if counter.LastNumber >= format.Max {
		return coresequence.NumberValidation{}, fmt.Errorf("%w: %s", coresequence.ErrCapacityExhausted, counter.FiscalYear)
	}
	expected := format.Render(counter.LastNumber + 1)

	taken, err := s.invoices.ExistsNumCmdt(ctx, counter.FiscalYear, candidate)
	if err != nil {
		return coresequence.NumberValidation{}, fmt.Errorf("check num_cmdt uniqueness: %w", err)
	}
	if taken {
		return coresequence.NumberValidation{
			Code:         coresequence.VerdictDuplicate,
			Message:      fmt.Sprintf("el numero %s ya fue utilizado en el ejercicio %s, el siguiente disponible es %s", candidate, counter.FiscalYear, expected),
			NextExpected: expected,
		}, nil
	}

	// No gap filling and no backfilling: only the exact next number passes.
	if candidate != expected {
		return coresequence.NumberValidation{
			Code:         coresequence.VerdictOutOfOrder,
			Message:      fmt.Sprintf("el numero %s rompe la secuencia, se esperaba %s", candidate, expected),
			NextExpected: expected,
		}, nil
	}

	return coresequence.NumberValidation{
		Valid:           true,
		Code:            coresequence.VerdictOK,
		NextExpected:    expected,
		FiscalYear:      counter.FiscalYear,
		ConfirmedNumber: counter.LastNumber + 1,
	}, nil
}

// AdvanceCounter persists last_number = confirmed for the active fiscal year
// with the conditional update discipline. Callers that persist invoices
// through this module's own repository never call this directly; it is the
// contract for external persistence, to be invoked only after the invoice
// row is durably committed.
func (s *Service) AdvanceCounter(ctx context.Context, confirmed int) error {
	year, err := s.store.ActiveFiscalYear(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", coresequence.ErrConfiguration, err)
	}

	advanced, err := s.repo.Advance(ctx, year, confirmed)
	if err != nil {
		return fmt.Errorf("advance counter for %s: %w", year, err)
	}
	if !advanced {
		return coresequence.ErrCounterConflict
	}
	return nil
}

// ThresholdWarning reports whether the active fiscal year is within the
// configured warning threshold of exhausting its numbering capacity. Pure
// read, no side effects.
func (s *Service) ThresholdWarning(ctx context.Context) (coresequence.ThresholdStatus, error) {
	counter, format, err := s.CurrentCounter(ctx)
	if err != nil {
		return coresequence.ThresholdStatus{}, err
	}

	threshold, err := s.store.WarningThreshold(ctx)
	if err != nil {
		return coresequence.ThresholdStatus{}, fmt.Errorf("%w: %v", coresequence.ErrConfiguration, err)
	}

	remaining := format.Max - counter.LastNumber
	if remaining < 0 {
		remaining = 0
	}

	return coresequence.ThresholdStatus{
		Warning:    remaining <= threshold,
		Remaining:  remaining,
		Max:        format.Max,
		Threshold:  threshold,
		FiscalYear: counter.FiscalYear,
	}, nil
}

// AutoRollover compares the system year with the active fiscal year and, when
// they differ and auto switching is enabled, repoints the active year and
// lazily creates the new counter at 0. No-op otherwise.
func (s *Service) AutoRollover(ctx context.Context) (coresequence.RolloverResult, error) {
	enabled, err := s.store.AutoYearSwitch(ctx)
	if err != nil {
		return coresequence.RolloverResult{}, fmt.Errorf("%w: %v", coresequence.ErrConfiguration, err)
	}

	active, err := s.store.ActiveFiscalYear(ctx)
	if err != nil {
		return coresequence.RolloverResult{}, fmt.Errorf("%w: %v", coresequence.ErrConfiguration, err)
	}

	systemYear := strconv.Itoa(s.now().Year())
	if !enabled || active == systemYear {
		return coresequence.RolloverResult{
			Switched:   false,
			FiscalYear: active,
			Message:    "sin cambios en el ejercicio fiscal",
		}, nil
	}

	return s.switchTo(ctx, systemYear, "sistema", coresequence.RolloverAuto)
}

// ManualRollover switches the active fiscal year to target. Years strictly
// before the current system year are rejected, as are years more than one
// year ahead. An existing counter for the target year is reused, never reset.
func (s *Service) ManualRollover(ctx context.Context, target, actor string) (coresequence.RolloverResult, error) {
	targetYear, err := strconv.Atoi(target)
	if err != nil || len(target) != 4 {
		return coresequence.RolloverResult{
			FiscalYear: target,
			Message:    "el ejercicio fiscal debe ser un anio de 4 digitos",
		}, nil
	}

	systemYear := s.now().Year()
	if targetYear < systemYear {
		return coresequence.RolloverResult{
			FiscalYear: target,
			Message:    fmt.Sprintf("no se puede cambiar a un ejercicio anterior al anio actual (%d)", systemYear),
		}, nil
	}
	if targetYear > systemYear+1 {
		return coresequence.RolloverResult{
			FiscalYear: target,
			Message:    fmt.Sprintf("no se puede cambiar a un ejercicio posterior a %d", systemYear+1),
		}, nil
	}

	return s.switchTo(ctx, target, actor, coresequence.RolloverManual)
}

// switchTo repoints the active fiscal year and guarantees the target year's
// counter exists, reusing it if present.
func (s *Service) switchTo(ctx context.Context, year, actor string, mode coresequence.RolloverMode) (coresequence.RolloverResult, error) {
	counter, err := s.repo.Init(ctx, year)
	if err != nil {
		return coresequence.RolloverResult{}, fmt.Errorf("init counter for %s: %w", year, err)
	}

	if err := s.store.SetActiveFiscalYear(ctx, year); err != nil {
		return coresequence.RolloverResult{}, fmt.Errorf("repoint active fiscal year: %w", err)
	}

	s.log.Info("fiscal year switched",
		"fiscal_year", year,
		"last_number", counter.LastNumber,
		"mode", string(mode),
		"actor", actor,
	)
	s.recordRollover(ctx, year, actor, mode, counter.LastNumber)

	return coresequence.RolloverResult{
		Switched:   true,
		FiscalYear: year,
		Message:    fmt.Sprintf("ejercicio fiscal activo: %s", year),
	}, nil
}

// recordRollover emits the audit event. Audit failures are logged and
// swallowed; they never fail the rollover.
func (s *Service) recordRollover(ctx context.Context, year, actor string, mode coresequence.RolloverMode, lastNumber int) {
	if s.auditor == nil {
		return
	}

	kind := audit.KindRolloverManual
	if mode == coresequence.RolloverAuto {
		kind = audit.KindRolloverAuto
	}

	event := audit.Event{
		Kind:          kind,
		Actor:         actor,
		CorrelationID: ctxutil.GetCorrelationID(ctx),
		Detail: map[string]any{
			"fiscal_year": year,
			"last_number": lastNumber,
		},
	}
	if err := s.auditor.Record(ctx, event); err != nil {
		s.log.Error("failed to record rollover audit event", "fiscal_year", year, "error", err)
	}
}
