package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	appsequence "3tcapital/ms_admision_facturas/internal/application/sequence"
	appsupplier "3tcapital/ms_admision_facturas/internal/application/supplier"
	coreinvoice "3tcapital/ms_admision_facturas/internal/core/invoice"
	coresequence "3tcapital/ms_admision_facturas/internal/core/sequence"
	coresupplier "3tcapital/ms_admision_facturas/internal/core/supplier"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// maxCommitAttempts bounds the retry loop around the conditional counter
// advance. Losing the race invalidates the submitted number, so in practice
// the second pass returns the structured sequencing failure to the caller.
const maxCommitAttempts = 3

// Payload is the raw invoice submission as received from the caller.
type Payload struct {
	NumInvoice            string `json:"num_invoice"`
	NumCmdt               string `json:"num_cmdt"`
	SupplierName          string `json:"proveedor_nombre"`
	SupplierAccountNumber string `json:"proveedor_numero_cuenta"`
	SupplierPhone         string `json:"proveedor_telefono"`
	Amount                string `json:"monto"`
	InvoiceDate           string `json:"fecha_factura"`
	ArrivalDate           string `json:"fecha_llegada"`
	Nature                string `json:"naturaleza"`
	Folio                 string `json:"folio"`
	Status                string `json:"estado"`
	Type                  string `json:"tipo"`
}

// Command is the persist-ready creation command assembled once every
// validation stage is clean.
type Command struct {
	Invoice         coreinvoice.Invoice `json:"factura"`
	ConfirmedNumber int                 `json:"-"`
}

// Result is the outcome of running the admission pipeline.
type Result struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors,omitempty"`
	Command *Command     `json:"validatedCommand,omitempty"`
}

// AdmitResult extends Result with the id of the persisted invoice.
type AdmitResult struct {
	Result
	InvoiceID int64 `json:"invoiceId,omitempty"`
}

// Service is the admission validator: the single entry point that turns a
// raw payload plus actor into a persist-ready command or a structured error
// set, and commits admitted invoices under the transactional counter
// discipline.
type Service struct {
	sequencer *appsequence.Service
	resolver  *appsupplier.Resolver
	invoices  coreinvoice.Repository
	log       *slog.Logger
	backoff   func(attempt int)
}

// NewService creates a new admission service.
func NewService(sequencer *appsequence.Service, resolver *appsupplier.Resolver, invoices coreinvoice.Repository, log *slog.Logger) *Service {
	return &Service{
		sequencer: sequencer,
		resolver:  resolver,
		invoices:  invoices,
		log:       log,
		backoff: func(attempt int) {
			time.Sleep(time.Duration(attempt*25) * time.Millisecond)
		},
	}
}

// Submit runs the ordered validation stages and assembles the creation
// command. Required-field failures short-circuit before any I/O; later
// stages accumulate errors. Supplier resolution runs last because it is the
// only validating stage with persistent side effects, and only when every
// preceding stage is clean.
func (s *Service) Submit(ctx context.Context, p Payload, actor string) (Result, error) {
	if errs := requiredFields(p); len(errs) > 0 {
		return Result{Errors: errs}, nil
	}

	var errs []FieldError

	parsed, formatErrs, err := s.validateFormats(ctx, p)
	if err != nil {
		return Result{}, err
	}
	errs = append(errs, formatErrs...)
	errs = append(errs, businessRules(p, parsed)...)

	if len(errs) > 0 {
		return Result{Errors: errs}, nil
	}

	resolution, err := s.resolver.ResolveOrCreate(ctx, strings.TrimSpace(p.SupplierName), p.SupplierAccountNumber, p.SupplierPhone, actor)
	if err != nil {
		return Result{}, fmt.Errorf("resolve supplier: %w", err)
	}
	if resolution.Kind != appsupplier.ExactMatch && resolution.Kind != appsupplier.Created {
		return Result{Errors: []FieldError{supplierConflictError(resolution)}}, nil
	}

	command := &Command{
		Invoice: coreinvoice.Invoice{
			NumInvoice:  strings.TrimSpace(p.NumInvoice),
			NumCmdt:     p.NumCmdt,
			FiscalYear:  parsed.fiscalYear,
			SupplierID:  resolution.SupplierID,
			Amount:      parsed.amount,
			InvoiceDate: parsed.invoiceDate,
			ArrivalDate: parsed.arrivalDate,
			Nature:      p.Nature,
			Folio:       p.Folio,
			Status:      p.Status,
			Type:        p.Type,
			CreatedBy:   actor,
		},
		ConfirmedNumber: parsed.confirmedNumber,
	}
	return Result{IsValid: true, Command: command}, nil
}

// Admit runs Submit and persists the command. The invoice insert and the
// counter advance execute inside one transaction; a lost conditional advance
// rolls the attempt back and revalidates against the freshly advanced
// counter, so concurrent admissions of the same slot yield exactly one
// success.
func (s *Service) Admit(ctx context.Context, p Payload, actor string) (AdmitResult, error) {
	for attempt := 1; ; attempt++ {
		result, err := s.Submit(ctx, p, actor)
		if err != nil || !result.IsValid {
			return AdmitResult{Result: result}, err
		}

		id, err := s.invoices.CreateAdmitted(ctx, result.Command.Invoice, result.Command.ConfirmedNumber)
		if err == nil {
			s.log.Info("invoice admitted",
				"invoice_id", id,
				"num_cmdt", result.Command.Invoice.NumCmdt,
				"fiscal_year", result.Command.Invoice.FiscalYear,
				"actor", actor,
			)
			return AdmitResult{Result: result, InvoiceID: id}, nil
		}

		switch {
		case errors.Is(err, coresequence.ErrCounterConflict):
			if attempt >= maxCommitAttempts {
				return AdmitResult{}, fmt.Errorf("admission retries exhausted: %w", err)
			}
			s.log.Warn("counter advanced concurrently, revalidating",
				"num_cmdt", p.NumCmdt,
				"attempt", attempt,
			)
			s.backoff(attempt)
		case errors.Is(err, coreinvoice.ErrDuplicateNumInvoice):
			// A concurrent submission claimed the num_invoice after stage 2.
			return AdmitResult{Result: Result{Errors: []FieldError{{
				Field:   "num_invoice",
				Code:    CodeDuplicate,
				Message: fmt.Sprintf("ya existe una factura con el numero [%s]", p.NumInvoice),
			}}}}, nil
		default:
			return AdmitResult{}, fmt.Errorf("persist invoice: %w", err)
		}
	}
}

// parsedPayload holds the typed values produced by the format stage.
type parsedPayload struct {
	fiscalYear      string
	confirmedNumber int
	amount          decimal.Decimal
	invoiceDate     time.Time
	arrivalDate     time.Time
}

// validateFormats runs stage 2: num_invoice global uniqueness, num_cmdt
// sequence validation (both delegated), canonical account-number format and
// the numeric amount range.
func (s *Service) validateFormats(ctx context.Context, p Payload) (parsedPayload, []FieldError, error) {
	var (
		parsed parsedPayload
		errs   []FieldError
	)

	numInvoice := strings.TrimSpace(p.NumInvoice)
	taken, err := s.invoices.ExistsNumInvoice(ctx, numInvoice)
	if err != nil {
		return parsed, nil, fmt.Errorf("check num_invoice uniqueness: %w", err)
	}
	if taken {
		errs = append(errs, FieldError{
			Field:   "num_invoice",
			Code:    CodeDuplicate,
			Message: fmt.Sprintf("ya existe una factura con el numero [%s]", numInvoice),
		})
	}

	validation, err := s.sequencer.ValidateNumber(ctx, p.NumCmdt)
	if err != nil {
		if errors.Is(err, coresequence.ErrCapacityExhausted) {
			// Fails closed: the year admits nothing further.
			errs = append(errs, FieldError{
				Field:   "num_cmdt",
				Code:    CodeCapacityExhausted,
				Message: "la capacidad de numeracion del ejercicio fiscal esta agotada",
			})
			validation = coresequence.NumberValidation{}
		} else {
			return parsed, nil, err
		}
	}
	if !validation.Valid && validation.Code != "" {
		errs = append(errs, sequencingError(validation))
	}
	if validation.Valid {
		// The commit command carries the exact snapshot the candidate was
		// validated against. Re-reading the counter here could cross a
		// concurrent rollover and pair the old number with the new year.
		parsed.fiscalYear = validation.FiscalYear
		parsed.confirmedNumber = validation.ConfirmedNumber
	}

	if _, err := coresupplier.ValidateAccountNumber(p.SupplierAccountNumber); err != nil {
		errs = append(errs, FieldError{
			Field:   "proveedor_numero_cuenta",
			Code:    CodeFormat,
			Message: err.Error(),
		})
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
	switch {
	case err != nil:
		errs = append(errs, FieldError{
			Field:   "monto",
			Code:    CodeFormat,
			Message: "monto debe ser un valor numerico",
		})
	case amount.IsZero() || amount.IsNegative() || amount.GreaterThan(coreinvoice.MaxAmount):
		errs = append(errs, FieldError{
			Field:      "monto",
			Code:       CodeFormat,
			Message:    "monto debe ser mayor que 0 y no superar 100000000000",
			Suggestion: coreinvoice.MaxAmount.String(),
		})
	default:
		parsed.amount = amount
	}

	parsed.invoiceDate, parsed.arrivalDate, errs = parseDates(p, errs)
	return parsed, errs, nil
}

// parseDates validates both date fields, accumulating errors.
func parseDates(p Payload, errs []FieldError) (time.Time, time.Time, []FieldError) {
	invoiceDate, err := time.Parse(dateLayout, p.InvoiceDate)
	if err != nil {
		errs = append(errs, FieldError{
			Field:   "fecha_factura",
			Code:    CodeFormat,
			Message: "fecha_factura debe tener formato YYYY-MM-DD",
		})
	}
	arrivalDate, err := time.Parse(dateLayout, p.ArrivalDate)
	if err != nil {
		errs = append(errs, FieldError{
			Field:   "fecha_llegada",
			Code:    CodeFormat,
			Message: "fecha_llegada debe tener formato YYYY-MM-DD",
		})
	}
	return invoiceDate, arrivalDate, errs
}

// businessRules runs stage 3: enumerated fields against their fixed value
// sets and the chronological ordering of the two dates.
func businessRules(p Payload, parsed parsedPayload) []FieldError {
	var errs []FieldError

	enums := []struct {
		field string
		value string
		set   []string
	}{
		{"naturaleza", p.Nature, coreinvoice.Natures},
		{"folio", p.Folio, coreinvoice.Folios},
		{"estado", p.Status, coreinvoice.Statuses},
		{"tipo", p.Type, coreinvoice.Types},
	}
	for _, e := range enums {
		if !coreinvoice.ValidValue(e.set, e.value) {
			errs = append(errs, FieldError{
				Field:      e.field,
				Code:       CodeBusinessRule,
				Message:    fmt.Sprintf("%s debe ser uno de: %s", e.field, strings.Join(e.set, ", ")),
				Suggestion: strings.Join(e.set, ", "),
			})
		}
	}

	if !parsed.invoiceDate.IsZero() && !parsed.arrivalDate.IsZero() && parsed.arrivalDate.Before(parsed.invoiceDate) {
		errs = append(errs, FieldError{
			Field:   "fecha_llegada",
			Code:    CodeBusinessRule,
			Message: "fecha_llegada no puede ser anterior a fecha_factura",
		})
	}

	return errs
}

// requiredFields runs stage 1 over every mandatory invoice field. No I/O.
func requiredFields(p Payload) []FieldError {
	fields := []struct {
		name  string
		value string
	}{
		{"num_invoice", p.NumInvoice},
		{"num_cmdt", p.NumCmdt},
		{"proveedor_nombre", p.SupplierName},
		{"proveedor_numero_cuenta", p.SupplierAccountNumber},
		{"monto", p.Amount},
		{"fecha_factura", p.InvoiceDate},
		{"fecha_llegada", p.ArrivalDate},
		{"naturaleza", p.Nature},
		{"folio", p.Folio},
		{"estado", p.Status},
		{"tipo", p.Type},
	}

	var errs []FieldError
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldError{
				Field:   f.name,
				Code:    CodeRequired,
				Message: fmt.Sprintf("%s es requerido", f.name),
			})
		}
	}
	return errs
}
