package settings

import (
	"context"
	"errors"

	"3tcapital/ms_admision_facturas/internal/core/sequence"
)

// Setting keys persisted in the store.
const (
	KeyFiscalYear       = "fiscal_year"
	KeyCmdtFormat       = "cmdt_format"
	KeyAutoYearSwitch   = "auto_year_switch"
	KeyWarningThreshold = "year_end_warning_threshold"
)

// ErrNotFound is returned when a setting key has no value.
var ErrNotFound = errors.New("configuracion no encontrada")

// Store exposes the runtime fiscal settings the admission pipeline depends
// on. The active fiscal year and the number format are data, not deployment
// configuration, so they live behind this store rather than in env vars.
type Store interface {
	// ActiveFiscalYear returns the fiscal year admissions are currently
	// recorded against.
	ActiveFiscalYear(ctx context.Context) (string, error)

	// SetActiveFiscalYear repoints the active fiscal year. Used only by
	// rollover.
	SetActiveFiscalYear(ctx context.Context, year string) error

	// Format returns the sequential number format (padding and ceiling).
	// Missing or malformed configuration is ErrNotFound; the sequencing
	// engine treats it as fatal.
	Format(ctx context.Context) (sequence.Format, error)

	// AutoYearSwitch reports whether automatic rollover is enabled.
	AutoYearSwitch(ctx context.Context) (bool, error)

	// WarningThreshold returns the remaining-capacity level at which the
	// year-end warning fires.
	WarningThreshold(ctx context.Context) (int, error)
}
