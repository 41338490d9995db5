package sequence

import (
	"errors"
	"fmt"
)

// Counter tracks the last issued sequential invoice number for one fiscal year.
// There is exactly one row per fiscal year; it is created lazily at 0 and only
// ever moves forward.
type Counter struct {
	FiscalYear string `json:"fiscal_year"`
	LastNumber int    `json:"last_number"`
}

// Format describes how sequential numbers are rendered and bounded.
type Format struct {
	Padding int `json:"padding"`
	Max     int `json:"max"`
}

// Render returns n as a zero-padded string according to the format width.
func (f Format) Render(n int) string {
	return fmt.Sprintf("%0*d", f.Padding, n)
}

// Matches reports whether candidate is exactly Padding ASCII decimal digits.
func (f Format) Matches(candidate string) bool {
	if len(candidate) != f.Padding {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}
	return true
}

// NextNumber is the next expected sequential number for the active fiscal year.
type NextNumber struct {
	Number     string `json:"nextNumber"`
	Value      int    `json:"-"`
	FiscalYear string `json:"fiscalYear"`
}

// ThresholdStatus reports how close the active fiscal year is to exhausting
// its numbering capacity.
type ThresholdStatus struct {
	Warning    bool   `json:"warning"`
	Remaining  int    `json:"remaining"`
	Max        int    `json:"max"`
	Threshold  int    `json:"threshold"`
	FiscalYear string `json:"fiscalYear"`
}

// Verdict codes for a submitted number validation.
const (
	VerdictOK         = "ok"
	VerdictFormat     = "format_error"
	VerdictDuplicate  = "duplicate"
	VerdictOutOfOrder = "out_of_order"
)

// NumberValidation is the structured outcome of validating a submitted
// sequential number. Validation failures are values, never errors.
type NumberValidation struct {
	Valid bool   `json:"valid"`
	Code  string `json:"code"`
	// Message is a user-facing explanation of the failure.
	Message string `json:"message,omitempty"`
	// NextExpected carries the number the engine would accept; populated for
	// duplicate and out-of-order failures so callers can surface it directly.
	NextExpected string `json:"nextNumberExpected,omitempty"`
	// ExpectedWidth is populated for format failures.
	ExpectedWidth int `json:"expectedWidth,omitempty"`
	// FiscalYear and ConfirmedNumber pin the counter snapshot the verdict
	// was computed against, so callers commit under the same year that
	// validated the candidate even if a rollover lands meanwhile.
	FiscalYear      string `json:"-"`
	ConfirmedNumber int    `json:"-"`
}

// RolloverMode selects how a fiscal-year switch was requested.
type RolloverMode string

const (
	RolloverAuto   RolloverMode = "auto"
	RolloverManual RolloverMode = "manual"
)

// RolloverResult reports the outcome of a fiscal-year switch.
type RolloverResult struct {
	Switched   bool   `json:"success"`
	FiscalYear string `json:"fiscalYear"`
	Message    string `json:"message"`
}

var (
	// ErrConfiguration signals missing or unusable format settings. Fatal.
	ErrConfiguration = errors.New("configuracion de formato de numeracion no disponible")

	// ErrCapacityExhausted signals the counter reached its ceiling. The year
	// admits no further invoices.
	ErrCapacityExhausted = errors.New("capacidad de numeracion agotada para el ejercicio fiscal")

	// ErrCounterConflict signals a conditional advance touched zero rows
	// because a concurrent admission already moved the counter.
	ErrCounterConflict = errors.New("el contador fue avanzado por una admision concurrente")
)
