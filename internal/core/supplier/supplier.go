package supplier

import (
	"fmt"
	"strings"
	"time"
)

// Supplier represents a supplier entity identified by three independently
// submitted attributes: name, account number and phone. The account number is
// stored in canonical form and is the strongest uniqueness key; the phone is
// unique when present; the name is not required to be unique.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"nombre"`
	AccountNumber string    `json:"numero_cuenta"`
	Phone         string    `json:"telefono"`
	CreatedBy     string    `json:"creado_por"`
	CreatedAt     time.Time `json:"fecha_creacion"`
}

// Canonical account numbers are between 6 and 34 characters after
// normalization (IBAN-style upper bound).
const (
	AccountNumberMinLen = 6
	AccountNumberMaxLen = 34
)

// NormalizeAccountNumber strips every non-alphanumeric character and
// uppercases the rest. All comparisons and storage use this form.
func NormalizeAccountNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateAccountNumber normalizes raw and checks the canonical length bounds.
// It returns the canonical form when valid.
func ValidateAccountNumber(raw string) (string, error) {
	canonical := NormalizeAccountNumber(raw)
	if len(canonical) < AccountNumberMinLen || len(canonical) > AccountNumberMaxLen {
		return "", fmt.Errorf("numero de cuenta invalido: debe tener entre %d y %d caracteres alfanumericos, tiene %d",
			AccountNumberMinLen, AccountNumberMaxLen, len(canonical))
	}
	return canonical, nil
}

// NormalizePhone trims surrounding whitespace. Empty phones are allowed and
// excluded from uniqueness checks.
func NormalizePhone(raw string) string {
	return strings.TrimSpace(raw)
}
