package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents an admitted supplier invoice. NumInvoice is the
// free-form, globally unique identifier chosen by the submitter; NumCmdt is
// the sequential, zero-padded number scoped to one fiscal year. Both are
// immutable once the row exists.
type Invoice struct {
	ID          int64           `json:"id"`
	NumInvoice  string          `json:"num_invoice"`
	NumCmdt     string          `json:"num_cmdt"`
	FiscalYear  string          `json:"fiscal_year"`
	SupplierID  int64           `json:"supplier_id"`
	Amount      decimal.Decimal `json:"monto"`
	InvoiceDate time.Time       `json:"fecha_factura"`
	ArrivalDate time.Time       `json:"fecha_llegada"`
	Nature      string          `json:"naturaleza"`
	Folio       string          `json:"folio"`
	Status      string          `json:"estado"`
	Type        string          `json:"tipo"`
	CreatedBy   string          `json:"creado_por"`
	CreatedAt   time.Time       `json:"fecha_creacion"`
}

// MaxAmount is the exclusive-zero, inclusive upper bound for invoice amounts.
var MaxAmount = decimal.New(1, 11) // 1e11

// Fixed value sets for enumerated fields.
var (
	Natures  = []string{"BIEN", "SERVICIO", "MIXTA"}
	Folios   = []string{"ORIGINAL", "COPIA", "DUPLICADO"}
	Statuses = []string{"PENDIENTE", "PAGADA", "ANULADA"}
	Types    = []string{"FACTURA", "NOTA_CREDITO", "NOTA_DEBITO"}
)

// ValidValue reports whether value belongs to the given fixed set.
func ValidValue(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
