package admission

import (
	appsupplier "3tcapital/ms_admision_facturas/internal/application/supplier"
	coresequence "3tcapital/ms_admision_facturas/internal/core/sequence"
)

// Error codes carried by field-scoped validation errors. Every code maps to
// a recovered, structured outcome; fatal persistence and configuration
// failures are Go errors, never FieldErrors.
const (
	CodeRequired            = "required_field"
	CodeFormat              = "format_error"
	CodeDuplicate           = "duplicate"
	CodeOutOfOrder          = "out_of_order"
	CodeCapacityExhausted   = "capacity_exhausted"
	CodeBusinessRule        = "business_rule"
	CodeAmbiguousIdentity   = "ambiguous_identity"
	CodeConflictingIdentity = "conflicting_identity"
	CodeSingleFieldConflict = "single_field_conflict"
)

// FieldError names the offending field and, where determinable, carries a
// corrective suggestion so callers need not re-derive it.
type FieldError struct {
	Field      string `json:"field"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`

	// ConflictingSupplierID lets the caller offer "use existing supplier" as
	// a resolution path for identity conflicts.
	ConflictingSupplierID int64 `json:"conflictingSupplierId,omitempty"`
}

// sequencingError converts a structured sequencing validation into the
// field-scoped error on num_cmdt.
func sequencingError(v coresequence.NumberValidation) FieldError {
	code := CodeFormat
	switch v.Code {
	case coresequence.VerdictDuplicate:
		code = CodeDuplicate
	case coresequence.VerdictOutOfOrder:
		code = CodeOutOfOrder
	}
	return FieldError{
		Field:      "num_cmdt",
		Code:       code,
		Message:    v.Message,
		Suggestion: v.NextExpected,
	}
}

// supplierConflictError maps a resolver conflict onto the account-number
// field, which is the attribute users correct in practice.
func supplierConflictError(r appsupplier.Resolution) FieldError {
	fieldErr := FieldError{
		Field:   "proveedor_numero_cuenta",
		Message: r.Message,
	}

	switch r.Kind {
	case appsupplier.AmbiguousIdentity:
		fieldErr.Code = CodeAmbiguousIdentity
		if r.Owner != nil {
			fieldErr.Suggestion = r.Owner.Name
			fieldErr.ConflictingSupplierID = r.Owner.ID
		}
	case appsupplier.ConflictingIdentity:
		fieldErr.Code = CodeConflictingIdentity
		if r.AccountOwner != nil {
			fieldErr.Suggestion = r.AccountOwner.Name
			fieldErr.ConflictingSupplierID = r.AccountOwner.ID
		}
	case appsupplier.SingleFieldConflict:
		fieldErr.Code = CodeSingleFieldConflict
		if r.Field != "" {
			fieldErr.Field = "proveedor_" + r.Field
		}
		if r.Owner != nil {
			fieldErr.Suggestion = r.Owner.Name
			fieldErr.ConflictingSupplierID = r.Owner.ID
		}
	}
	return fieldErr
}
