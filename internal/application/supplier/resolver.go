package supplier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"3tcapital/ms_admision_facturas/internal/core/audit"
	coresupplier "3tcapital/ms_admision_facturas/internal/core/supplier"
	ctxutil "3tcapital/ms_admision_facturas/internal/infrastructure/context"
	"3tcapital/ms_admision_facturas/internal/infrastructure/security"
)

// ResolutionKind tags the outcome of a resolve-or-create attempt. Every
// outcome is a value; ambiguities are never auto-resolved.
type ResolutionKind string

const (
	// ExactMatch: an existing supplier matched all three attributes. No writes.
	ExactMatch ResolutionKind = "exact_match"
	// Created: no match and no conflict, a new supplier row was created.
	Created ResolutionKind = "created"
	// AmbiguousIdentity: account number and phone both belong to the same
	// other supplier, but the name differs.
	AmbiguousIdentity ResolutionKind = "ambiguous_identity"
	// ConflictingIdentity: account number and phone belong to two different
	// suppliers.
	ConflictingIdentity ResolutionKind = "conflicting_identity"
	// SingleFieldConflict: exactly one of the two fields is claimed by
	// another supplier.
	SingleFieldConflict ResolutionKind = "single_field_conflict"
)

// Resolution carries the outcome of ResolveOrCreate with enough data for the
// caller to offer "use existing supplier" as a resolution path.
type Resolution struct {
	Kind       ResolutionKind `json:"kind"`
	SupplierID int64          `json:"supplierId,omitempty"`

	// Field names the conflicting attribute for SingleFieldConflict:
	// "numero_cuenta" or "telefono".
	Field string `json:"field,omitempty"`

	// Owner is the conflicting supplier for AmbiguousIdentity and
	// SingleFieldConflict.
	Owner *coresupplier.Supplier `json:"owner,omitempty"`

	// AccountOwner and PhoneOwner are the two candidates for
	// ConflictingIdentity.
	AccountOwner *coresupplier.Supplier `json:"accountOwner,omitempty"`
	PhoneOwner   *coresupplier.Supplier `json:"phoneOwner,omitempty"`

	Message string `json:"message,omitempty"`
}

// Conflicts is the pure-read view of which other suppliers claim the two
// uniqueness fields. Reused by the write path and by the interactive
// pre-check endpoint.
type Conflicts struct {
	AccountOwner *coresupplier.Supplier `json:"accountOwner,omitempty"`
	PhoneOwner   *coresupplier.Supplier `json:"phoneOwner,omitempty"`
}

// Resolver deduplicates suppliers across name, account number and phone
// without a single authoritative key, never silently merging distinct
// entities.
type Resolver struct {
	repo    coresupplier.Repository
	auditor audit.Recorder
	log     *slog.Logger
}

// NewResolver creates a new supplier identity resolver.
func NewResolver(repo coresupplier.Repository, auditor audit.Recorder, log *slog.Logger) *Resolver {
	return &Resolver{
		repo:    repo,
		auditor: auditor,
		log:     log,
	}
}

// FindConflicts reports which other suppliers claim the canonical account
// number and the phone. Account number and phone are independent uniqueness
// domains: suppliers occasionally share a phone line but never an account
// number, and migration artifacts can invert this, so the two checks never
// collapse into a composite key.
func (r *Resolver) FindConflicts(ctx context.Context, accountNumber, phone string) (Conflicts, error) {
	canonical, err := coresupplier.ValidateAccountNumber(accountNumber)
	if err != nil {
		return Conflicts{}, err
	}

	var conflicts Conflicts

	conflicts.AccountOwner, err = r.repo.FindByAccountNumber(ctx, canonical)
	if err != nil {
		return Conflicts{}, fmt.Errorf("find supplier by account number: %w", err)
	}

	phone = coresupplier.NormalizePhone(phone)
	if phone != "" {
		conflicts.PhoneOwner, err = r.repo.FindByPhone(ctx, phone)
		if err != nil {
			return Conflicts{}, fmt.Errorf("find supplier by phone: %w", err)
		}
	}

	return conflicts, nil
}

// ResolveOrCreate resolves the supplier identified by (name, account number,
// phone) or creates it. Outcomes:
//  1. all three attributes match an existing supplier: its id, zero writes;
//  2. both fields claimed by the same other supplier: AmbiguousIdentity;
//  3. each field claimed by a different supplier: ConflictingIdentity;
//  4. exactly one field claimed: SingleFieldConflict naming field and owner;
//  5. no match and no conflict: a new supplier row.
//
// A concurrent duplicate create fails against the storage uniqueness
// constraints and is translated into the same typed conflicts.
func (r *Resolver) ResolveOrCreate(ctx context.Context, name, accountNumber, phone, actor string) (Resolution, error) {
	canonical, err := coresupplier.ValidateAccountNumber(accountNumber)
	if err != nil {
		return Resolution{}, err
	}
	phone = coresupplier.NormalizePhone(phone)

	exact, err := r.repo.FindExact(ctx, name, canonical, phone)
	if err != nil {
		return Resolution{}, fmt.Errorf("find exact supplier: %w", err)
	}
	if exact != nil {
		return Resolution{Kind: ExactMatch, SupplierID: exact.ID}, nil
	}

	conflicts, err := r.FindConflicts(ctx, canonical, phone)
	if err != nil {
		return Resolution{}, err
	}
	if resolution, conflicted := classify(conflicts); conflicted {
		return resolution, nil
	}

	id, err := r.repo.Create(ctx, coresupplier.Supplier{
		Name:          name,
		AccountNumber: canonical,
		Phone:         phone,
		CreatedBy:     actor,
	})
	if err != nil {
		// A concurrent create claimed one of the fields between the pre-check
		// and the insert. Reread and report the conflict the same way.
		if errors.Is(err, coresupplier.ErrAccountNumberTaken) || errors.Is(err, coresupplier.ErrPhoneTaken) {
			return r.resolveAfterRace(ctx, name, canonical, phone)
		}
		return Resolution{}, fmt.Errorf("create supplier: %w", err)
	}

	r.log.Info("supplier created",
		"supplier_id", id,
		"numero_cuenta", security.MaskAccountNumber(canonical),
		"actor", actor,
	)
	r.recordCreation(ctx, id, name, canonical, phone, actor)

	return Resolution{Kind: Created, SupplierID: id}, nil
}

// resolveAfterRace handles a unique-constraint violation from a concurrent
// create: either the winner is now an exact match, or it owns a field.
func (r *Resolver) resolveAfterRace(ctx context.Context, name, canonical, phone string) (Resolution, error) {
	exact, err := r.repo.FindExact(ctx, name, canonical, phone)
	if err != nil {
		return Resolution{}, fmt.Errorf("find exact supplier after race: %w", err)
	}
	if exact != nil {
		return Resolution{Kind: ExactMatch, SupplierID: exact.ID}, nil
	}

	conflicts, err := r.FindConflicts(ctx, canonical, phone)
	if err != nil {
		return Resolution{}, err
	}
	if resolution, conflicted := classify(conflicts); conflicted {
		return resolution, nil
	}

	// The winner disappeared between the violation and the reread. Treat it
	// as a transient persistence failure.
	return Resolution{}, errors.New("supplier uniqueness conflict could not be re-read")
}

// classify maps the independent field checks onto the conflict taxonomy.
func classify(c Conflicts) (Resolution, bool) {
	switch {
	case c.AccountOwner != nil && c.PhoneOwner != nil && c.AccountOwner.ID == c.PhoneOwner.ID:
		return Resolution{
			Kind:    AmbiguousIdentity,
			Owner:   c.AccountOwner,
			Message: fmt.Sprintf("el numero de cuenta y el telefono pertenecen al proveedor existente [%s]", c.AccountOwner.Name),
		}, true
	case c.AccountOwner != nil && c.PhoneOwner != nil:
		return Resolution{
			Kind:         ConflictingIdentity,
			AccountOwner: c.AccountOwner,
			PhoneOwner:   c.PhoneOwner,
			Message: fmt.Sprintf("el numero de cuenta pertenece a [%s] y el telefono a [%s]",
				c.AccountOwner.Name, c.PhoneOwner.Name),
		}, true
	case c.AccountOwner != nil:
		return Resolution{
			Kind:    SingleFieldConflict,
			Field:   "numero_cuenta",
			Owner:   c.AccountOwner,
			Message: fmt.Sprintf("el numero de cuenta ya pertenece al proveedor [%s]", c.AccountOwner.Name),
		}, true
	case c.PhoneOwner != nil:
		return Resolution{
			Kind:    SingleFieldConflict,
			Field:   "telefono",
			Owner:   c.PhoneOwner,
			Message: fmt.Sprintf("el telefono ya pertenece al proveedor [%s]", c.PhoneOwner.Name),
		}, true
	}
	return Resolution{}, false
}

// recordCreation emits the audit event with masked identity fields. Audit
// failures never fail the resolution.
func (r *Resolver) recordCreation(ctx context.Context, id int64, name, accountNumber, phone, actor string) {
	if r.auditor == nil {
		return
	}

	event := audit.Event{
		Kind:          audit.KindSupplierCreated,
		Actor:         actor,
		CorrelationID: ctxutil.GetCorrelationID(ctx),
		Detail: map[string]any{
			"supplier_id":   id,
			"nombre":        name,
			"numero_cuenta": security.MaskAccountNumber(accountNumber),
			"telefono":      security.MaskPhone(phone),
		},
	}
	if err := r.auditor.Record(ctx, event); err != nil {
		r.log.Error("failed to record supplier creation audit event", "supplier_id", id, "error", err)
	}
}
