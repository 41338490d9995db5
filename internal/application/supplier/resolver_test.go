package supplier

import (
	"context"
	"strings"
	"testing"

	"3tcapital/ms_admision_facturas/internal/core/audit"
	coresupplier "3tcapital/ms_admision_facturas/internal/core/supplier"
	"3tcapital/ms_admision_facturas/internal/testutil"
)

var (
	acme = &coresupplier.Supplier{ID: 7, Name: "ACME LTDA", AccountNumber: "ES9121000418450200051332", Phone: "3001234567"}
	beta = &coresupplier.Supplier{ID: 9, Name: "BETA SAS", AccountNumber: "CO012345678901", Phone: "3109876543"}
)

func newTestResolver(repo *testutil.MockSupplierRepository, auditor *testutil.MockAuditRecorder) *Resolver {
	return NewResolver(repo, auditor, testutil.NewNullLogger())
}

func TestResolver_ResolveOrCreate_ExactMatch(t *testing.T) {
	repo := &testutil.MockSupplierRepository{
		FindExactFunc: func(ctx context.Context, name, accountNumber, phone string) (*coresupplier.Supplier, error) {
			if name == acme.Name && accountNumber == acme.AccountNumber && phone == acme.Phone {
				return acme, nil
			}
			return nil, nil
		},
	}
	resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

	resolution, err := resolver.ResolveOrCreate(context.Background(), acme.Name, acme.AccountNumber, acme.Phone, "sistema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolution.Kind != ExactMatch {
		t.Fatalf("expected exact_match, got %s", resolution.Kind)
	}
	if resolution.SupplierID != acme.ID {
		t.Errorf("expected supplier id %d, got %d", acme.ID, resolution.SupplierID)
	}
	if repo.CreateCalls != 0 {
		t.Errorf("expected zero writes, got %d creates", repo.CreateCalls)
	}
}

func TestResolver_ResolveOrCreate_CanonicalizesBeforeMatching(t *testing.T) {
	// An account submitted with spaces and lowercase must match the supplier
	// stored under the canonical form.
	repo := &testutil.MockSupplierRepository{
		FindExactFunc: func(ctx context.Context, name, accountNumber, phone string) (*coresupplier.Supplier, error) {
			if accountNumber == acme.AccountNumber {
				return acme, nil
			}
			return nil, nil
		},
	}
	resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

	resolution, err := resolver.ResolveOrCreate(context.Background(), acme.Name, "es91 2100 0418 4502 0005 1332", "  3001234567 ", "sistema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolution.Kind != ExactMatch {
		t.Fatalf("expected exact_match, got %s", resolution.Kind)
	}
}

func TestResolver_ResolveOrCreate_Created(t *testing.T) {
	var created coresupplier.Supplier
	repo := &testutil.MockSupplierRepository{
		CreateFunc: func(ctx context.Context, s coresupplier.Supplier) (int64, error) {
			created = s
			return 42, nil
		},
	}
	auditor := &testutil.MockAuditRecorder{}
	resolver := newTestResolver(repo, auditor)

	resolution, err := resolver.ResolveOrCreate(context.Background(), "NUEVO SAS", "co 0123-4567", "3115550000", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolution.Kind != Created {
		t.Fatalf("expected created, got %s (%s)", resolution.Kind, resolution.Message)
	}
	if resolution.SupplierID != 42 {
		t.Errorf("expected supplier id 42, got %d", resolution.SupplierID)
	}
	if created.AccountNumber != "CO01234567" {
		t.Errorf("expected canonical account number CO01234567, got %q", created.AccountNumber)
	}
	if created.CreatedBy != "admin" {
		t.Errorf("expected created_by admin, got %q", created.CreatedBy)
	}

	if len(auditor.Events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(auditor.Events))
	}
	event := auditor.Events[0]
	if event.Kind != audit.KindSupplierCreated {
		t.Errorf("expected supplier_created event, got %s", event.Kind)
	}
	masked, _ := event.Detail["numero_cuenta"].(string)
	if strings.Contains(masked, "CO0123") {
		t.Errorf("expected masked account number in audit detail, got %q", masked)
	}
}

func TestResolver_ResolveOrCreate_Conflicts(t *testing.T) {
	tests := []struct {
		name          string
		accountOwner  *coresupplier.Supplier
		phoneOwner    *coresupplier.Supplier
		expectedKind  ResolutionKind
		expectedField string
	}{
		{
			name:         "both fields owned by the same supplier",
			accountOwner: acme,
			phoneOwner:   acme,
			expectedKind: AmbiguousIdentity,
		},
		{
			name:         "fields owned by different suppliers",
			accountOwner: acme,
			phoneOwner:   beta,
			expectedKind: ConflictingIdentity,
		},
		{
			name:          "only the account number is claimed",
			accountOwner:  acme,
			expectedKind:  SingleFieldConflict,
			expectedField: "numero_cuenta",
		},
		{
			name:          "only the phone is claimed",
			phoneOwner:    beta,
			expectedKind:  SingleFieldConflict,
			expectedField: "telefono",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &testutil.MockSupplierRepository{
				FindByAccountNumberFunc: func(ctx context.Context, accountNumber string) (*coresupplier.Supplier, error) {
					return tt.accountOwner, nil
				},
				FindByPhoneFunc: func(ctx context.Context, phone string) (*coresupplier.Supplier, error) {
					return tt.phoneOwner, nil
				},
			}
			resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

			resolution, err := resolver.ResolveOrCreate(context.Background(), "OTRO NOMBRE", "GB29NWBK60161331926819", "3001112233", "sistema")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resolution.Kind != tt.expectedKind {
				t.Fatalf("expected %s, got %s", tt.expectedKind, resolution.Kind)
			}
			if repo.CreateCalls != 0 {
				t.Errorf("expected no create on conflict, got %d", repo.CreateCalls)
			}

			switch tt.expectedKind {
			case AmbiguousIdentity:
				if resolution.Owner == nil || resolution.Owner.ID != acme.ID {
					t.Errorf("expected owner %d, got %+v", acme.ID, resolution.Owner)
				}
			case ConflictingIdentity:
				if resolution.AccountOwner == nil || resolution.AccountOwner.ID != acme.ID {
					t.Errorf("expected account owner %d, got %+v", acme.ID, resolution.AccountOwner)
				}
				if resolution.PhoneOwner == nil || resolution.PhoneOwner.ID != beta.ID {
					t.Errorf("expected phone owner %d, got %+v", beta.ID, resolution.PhoneOwner)
				}
			case SingleFieldConflict:
				if resolution.Field != tt.expectedField {
					t.Errorf("expected field %q, got %q", tt.expectedField, resolution.Field)
				}
				if resolution.Owner == nil {
					t.Error("expected conflicting owner in resolution")
				}
				if resolution.Message == "" || !strings.Contains(resolution.Message, resolution.Owner.Name) {
					t.Errorf("expected message naming the owner, got %q", resolution.Message)
				}
			}
		})
	}
}

func TestResolver_ResolveOrCreate_InvalidAccountNumber(t *testing.T) {
	resolver := newTestResolver(&testutil.MockSupplierRepository{}, &testutil.MockAuditRecorder{})

	tests := []string{"", "AB12", strings.Repeat("1", 35)}
	for _, account := range tests {
		if _, err := resolver.ResolveOrCreate(context.Background(), "X", account, "", "sistema"); err == nil {
			t.Errorf("expected validation error for account %q", account)
		}
	}
}

func TestResolver_ResolveOrCreate_RaceTranslatesToConflict(t *testing.T) {
	// The pre-check sees no owner, the insert loses to a concurrent create,
	// and the reread reports the winner as a conflict.
	var rereads int
	repo := &testutil.MockSupplierRepository{
		FindByAccountNumberFunc: func(ctx context.Context, accountNumber string) (*coresupplier.Supplier, error) {
			rereads++
			if rereads > 1 {
				return acme, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, s coresupplier.Supplier) (int64, error) {
			return 0, coresupplier.ErrAccountNumberTaken
		},
	}
	resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

	resolution, err := resolver.ResolveOrCreate(context.Background(), "OTRO", acme.AccountNumber, "", "sistema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolution.Kind != SingleFieldConflict {
		t.Fatalf("expected single_field_conflict after race, got %s", resolution.Kind)
	}
	if resolution.Field != "numero_cuenta" {
		t.Errorf("expected numero_cuenta field, got %q", resolution.Field)
	}
}

func TestResolver_ResolveOrCreate_RaceTranslatesToExactMatch(t *testing.T) {
	// The concurrent winner created the very same supplier.
	var exactCalls int
	repo := &testutil.MockSupplierRepository{
		FindExactFunc: func(ctx context.Context, name, accountNumber, phone string) (*coresupplier.Supplier, error) {
			exactCalls++
			if exactCalls > 1 {
				return acme, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, s coresupplier.Supplier) (int64, error) {
			return 0, coresupplier.ErrAccountNumberTaken
		},
	}
	resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

	resolution, err := resolver.ResolveOrCreate(context.Background(), acme.Name, acme.AccountNumber, acme.Phone, "sistema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolution.Kind != ExactMatch || resolution.SupplierID != acme.ID {
		t.Fatalf("expected exact_match with id %d, got %+v", acme.ID, resolution)
	}
}

func TestResolver_FindConflicts(t *testing.T) {
	t.Run("skips phone lookup for empty phone", func(t *testing.T) {
		var phoneLookups int
		repo := &testutil.MockSupplierRepository{
			FindByPhoneFunc: func(ctx context.Context, phone string) (*coresupplier.Supplier, error) {
				phoneLookups++
				return nil, nil
			},
		}
		resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

		conflicts, err := resolver.FindConflicts(context.Background(), "GB29NWBK60161331926819", "   ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if phoneLookups != 0 {
			t.Errorf("expected no phone lookup, got %d", phoneLookups)
		}
		if conflicts.AccountOwner != nil || conflicts.PhoneOwner != nil {
			t.Errorf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("reports both owners", func(t *testing.T) {
		repo := &testutil.MockSupplierRepository{
			FindByAccountNumberFunc: func(ctx context.Context, accountNumber string) (*coresupplier.Supplier, error) {
				return acme, nil
			},
			FindByPhoneFunc: func(ctx context.Context, phone string) (*coresupplier.Supplier, error) {
				return beta, nil
			},
		}
		resolver := newTestResolver(repo, &testutil.MockAuditRecorder{})

		conflicts, err := resolver.FindConflicts(context.Background(), "GB29NWBK60161331926819", "3001112233")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflicts.AccountOwner != acme || conflicts.PhoneOwner != beta {
			t.Errorf("expected both owners reported, got %+v", conflicts)
		}
	})
}
