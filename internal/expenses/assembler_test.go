package expenses

import (
	"testing"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAssembleSettlementsAttachesProfiles(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	settlements := []NetSettlement{
		{
			DebtorID:   a,
			CreditorID: b,
			Amount:     decimal.RequireFromString("6.00"),
			Status:     enums.ShareStatusPending,
			ShareIDs:   []uuid.UUID{uuid.New()},
		},
	}
	profiles := map[uuid.UUID]Profile{
		a: {ID: a, FullName: "Alex"},
		b: {ID: b, FullName: "Blair"},
	}

	views := AssembleSettlements(settlements, profiles)
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].Debtor.FullName != "Alex" || views[0].Creditor.FullName != "Blair" {
		t.Fatalf("profiles not attached: %+v", views[0])
	}
}

func TestAssembleSettlementsDropsDanglingProfiles(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	settlements := []NetSettlement{
		{DebtorID: a, CreditorID: b, Amount: decimal.RequireFromString("6.00"), Status: enums.ShareStatusPending},
		{DebtorID: a, CreditorID: c, Amount: decimal.RequireFromString("2.00"), Status: enums.ShareStatusPending},
	}
	// c has no profile; its entry must be dropped, not fail the list
	profiles := map[uuid.UUID]Profile{
		a: {ID: a, FullName: "Alex"},
		b: {ID: b, FullName: "Blair"},
	}

	views := AssembleSettlements(settlements, profiles)
	if len(views) != 1 {
		t.Fatalf("expected dangling entry dropped, got %d views", len(views))
	}
	if views[0].Creditor.ID != b {
		t.Fatalf("wrong surviving entry")
	}
}
