package expenses

import (
	"sort"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShareWithPayer is the fully-joined input row the aggregator works on: one
// share plus the payer of its parent expense. The join happens before
// aggregation so every row has the same shape.
type ShareWithPayer struct {
	ShareID   uuid.UUID
	ExpenseID uuid.UUID
	DebtorID  uuid.UUID
	PayerID   uuid.UUID
	Amount    decimal.Decimal
	Status    enums.ShareStatus
}

// NetSettlement is the minimal directional debt left between two users after
// offsetting their mutual shares. Derived, never persisted.
type NetSettlement struct {
	DebtorID   uuid.UUID
	CreditorID uuid.UUID
	Amount     decimal.Decimal
	Status     enums.ShareStatus
	ShareIDs   []uuid.UUID
}

// pairKey orders a (debtor, creditor) pair. A composite value type avoids the
// collision and ordering bugs of concatenated string keys.
type pairKey struct {
	Debtor   uuid.UUID
	Creditor uuid.UUID
}

func (k pairKey) mirror() pairKey {
	return pairKey{Debtor: k.Creditor, Creditor: k.Debtor}
}

type pairBalance struct {
	amount   decimal.Decimal
	status   enums.ShareStatus
	shareIDs []uuid.UUID
}

// ComputeNetSettlements aggregates open shares into net pairwise debts
// involving the requesting user.
//
// Settled shares never contribute. Self-pairs (debtor paying themself) are
// skipped. A pair's status escalates to verifying if any contributing share
// is verifying and never downgrades within a computation. Mirror pairs are
// offset against each other; a pair whose balances cancel exactly emits
// nothing. Output ordering is deterministic so repeated calls over the same
// snapshot return identical results.
func ComputeNetSettlements(shares []ShareWithPayer, requester uuid.UUID) []NetSettlement {
	balances := make(map[pairKey]*pairBalance)

	for _, share := range shares {
		if share.Status == enums.ShareStatusSettled {
			continue
		}
		if share.DebtorID == share.PayerID {
			continue
		}

		key := pairKey{Debtor: share.DebtorID, Creditor: share.PayerID}
		bal, ok := balances[key]
		if !ok {
			bal = &pairBalance{amount: decimal.Zero, status: enums.ShareStatusPending}
			balances[key] = bal
		}
		bal.amount = bal.amount.Add(share.Amount).Round(2)
		bal.shareIDs = append(bal.shareIDs, share.ShareID)
		if share.Status == enums.ShareStatusVerifying {
			bal.status = enums.ShareStatusVerifying
		}
	}

	settled := make(map[pairKey]bool)
	var results []NetSettlement

	for key, bal := range balances {
		mirrorKey := key.mirror()
		if settled[key] || settled[mirrorKey] {
			continue
		}
		settled[key] = true
		settled[mirrorKey] = true

		net := bal.amount
		status := bal.status
		shareIDs := bal.shareIDs

		if mirror, ok := balances[mirrorKey]; ok {
			net = bal.amount.Sub(mirror.amount).Round(2)
			switch {
			case net.IsZero():
				continue
			case net.IsNegative():
				// the mirror direction survives
				key = mirrorKey
				net = net.Neg()
				status = mirror.status
				shareIDs = mirror.shareIDs
			}
		}

		if !net.IsPositive() {
			continue
		}
		if key.Debtor != requester && key.Creditor != requester {
			continue
		}

		ids := make([]uuid.UUID, len(shareIDs))
		copy(ids, shareIDs)
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		results = append(results, NetSettlement{
			DebtorID:   key.Debtor,
			CreditorID: key.Creditor,
			Amount:     net,
			Status:     status,
			ShareIDs:   ids,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DebtorID != results[j].DebtorID {
			return results[i].DebtorID.String() < results[j].DebtorID.String()
		}
		return results[i].CreditorID.String() < results[j].CreditorID.String()
	})
	return results
}
