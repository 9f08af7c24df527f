package expenses

import (
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile is the display snippet attached to each side of a settlement.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// SettlementView is the client-facing settle-up payload entry.
type SettlementView struct {
	Debtor   Profile           `json:"debtor"`
	Creditor Profile           `json:"creditor"`
	Amount   decimal.Decimal   `json:"amount"`
	Status   enums.ShareStatus `json:"status"`
	ShareIDs []uuid.UUID       `json:"share_ids"`
}

// AssembleSettlements joins net settlements with profile snippets. An entry
// whose debtor or creditor profile cannot be resolved is dropped rather than
// failing the whole response; a dangling user reference must not break the
// list.
func AssembleSettlements(settlements []NetSettlement, profiles map[uuid.UUID]Profile) []SettlementView {
	views := make([]SettlementView, 0, len(settlements))
	for _, settlement := range settlements {
		debtor, ok := profiles[settlement.DebtorID]
		if !ok {
			continue
		}
		creditor, ok := profiles[settlement.CreditorID]
		if !ok {
			continue
		}
		views = append(views, SettlementView{
			Debtor:   debtor,
			Creditor: creditor,
			Amount:   settlement.Amount,
			Status:   settlement.Status,
			ShareIDs: settlement.ShareIDs,
		})
	}
	return views
}
