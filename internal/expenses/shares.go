package expenses

import (
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildShares produces one share per attendee for the given expense. The
// payer's own share is created already settled; everyone else starts pending.
// An empty attendee list yields no shares: the expense stays unsplit until
// attendance is known.
func BuildShares(expense *models.Expense, attendeeIDs []uuid.UUID, now time.Time) ([]models.ExpenseShare, error) {
	if len(attendeeIDs) == 0 {
		return nil, nil
	}

	amounts, err := SplitExact(expense.Amount, len(attendeeIDs))
	if err != nil {
		return nil, err
	}

	shares := make([]models.ExpenseShare, 0, len(attendeeIDs))
	for i, userID := range attendeeIDs {
		share := models.ExpenseShare{
			ExpenseID: expense.ID,
			UserID:    userID,
			Amount:    amounts[i],
			Status:    enums.ShareStatusPending,
		}
		if userID == expense.PaidBy {
			settledAt := now
			settledBy := expense.PaidBy
			share.Status = enums.ShareStatusSettled
			share.SettledAt = &settledAt
			share.SettledBy = &settledBy
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// RecomputeShareAmounts redistributes a new total across the existing shares
// in place, preserving each share's debtor and status. The shares keep their
// stored ordering so the remainder lands on the same debtor every time.
func RecomputeShareAmounts(shares []models.ExpenseShare, newTotal decimal.Decimal) error {
	if len(shares) == 0 {
		return nil
	}

	amounts, err := SplitExact(newTotal, len(shares))
	if err != nil {
		return err
	}
	for i := range shares {
		shares[i].Amount = amounts[i]
	}
	return nil
}
