package notifications

import (
	"context"
	"fmt"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Notifier fans settlement events out as in-app notifications. Delivery is
// best effort: failures are logged, never returned to the caller.
type Notifier struct {
	service Service
	log     *logger.Logger
}

// NewNotifier wires the best-effort event fanout.
func NewNotifier(service Service, log *logger.Logger) *Notifier {
	return &Notifier{service: service, log: log}
}

// ExpenseAdded tells each debtor they owe a share of a new expense.
func (n *Notifier) ExpenseAdded(ctx context.Context, expense *models.Expense, debtorIDs []uuid.UUID) {
	var errs error
	for _, debtorID := range debtorIDs {
		_, err := n.service.Create(ctx, CreateInput{
			UserID: debtorID,
			Type:   enums.NotificationTypeExpenseAdded,
			Title:  "New expense",
			Body:   fmt.Sprintf("%s ($%s) was added and you owe a share", expense.Description, expense.Amount.StringFixed(2)),
			Data: map[string]any{
				"expense_id": expense.ID.String(),
				"flokout_id": expense.FlokoutID.String(),
			},
		})
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		n.log.Error(ctx, "expense added fanout failed", errs)
	}
}

// SettlementSent tells the creditor a debtor reported paying them.
func (n *Notifier) SettlementSent(ctx context.Context, debtorID, creditorID uuid.UUID, shareIDs []uuid.UUID) {
	_, err := n.service.Create(ctx, CreateInput{
		UserID: creditorID,
		Type:   enums.NotificationTypeSettlementSent,
		Title:  "Payment on its way",
		Body:   "A member marked a payment to you as sent. Confirm once it arrives.",
		Data: map[string]any{
			"debtor_id": debtorID.String(),
			"share_ids": uuidStrings(shareIDs),
		},
	})
	if err != nil {
		n.log.Error(ctx, "settlement sent fanout failed", err)
	}
}

// SettlementReceived tells the debtor the creditor confirmed their payment.
func (n *Notifier) SettlementReceived(ctx context.Context, creditorID, debtorID uuid.UUID, shareIDs []uuid.UUID) {
	_, err := n.service.Create(ctx, CreateInput{
		UserID: debtorID,
		Type:   enums.NotificationTypeSettlementReceipt,
		Title:  "Payment confirmed",
		Body:   "Your payment was confirmed and the debt is settled.",
		Data: map[string]any{
			"creditor_id": creditorID.String(),
			"share_ids":   uuidStrings(shareIDs),
		},
	})
	if err != nil {
		n.log.Error(ctx, "settlement received fanout failed", err)
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
