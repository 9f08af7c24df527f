package notifications

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestNotifier(t *testing.T, repo Repository) (*Notifier, *bytes.Buffer) {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	buf := &bytes.Buffer{}
	log := logger.New(logger.Options{ServiceName: "test", Output: buf})
	return NewNotifier(svc, log), buf
}

func TestExpenseAddedFansOutToAllDebtors(t *testing.T) {
	repo := &stubNotificationRepo{}
	notifier, _ := newTestNotifier(t, repo)

	debtorA := uuid.New()
	debtorB := uuid.New()
	expense := &models.Expense{
		ID:          uuid.New(),
		FlokoutID:   uuid.New(),
		Amount:      decimal.RequireFromString("45.00"),
		Description: "Dinner",
	}

	notifier.ExpenseAdded(context.Background(), expense, []uuid.UUID{debtorA, debtorB})

	if len(repo.notifications) != 2 {
		t.Fatalf("notifications = %d, want 2", len(repo.notifications))
	}
	for _, notification := range repo.notifications {
		if notification.Type != enums.NotificationTypeExpenseAdded {
			t.Fatalf("type = %s", notification.Type)
		}
	}
}

func TestSettlementEventsTargetTheRightUser(t *testing.T) {
	repo := &stubNotificationRepo{}
	notifier, _ := newTestNotifier(t, repo)
	debtor := uuid.New()
	creditor := uuid.New()
	shareIDs := []uuid.UUID{uuid.New()}

	notifier.SettlementSent(context.Background(), debtor, creditor, shareIDs)
	notifier.SettlementReceived(context.Background(), creditor, debtor, shareIDs)

	if len(repo.notifications) != 2 {
		t.Fatalf("notifications = %d, want 2", len(repo.notifications))
	}
	if repo.notifications[0].UserID != creditor {
		t.Fatalf("sent event should notify the creditor")
	}
	if repo.notifications[1].UserID != debtor {
		t.Fatalf("received event should notify the debtor")
	}
}

func TestFanoutFailuresAreLoggedNotReturned(t *testing.T) {
	repo := &stubNotificationRepo{createErr: errors.New("connection reset")}
	notifier, buf := newTestNotifier(t, repo)

	// must not panic or surface the error
	notifier.ExpenseAdded(context.Background(), &models.Expense{
		ID:     uuid.New(),
		Amount: decimal.RequireFromString("10.00"),
	}, []uuid.UUID{uuid.New()})

	if !bytes.Contains(buf.Bytes(), []byte("fanout failed")) {
		t.Fatalf("expected failure to be logged, log=%s", buf.String())
	}
}
