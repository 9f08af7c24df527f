package expenses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubExpenseRepo struct {
	createExpense         func(ctx context.Context, expense *models.Expense) error
	createShares          func(ctx context.Context, shares []models.ExpenseShare) error
	getExpense            func(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	updateExpense         func(ctx context.Context, expense *models.Expense) error
	saveShares            func(ctx context.Context, shares []models.ExpenseShare) error
	deleteExpense         func(ctx context.Context, id uuid.UUID) error
	listByFlokout         func(ctx context.Context, flokoutID uuid.UUID) ([]models.Expense, error)
	findOpenSharesForUser func(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error)
	findSharesWithPayer   func(ctx context.Context, shareIDs []uuid.UUID) ([]ShareWithPayer, error)
	markSharesVerifying   func(ctx context.Context, shareIDs []uuid.UUID, method enums.PaymentMethod) error
	markSharesSettled     func(ctx context.Context, shareIDs []uuid.UUID, settledBy uuid.UUID, settledAt time.Time) error
}

func (s *stubExpenseRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubExpenseRepo) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if s.createExpense != nil {
		return s.createExpense(ctx, expense)
	}
	expense.ID = uuid.New()
	return nil
}

func (s *stubExpenseRepo) CreateShares(ctx context.Context, shares []models.ExpenseShare) error {
	if s.createShares != nil {
		return s.createShares(ctx, shares)
	}
	return nil
}

func (s *stubExpenseRepo) GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	if s.getExpense != nil {
		return s.getExpense(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubExpenseRepo) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if s.updateExpense != nil {
		return s.updateExpense(ctx, expense)
	}
	return nil
}

func (s *stubExpenseRepo) SaveShares(ctx context.Context, shares []models.ExpenseShare) error {
	if s.saveShares != nil {
		return s.saveShares(ctx, shares)
	}
	return nil
}

func (s *stubExpenseRepo) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if s.deleteExpense != nil {
		return s.deleteExpense(ctx, id)
	}
	return nil
}

func (s *stubExpenseRepo) ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.Expense, error) {
	if s.listByFlokout != nil {
		return s.listByFlokout(ctx, flokoutID)
	}
	return nil, nil
}

func (s *stubExpenseRepo) FindOpenSharesForUser(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error) {
	if s.findOpenSharesForUser != nil {
		return s.findOpenSharesForUser(ctx, userID, flokIDs)
	}
	return nil, nil
}

func (s *stubExpenseRepo) FindSharesWithPayer(ctx context.Context, shareIDs []uuid.UUID) ([]ShareWithPayer, error) {
	if s.findSharesWithPayer != nil {
		return s.findSharesWithPayer(ctx, shareIDs)
	}
	return nil, nil
}

func (s *stubExpenseRepo) MarkSharesVerifying(ctx context.Context, shareIDs []uuid.UUID, method enums.PaymentMethod) error {
	if s.markSharesVerifying != nil {
		return s.markSharesVerifying(ctx, shareIDs, method)
	}
	return nil
}

func (s *stubExpenseRepo) MarkSharesSettled(ctx context.Context, shareIDs []uuid.UUID, settledBy uuid.UUID, settledAt time.Time) error {
	if s.markSharesSettled != nil {
		return s.markSharesSettled(ctx, shareIDs, settledBy, settledAt)
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubAttendees struct {
	ids []uuid.UUID
	err error
}

func (s stubAttendees) ResolveAttendees(ctx context.Context, flokoutID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubFlokouts struct {
	flokID uuid.UUID
	err    error
}

func (s stubFlokouts) FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error) {
	return s.flokID, s.err
}

type stubMembers struct {
	member bool
	err    error
}

func (s stubMembers) IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error) {
	return s.member, s.err
}

type stubProfiles struct {
	profiles map[uuid.UUID]Profile
	err      error
}

func (s stubProfiles) Profiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]Profile, error) {
	return s.profiles, s.err
}

func newTestService(t *testing.T, repo Repository, attendees AttendeeResolver, profiles ProfileLookup) Service {
	t.Helper()
	if attendees == nil {
		attendees = stubAttendees{}
	}
	if profiles == nil {
		profiles = stubProfiles{}
	}
	svc, err := NewService(repo, stubTxRunner{}, attendees, stubFlokouts{flokID: uuid.New()}, stubMembers{member: true}, profiles, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateExpenseEndToEnd(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	repo := &stubExpenseRepo{}
	svc := newTestService(t, repo, stubAttendees{ids: []uuid.UUID{a, b, c}}, nil)

	expense, err := svc.CreateExpense(context.Background(), CreateExpenseInput{
		FlokoutID: uuid.New(),
		Amount:    decimal.RequireFromString("100.00"),
		Category:  enums.ExpenseCategoryFood,
		PaidBy:    c,
		CreatedBy: c,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(expense.Shares))
	}

	byUser := map[uuid.UUID]models.ExpenseShare{}
	sum := decimal.Zero
	for _, share := range expense.Shares {
		byUser[share.UserID] = share
		sum = sum.Add(share.Amount)
	}
	if !sum.Equal(expense.Amount) {
		t.Fatalf("share sum %s != amount %s", sum, expense.Amount)
	}
	if !byUser[a].Amount.Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("first attendee share = %s, want 33.34", byUser[a].Amount)
	}
	if byUser[a].Status != enums.ShareStatusPending || byUser[b].Status != enums.ShareStatusPending {
		t.Fatalf("debtor shares must start pending")
	}
	if byUser[c].Status != enums.ShareStatusSettled {
		t.Fatalf("payer share must be settled")
	}
}

func TestCreateExpenseNoAttendees(t *testing.T) {
	repo := &stubExpenseRepo{}
	svc := newTestService(t, repo, stubAttendees{ids: nil}, nil)

	expense, err := svc.CreateExpense(context.Background(), CreateExpenseInput{
		FlokoutID: uuid.New(),
		Amount:    decimal.RequireFromString("50.00"),
		PaidBy:    uuid.New(),
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if len(expense.Shares) != 0 {
		t.Fatalf("expected unsplit expense with no shares, got %d", len(expense.Shares))
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	repo := &stubExpenseRepo{}
	svc := newTestService(t, repo, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, CreateExpenseInput{
		FlokoutID: uuid.New(),
		Amount:    decimal.Zero,
		PaidBy:    uuid.New(),
		CreatedBy: uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateExpense(ctx, CreateExpenseInput{
		FlokoutID: uuid.New(),
		Amount:    decimal.RequireFromString("5.00"),
		Category:  enums.ExpenseCategory("helicopter"),
		PaidBy:    uuid.New(),
		CreatedBy: uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateExpenseRollsBackOnShareFailure(t *testing.T) {
	boom := errors.New("insert failed")
	repo := &stubExpenseRepo{
		createShares: func(ctx context.Context, shares []models.ExpenseShare) error {
			return boom
		},
	}
	svc := newTestService(t, repo, stubAttendees{ids: []uuid.UUID{uuid.New(), uuid.New()}}, nil)

	_, err := svc.CreateExpense(context.Background(), CreateExpenseInput{
		FlokoutID: uuid.New(),
		Amount:    decimal.RequireFromString("10.00"),
		PaidBy:    uuid.New(),
		CreatedBy: uuid.New(),
	})
	if err == nil {
		t.Fatalf("expected creation to fail when shares cannot persist")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying cause preserved, got %v", err)
	}
}

func TestUpdateExpenseRecomputesOnAmountChange(t *testing.T) {
	actor := uuid.New()
	expenseID := uuid.New()
	var saved []models.ExpenseShare
	repo := &stubExpenseRepo{
		getExpense: func(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
			return &models.Expense{
				ID:        expenseID,
				Amount:    decimal.RequireFromString("30.00"),
				PaidBy:    actor,
				CreatedBy: actor,
				Shares: []models.ExpenseShare{
					{ID: uuid.New(), UserID: uuid.New(), Amount: decimal.RequireFromString("10.00"), Status: enums.ShareStatusPending},
					{ID: uuid.New(), UserID: uuid.New(), Amount: decimal.RequireFromString("10.00"), Status: enums.ShareStatusVerifying},
					{ID: uuid.New(), UserID: actor, Amount: decimal.RequireFromString("10.00"), Status: enums.ShareStatusSettled},
				},
			}, nil
		},
		saveShares: func(ctx context.Context, shares []models.ExpenseShare) error {
			saved = shares
			return nil
		},
	}
	svc := newTestService(t, repo, nil, nil)

	newAmount := decimal.RequireFromString("40.00")
	updated, err := svc.UpdateExpense(context.Background(), UpdateExpenseInput{
		ExpenseID: expenseID,
		ActorID:   actor,
		Amount:    &newAmount,
	})
	if err != nil {
		t.Fatalf("update expense: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("expected shares recomputed, got %d saved", len(saved))
	}

	sum := decimal.Zero
	for _, share := range saved {
		sum = sum.Add(share.Amount)
	}
	if !sum.Equal(newAmount) {
		t.Fatalf("recomputed sum %s != new amount %s", sum, newAmount)
	}
	if saved[1].Status != enums.ShareStatusVerifying {
		t.Fatalf("recompute must preserve status")
	}
	if !updated.Amount.Equal(newAmount) {
		t.Fatalf("expense amount not updated")
	}
}

func TestUpdateExpenseNoSharesIsNoop(t *testing.T) {
	actor := uuid.New()
	saveCalled := false
	repo := &stubExpenseRepo{
		getExpense: func(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
			return &models.Expense{ID: id, Amount: decimal.RequireFromString("30.00"), PaidBy: actor, CreatedBy: actor}, nil
		},
		saveShares: func(ctx context.Context, shares []models.ExpenseShare) error {
			saveCalled = true
			return nil
		},
	}
	svc := newTestService(t, repo, nil, nil)

	newAmount := decimal.RequireFromString("45.00")
	if _, err := svc.UpdateExpense(context.Background(), UpdateExpenseInput{
		ExpenseID: uuid.New(),
		ActorID:   actor,
		Amount:    &newAmount,
	}); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	if saveCalled {
		t.Fatalf("no shares should be saved when none exist")
	}
}

func TestUpdateExpenseForbiddenForOutsider(t *testing.T) {
	repo := &stubExpenseRepo{
		getExpense: func(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
			return &models.Expense{ID: id, Amount: decimal.RequireFromString("30.00"), PaidBy: uuid.New(), CreatedBy: uuid.New()}, nil
		},
	}
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.UpdateExpense(context.Background(), UpdateExpenseInput{
		ExpenseID: uuid.New(),
		ActorID:   uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestSettleUpAssemblesProfiles(t *testing.T) {
	requester := uuid.New()
	creditor := uuid.New()
	repo := &stubExpenseRepo{
		findOpenSharesForUser: func(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error) {
			return []ShareWithPayer{
				{ShareID: uuid.New(), DebtorID: requester, PayerID: creditor, Amount: decimal.RequireFromString("12.00"), Status: enums.ShareStatusPending},
			}, nil
		},
	}
	profiles := stubProfiles{profiles: map[uuid.UUID]Profile{
		requester: {ID: requester, FullName: "Riley"},
		creditor:  {ID: creditor, FullName: "Casey"},
	}}
	svc := newTestService(t, repo, nil, profiles)

	views, err := svc.SettleUp(context.Background(), requester, nil)
	if err != nil {
		t.Fatalf("settle up: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 settlement view, got %d", len(views))
	}
	if views[0].Debtor.FullName != "Riley" || views[0].Creditor.FullName != "Casey" {
		t.Fatalf("profiles not joined: %+v", views[0])
	}
	if !views[0].Amount.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("amount = %s", views[0].Amount)
	}
}

func TestSettleUpFlokFilterPassedToRepo(t *testing.T) {
	requester := uuid.New()
	flokID := uuid.New()
	var gotFlokIDs []uuid.UUID
	repo := &stubExpenseRepo{
		findOpenSharesForUser: func(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error) {
			gotFlokIDs = flokIDs
			return nil, nil
		},
	}
	svc := newTestService(t, repo, nil, nil)

	views, err := svc.SettleUp(context.Background(), requester, &flokID)
	if err != nil {
		t.Fatalf("settle up: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no settlements, got %d", len(views))
	}
	if len(gotFlokIDs) != 1 || gotFlokIDs[0] != flokID {
		t.Fatalf("repo received flok ids %v, want [%s]", gotFlokIDs, flokID)
	}
}

func TestSettleUpFlokFilterRequiresMembership(t *testing.T) {
	flokID := uuid.New()
	called := false
	repo := &stubExpenseRepo{
		findOpenSharesForUser: func(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error) {
			called = true
			return nil, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, stubAttendees{}, stubFlokouts{flokID: flokID}, stubMembers{member: false}, stubProfiles{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SettleUp(context.Background(), uuid.New(), &flokID)
	assertCode(t, err, pkgerrors.CodeForbidden)
	if called {
		t.Fatal("shares must not be loaded for a non-member")
	}
}

func TestMarkSentPartialSuccess(t *testing.T) {
	actor := uuid.New()
	payer := uuid.New()
	mine := uuid.New()
	foreign := uuid.New()

	var updatedIDs []uuid.UUID
	repo := &stubExpenseRepo{
		findSharesWithPayer: func(ctx context.Context, shareIDs []uuid.UUID) ([]ShareWithPayer, error) {
			return []ShareWithPayer{
				loadedShare(mine, actor, payer, enums.ShareStatusPending),
				loadedShare(foreign, uuid.New(), payer, enums.ShareStatusPending),
			}, nil
		},
		markSharesVerifying: func(ctx context.Context, shareIDs []uuid.UUID, method enums.PaymentMethod) error {
			updatedIDs = shareIDs
			if method != enums.PaymentMethodVenmo {
				t.Fatalf("payment method not forwarded")
			}
			return nil
		},
	}
	svc := newTestService(t, repo, nil, nil)

	result, err := svc.MarkSent(context.Background(), actor, []uuid.UUID{mine, foreign}, enums.PaymentMethodVenmo)
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if len(result.UpdatedIDs) != 1 || result.UpdatedIDs[0] != mine {
		t.Fatalf("expected only own share updated, got %v", result.UpdatedIDs)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].ShareID != foreign {
		t.Fatalf("expected foreign share rejected, got %v", result.Rejected)
	}
	if len(updatedIDs) != 1 {
		t.Fatalf("repo update called with %v", updatedIDs)
	}
}

func TestMarkSentRejectsInvalidMethod(t *testing.T) {
	svc := newTestService(t, &stubExpenseRepo{}, nil, nil)
	_, err := svc.MarkSent(context.Background(), uuid.New(), []uuid.UUID{uuid.New()}, enums.PaymentMethod("cheque"))
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReceivedSetsSettledBy(t *testing.T) {
	creditor := uuid.New()
	debtor := uuid.New()
	shareID := uuid.New()

	var gotSettledBy uuid.UUID
	repo := &stubExpenseRepo{
		findSharesWithPayer: func(ctx context.Context, shareIDs []uuid.UUID) ([]ShareWithPayer, error) {
			return []ShareWithPayer{loadedShare(shareID, debtor, creditor, enums.ShareStatusVerifying)}, nil
		},
		markSharesSettled: func(ctx context.Context, shareIDs []uuid.UUID, settledBy uuid.UUID, settledAt time.Time) error {
			gotSettledBy = settledBy
			return nil
		},
	}
	svc := newTestService(t, repo, nil, nil)

	result, err := svc.MarkReceived(context.Background(), creditor, []uuid.UUID{shareID})
	if err != nil {
		t.Fatalf("mark received: %v", err)
	}
	if len(result.UpdatedIDs) != 1 {
		t.Fatalf("expected share settled, got %v", result.UpdatedIDs)
	}
	if gotSettledBy != creditor {
		t.Fatalf("settled_by = %s, want creditor %s", gotSettledBy, creditor)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("error code = %s, want %s", typed.Code(), code)
	}
}
