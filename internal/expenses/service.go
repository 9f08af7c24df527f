package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AttendeeResolver supplies the attendee set for a flokout.
type AttendeeResolver interface {
	ResolveAttendees(ctx context.Context, flokoutID uuid.UUID) ([]uuid.UUID, error)
}

// FlokoutResolver maps a flokout to its owning flok.
type FlokoutResolver interface {
	FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error)
}

// MembershipChecker answers whether a user belongs to a flok.
type MembershipChecker interface {
	IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error)
}

// ProfileLookup resolves display snippets for a set of user ids. Missing ids
// are simply absent from the result.
type ProfileLookup interface {
	Profiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]Profile, error)
}

// Notifier receives best-effort settlement events. Implementations must not
// block the calling request on delivery failures.
type Notifier interface {
	ExpenseAdded(ctx context.Context, expense *models.Expense, debtorIDs []uuid.UUID)
	SettlementSent(ctx context.Context, debtorID, creditorID uuid.UUID, shareIDs []uuid.UUID)
	SettlementReceived(ctx context.Context, creditorID, debtorID uuid.UUID, shareIDs []uuid.UUID)
}

// Service defines the expense and settlement operations.
type Service interface {
	CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error)
	UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID, actorID uuid.UUID) error
	GetExpense(ctx context.Context, expenseID, actorID uuid.UUID) (*models.Expense, error)
	ListByFlokout(ctx context.Context, flokoutID, actorID uuid.UUID) ([]models.Expense, error)
	SettleUp(ctx context.Context, userID uuid.UUID, flokID *uuid.UUID) ([]SettlementView, error)
	MarkSent(ctx context.Context, actorID uuid.UUID, shareIDs []uuid.UUID, method enums.PaymentMethod) (*MarkResult, error)
	MarkReceived(ctx context.Context, actorID uuid.UUID, shareIDs []uuid.UUID) (*MarkResult, error)
}

// CreateExpenseInput captures a new expense request.
type CreateExpenseInput struct {
	FlokoutID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	Category    enums.ExpenseCategory
	PaidBy      uuid.UUID
	CreatedBy   uuid.UUID
}

// UpdateExpenseInput captures an expense edit. Nil fields are left unchanged.
type UpdateExpenseInput struct {
	ExpenseID   uuid.UUID
	ActorID     uuid.UUID
	Amount      *decimal.Decimal
	Description *string
	Category    *enums.ExpenseCategory
}

// MarkResult reports a bulk transition: the ids actually updated and the ids
// excluded with reasons.
type MarkResult struct {
	UpdatedIDs []uuid.UUID     `json:"updated_ids"`
	Rejected   []RejectedShare `json:"rejected"`
}

type service struct {
	repo      Repository
	tx        txRunner
	attendees AttendeeResolver
	flokouts  FlokoutResolver
	members   MembershipChecker
	profiles  ProfileLookup
	notifier  Notifier
	now       func() time.Time
}

// NewService wires the expense service with its collaborators. The notifier
// is optional.
func NewService(repo Repository, tx txRunner, attendees AttendeeResolver, flokouts FlokoutResolver, members MembershipChecker, profiles ProfileLookup, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if attendees == nil {
		return nil, fmt.Errorf("attendee resolver required")
	}
	if flokouts == nil {
		return nil, fmt.Errorf("flokout resolver required")
	}
	if members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile lookup required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		attendees: attendees,
		flokouts:  flokouts,
		members:   members,
		profiles:  profiles,
		notifier:  notifier,
		now:       time.Now,
	}, nil
}

func (s *service) CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	if input.FlokoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flokout id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.PaidBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer id required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Category == "" {
		input.Category = enums.ExpenseCategoryOther
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", input.Category))
	}

	if err := s.requireFlokoutMember(ctx, input.FlokoutID, input.CreatedBy); err != nil {
		return nil, err
	}

	attendeeIDs, err := s.attendees.ResolveAttendees(ctx, input.FlokoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve attendees")
	}

	expense := &models.Expense{
		FlokoutID:   input.FlokoutID,
		Amount:      input.Amount.Round(2),
		Description: input.Description,
		Category:    input.Category,
		PaidBy:      input.PaidBy,
		CreatedBy:   input.CreatedBy,
	}
	if expense.Description == "" {
		expense.Description = "Expense"
	}

	// The expense and its full share batch commit together or not at all; a
	// partial share set would break the sum invariant.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateExpense(ctx, expense); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
		}
		shares, err := BuildShares(expense, attendeeIDs, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build shares")
		}
		if err := repo.CreateShares(ctx, shares); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shares")
		}
		expense.Shares = shares
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		debtors := make([]uuid.UUID, 0, len(expense.Shares))
		for _, share := range expense.Shares {
			if share.UserID != expense.PaidBy {
				debtors = append(debtors, share.UserID)
			}
		}
		s.notifier.ExpenseAdded(ctx, expense, debtors)
	}
	return expense, nil
}

func (s *service) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*models.Expense, error) {
	if input.ExpenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Amount != nil && !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", *input.Category))
	}

	expense, err := s.loadExpense(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}
	if expense.CreatedBy != input.ActorID && expense.PaidBy != input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the payer or creator may edit an expense")
	}

	amountChanged := input.Amount != nil && !input.Amount.Round(2).Equal(expense.Amount)
	if input.Amount != nil {
		expense.Amount = input.Amount.Round(2)
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Category != nil {
		expense.Category = *input.Category
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateExpense(ctx, expense); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
		}
		if !amountChanged {
			return nil
		}
		// Recompute over the existing debtor set, not current attendance,
		// preserving each share's status. Zero shares is a no-op.
		if err := RecomputeShareAmounts(expense.Shares, expense.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recompute shares")
		}
		if err := repo.SaveShares(ctx, expense.Shares); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save shares")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) DeleteExpense(ctx context.Context, expenseID, actorID uuid.UUID) error {
	if expenseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.CreatedBy != actorID && expense.PaidBy != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the payer or creator may delete an expense")
	}

	if err := s.repo.DeleteExpense(ctx, expenseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}

func (s *service) GetExpense(ctx context.Context, expenseID, actorID uuid.UUID) (*models.Expense, error) {
	if expenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireFlokoutMember(ctx, expense.FlokoutID, actorID); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) ListByFlokout(ctx context.Context, flokoutID, actorID uuid.UUID) ([]models.Expense, error) {
	if flokoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flokout id required")
	}
	if err := s.requireFlokoutMember(ctx, flokoutID, actorID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByFlokout(ctx, flokoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	return list, nil
}

// SettleUp recomputes the user's net settlements from the current share
// snapshot. Nothing is cached between calls.
func (s *service) SettleUp(ctx context.Context, userID uuid.UUID, flokID *uuid.UUID) ([]SettlementView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var flokIDs []uuid.UUID
	if flokID != nil && *flokID != uuid.Nil {
		member, err := s.members.IsMember(ctx, *flokID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
		if !member {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this flok")
		}
		flokIDs = []uuid.UUID{*flokID}
	}

	shares, err := s.repo.FindOpenSharesForUser(ctx, userID, flokIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open shares")
	}

	settlements := ComputeNetSettlements(shares, userID)
	if len(settlements) == 0 {
		return []SettlementView{}, nil
	}

	idSet := make(map[uuid.UUID]struct{})
	for _, settlement := range settlements {
		idSet[settlement.DebtorID] = struct{}{}
		idSet[settlement.CreditorID] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	profiles, err := s.profiles.Profiles(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve profiles")
	}
	return AssembleSettlements(settlements, profiles), nil
}

func (s *service) MarkSent(ctx context.Context, actorID uuid.UUID, shareIDs []uuid.UUID, method enums.PaymentMethod) (*MarkResult, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(shareIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share ids required")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}

	loaded, err := s.repo.FindSharesWithPayer(ctx, shareIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shares")
	}

	eligible, rejected := PartitionForMarkSent(shareIDs, loaded, actorID)
	if len(eligible) > 0 {
		if err := s.repo.MarkSharesVerifying(ctx, eligible, method); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark shares verifying")
		}
	}

	if s.notifier != nil && len(eligible) > 0 {
		for creditorID, ids := range groupByPayer(loaded, eligible) {
			s.notifier.SettlementSent(ctx, actorID, creditorID, ids)
		}
	}
	return &MarkResult{UpdatedIDs: eligible, Rejected: rejected}, nil
}

func (s *service) MarkReceived(ctx context.Context, actorID uuid.UUID, shareIDs []uuid.UUID) (*MarkResult, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(shareIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share ids required")
	}

	loaded, err := s.repo.FindSharesWithPayer(ctx, shareIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shares")
	}

	eligible, rejected := PartitionForMarkReceived(shareIDs, loaded, actorID)
	if len(eligible) > 0 {
		if err := s.repo.MarkSharesSettled(ctx, eligible, actorID, s.now()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark shares settled")
		}
	}

	if s.notifier != nil && len(eligible) > 0 {
		for debtorID, ids := range groupByDebtor(loaded, eligible) {
			s.notifier.SettlementReceived(ctx, actorID, debtorID, ids)
		}
	}
	return &MarkResult{UpdatedIDs: eligible, Rejected: rejected}, nil
}

func (s *service) loadExpense(ctx context.Context, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func (s *service) requireFlokoutMember(ctx context.Context, flokoutID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	flokID, err := s.flokouts.FlokIDFor(ctx, flokoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "flokout not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve flokout")
	}
	member, err := s.members.IsMember(ctx, flokID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !member {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this flok")
	}
	return nil
}

func groupByPayer(loaded []ShareWithPayer, ids []uuid.UUID) map[uuid.UUID][]uuid.UUID {
	byID := make(map[uuid.UUID]ShareWithPayer, len(loaded))
	for _, share := range loaded {
		byID[share.ShareID] = share
	}
	grouped := make(map[uuid.UUID][]uuid.UUID)
	for _, id := range ids {
		if share, ok := byID[id]; ok {
			grouped[share.PayerID] = append(grouped[share.PayerID], id)
		}
	}
	return grouped
}

func groupByDebtor(loaded []ShareWithPayer, ids []uuid.UUID) map[uuid.UUID][]uuid.UUID {
	byID := make(map[uuid.UUID]ShareWithPayer, len(loaded))
	for _, share := range loaded {
		byID[share.ShareID] = share
	}
	grouped := make(map[uuid.UUID][]uuid.UUID)
	for _, id := range ids {
		if share, ok := byID[id]; ok {
			grouped[share.DebtorID] = append(grouped[share.DebtorID], id)
		}
	}
	return grouped
}
