package expenses

import (
	"context"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// shareOrder pins the share load order so the cent remainder always lands on
// the same share when amounts are recomputed.
func shareOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// Repository manages persistence for expenses and their shares.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateExpense(ctx context.Context, expense *models.Expense) error
	CreateShares(ctx context.Context, shares []models.ExpenseShare) error
	GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	SaveShares(ctx context.Context, shares []models.ExpenseShare) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.Expense, error)
	FindOpenSharesForUser(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error)
	FindSharesWithPayer(ctx context.Context, shareIDs []uuid.UUID) ([]ShareWithPayer, error)
	MarkSharesVerifying(ctx context.Context, shareIDs []uuid.UUID, method enums.PaymentMethod) error
	MarkSharesSettled(ctx context.Context, shareIDs []uuid.UUID, settledBy uuid.UUID, settledAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an expense repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) CreateShares(ctx context.Context, shares []models.ExpenseShare) error {
	if len(shares) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shares).Error
}

func (r *repository) GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).
		Preload("Shares", shareOrder).
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ?", expense.ID).
		Updates(map[string]any{
			"amount":      expense.Amount,
			"description": expense.Description,
			"category":    expense.Category,
		}).Error
}

func (r *repository) SaveShares(ctx context.Context, shares []models.ExpenseShare) error {
	for i := range shares {
		if err := r.db.WithContext(ctx).
			Model(&models.ExpenseShare{}).
			Where("id = ?", shares[i].ID).
			Update("amount", shares[i].Amount).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id).Error
}

func (r *repository) ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := r.db.WithContext(ctx).
		Preload("Shares", shareOrder).
		Where("flokout_id = ?", flokoutID).
		Order("created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// shareWithPayerRow is the scan target for the share/expense join.
type shareWithPayerRow struct {
	ShareID   uuid.UUID         `gorm:"column:share_id"`
	ExpenseID uuid.UUID         `gorm:"column:expense_id"`
	DebtorID  uuid.UUID         `gorm:"column:debtor_id"`
	PayerID   uuid.UUID         `gorm:"column:payer_id"`
	Amount    decimal.Decimal   `gorm:"column:amount"`
	Status    enums.ShareStatus `gorm:"column:status"`
}

const shareWithPayerSelect = `expense_shares.id AS share_id,
expense_shares.expense_id AS expense_id,
expense_shares.user_id AS debtor_id,
expenses.paid_by AS payer_id,
expense_shares.amount AS amount,
expense_shares.status AS status`

// FindOpenSharesForUser loads the non-settled shares the user is involved in
// as debtor or creditor, optionally narrowed to a set of floks.
func (r *repository) FindOpenSharesForUser(ctx context.Context, userID uuid.UUID, flokIDs []uuid.UUID) ([]ShareWithPayer, error) {
	query := r.db.WithContext(ctx).
		Table("expense_shares").
		Select(shareWithPayerSelect).
		Joins("JOIN expenses ON expenses.id = expense_shares.expense_id").
		Joins("JOIN flokouts ON flokouts.id = expenses.flokout_id").
		Where("expense_shares.status IN ?", []string{string(enums.ShareStatusPending), string(enums.ShareStatusVerifying)}).
		Where("expense_shares.user_id = ? OR expenses.paid_by = ?", userID, userID)

	if len(flokIDs) > 0 {
		query = query.Where("flokouts.flok_id IN ?", flokIDs)
	}

	var rows []shareWithPayerRow
	if err := query.Order("expense_shares.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toSharesWithPayer(rows), nil
}

func (r *repository) FindSharesWithPayer(ctx context.Context, shareIDs []uuid.UUID) ([]ShareWithPayer, error) {
	if len(shareIDs) == 0 {
		return nil, nil
	}

	var rows []shareWithPayerRow
	if err := r.db.WithContext(ctx).
		Table("expense_shares").
		Select(shareWithPayerSelect).
		Joins("JOIN expenses ON expenses.id = expense_shares.expense_id").
		Where("expense_shares.id IN ?", shareIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toSharesWithPayer(rows), nil
}

func (r *repository) MarkSharesVerifying(ctx context.Context, shareIDs []uuid.UUID, method enums.PaymentMethod) error {
	if len(shareIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ExpenseShare{}).
		Where("id IN ?", shareIDs).
		Where("status = ?", enums.ShareStatusPending).
		Updates(map[string]any{
			"status":         enums.ShareStatusVerifying,
			"payment_method": method,
		}).Error
}

func (r *repository) MarkSharesSettled(ctx context.Context, shareIDs []uuid.UUID, settledBy uuid.UUID, settledAt time.Time) error {
	if len(shareIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ExpenseShare{}).
		Where("id IN ?", shareIDs).
		Where("status <> ?", enums.ShareStatusSettled).
		Updates(map[string]any{
			"status":     enums.ShareStatusSettled,
			"settled_at": settledAt,
			"settled_by": settledBy,
		}).Error
}

func toSharesWithPayer(rows []shareWithPayerRow) []ShareWithPayer {
	shares := make([]ShareWithPayer, len(rows))
	for i, row := range rows {
		shares[i] = ShareWithPayer{
			ShareID:   row.ShareID,
			ExpenseID: row.ExpenseID,
			DebtorID:  row.DebtorID,
			PayerID:   row.PayerID,
			Amount:    row.Amount,
			Status:    row.Status,
		}
	}
	return shares
}
