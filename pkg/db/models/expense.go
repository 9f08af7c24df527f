package models

import (
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a cost paid up-front by one member on behalf of a flokout's
// attendees. Amount edits trigger share recomputation; deletes cascade to
// shares.
type Expense struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokoutID   uuid.UUID             `gorm:"column:flokout_id;type:uuid;not null;index" json:"flokout_id"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Description string                `gorm:"column:description;not null;default:'Expense'" json:"description"`
	Category    enums.ExpenseCategory `gorm:"column:category;type:text;not null;default:'other'" json:"category"`
	PaidBy      uuid.UUID             `gorm:"column:paid_by;type:uuid;not null;index" json:"paid_by"`
	CreatedBy   uuid.UUID             `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	Shares      []ExpenseShare        `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"shares,omitempty"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ExpenseShare is one debtor's portion of an expense.
//
// Invariant: the share amounts of an expense sum exactly to the expense
// amount. Invariant: the payer's own share is created settled. Status only
// moves forward (pending -> verifying -> settled); settled_at and settled_by
// are written exactly once, on entering settled.
type ExpenseShare struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ExpenseID     uuid.UUID            `gorm:"column:expense_id;type:uuid;not null;index" json:"expense_id"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Amount        decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status        enums.ShareStatus    `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method;type:text" json:"payment_method,omitempty"`
	SettledAt     *time.Time           `gorm:"column:settled_at" json:"settled_at,omitempty"`
	SettledBy     *uuid.UUID           `gorm:"column:settled_by;type:uuid" json:"settled_by,omitempty"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
