package models

import (
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
)

// Flokout is a single scheduled outing belonging to a flok.
type Flokout struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokID       uuid.UUID           `gorm:"column:flok_id;type:uuid;not null;index" json:"flok_id"`
	SpotID       *uuid.UUID          `gorm:"column:spot_id;type:uuid" json:"spot_id,omitempty"`
	Title        string              `gorm:"column:title;not null" json:"title"`
	Description  *string             `gorm:"column:description" json:"description,omitempty"`
	Date         *time.Time          `gorm:"column:date" json:"date,omitempty"`
	Status       enums.FlokoutStatus `gorm:"column:status;type:text;not null;default:'poll'" json:"status"`
	MinAttendees int                 `gorm:"column:min_attendees;not null;default:1" json:"min_attendees"`
	CreatedBy    uuid.UUID           `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	ConfirmedAt  *time.Time          `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
