package models

import (
	"time"

	"github.com/google/uuid"
)

// Flok is a persistent membership group; deactivation hides it without
// destroying history. Memberships, flokouts and spots hang off it.
type Flok struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	Description *string          `gorm:"column:description" json:"description,omitempty"`
	Active      bool             `gorm:"column:active;not null;default:true" json:"active"`
	CreatedBy   uuid.UUID        `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	Memberships []FlokMembership `gorm:"foreignKey:FlokID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
