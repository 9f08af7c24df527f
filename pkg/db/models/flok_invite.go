package models

import (
	"time"

	"github.com/google/uuid"
)

// FlokInvite is a shareable join code. Codes expire and can be deactivated
// by an admin before expiry.
type FlokInvite struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokID    uuid.UUID  `gorm:"column:flok_id;type:uuid;not null" json:"flok_id"`
	Code      string     `gorm:"column:code;not null;uniqueIndex" json:"code"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	Active    bool       `gorm:"column:active;not null;default:true" json:"active"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
