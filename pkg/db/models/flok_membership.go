package models

import (
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
)

// FlokMembership links a user to a flok. Every authorization check in the
// API resolves through this table.
type FlokMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokID    uuid.UUID        `gorm:"column:flok_id;type:uuid;not null;uniqueIndex:idx_flok_user" json:"flok_id"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_flok_user" json:"user_id"`
	Role      enums.MemberRole `gorm:"column:role;type:text;not null;default:'member'" json:"role"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
