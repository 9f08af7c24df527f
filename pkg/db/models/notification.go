package models

import (
	"encoding/json"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null" json:"type"`
	Title     string                 `gorm:"column:title;not null" json:"title"`
	Body      string                 `gorm:"column:body;not null" json:"body"`
	Data      json.RawMessage        `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	Read      bool                   `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
