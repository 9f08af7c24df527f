package models

import (
	"time"

	"github.com/google/uuid"
)

// Spot is a venue where flokouts can happen.
type Spot struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Address   *string   `gorm:"column:address" json:"address,omitempty"`
	Notes     *string   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// FlokSpot associates a spot with a flok so it shows up when planning.
type FlokSpot struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokID    uuid.UUID `gorm:"column:flok_id;type:uuid;not null;uniqueIndex:idx_flok_spot" json:"flok_id"`
	SpotID    uuid.UUID `gorm:"column:spot_id;type:uuid;not null;uniqueIndex:idx_flok_spot" json:"spot_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
