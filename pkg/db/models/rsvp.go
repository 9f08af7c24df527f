package models

import (
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
)

// RSVP records a member's stated intent for a flokout. One row per
// (flokout, user); responses are upserted, never duplicated.
type RSVP struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokoutID uuid.UUID          `gorm:"column:flokout_id;type:uuid;not null;uniqueIndex:idx_rsvp_flokout_user" json:"flokout_id"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_rsvp_flokout_user" json:"user_id"`
	Response  enums.RSVPResponse `gorm:"column:response;type:text;not null" json:"response"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Attendance records whether a member actually showed up, distinct from
// RSVP intent. Attended rows drive expense share generation.
type Attendance struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlokoutID uuid.UUID `gorm:"column:flokout_id;type:uuid;not null;uniqueIndex:idx_att_flokout_user" json:"flokout_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_att_flokout_user" json:"user_id"`
	Attended  bool      `gorm:"column:attended;not null;default:false" json:"attended"`
	MarkedBy  uuid.UUID `gorm:"column:marked_by;type:uuid;not null" json:"marked_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
