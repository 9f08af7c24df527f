package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account with a display profile. Expense shares and settlements
// reference users by id only; display data is joined on read.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FullName     string     `gorm:"column:full_name;not null" json:"full_name"`
	AvatarURL    *string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	PushToken    *string    `gorm:"column:push_token" json:"-"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
