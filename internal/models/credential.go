package models

import (
	"time"

	"gorm.io/gorm"
)

// Credential is the locally stored sign-in for the time-tracking API.
// Only one row is kept.
type Credential struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID string `gorm:"not null" json:"user_id"`
	Email  string `json:"email"`
	Token  string `gorm:"not null" json:"-"`
}
