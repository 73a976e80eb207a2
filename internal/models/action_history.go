package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionHistory is an append-only audit row for every significant action:
// logins, equipment changes, and loan lifecycle transitions.
type ActionHistory struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LoanID      *string   `gorm:"type:uuid;index" json:"loan_id,omitempty"`
	Action      string    `gorm:"not null;index" json:"action"`
	Description string    `gorm:"type:text" json:"description"`
	IPAddress   string    `gorm:"size:45" json:"ip_address"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (h *ActionHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
