package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType labels the lifecycle event that produced a notification.
type NotificationType string

const (
	NotifyLoanRequested      NotificationType = "loan.requested"
	NotifyLoanApproved       NotificationType = "loan.approved"
	NotifyLoanRejected       NotificationType = "loan.rejected"
	NotifyLoanOverdue        NotificationType = "loan.overdue"
	NotifyLoanReturned       NotificationType = "loan.returned"
	NotifyEquipmentAvailable NotificationType = "equipment.available"
	NotifySystem             NotificationType = "system"
)

// Urgency is a coarse priority label used for sorting and display only.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Valid reports whether the urgency is one of the recognised levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Notification represents an in-app notification for a user.
type Notification struct {
	BaseModel

	UserID string  `gorm:"type:uuid;not null;index" json:"user_id"`
	LoanID *string `gorm:"type:uuid;index" json:"loan_id,omitempty"`
	Loan   *Loan   `gorm:"foreignKey:LoanID" json:"-"`

	Type    NotificationType `gorm:"type:varchar(64);not null" json:"type"`
	Title   string           `gorm:"type:varchar(200);not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`

	Urgency  Urgency        `gorm:"type:varchar(20);default:'normal'" json:"urgency"`
	Icon     string         `gorm:"type:varchar(50);default:'bell'" json:"icon"`
	Metadata datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
