package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role classifies platform users and drives approval/admin capabilities.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the recognised values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User describes a borrower, approver, or administrator.
type User struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	NationalID string `gorm:"uniqueIndex;not null" json:"national_id"`
	FirstName  string `gorm:"not null" json:"first_name"`
	LastName   string `gorm:"not null" json:"last_name"`
	Email      string `gorm:"uniqueIndex" json:"email"`
	Phone      string `json:"phone"`
	Password   string `gorm:"not null" json:"-"`

	Role     Role `gorm:"type:varchar(16);not null;default:'student';index" json:"role"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	Loans         []Loan    `gorm:"foreignKey:BorrowerID" json:"-"`
	ApprovedLoans []Loan    `gorm:"foreignKey:ApproverID" json:"-"`
	Sessions      []Session `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"last_login_ip"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName joins the user's first and last name for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanApproveLoans reports whether the user may approve, reject, or process returns.
func (u *User) CanApproveLoans() bool {
	return u.Role == RoleAdmin || u.Role == RoleStaff
}
