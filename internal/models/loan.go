package models

import "time"

// LoanStatus enumerates the lifecycle states of a loan.
//
// Transitions: requested -> {approved, rejected};
// approved -> {returned, overdue}; overdue -> returned.
// rejected and returned are terminal.
type LoanStatus string

const (
	LoanRequested LoanStatus = "requested"
	LoanApproved  LoanStatus = "approved"
	LoanRejected  LoanStatus = "rejected"
	LoanReturned  LoanStatus = "returned"
	LoanOverdue   LoanStatus = "overdue"
)

// Terminal reports whether no further transition may leave this state.
func (s LoanStatus) Terminal() bool {
	return s == LoanRejected || s == LoanReturned
}

// MaxLoanDuration caps the requested window, enforced at request time only.
const MaxLoanDuration = 30 * 24 * time.Hour

// Loan records one user borrowing one equipment item for a bounded window.
type Loan struct {
	BaseModel

	BorrowerID  string     `gorm:"type:uuid;not null;index" json:"borrower_id"`
	Borrower    *User      `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	EquipmentID string     `gorm:"type:uuid;not null;index" json:"equipment_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`

	StartsAt   time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt     time.Time  `gorm:"not null;index" json:"ends_at"`
	ReturnedAt *time.Time `json:"returned_at"`

	Status     LoanStatus `gorm:"type:varchar(16);not null;default:'requested';index" json:"status"`
	ApproverID *string    `gorm:"type:uuid;index" json:"approver_id"`
	Approver   *User      `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovedAt *time.Time `json:"approved_at"`

	Reason        string `gorm:"type:text;not null" json:"reason"`
	BorrowerNotes string `gorm:"type:text" json:"borrower_notes"`
	ApproverNotes string `gorm:"type:text" json:"approver_notes"`

	ConditionOut string `gorm:"type:text" json:"condition_out"`
	ConditionIn  string `gorm:"type:text" json:"condition_in"`
}

// DurationDays returns the requested loan window in whole days.
func (l *Loan) DurationDays() int {
	return int(l.EndsAt.Sub(l.StartsAt).Hours() / 24)
}

// CanBeReturned reports whether a return may be recorded for the loan.
func (l *Loan) CanBeReturned() bool {
	return l.Status == LoanApproved || l.Status == LoanOverdue
}

// IsOverdueAt reports whether an approved loan has outlived its window.
func (l *Loan) IsOverdueAt(now time.Time) bool {
	return l.Status == LoanApproved && now.After(l.EndsAt)
}
