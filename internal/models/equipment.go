package models

import "time"

// EquipmentCategory groups equipment for listing filters.
type EquipmentCategory string

const (
	CategoryComputer    EquipmentCategory = "computer"
	CategoryProjector   EquipmentCategory = "projector"
	CategoryLab         EquipmentCategory = "lab"
	CategoryAudiovisual EquipmentCategory = "audiovisual"
	CategoryTools       EquipmentCategory = "tools"
	CategoryOther       EquipmentCategory = "other"
)

// Valid reports whether the category is one of the recognised values.
func (c EquipmentCategory) Valid() bool {
	switch c {
	case CategoryComputer, CategoryProjector, CategoryLab, CategoryAudiovisual, CategoryTools, CategoryOther:
		return true
	}
	return false
}

// EquipmentStatus tracks the physical state of an item.
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentLoaned      EquipmentStatus = "loaned"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentDamaged     EquipmentStatus = "damaged"
)

// Valid reports whether the status is one of the recognised values.
func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentLoaned, EquipmentMaintenance, EquipmentDamaged:
		return true
	}
	return false
}

// Equipment is a physical item available for loan. The Available flag is kept
// redundantly alongside Status for compatibility with the historical schema;
// service paths derive it from Status, but the raw admin status override can
// still make the two drift.
type Equipment struct {
	BaseModel

	Code        string            `gorm:"uniqueIndex;not null" json:"code"`
	Name        string            `gorm:"not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Category    EquipmentCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Brand       string            `json:"brand"`
	Model       string            `json:"model"`
	SerialNo    string            `json:"serial_no"`

	Status    EquipmentStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	Available bool            `gorm:"default:true;index" json:"available"`

	AcquiredAt *time.Time `json:"acquired_at"`
	Notes      string     `gorm:"type:text" json:"notes"`

	Loans []Loan `gorm:"foreignKey:EquipmentID" json:"-"`
}

// IsLendable reports whether a new loan may target this item. Both the flag
// and the status must agree, mirroring the historical double check.
func (e *Equipment) IsLendable() bool {
	return e.Available && e.Status == EquipmentAvailable
}
