package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/pkg/crypto"
)

// DefaultAdminNationalID identifies the bootstrap administrator account.
const DefaultAdminNationalID = "admin"

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.Loan{},
		&models.AccessToken{},
		&models.Notification{},
		&models.ActionHistory{},
		&models.Session{},
	)
}

// SeedData populates the default administrator and a starter equipment
// catalogue so a fresh install is usable immediately.
func SeedData(db *gorm.DB) error {
	if err := seedDefaultAdmin(db); err != nil {
		return err
	}
	return seedEquipment(db)
}

func seedDefaultAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	admin := models.User{
		NationalID: DefaultAdminNationalID,
		FirstName:  "System",
		LastName:   "Administrator",
		Email:      "admin@loantrack.local",
		Password:   hashed,
		Role:       models.RoleAdmin,
		IsActive:   true,
	}
	if err := db.Where(models.User{NationalID: admin.NationalID}).Attrs(admin).FirstOrCreate(&models.User{}).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func seedEquipment(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Equipment{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count equipment: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	items := []models.Equipment{
		{
			Code:       "EQ-0001",
			Name:       "Dell Latitude 5540",
			Category:   models.CategoryComputer,
			Brand:      "Dell",
			Model:      "Latitude 5540",
			Status:     models.EquipmentAvailable,
			Available:  true,
			AcquiredAt: &now,
		},
		{
			Code:       "EQ-0002",
			Name:       "Epson PowerLite Projector",
			Category:   models.CategoryProjector,
			Brand:      "Epson",
			Model:      "PowerLite 119W",
			Status:     models.EquipmentAvailable,
			Available:  true,
			AcquiredAt: &now,
		},
		{
			Code:       "EQ-0003",
			Name:       "Digital Oscilloscope",
			Category:   models.CategoryLab,
			Brand:      "Rigol",
			Model:      "DS1054Z",
			Status:     models.EquipmentAvailable,
			Available:  true,
			AcquiredAt: &now,
		},
	}

	for _, item := range items {
		if err := db.Where(models.Equipment{Code: item.Code}).Attrs(item).FirstOrCreate(&models.Equipment{}).Error; err != nil {
			return fmt.Errorf("seed equipment %s: %w", item.Code, err)
		}
	}
	return nil
}
