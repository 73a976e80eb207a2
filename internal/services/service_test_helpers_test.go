package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/database/testutil"
	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/pkg/crypto"
)

type serviceClock struct {
	current time.Time
}

func (c *serviceClock) Now() time.Time {
	return c.current
}

func (c *serviceClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newServiceClock() *serviceClock {
	return &serviceClock{current: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
}

func openServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func createUser(t *testing.T, db *gorm.DB, nationalID string, role models.Role) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		NationalID: nationalID,
		FirstName:  "Test",
		LastName:   "User " + nationalID,
		Email:      nationalID + "@example.edu",
		Password:   hashed,
		Role:       role,
		IsActive:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createEquipment(t *testing.T, db *gorm.DB, code string) *models.Equipment {
	t.Helper()

	equipment := &models.Equipment{
		Code:      code,
		Name:      "Test item " + code,
		Category:  models.CategoryLab,
		Status:    models.EquipmentAvailable,
		Available: true,
	}
	require.NoError(t, db.Create(equipment).Error)
	return equipment
}

func newHistoryServiceForTest(t *testing.T, db *gorm.DB) *HistoryService {
	t.Helper()
	svc, err := NewHistoryService(db)
	require.NoError(t, err)
	return svc
}
