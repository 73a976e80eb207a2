package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/models"
)

func newLoanFixture(t *testing.T) (*gorm.DB, *LoanService, *NotificationService, *serviceClock) {
	t.Helper()

	db := openServiceDB(t)
	clock := newServiceClock()

	history := newHistoryServiceForTest(t, db)
	notificationSvc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	userSvc, err := NewUserService(db, history, WithUserClock(clock.Now))
	require.NoError(t, err)

	loanSvc, err := NewLoanService(db, history, notificationSvc, userSvc, WithLoanClock(clock.Now))
	require.NoError(t, err)

	return db, loanSvc, notificationSvc, clock
}

func TestRequestLoanCreatesRequestedLoan(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300111", models.RoleStudent)
	staff := createUser(t, db, "50300112", models.RoleStaff)
	equipment := createEquipment(t, db, "LN-0001")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(7 * 24 * time.Hour),
		Reason:      "Physics lab project",
	})
	require.NoError(t, err)
	require.Equal(t, models.LoanRequested, loan.Status)
	require.True(t, loan.StartsAt.Equal(clock.Now()))

	// Requesting does not reserve the item; only approval does.
	var stored models.Equipment
	require.NoError(t, db.First(&stored, "id = ?", equipment.ID).Error)
	require.True(t, stored.Available)

	// Approvers are alerted about the pending request.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", staff.ID, models.NotifyLoanRequested).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRequestLoanValidations(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300222", models.RoleStudent)
	equipment := createEquipment(t, db, "LN-0002")

	_, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(-time.Hour),
		Reason:      "backwards window",
	})
	require.ErrorIs(t, err, ErrLoanWindowInvalid)

	_, err = svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(31 * 24 * time.Hour),
		Reason:      "too long",
	})
	require.ErrorIs(t, err, ErrLoanTooLong)

	_, err = svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(time.Hour),
	})
	require.Error(t, err)
}

func TestRequestLoanDuplicateRejected(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300333", models.RoleStudent)
	equipment := createEquipment(t, db, "LN-0003")

	_, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(24 * time.Hour),
		Reason:      "first",
	})
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(24 * time.Hour),
		Reason:      "second",
	})
	require.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestApproveLoanReservesEquipment(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300444", models.RoleStudent)
	approver := createUser(t, db, "50300445", models.RoleAdmin)
	equipment := createEquipment(t, db, "LN-0004")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(48 * time.Hour),
		Reason:      "presentation",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), loan.ID, ProcessLoanInput{
		ApproverID:   approver.ID,
		ConditionOut: "minor scratches",
	})
	require.NoError(t, err)
	require.Equal(t, models.LoanApproved, approved.Status)
	require.NotNil(t, approved.ApproverID)
	require.Equal(t, approver.ID, *approved.ApproverID)
	require.NotNil(t, approved.ApprovedAt)

	var stored models.Equipment
	require.NoError(t, db.First(&stored, "id = ?", equipment.ID).Error)
	require.False(t, stored.Available)
	require.Equal(t, models.EquipmentLoaned, stored.Status)

	// The borrower is told about the decision.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", borrower.ID, models.NotifyLoanApproved).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestApproveLoanOnlyOnce(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300555", models.RoleStudent)
	approver := createUser(t, db, "50300556", models.RoleAdmin)
	equipment := createEquipment(t, db, "LN-0005")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(48 * time.Hour),
		Reason:      "exam prep",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), loan.ID, ProcessLoanInput{ApproverID: approver.ID})
	require.NoError(t, err)

	// A second decision on the same loan loses the conditional update.
	_, err = svc.Reject(context.Background(), loan.ID, ProcessLoanInput{ApproverID: approver.ID})
	require.ErrorIs(t, err, ErrLoanStateConflict)
}

func TestRejectLoanKeepsEquipmentAvailable(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300666", models.RoleStudent)
	approver := createUser(t, db, "50300667", models.RoleStaff)
	equipment := createEquipment(t, db, "LN-0006")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(24 * time.Hour),
		Reason:      "fieldwork",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), loan.ID, ProcessLoanInput{
		ApproverID: approver.ID,
		Notes:      "equipment reserved for maintenance",
	})
	require.NoError(t, err)
	require.Equal(t, models.LoanRejected, rejected.Status)

	var stored models.Equipment
	require.NoError(t, db.First(&stored, "id = ?", equipment.ID).Error)
	require.True(t, stored.Available)
}

func TestReturnLoanFreesEquipment(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300777", models.RoleStudent)
	approver := createUser(t, db, "50300778", models.RoleAdmin)
	equipment := createEquipment(t, db, "LN-0007")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(24 * time.Hour),
		Reason:      "workshop",
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), loan.ID, ProcessLoanInput{ApproverID: approver.ID})
	require.NoError(t, err)

	returned, err := svc.Return(context.Background(), loan.ID, ReturnLoanInput{
		ActorID:     approver.ID,
		ConditionIn: "good condition",
		Notes:       "returned a day early",
	})
	require.NoError(t, err)
	require.Equal(t, models.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	require.Equal(t, "good condition", returned.ConditionIn)
	require.Equal(t, "returned a day early", returned.ApproverNotes)

	var stored models.Equipment
	require.NoError(t, db.First(&stored, "id = ?", equipment.ID).Error)
	require.True(t, stored.Available)
	require.Equal(t, models.EquipmentAvailable, stored.Status)

	// Returning again is a state conflict.
	_, err = svc.Return(context.Background(), loan.ID, ReturnLoanInput{ActorID: approver.ID})
	require.ErrorIs(t, err, ErrLoanStateConflict)
}

func TestSweepOverdueMarksExpiredLoans(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300888", models.RoleStudent)
	approver := createUser(t, db, "50300889", models.RoleAdmin)
	equipment := createEquipment(t, db, "LN-0008")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(24 * time.Hour),
		Reason:      "overnight recording",
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), loan.ID, ProcessLoanInput{ApproverID: approver.ID})
	require.NoError(t, err)

	// Nothing to sweep while the window is open.
	swept, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Zero(t, swept)

	clock.Advance(25 * time.Hour)

	swept, err = svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, swept)

	reloaded, err := svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Equal(t, models.LoanOverdue, reloaded.Status)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", borrower.ID, models.NotifyLoanOverdue).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	// An overdue loan can still be returned.
	returned, err := svc.Return(context.Background(), loan.ID, ReturnLoanInput{ActorID: approver.ID})
	require.NoError(t, err)
	require.Equal(t, models.LoanReturned, returned.Status)

	// The sweep is idempotent.
	swept, err = svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Zero(t, swept)
}

func TestCancelLoanRequest(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50300999", models.RoleStudent)
	equipment := createEquipment(t, db, "LN-0009")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(24 * time.Hour),
		Reason:      "changed my mind",
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), loan.ID, borrower.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.LoanRejected, cancelled.Status)

	_, err = svc.Cancel(context.Background(), loan.ID, borrower.ID, "")
	require.ErrorIs(t, err, ErrLoanStateConflict)
}

func TestAdminCancelApprovedLoanFreesEquipment(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50301010", models.RoleStudent)
	admin := createUser(t, db, "50301011", models.RoleAdmin)
	equipment := createEquipment(t, db, "LN-0010")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(48 * time.Hour),
		Reason:      "field recording",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), loan.ID, ProcessLoanInput{ApproverID: admin.ID})
	require.NoError(t, err)

	// A plain cancel only handles pending requests.
	_, err = svc.Cancel(context.Background(), loan.ID, borrower.ID, "")
	require.ErrorIs(t, err, ErrLoanStateConflict)

	cancelled, err := svc.AdminCancel(context.Background(), loan.ID, admin.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.LoanRejected, cancelled.Status)

	var stored models.Equipment
	require.NoError(t, db.First(&stored, "id = ?", equipment.ID).Error)
	require.True(t, stored.Available)
	require.Equal(t, models.EquipmentAvailable, stored.Status)

	_, err = svc.AdminCancel(context.Background(), loan.ID, admin.ID, "")
	require.ErrorIs(t, err, ErrLoanStateConflict)
}

func TestLoanStatsReconcilesOverdue(t *testing.T) {
	db, svc, _, clock := newLoanFixture(t)

	borrower := createUser(t, db, "50301111", models.RoleStudent)
	approver := createUser(t, db, "50301112", models.RoleAdmin)
	equipment := createEquipment(t, db, "LN-0010")

	loan, err := svc.Request(context.Background(), RequestLoanInput{
		BorrowerID:  borrower.ID,
		EquipmentID: equipment.ID,
		EndsAt:      clock.Now().Add(time.Hour),
		Reason:      "quick measurement",
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), loan.ID, ProcessLoanInput{ApproverID: approver.ID})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.Overdue, int64(1))
	require.GreaterOrEqual(t, stats.EquipmentTotal, int64(1))

	reloaded, err := svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Equal(t, models.LoanOverdue, reloaded.Status)
}
