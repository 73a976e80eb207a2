package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/models"
	apperrors "github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/metrics"
)

var (
	// ErrLoanNotFound indicates the requested loan does not exist.
	ErrLoanNotFound = apperrors.New("LOAN_NOT_FOUND", "Loan not found", http.StatusNotFound)
	// ErrLoanStateConflict signals the loan is no longer in a state that permits the transition.
	ErrLoanStateConflict = apperrors.New("LOAN_STATE_CONFLICT", "Loan was already processed", http.StatusConflict)
	// ErrLoanTooLong rejects requests whose window exceeds the maximum duration.
	ErrLoanTooLong = apperrors.New("LOAN_TOO_LONG", "Loan duration exceeds the 30 day maximum", http.StatusBadRequest)
	// ErrLoanWindowInvalid rejects requests whose end does not follow their start.
	ErrLoanWindowInvalid = apperrors.New("LOAN_WINDOW_INVALID", "Loan end must be after its start", http.StatusBadRequest)
	// ErrDuplicateRequest prevents a borrower from holding two open loans on the same item.
	ErrDuplicateRequest = apperrors.New("LOAN_DUPLICATE_REQUEST", "You already have an open loan for this equipment", http.StatusConflict)
)

// RequestLoanInput describes a borrower's loan request.
type RequestLoanInput struct {
	BorrowerID  string
	EquipmentID string
	StartsAt    time.Time
	EndsAt      time.Time
	Reason      string
	Notes       string
	IPAddress   string
}

// ProcessLoanInput carries the approver decision details.
type ProcessLoanInput struct {
	ApproverID   string
	Notes        string
	ConditionOut string
	IPAddress    string
}

// ReturnLoanInput records the condition of the returned item.
type ReturnLoanInput struct {
	ActorID     string
	ConditionIn string
	Notes       string
	IPAddress   string
}

// LoanFilters captures listing filters.
type LoanFilters struct {
	BorrowerID  string
	EquipmentID string
	Status      models.LoanStatus
	Overdue     *bool
}

// ListLoansOptions controls pagination for loan listing.
type ListLoansOptions struct {
	Page     int
	PageSize int
	Filters  LoanFilters
}

// LoanStats aggregates counters for the dashboard.
type LoanStats struct {
	Requested          int64 `json:"requested"`
	Approved           int64 `json:"approved"`
	Overdue            int64 `json:"overdue"`
	ReturnedThisMonth  int64 `json:"returned_this_month"`
	EquipmentTotal     int64 `json:"equipment_total"`
	EquipmentAvailable int64 `json:"equipment_available"`
}

// MonthlyLoanCount is one bucket of the monthly loan report.
type MonthlyLoanCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// EquipmentUsage ranks an item by how often it has been borrowed.
type EquipmentUsage struct {
	EquipmentID string `json:"equipment_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	LoanCount   int64  `json:"loan_count"`
}

// LoanService drives the loan lifecycle and keeps equipment availability in sync.
type LoanService struct {
	db            *gorm.DB
	history       *HistoryService
	notifications *NotificationService
	users         *UserService
	now           func() time.Time
}

// LoanOption customises LoanService behaviour.
type LoanOption func(*LoanService)

// WithLoanClock injects a custom clock primarily for testing.
func WithLoanClock(clock func() time.Time) LoanOption {
	return func(s *LoanService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewLoanService constructs a LoanService instance.
func NewLoanService(db *gorm.DB, history *HistoryService, notificationSvc *NotificationService, users *UserService, opts ...LoanOption) (*LoanService, error) {
	if db == nil {
		return nil, errors.New("loan service: db is required")
	}

	service := &LoanService{
		db:            db,
		history:       history,
		notifications: notificationSvc,
		users:         users,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Request creates a loan in the requested state and alerts approvers.
func (s *LoanService) Request(ctx context.Context, input RequestLoanInput) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	borrowerID := strings.TrimSpace(input.BorrowerID)
	equipmentID := strings.TrimSpace(input.EquipmentID)
	if borrowerID == "" {
		return nil, apperrors.NewBadRequest("borrower is required")
	}
	if equipmentID == "" {
		return nil, apperrors.NewBadRequest("equipment is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewBadRequest("reason is required")
	}

	startsAt := input.StartsAt
	if startsAt.IsZero() {
		startsAt = s.now()
	}
	if !input.EndsAt.After(startsAt) {
		return nil, ErrLoanWindowInvalid
	}
	if input.EndsAt.Sub(startsAt) > models.MaxLoanDuration {
		return nil, ErrLoanTooLong
	}

	var borrower models.User
	if err := s.db.WithContext(ctx).First(&borrower, "id = ?", borrowerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loan service: load borrower: %w", err)
	}
	if !borrower.IsActive {
		return nil, ErrUserInactive
	}

	var equipment models.Equipment
	if err := s.db.WithContext(ctx).First(&equipment, "id = ?", equipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("loan service: load equipment: %w", err)
	}
	if !equipment.IsLendable() {
		return nil, ErrEquipmentNotLendable
	}

	var open int64
	if err := s.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("borrower_id = ? AND equipment_id = ? AND status IN ?", borrowerID, equipmentID, []models.LoanStatus{
			models.LoanRequested, models.LoanApproved, models.LoanOverdue,
		}).
		Count(&open).Error; err != nil {
		return nil, fmt.Errorf("loan service: count open loans: %w", err)
	}
	if open > 0 {
		return nil, ErrDuplicateRequest
	}

	loan := &models.Loan{
		BorrowerID:    borrowerID,
		EquipmentID:   equipmentID,
		StartsAt:      startsAt,
		EndsAt:        input.EndsAt,
		Status:        models.LoanRequested,
		Reason:        strings.TrimSpace(input.Reason),
		BorrowerNotes: strings.TrimSpace(input.Notes),
	}

	if err := s.db.WithContext(ctx).Create(loan).Error; err != nil {
		return nil, fmt.Errorf("loan service: create loan: %w", err)
	}

	metrics.LoanTransitions.WithLabelValues(string(models.LoanRequested)).Inc()
	s.record(ctx, borrowerID, &loan.ID, "loan.requested",
		fmt.Sprintf("Requested %s until %s", equipment.Name, loan.EndsAt.Format("2006-01-02")), input.IPAddress)
	s.notifyApprovers(ctx, loan, &equipment, &borrower)

	return loan, nil
}

// Approve moves a requested loan to approved. The transition is guarded by a
// conditional update so two approvers cannot both win.
func (s *LoanService) Approve(ctx context.Context, loanID string, input ProcessLoanInput) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	loan, err := s.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	equipment, err := s.loadEquipment(ctx, loan.EquipmentID)
	if err != nil {
		return nil, err
	}
	if !equipment.IsLendable() {
		return nil, ErrEquipmentNotLendable
	}

	approverID := strings.TrimSpace(input.ApproverID)
	now := s.now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loan.ID, models.LoanRequested).
			Updates(map[string]any{
				"status":         models.LoanApproved,
				"approver_id":    approverID,
				"approved_at":    now,
				"approver_notes": strings.TrimSpace(input.Notes),
				"condition_out":  strings.TrimSpace(input.ConditionOut),
			})
		if result.Error != nil {
			return fmt.Errorf("loan service: approve loan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrLoanStateConflict
		}

		return tx.Model(&models.Equipment{}).
			Where("id = ?", loan.EquipmentID).
			Updates(map[string]any{
				"status":    models.EquipmentLoaned,
				"available": false,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.LoanTransitions.WithLabelValues(string(models.LoanApproved)).Inc()
	s.record(ctx, approverID, &loan.ID, "loan.approved",
		fmt.Sprintf("Approved loan of %s for %s", equipment.Name, borrowerName(loan)), input.IPAddress)
	s.notifyBorrower(ctx, loan, models.NotifyLoanApproved, models.UrgencyNormal,
		"Loan approved", fmt.Sprintf("Your loan of %s was approved.", equipment.Name))

	return s.GetByID(ctx, loanID)
}

// Reject moves a requested loan to the terminal rejected state.
func (s *LoanService) Reject(ctx context.Context, loanID string, input ProcessLoanInput) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	loan, err := s.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	approverID := strings.TrimSpace(input.ApproverID)
	now := s.now()

	result := s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", loan.ID, models.LoanRequested).
		Updates(map[string]any{
			"status":         models.LoanRejected,
			"approver_id":    approverID,
			"approved_at":    now,
			"approver_notes": strings.TrimSpace(input.Notes),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("loan service: reject loan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLoanStateConflict
	}

	metrics.LoanTransitions.WithLabelValues(string(models.LoanRejected)).Inc()
	s.record(ctx, approverID, &loan.ID, "loan.rejected", "Rejected loan request", input.IPAddress)
	s.notifyBorrower(ctx, loan, models.NotifyLoanRejected, models.UrgencyNormal,
		"Loan rejected", "Your loan request was rejected."+suffixNote(input.Notes))

	return s.GetByID(ctx, loanID)
}

// Return records the item coming back, from either approved or overdue.
func (s *LoanService) Return(ctx context.Context, loanID string, input ReturnLoanInput) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	loan, err := s.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	updates := map[string]any{
		"status":       models.LoanReturned,
		"returned_at":  now,
		"condition_in": strings.TrimSpace(input.ConditionIn),
	}
	// Return notes overwrite the approver notes; absent notes keep the
	// approval-time ones.
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		updates["approver_notes"] = notes
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Loan{}).
			Where("id = ? AND status IN ?", loan.ID, []models.LoanStatus{models.LoanApproved, models.LoanOverdue}).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("loan service: return loan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrLoanStateConflict
		}

		return tx.Model(&models.Equipment{}).
			Where("id = ?", loan.EquipmentID).
			Updates(map[string]any{
				"status":    models.EquipmentAvailable,
				"available": true,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.LoanTransitions.WithLabelValues(string(models.LoanReturned)).Inc()
	s.record(ctx, strings.TrimSpace(input.ActorID), &loan.ID, "loan.returned", "Recorded equipment return", input.IPAddress)
	s.notifyBorrower(ctx, loan, models.NotifyLoanReturned, models.UrgencyLow,
		"Return recorded", "Your loan was closed. Thanks for returning the equipment.")

	return s.GetByID(ctx, loanID)
}

// Cancel withdraws a still-pending request. Borrowers may cancel their own
// requests; approvers may cancel anyone's.
func (s *LoanService) Cancel(ctx context.Context, loanID, actorID string, ip string) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	loan, err := s.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", loan.ID, models.LoanRequested).
		Updates(map[string]any{
			"status":         models.LoanRejected,
			"approver_notes": "Cancelled",
		})
	if result.Error != nil {
		return nil, fmt.Errorf("loan service: cancel loan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLoanStateConflict
	}

	metrics.LoanTransitions.WithLabelValues(string(models.LoanRejected)).Inc()
	s.record(ctx, actorID, &loan.ID, "loan.cancelled", "Cancelled loan request", ip)

	return s.GetByID(ctx, loanID)
}

// AdminCancel cancels a loan in any non-terminal state. Cancelling an
// approved or overdue loan also puts the equipment back in circulation.
func (s *LoanService) AdminCancel(ctx context.Context, loanID, actorID string, ip string) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	loan, err := s.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	switch loan.Status {
	case models.LoanRequested, models.LoanApproved, models.LoanOverdue:
	default:
		return nil, ErrLoanStateConflict
	}
	wasOut := loan.Status != models.LoanRequested

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loan.ID, loan.Status).
			Updates(map[string]any{
				"status":         models.LoanRejected,
				"approver_notes": "Cancelled by administrator",
			})
		if result.Error != nil {
			return fmt.Errorf("loan service: admin cancel loan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrLoanStateConflict
		}

		if !wasOut {
			return nil
		}
		return tx.Model(&models.Equipment{}).
			Where("id = ?", loan.EquipmentID).
			Updates(map[string]any{
				"status":    models.EquipmentAvailable,
				"available": true,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.LoanTransitions.WithLabelValues(string(models.LoanRejected)).Inc()
	s.record(ctx, actorID, &loan.ID, "loan.cancelled",
		fmt.Sprintf("Administrator cancelled loan of %s for %s", loan.Equipment.Name, borrowerName(loan)), ip)
	s.notifyBorrower(ctx, loan, models.NotifyLoanRejected, models.UrgencyNormal,
		"Loan cancelled", fmt.Sprintf("Your loan of %s was cancelled by an administrator.", loan.Equipment.Name))

	return s.GetByID(ctx, loanID)
}

// SweepOverdue marks approved loans past their end date as overdue and alerts
// their borrowers. It returns how many loans changed state.
func (s *LoanService) SweepOverdue(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	now := s.now()

	var expired []models.Loan
	if err := s.db.WithContext(ctx).
		Where("status = ? AND ends_at < ?", models.LoanApproved, now).
		Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("loan service: find expired loans: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ? AND ends_at < ?", models.LoanApproved, now).
		Update("status", models.LoanOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("loan service: sweep overdue: %w", result.Error)
	}

	for i := range expired {
		loan := expired[i]
		metrics.LoanTransitions.WithLabelValues(string(models.LoanOverdue)).Inc()
		s.notifyBorrower(ctx, &loan, models.NotifyLoanOverdue, models.UrgencyCritical,
			"Loan overdue", "Your loan is past its return date. Please return the equipment.")
	}

	return result.RowsAffected, nil
}

// GetByID loads a loan with its borrower, approver, and equipment.
func (s *LoanService) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	ctx = ensureContext(ctx)

	var loan models.Loan
	err := s.db.WithContext(ctx).
		Preload("Borrower").
		Preload("Approver").
		Preload("Equipment").
		First(&loan, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loan service: get loan: %w", err)
	}
	return &loan, nil
}

// List returns paginated loans matching the supplied filters, newest first.
func (s *LoanService) List(ctx context.Context, opts ListLoansOptions) ([]models.Loan, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Loan{})
	if borrowerID := strings.TrimSpace(opts.Filters.BorrowerID); borrowerID != "" {
		query = query.Where("borrower_id = ?", borrowerID)
	}
	if equipmentID := strings.TrimSpace(opts.Filters.EquipmentID); equipmentID != "" {
		query = query.Where("equipment_id = ?", equipmentID)
	}
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if opts.Filters.Overdue != nil && *opts.Filters.Overdue {
		query = query.Where("status = ?", models.LoanOverdue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("loan service: count loans: %w", err)
	}

	var loans []models.Loan
	if err := query.
		Preload("Borrower").
		Preload("Equipment").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&loans).Error; err != nil {
		return nil, 0, fmt.Errorf("loan service: list loans: %w", err)
	}

	return loans, total, nil
}

// Stats aggregates the dashboard counters. Overdue loans are reconciled first
// so the numbers reflect the current clock even between sweeps.
func (s *LoanService) Stats(ctx context.Context) (*LoanStats, error) {
	ctx = ensureContext(ctx)

	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}

	stats := &LoanStats{}
	counts := []struct {
		status models.LoanStatus
		target *int64
	}{
		{models.LoanRequested, &stats.Requested},
		{models.LoanApproved, &stats.Approved},
		{models.LoanOverdue, &stats.Overdue},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).
			Model(&models.Loan{}).
			Where("status = ?", c.status).
			Count(c.target).Error; err != nil {
			return nil, fmt.Errorf("loan service: count %s loans: %w", c.status, err)
		}
	}

	monthStart := time.Date(s.now().Year(), s.now().Month(), 1, 0, 0, 0, 0, s.now().Location())
	if err := s.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ? AND returned_at >= ?", models.LoanReturned, monthStart).
		Count(&stats.ReturnedThisMonth).Error; err != nil {
		return nil, fmt.Errorf("loan service: count returned loans: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Count(&stats.EquipmentTotal).Error; err != nil {
		return nil, fmt.Errorf("loan service: count equipment: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("available = ? AND status = ?", true, models.EquipmentAvailable).
		Count(&stats.EquipmentAvailable).Error; err != nil {
		return nil, fmt.Errorf("loan service: count available equipment: %w", err)
	}

	return stats, nil
}

// MonthlyReport counts loans requested per calendar month over the trailing
// window. Buckets are keyed YYYY-MM and empty months are included.
func (s *LoanService) MonthlyReport(ctx context.Context, months int) ([]MonthlyLoanCount, error) {
	ctx = ensureContext(ctx)

	if months <= 0 {
		months = 12
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)

	var createdAt []time.Time
	if err := s.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("created_at >= ?", start).
		Pluck("created_at", &createdAt).Error; err != nil {
		return nil, fmt.Errorf("loan service: monthly report: %w", err)
	}

	// Bucketing happens here rather than in SQL so the report works the same
	// across the supported database dialects.
	buckets := make(map[string]int64, months)
	for _, ts := range createdAt {
		buckets[ts.In(now.Location()).Format("2006-01")]++
	}

	report := make([]MonthlyLoanCount, 0, months)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		report = append(report, MonthlyLoanCount{Month: month, Count: buckets[month]})
	}
	return report, nil
}

// TopEquipment returns the most borrowed items, busiest first.
func (s *LoanService) TopEquipment(ctx context.Context, limit int) ([]EquipmentUsage, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 {
		limit = 10
	}

	var usage []EquipmentUsage
	err := s.db.WithContext(ctx).
		Model(&models.Loan{}).
		Select("loans.equipment_id AS equipment_id, equipment.code AS code, equipment.name AS name, COUNT(loans.id) AS loan_count").
		Joins("JOIN equipment ON equipment.id = loans.equipment_id").
		Group("loans.equipment_id, equipment.code, equipment.name").
		Order("loan_count DESC, equipment.code ASC").
		Limit(limit).
		Scan(&usage).Error
	if err != nil {
		return nil, fmt.Errorf("loan service: top equipment: %w", err)
	}
	return usage, nil
}

func (s *LoanService) loadEquipment(ctx context.Context, id string) (*models.Equipment, error) {
	var equipment models.Equipment
	err := s.db.WithContext(ctx).First(&equipment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loan service: load equipment: %w", err)
	}
	return &equipment, nil
}

func (s *LoanService) notifyApprovers(ctx context.Context, loan *models.Loan, equipment *models.Equipment, borrower *models.User) {
	if s.notifications == nil || s.users == nil {
		return
	}
	approverIDs, err := s.users.ListApprovers(ctx)
	if err != nil || len(approverIDs) == 0 {
		return
	}
	_ = s.notifications.NotifyMany(ctx, approverIDs, CreateNotificationInput{
		LoanID:  &loan.ID,
		Type:    models.NotifyLoanRequested,
		Title:   "New loan request",
		Message: fmt.Sprintf("%s requested %s.", borrower.FullName(), equipment.Name),
		Urgency: models.UrgencyHigh,
		Icon:    "inbox",
	})
}

func (s *LoanService) notifyBorrower(ctx context.Context, loan *models.Loan, kind models.NotificationType, urgency models.Urgency, title, message string) {
	if s.notifications == nil {
		return
	}
	_, _ = s.notifications.Notify(ctx, CreateNotificationInput{
		UserID:  loan.BorrowerID,
		LoanID:  &loan.ID,
		Type:    kind,
		Title:   title,
		Message: message,
		Urgency: urgency,
	})
}

func (s *LoanService) record(ctx context.Context, userID string, loanID *string, action, description, ip string) {
	if s.history == nil || strings.TrimSpace(userID) == "" {
		return
	}
	_ = s.history.Record(ctx, HistoryEntry{
		UserID:      userID,
		LoanID:      loanID,
		Action:      action,
		Description: description,
		IPAddress:   ip,
	})
}

func borrowerName(loan *models.Loan) string {
	if loan.Borrower != nil {
		return loan.Borrower.FullName()
	}
	return loan.BorrowerID
}

func suffixNote(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}
	return " Reason: " + note
}
