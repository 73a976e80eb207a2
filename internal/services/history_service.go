package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/models"
)

// HistoryEntry captures a single action to persist in the activity trail.
type HistoryEntry struct {
	UserID      string
	LoanID      *string
	Action      string
	Description string
	IPAddress   string
}

// HistoryFilters encapsulates optional filters when querying the activity trail.
type HistoryFilters struct {
	UserID string
	LoanID string
	Action string
	Since  *time.Time
	Until  *time.Time
}

// HistoryListOptions controls pagination and filtering for history queries.
type HistoryListOptions struct {
	Page     int
	PageSize int
	Filters  HistoryFilters
}

// HistoryService persists and retrieves the per-user activity trail.
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService constructs a HistoryService using the provided database handle.
func NewHistoryService(db *gorm.DB) (*HistoryService, error) {
	if db == nil {
		return nil, errors.New("history service: db is required")
	}
	return &HistoryService{db: db}, nil
}

// Record stores one history entry.
func (s *HistoryService) Record(ctx context.Context, entry HistoryEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.UserID) == "" {
		return errors.New("history service: user id is required")
	}
	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("history service: action is required")
	}

	row := models.ActionHistory{
		UserID:      strings.TrimSpace(entry.UserID),
		Action:      strings.TrimSpace(entry.Action),
		Description: strings.TrimSpace(entry.Description),
		IPAddress:   strings.TrimSpace(entry.IPAddress),
	}

	if entry.LoanID != nil && strings.TrimSpace(*entry.LoanID) != "" {
		id := strings.TrimSpace(*entry.LoanID)
		row.LoanID = &id
	}

	return s.db.WithContext(ctx).Create(&row).Error
}

// List returns paginated history rows ordered by creation time descending.
func (s *HistoryService) List(ctx context.Context, opts HistoryListOptions) ([]models.ActionHistory, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	var (
		results []models.ActionHistory
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.ActionHistory{})
	query = applyHistoryFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("history service: count entries: %w", err)
	}

	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("history service: list entries: %w", err)
	}

	return results, total, nil
}

// CleanupOlderThan deletes history rows older than the retention window.
func (s *HistoryService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActionHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("history service: cleanup entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func applyHistoryFilters(query *gorm.DB, filters HistoryFilters) *gorm.DB {
	if userID := strings.TrimSpace(filters.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if loanID := strings.TrimSpace(filters.LoanID); loanID != "" {
		query = query.Where("loan_id = ?", loanID)
	}
	if action := strings.TrimSpace(filters.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
