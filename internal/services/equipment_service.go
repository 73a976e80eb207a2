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
)

var (
	// ErrEquipmentNotFound indicates the requested equipment does not exist.
	ErrEquipmentNotFound = apperrors.New("EQUIPMENT_NOT_FOUND", "Equipment not found", http.StatusNotFound)
	// ErrEquipmentInUse prevents deleting equipment with open loans.
	ErrEquipmentInUse = apperrors.New("EQUIPMENT_IN_USE", "Equipment has active loans", http.StatusConflict)
	// ErrEquipmentNotLendable marks equipment that cannot be requested right now.
	ErrEquipmentNotLendable = apperrors.New("EQUIPMENT_NOT_LENDABLE", "Equipment is not available for loan", http.StatusConflict)
)

// CreateEquipmentInput describes a new catalogue entry.
type CreateEquipmentInput struct {
	Code        string
	Name        string
	Description string
	Category    models.EquipmentCategory
	Brand       string
	Model       string
	SerialNo    string
	AcquiredAt  *time.Time
	Notes       string
}

// UpdateEquipmentInput enumerates mutable equipment attributes.
type UpdateEquipmentInput struct {
	Name        *string
	Description *string
	Category    *models.EquipmentCategory
	Brand       *string
	Model       *string
	SerialNo    *string
	Notes       *string
}

// EquipmentFilters captures listing filters.
type EquipmentFilters struct {
	Category models.EquipmentCategory
	Status   models.EquipmentStatus
	Lendable *bool
	Query    string
}

// ListEquipmentOptions controls pagination for equipment listing.
type ListEquipmentOptions struct {
	Page     int
	PageSize int
	Filters  EquipmentFilters
}

// EquipmentService manages the equipment catalogue.
type EquipmentService struct {
	db      *gorm.DB
	history *HistoryService
}

// NewEquipmentService constructs an EquipmentService instance.
func NewEquipmentService(db *gorm.DB, history *HistoryService) (*EquipmentService, error) {
	if db == nil {
		return nil, errors.New("equipment service: db is required")
	}
	return &EquipmentService{db: db, history: history}, nil
}

// Create registers a new piece of equipment, available by default.
func (s *EquipmentService) Create(ctx context.Context, actorID string, input CreateEquipmentInput) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, apperrors.NewBadRequest("code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	category := input.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return nil, apperrors.NewBadRequest("invalid category")
	}

	equipment := &models.Equipment{
		Code:        code,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Brand:       strings.TrimSpace(input.Brand),
		Model:       strings.TrimSpace(input.Model),
		SerialNo:    strings.TrimSpace(input.SerialNo),
		Status:      models.EquipmentAvailable,
		Available:   true,
		AcquiredAt:  input.AcquiredAt,
		Notes:       strings.TrimSpace(input.Notes),
	}

	if err := s.db.WithContext(ctx).Create(equipment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("equipment code already exists")
		}
		return nil, fmt.Errorf("equipment service: create equipment: %w", err)
	}

	s.record(ctx, actorID, "equipment.created", fmt.Sprintf("Added %s (%s)", equipment.Name, equipment.Code))
	return equipment, nil
}

// GetByID loads a single equipment row.
func (s *EquipmentService) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	var equipment models.Equipment
	err := s.db.WithContext(ctx).First(&equipment, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("equipment service: get equipment: %w", err)
	}
	return &equipment, nil
}

// List returns paginated equipment matching the supplied filters.
func (s *EquipmentService) List(ctx context.Context, opts ListEquipmentOptions) ([]models.Equipment, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Equipment{})
	if opts.Filters.Category != "" {
		query = query.Where("category = ?", opts.Filters.Category)
	}
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if opts.Filters.Lendable != nil {
		if *opts.Filters.Lendable {
			query = query.Where("available = ? AND status = ?", true, models.EquipmentAvailable)
		} else {
			query = query.Where("available = ? OR status <> ?", false, models.EquipmentAvailable)
		}
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ?",
			needle, needle, needle, needle,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("equipment service: count equipment: %w", err)
	}

	var items []models.Equipment
	if err := query.
		Order("code ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("equipment service: list equipment: %w", err)
	}

	return items, total, nil
}

// Update applies partial changes to an equipment entry.
func (s *EquipmentService) Update(ctx context.Context, actorID, id string, input UpdateEquipmentInput) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	equipment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewBadRequest("name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, apperrors.NewBadRequest("invalid category")
		}
		updates["category"] = *input.Category
	}
	if input.Brand != nil {
		updates["brand"] = strings.TrimSpace(*input.Brand)
	}
	if input.Model != nil {
		updates["model"] = strings.TrimSpace(*input.Model)
	}
	if input.SerialNo != nil {
		updates["serial_no"] = strings.TrimSpace(*input.SerialNo)
	}
	if input.Notes != nil {
		updates["notes"] = strings.TrimSpace(*input.Notes)
	}

	if len(updates) == 0 {
		return equipment, nil
	}

	if err := s.db.WithContext(ctx).Model(equipment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("equipment service: update equipment: %w", err)
	}

	s.record(ctx, actorID, "equipment.updated", fmt.Sprintf("Updated %s", equipment.Code))
	return s.GetByID(ctx, id)
}

// SetStatus overrides the equipment status directly. The availability flag is
// kept in sync so listings stay coherent after manual changes.
func (s *EquipmentService) SetStatus(ctx context.Context, actorID, id string, status models.EquipmentStatus) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	if !status.Valid() {
		return nil, apperrors.NewBadRequest("invalid status")
	}

	equipment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"status":    status,
		"available": status == models.EquipmentAvailable,
	}
	if err := s.db.WithContext(ctx).Model(equipment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("equipment service: set status: %w", err)
	}

	s.record(ctx, actorID, "equipment.status_changed", fmt.Sprintf("Set %s to %s", equipment.Code, status))
	return s.GetByID(ctx, id)
}

// Delete removes equipment that has no open loans.
func (s *EquipmentService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	equipment, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var openLoans int64
	if err := s.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("equipment_id = ? AND status IN ?", equipment.ID, []models.LoanStatus{
			models.LoanRequested, models.LoanApproved, models.LoanOverdue,
		}).
		Count(&openLoans).Error; err != nil {
		return fmt.Errorf("equipment service: count open loans: %w", err)
	}
	if openLoans > 0 {
		return ErrEquipmentInUse
	}

	if err := s.db.WithContext(ctx).Delete(equipment).Error; err != nil {
		return fmt.Errorf("equipment service: delete equipment: %w", err)
	}

	s.record(ctx, actorID, "equipment.deleted", fmt.Sprintf("Removed %s (%s)", equipment.Name, equipment.Code))
	return nil
}

func (s *EquipmentService) record(ctx context.Context, actorID, action, description string) {
	if s.history == nil || strings.TrimSpace(actorID) == "" {
		return
	}
	_ = s.history.Record(ctx, HistoryEntry{
		UserID:      actorID,
		Action:      action,
		Description: description,
	})
}
