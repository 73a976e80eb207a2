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
	"github.com/campuskit/loantrack/pkg/crypto"
	apperrors "github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/metrics"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserInactive marks an account that has been deactivated by an administrator.
	ErrUserInactive = apperrors.New("USER_INACTIVE", "Account is deactivated", http.StatusForbidden)
	// ErrSelfDeactivation prevents administrators from locking themselves out.
	ErrSelfDeactivation = apperrors.New("USER_SELF_DEACTIVATION", "You cannot deactivate your own account", http.StatusBadRequest)
)

// RegisterUserInput describes the fields accepted when registering a user.
type RegisterUserInput struct {
	NationalID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Password   string
	Role       models.Role
}

// UpdateUserInput enumerates mutable user attributes.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

// UserFilters captures listing filters.
type UserFilters struct {
	Role     models.Role
	IsActive *bool
	Query    string
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
	Filters  UserFilters
}

// UserService manages the user lifecycle including authentication and activation.
type UserService struct {
	db      *gorm.DB
	history *HistoryService
	now     func() time.Time
}

// UserOption customises UserService behaviour.
type UserOption func(*UserService)

// WithUserClock injects a custom clock primarily for testing.
func WithUserClock(clock func() time.Time) UserOption {
	return func(s *UserService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, history *HistoryService, opts ...UserOption) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}

	service := &UserService{
		db:      db,
		history: history,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Register provisions a new user with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	nationalID := strings.TrimSpace(input.NationalID)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if nationalID == "" {
		return nil, apperrors.NewBadRequest("national id is required")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, apperrors.NewBadRequest("first name is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequest("invalid role")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		NationalID: nationalID,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      email,
		Phone:      strings.TrimSpace(input.Phone),
		Password:   hashed,
		Role:       role,
		IsActive:   true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("national id or email already registered")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	s.record(ctx, user.ID, nil, "user.registered", fmt.Sprintf("Registered account for %s", user.FullName()), "")
	return user, nil
}

// Authenticate verifies credentials and stamps the last login on success.
func (s *UserService) Authenticate(ctx context.Context, nationalID, password, ip string) (*models.User, error) {
	ctx = ensureContext(ctx)

	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("inactive").Inc()
		return nil, ErrUserInactive
	}

	now := s.now()
	updates := map[string]any{
		"last_login_at": now,
		"last_login_ip": strings.TrimSpace(ip),
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now
	user.LastLoginIP = strings.TrimSpace(ip)

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.record(ctx, user.ID, nil, "user.login", "Signed in", ip)
	return &user, nil
}

// GetByID loads a single user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// List returns paginated users matching the supplied filters.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if opts.Filters.Role != "" {
		query = query.Where("role = ?", opts.Filters.Role)
	}
	if opts.Filters.IsActive != nil {
		query = query.Where("is_active = ?", *opts.Filters.IsActive)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR national_id LIKE ?",
			needle, needle, needle, "%"+q+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// Update applies partial changes to a user's profile.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, apperrors.NewBadRequest("first name cannot be empty")
		}
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("email already registered")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return s.GetByID(ctx, id)
}

// SetActive toggles whether a user may sign in. Actors cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actorID, id string, active bool) error {
	ctx = ensureContext(ctx)

	if !active && strings.TrimSpace(actorID) == strings.TrimSpace(id) {
		return ErrSelfDeactivation
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", strings.TrimSpace(id)).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("user service: set active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	action := "user.deactivated"
	if active {
		action = "user.activated"
	}
	s.record(ctx, actorID, nil, action, fmt.Sprintf("Changed activation of user %s", id), "")
	return nil
}

// ChangeRole reassigns a user's role.
func (s *UserService) ChangeRole(ctx context.Context, actorID, id string, role models.Role) error {
	ctx = ensureContext(ctx)

	if !role.Valid() {
		return apperrors.NewBadRequest("invalid role")
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", strings.TrimSpace(id)).
		Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("user service: change role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	s.record(ctx, actorID, nil, "user.role_changed", fmt.Sprintf("Set role of user %s to %s", id, role), "")
	return nil
}

// ResetPassword replaces the stored password hash.
func (s *UserService) ResetPassword(ctx context.Context, id, newPassword string) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", strings.TrimSpace(id)).
		Update("password", hashed)
	if result.Error != nil {
		return fmt.Errorf("user service: reset password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	s.record(ctx, id, nil, "user.password_reset", "Password was reset", "")
	return nil
}

// ChangePassword verifies the current password before replacing it.
func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !crypto.VerifyPassword(user.Password, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	return s.ResetPassword(ctx, id, newPassword)
}

// ListApprovers returns the IDs of active users that may process loans.
func (s *UserService) ListApprovers(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)

	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role IN ? AND is_active = ?", []models.Role{models.RoleAdmin, models.RoleStaff}, true).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("user service: list approvers: %w", err)
	}
	return ids, nil
}

func (s *UserService) record(ctx context.Context, userID string, loanID *string, action, description, ip string) {
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
