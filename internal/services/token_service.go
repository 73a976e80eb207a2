package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/pkg/crypto"
	apperrors "github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/metrics"
)

const (
	defaultTokenExpiry = 30 * time.Minute
	accessTokenLength  = 32

	invalidatedSuffix = " (INVALIDATED)"
)

// IssueTokenInput describes a new single-use access token grant.
type IssueTokenInput struct {
	UserID      string
	Description string
	TTL         time.Duration
}

// AccessTokenDTO is the API-facing token listing entry. The token value itself
// is only returned once, at issue time.
type AccessTokenDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name,omitempty"`
	Preview     string     `json:"preview"`
	Description string     `json:"description"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Used        bool       `json:"used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	OriginIP    string     `json:"origin_ip,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TokenOption customises TokenService behaviour.
type TokenOption func(*TokenService)

// WithTokenExpiry overrides the default token lifetime.
func WithTokenExpiry(d time.Duration) TokenOption {
	return func(s *TokenService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithTokenClock injects a custom clock primarily for testing.
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(s *TokenService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// TokenService manages issue and redemption of single-use access tokens.
type TokenService struct {
	db      *gorm.DB
	history *HistoryService
	expiry  time.Duration
	now     func() time.Time
}

// NewTokenService constructs a TokenService with the provided dependencies.
func NewTokenService(db *gorm.DB, history *HistoryService, opts ...TokenOption) (*TokenService, error) {
	if db == nil {
		return nil, errors.New("token service: db is required")
	}

	service := &TokenService{
		db:      db,
		history: history,
		expiry:  defaultTokenExpiry,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Issue mints a new single-use token for the supplied user. The raw token
// value is returned exactly once and never listed afterwards.
func (s *TokenService) Issue(ctx context.Context, input IssueTokenInput) (*models.AccessToken, string, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, "", apperrors.NewBadRequest("user is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("token service: load user: %w", err)
	}

	raw, err := crypto.GenerateAccessCode(accessTokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("token service: generate token: %w", err)
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = s.expiry
	}

	token := &models.AccessToken{
		Token:       raw,
		UserID:      userID,
		ExpiresAt:   s.now().Add(ttl),
		Description: strings.TrimSpace(input.Description),
	}

	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, "", fmt.Errorf("token service: create token: %w", err)
	}

	s.record(ctx, userID, "token.issued", fmt.Sprintf("Issued access token %s", token.Preview()))
	return token, raw, nil
}

// Redeem consumes a token atomically, so a given token admits exactly one
// request even under concurrent redemption. On success the token's user is
// returned.
func (s *TokenService) Redeem(ctx context.Context, rawToken, originIP string) (*models.User, error) {
	ctx = ensureContext(ctx)

	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		metrics.TokenRedemptions.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrTokenNotFound
	}

	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("token = ? AND used = ? AND expires_at > ?", rawToken, false, now).
		Updates(map[string]any{
			"used":      true,
			"used_at":   now,
			"origin_ip": strings.TrimSpace(originIP),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("token service: redeem token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, s.classifyRedeemFailure(ctx, rawToken, now)
	}

	var token models.AccessToken
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", rawToken).
		First(&token).Error; err != nil {
		return nil, fmt.Errorf("token service: load redeemed token: %w", err)
	}

	metrics.TokenRedemptions.WithLabelValues("success").Inc()
	s.record(ctx, token.UserID, "token.redeemed", fmt.Sprintf("Redeemed access token %s", token.Preview()))

	user := token.User
	if user == nil {
		return nil, fmt.Errorf("token service: redeemed token %s has no user", token.ID)
	}
	return user, nil
}

// classifyRedeemFailure inspects the losing token to report why redemption failed.
func (s *TokenService) classifyRedeemFailure(ctx context.Context, rawToken string, now time.Time) error {
	var token models.AccessToken
	err := s.db.WithContext(ctx).Where("token = ?", rawToken).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.TokenRedemptions.WithLabelValues("not_found").Inc()
		return apperrors.ErrTokenNotFound
	}
	if err != nil {
		return fmt.Errorf("token service: inspect token: %w", err)
	}

	if token.Used {
		metrics.TokenRedemptions.WithLabelValues("used").Inc()
		return apperrors.ErrTokenUsed
	}
	if token.ExpiredAt(now) {
		metrics.TokenRedemptions.WithLabelValues("expired").Inc()
		return apperrors.ErrTokenExpired
	}

	metrics.TokenRedemptions.WithLabelValues("not_found").Inc()
	return apperrors.ErrTokenNotFound
}

// Invalidate retires an unused token so it can never be redeemed. The
// description is annotated to keep an audit trail in listings.
func (s *TokenService) Invalidate(ctx context.Context, tokenID, actorID string) error {
	ctx = ensureContext(ctx)

	var token models.AccessToken
	err := s.db.WithContext(ctx).First(&token, "id = ?", strings.TrimSpace(tokenID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrTokenNotFound
	}
	if err != nil {
		return fmt.Errorf("token service: load token: %w", err)
	}

	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ? AND used = ?", token.ID, false).
		Updates(map[string]any{
			"used":        true,
			"used_at":     now,
			"description": token.Description + invalidatedSuffix,
		})
	if result.Error != nil {
		return fmt.Errorf("token service: invalidate token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTokenUsed
	}

	s.record(ctx, actorID, "token.invalidated", fmt.Sprintf("Invalidated access token %s", token.Preview()))
	return nil
}

// List returns every token newest first, with previews instead of raw values.
func (s *TokenService) List(ctx context.Context) ([]AccessTokenDTO, error) {
	ctx = ensureContext(ctx)

	var tokens []models.AccessToken
	if err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("token service: list tokens: %w", err)
	}

	items := make([]AccessTokenDTO, 0, len(tokens))
	for _, token := range tokens {
		dto := AccessTokenDTO{
			ID:          token.ID,
			UserID:      token.UserID,
			Preview:     token.Preview(),
			Description: token.Description,
			ExpiresAt:   token.ExpiresAt,
			Used:        token.Used,
			UsedAt:      token.UsedAt,
			OriginIP:    token.OriginIP,
			CreatedAt:   token.CreatedAt,
		}
		if token.User != nil {
			dto.UserName = token.User.FullName()
		}
		items = append(items, dto)
	}
	return items, nil
}

// CleanupExpired deletes tokens that expired before the retention cutoff.
func (s *TokenService) CleanupExpired(ctx context.Context, retention time.Duration) (int64, error) {
	ctx = ensureContext(ctx)

	cutoff := s.now().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.AccessToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("token service: cleanup tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *TokenService) record(ctx context.Context, userID, action, description string) {
	if s.history == nil || strings.TrimSpace(userID) == "" {
		return
	}
	_ = s.history.Record(ctx, HistoryEntry{
		UserID:      userID,
		Action:      action,
		Description: description,
	})
}
