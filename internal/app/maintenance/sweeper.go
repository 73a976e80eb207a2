package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/campuskit/loantrack/internal/auth"
	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/logger"
)

const (
	defaultHistoryRetentionDays = 365
	defaultTokenRetention       = 7 * 24 * time.Hour
	defaultOverdueSpec          = "@every 15m"
	defaultCleanupSpec          = "@daily"
)

// Sweeper coordinates background maintenance: marking overdue loans, purging
// expired sessions and spent access tokens, and enforcing history retention.
type Sweeper struct {
	loans    *services.LoanService
	tokens   *services.TokenService
	sessions *iauth.SessionService
	history  *services.HistoryService

	cron *cron.Cron
	log  *zap.Logger

	historyRetention int
	tokenRetention   time.Duration
	overdueSchedule  string
	cleanupSchedule  string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithHistoryRetentionDays adjusts how long history rows are retained.
func WithHistoryRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.historyRetention = days
		}
	}
}

// WithTokenRetention adjusts how long expired access tokens linger before deletion.
func WithTokenRetention(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.tokenRetention = d
		}
	}
}

// WithOverdueSchedule overrides the cron specification for the overdue sweep.
func WithOverdueSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.overdueSchedule = spec
		}
	}
}

// WithCleanupSchedule overrides the cron specification for the cleanup jobs.
func WithCleanupSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.cleanupSchedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewSweeper(loans *services.LoanService, tokens *services.TokenService, sessions *iauth.SessionService, history *services.HistoryService, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		loans:            loans,
		tokens:           tokens,
		sessions:         sessions,
		history:          history,
		historyRetention: defaultHistoryRetentionDays,
		tokenRetention:   defaultTokenRetention,
		overdueSchedule:  defaultOverdueSpec,
		cleanupSchedule:  defaultCleanupSpec,
		log:              logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the jobs with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.loans != nil {
		if _, err := s.cron.AddFunc(s.overdueSchedule, func() {
			swept, err := s.loans.SweepOverdue(context.Background())
			if err != nil {
				s.log.Warn("overdue sweep failed", zap.Error(err))
				return
			}
			if swept > 0 {
				s.log.Info("marked loans overdue", zap.Int64("count", swept))
			}
		}); err != nil {
			return err
		}
	}

	if s.sessions != nil || s.tokens != nil || s.history != nil {
		if _, err := s.cron.AddFunc(s.cleanupSchedule, func() {
			if err := s.runCleanup(context.Background()); err != nil {
				s.log.Warn("cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every configured job sequentially. Primarily used in tests
// and during graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if s.loans != nil {
		if _, err := s.loans.SweepOverdue(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if err := s.runCleanup(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}

func (s *Sweeper) runCleanup(ctx context.Context) error {
	var errs error

	if s.sessions != nil {
		if _, err := s.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if s.tokens != nil {
		if _, err := s.tokens.CleanupExpired(ctx, s.tokenRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if s.history != nil && s.historyRetention > 0 {
		if _, err := s.history.CleanupOlderThan(ctx, s.historyRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
