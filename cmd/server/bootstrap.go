package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/api"
	"github.com/campuskit/loantrack/internal/app"
	"github.com/campuskit/loantrack/internal/app/maintenance"
	iauth "github.com/campuskit/loantrack/internal/auth"
	"github.com/campuskit/loantrack/internal/database"
	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/internal/notifications"
	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Tokens  *services.TokenService
	Sweeper *maintenance.Sweeper
	Hub     *notifications.Hub
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, services, maintenance jobs, and
// the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	historySvc, err := services.NewHistoryService(db)
	if err != nil {
		return nil, fmt.Errorf("initialise history service: %w", err)
	}
	userSvc, err := services.NewUserService(db, historySvc)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}
	equipmentSvc, err := services.NewEquipmentService(db, historySvc)
	if err != nil {
		return nil, fmt.Errorf("initialise equipment service: %w", err)
	}

	var hub *notifications.Hub
	if cfg.Features.Notifications.Enabled {
		hub = notifications.NewHub()
	}
	notificationSvc, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	loanSvc, err := services.NewLoanService(db, historySvc, notificationSvc, userSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise loan service: %w", err)
	}
	tokenSvc, err := services.NewTokenService(db, historySvc, services.WithTokenExpiry(cfg.Tokens.TTL))
	if err != nil {
		return nil, fmt.Errorf("initialise token service: %w", err)
	}

	sweeper := maintenance.NewSweeper(loanSvc, tokenSvc, sessionSvc, historySvc,
		maintenance.WithOverdueSchedule(cfg.Maintenance.OverdueSchedule),
		maintenance.WithCleanupSchedule(cfg.Maintenance.CleanupSchedule),
		maintenance.WithHistoryRetentionDays(cfg.Maintenance.HistoryRetentionDays),
		maintenance.WithTokenRetention(cfg.Tokens.Retention),
	)

	router, err := api.NewRouter(db, cfg, api.Dependencies{
		JWT:           jwtSvc,
		Sessions:      sessionSvc,
		Users:         userSvc,
		Equipment:     equipmentSvc,
		Loans:         loanSvc,
		Tokens:        tokenSvc,
		Notifications: notificationSvc,
		History:       historySvc,
		Hub:           hub,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	log.Info("runtime initialised",
		zap.Bool("notifications", cfg.Features.Notifications.Enabled),
		zap.Bool("self_registration", cfg.Features.SelfRegistration),
	)

	return &runtimeStack{
		DB:      db,
		Tokens:  tokenSvc,
		Sweeper: sweeper,
		Hub:     hub,
		Router:  router,
	}, nil
}

// issueAdminToken mints a single-use access token for the default seeded
// administrator and prints the redemption path. Used for first-run recovery
// when no admin password is known.
func issueAdminToken(ctx context.Context, stack *runtimeStack, ttl time.Duration) error {
	var admin models.User
	if err := stack.DB.WithContext(ctx).
		First(&admin, "national_id = ?", database.DefaultAdminNationalID).Error; err != nil {
		return fmt.Errorf("load default admin: %w", err)
	}

	token, raw, err := stack.Tokens.Issue(ctx, services.IssueTokenInput{
		UserID:      admin.ID,
		Description: "bootstrap admin access",
		TTL:         ttl,
	})
	if err != nil {
		return fmt.Errorf("issue admin token: %w", err)
	}

	fmt.Printf("single-use admin access link:\n  /admin/single-use-access/%s\n", raw)
	fmt.Printf("expires at %s\n", token.ExpiresAt.Format(time.RFC3339))
	return nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("database handle unavailable on shutdown", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.Connection()

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}
