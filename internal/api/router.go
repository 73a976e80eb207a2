package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/app"
	iauth "github.com/campuskit/loantrack/internal/auth"
	"github.com/campuskit/loantrack/internal/handlers"
	"github.com/campuskit/loantrack/internal/middleware"
	"github.com/campuskit/loantrack/internal/notifications"
	"github.com/campuskit/loantrack/internal/services"
)

// Dependencies bundles the constructed services the router wires into handlers.
type Dependencies struct {
	JWT           *iauth.JWTService
	Sessions      *iauth.SessionService
	Users         *services.UserService
	Equipment     *services.EquipmentService
	Loans         *services.LoanService
	Tokens        *services.TokenService
	Notifications *services.NotificationService
	History       *services.HistoryService
	Hub           *notifications.Hub
}

func (d Dependencies) validate() error {
	switch {
	case d.JWT == nil:
		return fmt.Errorf("jwt service must be provided")
	case d.Sessions == nil:
		return fmt.Errorf("session service must be provided")
	case d.Users == nil:
		return fmt.Errorf("user service must be provided")
	case d.Equipment == nil:
		return fmt.Errorf("equipment service must be provided")
	case d.Loans == nil:
		return fmt.Errorf("loan service must be provided")
	case d.Tokens == nil:
		return fmt.Errorf("token service must be provided")
	case d.Notifications == nil:
		return fmt.Errorf("notification service must be provided")
	case d.History == nil:
		return fmt.Errorf("history service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health(db))
	registerMonitoringRoutes(r, cfg)

	requireAuth := middleware.Auth(deps.JWT)
	requireAdmin := middleware.RequireAdmin(db)
	requireApprover := middleware.RequireApprover(db)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Sessions, cfg.Features.SelfRegistration)
	tokenHandler := handlers.NewTokenHandler(deps.Tokens, deps.Sessions)

	registerAuthRoutes(r, authHandler, tokenHandler, requireAuth)

	api := r.Group("/api")
	api.Use(requireAuth)

	registerEquipmentRoutes(api, handlers.NewEquipmentHandler(deps.Equipment), requireAdmin)
	registerLoanRoutes(api, handlers.NewLoanHandler(deps.Loans, deps.Users), requireApprover)

	if cfg.Features.Notifications.Enabled {
		registerNotificationRoutes(api, handlers.NewNotificationHandler(deps.Notifications, deps.Hub))
	}

	registerAdminRoutes(api, adminHandlers{
		users:   handlers.NewUserHandler(deps.Users),
		tokens:  tokenHandler,
		history: handlers.NewHistoryHandler(deps.History),
		reports: handlers.NewReportsHandler(deps.Loans),
	}, requireAdmin)

	return r, nil
}
