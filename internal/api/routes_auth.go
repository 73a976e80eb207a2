package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/handlers"
	"github.com/campuskit/loantrack/internal/middleware"
)

func registerAuthRoutes(r *gin.Engine, auth *handlers.AuthHandler, tokens *handlers.TokenHandler, requireAuth gin.HandlerFunc) {
	// Public routes, throttled harder than the rest of the API
	loginLimit := middleware.RateLimit(10, time.Minute)

	public := r.Group("/api/auth")
	{
		public.POST("/login", loginLimit, auth.Login)
		public.POST("/register", loginLimit, auth.Register)
		public.POST("/refresh", auth.Refresh)
	}

	// Single-use access links arrive by email and carry no session yet
	r.GET("/admin/single-use-access/:token", loginLimit, tokens.Redeem)

	private := r.Group("/api/auth")
	private.Use(requireAuth)
	{
		private.GET("/me", auth.Me)
		private.POST("/logout", auth.Logout)
		private.POST("/password", auth.ChangePassword)
	}
}
