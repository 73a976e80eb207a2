package api

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/handlers"
)

type adminHandlers struct {
	users   *handlers.UserHandler
	tokens  *handlers.TokenHandler
	history *handlers.HistoryHandler
	reports *handlers.ReportsHandler
}

func registerAdminRoutes(api *gin.RouterGroup, h adminHandlers, requireAdmin gin.HandlerFunc) {
	admin := api.Group("/admin")
	admin.Use(requireAdmin)

	users := admin.Group("/users")
	{
		users.GET("", h.users.List)
		users.GET("/:id", h.users.Get)
		users.POST("", h.users.Create)
		users.PATCH("/:id", h.users.Update)
		users.POST("/:id/active", h.users.SetActive)
		users.POST("/:id/role", h.users.ChangeRole)
		users.POST("/:id/reset-password", h.users.ResetPassword)
	}

	tokens := admin.Group("/tokens")
	{
		tokens.GET("", h.tokens.List)
		tokens.POST("", h.tokens.Issue)
		tokens.POST("/:id/invalidate", h.tokens.Invalidate)
	}

	admin.GET("/history", h.history.List)
	admin.GET("/dashboard", h.reports.Dashboard)

	reports := admin.Group("/reports")
	{
		reports.GET("/monthly", h.reports.Monthly)
		reports.GET("/top-equipment", h.reports.TopEquipment)
	}
}
