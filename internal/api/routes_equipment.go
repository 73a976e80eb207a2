package api

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/handlers"
)

func registerEquipmentRoutes(api *gin.RouterGroup, handler *handlers.EquipmentHandler, requireAdmin gin.HandlerFunc) {
	group := api.Group("/equipment")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)

		group.POST("", requireAdmin, handler.Create)
		group.PATCH("/:id", requireAdmin, handler.Update)
		group.POST("/:id/status", requireAdmin, handler.SetStatus)
		group.DELETE("/:id", requireAdmin, handler.Delete)
	}
}
