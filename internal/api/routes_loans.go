package api

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/handlers"
)

func registerLoanRoutes(api *gin.RouterGroup, handler *handlers.LoanHandler, requireApprover gin.HandlerFunc) {
	group := api.Group("/loans")
	{
		group.POST("", handler.Request)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("/:id/cancel", handler.Cancel)
		group.POST("/:id/return", handler.Return)

		group.POST("/:id/approve", requireApprover, handler.Approve)
		group.POST("/:id/reject", requireApprover, handler.Reject)
	}
}
