package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/response"
)

// ReportsHandler serves the admin dashboard aggregates.
type ReportsHandler struct {
	loans *services.LoanService
}

func NewReportsHandler(loans *services.LoanService) *ReportsHandler {
	return &ReportsHandler{loans: loans}
}

// GET /api/admin/dashboard
//
// Overdue loans are reconciled before counting so the figures never trail the
// sweep schedule.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	stats, err := h.loans.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// GET /api/admin/reports/monthly?months=12
func (h *ReportsHandler) Monthly(c *gin.Context) {
	months := parseIntQuery(c, "months", 12)
	if months > 60 {
		months = 60
	}

	report, err := h.loans.MonthlyReport(requestContext(c), months)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// GET /api/admin/reports/top-equipment?limit=10
func (h *ReportsHandler) TopEquipment(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)
	if limit > 100 {
		limit = 100
	}

	usage, err := h.loans.TopEquipment(requestContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, usage)
}
