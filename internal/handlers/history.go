package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/response"
)

// HistoryHandler exposes the action history listing for the admin panel.
type HistoryHandler struct {
	service *services.HistoryService
}

func NewHistoryHandler(service *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// GET /api/admin/history
func (h *HistoryHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 25)

	filters := services.HistoryFilters{
		UserID: strings.TrimSpace(c.Query("user_id")),
		LoanID: strings.TrimSpace(c.Query("loan_id")),
		Action: strings.TrimSpace(c.Query("action")),
	}
	if since := parseTimeQuery(c, "since"); since != nil {
		filters.Since = since
	}
	if until := parseTimeQuery(c, "until"); until != nil {
		filters.Until = until
	}

	entries, total, err := h.service.List(requestContext(c), services.HistoryListOptions{
		Page:     page,
		PageSize: per,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

func parseTimeQuery(c *gin.Context, key string) *time.Time {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
