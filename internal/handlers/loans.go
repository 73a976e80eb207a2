package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/response"
)

// LoanHandler exposes the loan lifecycle endpoints.
type LoanHandler struct {
	loans *services.LoanService
	users *services.UserService
}

func NewLoanHandler(loans *services.LoanService, users *services.UserService) *LoanHandler {
	return &LoanHandler{loans: loans, users: users}
}

// actor loads the authenticated user so role checks reflect the database, not
// the token claims.
func (h *LoanHandler) actor(c *gin.Context) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return nil, false
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

type requestLoanRequest struct {
	EquipmentID string     `json:"equipment_id" validate:"required"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at" validate:"required"`
	Reason      string     `json:"reason" validate:"required,min=3,max=500"`
	Notes       string     `json:"notes" validate:"max=500"`
}

// POST /api/loans
func (h *LoanHandler) Request(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	var req requestLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.RequestLoanInput{
		BorrowerID:  user.ID,
		EquipmentID: strings.TrimSpace(req.EquipmentID),
		EndsAt:      req.EndsAt,
		Reason:      strings.TrimSpace(req.Reason),
		Notes:       req.Notes,
		IPAddress:   c.ClientIP(),
	}
	if req.StartsAt != nil {
		input.StartsAt = *req.StartsAt
	}

	loan, err := h.loans.Request(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, loan)
}

// GET /api/loans
//
// Students only see their own loans. Staff and admins may filter by borrower.
func (h *LoanHandler) List(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 25)

	filters := services.LoanFilters{
		BorrowerID:  strings.TrimSpace(c.Query("borrower_id")),
		EquipmentID: strings.TrimSpace(c.Query("equipment_id")),
		Status:      models.LoanStatus(strings.TrimSpace(c.Query("status"))),
		Overdue:     parseBoolQuery(c, "overdue"),
	}
	if !user.CanApproveLoans() {
		filters.BorrowerID = user.ID
	}

	loans, total, err := h.loans.List(requestContext(c), services.ListLoansOptions{
		Page:     page,
		PageSize: per,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, loans, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/loans/:id
func (h *LoanHandler) Get(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	loan, err := h.loans.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !user.CanApproveLoans() && loan.BorrowerID != user.ID {
		response.Error(c, errors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

type processLoanRequest struct {
	Notes        string `json:"notes" validate:"max=500"`
	ConditionOut string `json:"condition_out" validate:"max=500"`
}

// POST /api/loans/:id/approve
func (h *LoanHandler) Approve(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	var req processLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}

	loan, err := h.loans.Approve(requestContext(c), c.Param("id"), services.ProcessLoanInput{
		ApproverID:   user.ID,
		Notes:        req.Notes,
		ConditionOut: req.ConditionOut,
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// POST /api/loans/:id/reject
func (h *LoanHandler) Reject(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	var req processLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}

	loan, err := h.loans.Reject(requestContext(c), c.Param("id"), services.ProcessLoanInput{
		ApproverID: user.ID,
		Notes:      req.Notes,
		IPAddress:  c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

type returnLoanRequest struct {
	ConditionIn string `json:"condition_in" validate:"max=500"`
	Notes       string `json:"notes" validate:"max=500"`
}

// POST /api/loans/:id/return
//
// The borrower may record their own return; approvers may record it for
// anyone.
func (h *LoanHandler) Return(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	var req returnLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}

	loan, err := h.loans.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !user.CanApproveLoans() && loan.BorrowerID != user.ID {
		response.Error(c, errors.ErrForbidden)
		return
	}

	loan, err = h.loans.Return(requestContext(c), loan.ID, services.ReturnLoanInput{
		ActorID:     user.ID,
		ConditionIn: req.ConditionIn,
		Notes:       req.Notes,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// POST /api/loans/:id/cancel
//
// Borrowers may withdraw their own pending request. Approvers may cancel any
// pending request on a borrower's behalf.
func (h *LoanHandler) Cancel(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}

	loan, err := h.loans.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !user.CanApproveLoans() && loan.BorrowerID != user.ID {
		response.Error(c, errors.ErrForbidden)
		return
	}

	// Administrators may pull back loans that are already out.
	if user.IsAdmin() {
		loan, err = h.loans.AdminCancel(requestContext(c), loan.ID, user.ID, c.ClientIP())
	} else {
		loan, err = h.loans.Cancel(requestContext(c), loan.ID, user.ID, c.ClientIP())
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}
