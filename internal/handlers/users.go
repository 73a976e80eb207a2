package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/response"
)

// UserHandler exposes the admin user management endpoints.
type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 25)

	opts := services.ListUsersOptions{
		Page:     page,
		PageSize: per,
		Filters: services.UserFilters{
			Role:     models.Role(strings.TrimSpace(c.Query("role"))),
			IsActive: parseBoolQuery(c, "active"),
			Query:    strings.TrimSpace(c.Query("q")),
		},
	}

	users, total, err := h.service.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, userPayload(&users[i]))
	}

	response.SuccessWithMeta(c, http.StatusOK, payload, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := userPayload(user)
	payload["last_login_at"] = user.LastLoginAt
	payload["last_login_ip"] = user.LastLoginIP
	payload["created_at"] = user.CreatedAt
	response.Success(c, http.StatusOK, payload)
}

type createUserRequest struct {
	NationalID string `json:"national_id" validate:"required,min=4,max=32"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"max=32"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role"`
}

// POST /api/admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role := models.Role(strings.TrimSpace(req.Role))
	if role != "" && !role.Valid() {
		response.Error(c, errors.NewBadRequest("role must be one of student, staff, admin"))
		return
	}

	user, err := h.service.Register(requestContext(c), services.RegisterUserInput{
		NationalID: strings.TrimSpace(req.NationalID),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      req.Email,
		Phone:      strings.TrimSpace(req.Phone),
		Password:   req.Password,
		Role:       role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, userPayload(user))
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// PATCH /api/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.service.Update(requestContext(c), c.Param("id"), services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, userPayload(user))
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// POST /api/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req setActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.SetActive(requestContext(c), actorID, c.Param("id"), *req.Active); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"active": *req.Active})
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// POST /api/admin/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req changeRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role := models.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		response.Error(c, errors.NewBadRequest("role must be one of student, staff, admin"))
		return
	}

	if err := h.service.ChangeRole(requestContext(c), actorID, c.Param("id"), role); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// POST /api/admin/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.ResetPassword(requestContext(c), c.Param("id"), req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
