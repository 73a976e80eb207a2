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

// EquipmentHandler exposes the equipment catalogue endpoints.
type EquipmentHandler struct {
	service *services.EquipmentService
}

func NewEquipmentHandler(service *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// GET /api/equipment
func (h *EquipmentHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 25)

	opts := services.ListEquipmentOptions{
		Page:     page,
		PageSize: per,
		Filters: services.EquipmentFilters{
			Category: models.EquipmentCategory(strings.TrimSpace(c.Query("category"))),
			Status:   models.EquipmentStatus(strings.TrimSpace(c.Query("status"))),
			Lendable: parseBoolQuery(c, "lendable"),
			Query:    strings.TrimSpace(c.Query("q")),
		},
	}

	items, total, err := h.service.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/equipment/:id
func (h *EquipmentHandler) Get(c *gin.Context) {
	item, err := h.service.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

type createEquipmentRequest struct {
	Code        string     `json:"code" validate:"required,min=2,max=32"`
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Brand       string     `json:"brand" validate:"max=100"`
	Model       string     `json:"model" validate:"max=100"`
	SerialNo    string     `json:"serial_no" validate:"max=100"`
	AcquiredAt  *time.Time `json:"acquired_at"`
	Notes       string     `json:"notes"`
}

// POST /api/admin/equipment
func (h *EquipmentHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.service.Create(requestContext(c), actorID, services.CreateEquipmentInput{
		Code:        req.Code,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    models.EquipmentCategory(strings.TrimSpace(req.Category)),
		Brand:       strings.TrimSpace(req.Brand),
		Model:       strings.TrimSpace(req.Model),
		SerialNo:    strings.TrimSpace(req.SerialNo),
		AcquiredAt:  req.AcquiredAt,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

type updateEquipmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	SerialNo    *string `json:"serial_no"`
	Notes       *string `json:"notes"`
}

// PATCH /api/admin/equipment/:id
func (h *EquipmentHandler) Update(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.UpdateEquipmentInput{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Model:       req.Model,
		SerialNo:    req.SerialNo,
		Notes:       req.Notes,
	}
	if req.Category != nil {
		category := models.EquipmentCategory(strings.TrimSpace(*req.Category))
		input.Category = &category
	}

	item, err := h.service.Update(requestContext(c), actorID, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

type setEquipmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// POST /api/admin/equipment/:id/status
func (h *EquipmentHandler) SetStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req setEquipmentStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.service.SetStatus(requestContext(c), actorID, c.Param("id"), models.EquipmentStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// DELETE /api/admin/equipment/:id
func (h *EquipmentHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(requestContext(c), actorID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
