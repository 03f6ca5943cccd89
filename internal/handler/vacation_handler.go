package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/middleware"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
	"github.com/talentia-hr/vacaciones-api/pkg/response"
)

type vacationService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateVacationRequest) (*models.VacationRequest, error)
	UpdateState(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateVacationStateRequest) (*models.VacationRequest, error)
	List(ctx context.Context, actor *models.JWTClaims, filter models.VacationFilter) ([]models.VacationRequest, int, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.VacationRequest, error)
}

// VacationHandler exposes vacation request endpoints.
type VacationHandler struct {
	service vacationService
	logger  *zap.Logger
}

// NewVacationHandler constructs a VacationHandler.
func NewVacationHandler(service vacationService, logger *zap.Logger) *VacationHandler {
	return &VacationHandler{service: service, logger: logger}
}

// Create godoc
// @Summary Submit a vacation request
// @Tags vacaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateVacationRequest true "Requested date range"
// @Success 201 {object} response.Envelope{data=models.VacationRequest}
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /vacaciones [post]
func (h *VacationHandler) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// UpdateState godoc
// @Summary Approve, reject or cancel a vacation request
// @Tags vacaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body dto.UpdateVacationStateRequest true "Target state"
// @Success 200 {object} response.Envelope{data=models.VacationRequest}
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /vacaciones/{id} [put]
func (h *VacationHandler) UpdateState(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateVacationStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	updated, err := h.service.UpdateState(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// List godoc
// @Summary List vacation requests
// @Tags vacaciones
// @Produce json
// @Security BearerAuth
// @Param estado query string false "Filter by state"
// @Param usuario_id query string false "Filter by user (approver roles only)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.VacationRequest}
// @Router /vacaciones [get]
func (h *VacationHandler) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.VacationFilter{
		UserID: c.Query("usuario_id"),
		State:  models.VacationState(c.Query("estado")),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one vacation request
// @Tags vacaciones
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope{data=models.VacationRequest}
// @Failure 404 {object} response.Envelope
// @Router /vacaciones/{id} [get]
func (h *VacationHandler) Get(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	item, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
