package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/middleware"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
	"github.com/talentia-hr/vacaciones-api/pkg/response"
)

type settingService interface {
	List(ctx context.Context, category string) ([]dto.SettingItem, error)
	Get(ctx context.Context, key string) (*dto.SettingItem, error)
	GetByKeys(ctx context.Context, req dto.BatchGetSettingsRequest) ([]dto.SettingItem, error)
	Create(ctx context.Context, req dto.CreateSettingRequest, actor *models.JWTClaims) (*dto.SettingItem, error)
	Update(ctx context.Context, key string, req dto.UpdateSettingRequest, actor *models.JWTClaims) (*dto.SettingItem, error)
	BulkUpdate(ctx context.Context, req dto.BulkUpdateSettingsRequest, actor *models.JWTClaims) ([]dto.SettingItem, error)
	Delete(ctx context.Context, key string, actor *models.JWTClaims) error
}

// SettingHandler exposes configuration endpoints.
type SettingHandler struct {
	service settingService
	logger  *zap.Logger
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(service settingService, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{service: service, logger: logger}
}

// List godoc
// @Summary List configuration settings
// @Tags config
// @Produce json
// @Security BearerAuth
// @Param categoria query string false "Filter by category"
// @Success 200 {object} response.Envelope{data=[]dto.SettingItem}
// @Router /config [get]
func (h *SettingHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("categoria"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one setting by key
// @Tags config
// @Produce json
// @Security BearerAuth
// @Param clave path string true "Setting key"
// @Success 200 {object} response.Envelope{data=dto.SettingItem}
// @Failure 404 {object} response.Envelope
// @Router /config/{clave} [get]
func (h *SettingHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("clave"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// GetBatch godoc
// @Summary Get several settings by key
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BatchGetSettingsRequest true "Keys to fetch"
// @Success 200 {object} response.Envelope{data=[]dto.SettingItem}
// @Router /config/batch [post]
func (h *SettingHandler) GetBatch(c *gin.Context) {
	var req dto.BatchGetSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	items, err := h.service.GetByKeys(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create a setting
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSettingRequest true "Setting definition"
// @Success 201 {object} response.Envelope{data=dto.SettingItem}
// @Failure 409 {object} response.Envelope
// @Router /config [post]
func (h *SettingHandler) Create(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)

	var req dto.CreateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update the value of a setting
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clave path string true "Setting key"
// @Param request body dto.UpdateSettingRequest true "New value"
// @Success 200 {object} response.Envelope{data=dto.SettingItem}
// @Failure 400 {object} response.Envelope
// @Router /config/{clave} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)

	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("clave"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// BulkUpdate godoc
// @Summary Update several settings atomically
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkUpdateSettingsRequest true "Entries to update"
// @Success 200 {object} response.Envelope{data=[]dto.SettingItem}
// @Router /config [put]
func (h *SettingHandler) BulkUpdate(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)

	var req dto.BulkUpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	items, err := h.service.BulkUpdate(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Delete godoc
// @Summary Delete a setting
// @Tags config
// @Security BearerAuth
// @Param clave path string true "Setting key"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /config/{clave} [delete]
func (h *SettingHandler) Delete(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("clave"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
