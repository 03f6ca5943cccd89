package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/service"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
	"github.com/talentia-hr/vacaciones-api/pkg/response"
)

type reportService interface {
	Summary(ctx context.Context) ([]dto.StateCountRow, error)
	UserSummary(ctx context.Context) ([]dto.UserSummaryRow, error)
	Monthly(ctx context.Context, year int) ([]dto.MonthlyRow, error)
	Export(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

// ReportHandler exposes aggregated reporting endpoints.
type ReportHandler struct {
	service reportService
	logger  *zap.Logger
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(service reportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

// Summary godoc
// @Summary Request totals per state
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]dto.StateCountRow}
// @Router /reportes/resumen [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	rows, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// UserSummary godoc
// @Summary Vacation usage per user
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]dto.UserSummaryRow}
// @Router /reportes/usuarios [get]
func (h *ReportHandler) UserSummary(c *gin.Context) {
	rows, err := h.service.UserSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Monthly godoc
// @Summary Monthly request totals for a year
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param anio query int false "Year, defaults to the current one"
// @Success 200 {object} response.Envelope{data=[]dto.MonthlyRow}
// @Router /reportes/mensual [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("anio"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "anio must be a number"))
			return
		}
		year = parsed
	}

	rows, err := h.service.Monthly(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export the per-user summary
// @Tags reportes
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param formato query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reportes/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("formato", string(service.FormatCSV)))

	result, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
