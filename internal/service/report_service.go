package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
	"github.com/talentia-hr/vacaciones-api/pkg/export"
)

type reportRepository interface {
	CountByState(ctx context.Context) ([]dto.StateCountRow, error)
	SummaryByUser(ctx context.Context) ([]dto.UserSummaryRow, error)
	Monthly(ctx context.Context, year int) ([]dto.MonthlyRow, error)
}

// ReportService produces aggregated reports and exports.
type ReportService struct {
	repo   reportRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(repo reportRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Summary returns the count of vacation requests per state.
func (s *ReportService) Summary(ctx context.Context) ([]dto.StateCountRow, error) {
	rows, err := s.repo.CountByState(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build state summary")
	}
	return rows, nil
}

// UserSummary returns one aggregated row per user.
func (s *ReportService) UserSummary(ctx context.Context) ([]dto.UserSummaryRow, error) {
	rows, err := s.repo.SummaryByUser(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build user summary")
	}
	return rows, nil
}

// Monthly returns per-month totals for the given year.
func (s *ReportService) Monthly(ctx context.Context, year int) ([]dto.MonthlyRow, error) {
	if year < 2000 || year > 2100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is out of range")
	}
	rows, err := s.repo.Monthly(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build monthly report")
	}
	return rows, nil
}

// ExportFormat identifies a supported export encoding.
type ExportFormat string

// Supported export formats.
const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders the per-user summary in the requested format.
func (s *ReportService) Export(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	rows, err := s.repo.SummaryByUser(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export data")
	}

	data := export.Dataset{
		Headers: []string{"Usuario", "Email", "Solicitudes", "Dias aprobados", "Dias disponibles"},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Usuario":          row.NombreCompleto,
			"Email":            row.Email,
			"Solicitudes":      strconv.Itoa(row.Solicitudes),
			"Dias aprobados":   strconv.Itoa(row.DiasAprobados),
			"Dias disponibles": strconv.Itoa(row.DiasDisponibles),
		})
	}

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "reporte_vacaciones.csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(data, "Reporte de vacaciones")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "reporte_vacaciones.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
