package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/pkg/database"
)

// ReportRepository runs read-only aggregations for dashboards.
type ReportRepository struct {
	db    *sqlx.DB
	retry database.RetryPolicy
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db, retry: database.DefaultRetryPolicy}
}

// CountByState returns request totals grouped by lifecycle state.
func (r *ReportRepository) CountByState(ctx context.Context) ([]dto.StateCountRow, error) {
	const query = `SELECT estado, COUNT(*) AS total
FROM solicitudes_vacaciones GROUP BY estado ORDER BY estado ASC`
	var rows []dto.StateCountRow
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &rows, query)
	})
	if err != nil {
		return nil, fmt.Errorf("count requests by state: %w", err)
	}
	return rows, nil
}

// SummaryByUser aggregates request counts and approved days per user.
func (r *ReportRepository) SummaryByUser(ctx context.Context) ([]dto.UserSummaryRow, error) {
	const query = `SELECT u.id AS usuario_id, u.nombre_completo, u.email,
       COUNT(s.id) AS solicitudes,
       COALESCE(SUM(s.dias_solicitados) FILTER (WHERE s.estado = $1), 0) AS dias_aprobados,
       u.dias_disponibles
FROM usuarios u
LEFT JOIN solicitudes_vacaciones s ON s.usuario_id = u.id
GROUP BY u.id, u.nombre_completo, u.email, u.dias_disponibles
ORDER BY u.nombre_completo ASC`
	var rows []dto.UserSummaryRow
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &rows, query, models.StateAprobada)
	})
	if err != nil {
		return nil, fmt.Errorf("summarize requests by user: %w", err)
	}
	return rows, nil
}

// Monthly returns per-month request counts and day totals for a year.
func (r *ReportRepository) Monthly(ctx context.Context, year int) ([]dto.MonthlyRow, error) {
	const query = `SELECT EXTRACT(MONTH FROM fecha_inicio)::int AS mes,
       COUNT(*) AS solicitudes,
       COALESCE(SUM(dias_solicitados), 0) AS dias
FROM solicitudes_vacaciones
WHERE EXTRACT(YEAR FROM fecha_inicio) = $1
GROUP BY mes ORDER BY mes ASC`
	var rows []dto.MonthlyRow
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &rows, query, year)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly requests: %w", err)
	}
	return rows, nil
}
