package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/pkg/database"
)

const vacationColumns = `id, usuario_id, fecha_inicio, fecha_fin, dias_solicitados, motivo, estado,
aprobador_id, fecha_respuesta, comentarios_respuesta, created_at, updated_at`

// VacationRepository provides database access for vacation requests.
type VacationRepository struct {
	db    *sqlx.DB
	retry database.RetryPolicy
}

// NewVacationRepository creates a new instance of VacationRepository.
func NewVacationRepository(db *sqlx.DB) *VacationRepository {
	return &VacationRepository{db: db, retry: database.DefaultRetryPolicy}
}

// FindByID returns a vacation request by identifier.
func (r *VacationRepository) FindByID(ctx context.Context, id string) (*models.VacationRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM solicitudes_vacaciones WHERE id = $1 LIMIT 1`, vacationColumns)
	var req models.VacationRequest
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &req, query, id)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find vacation request by id: %w", err)
	}
	return &req, nil
}

// List returns vacation requests matching the filter with a total count.
// The "pendiente" state alias matches both pending stages.
func (r *VacationRepository) List(ctx context.Context, filter models.VacationFilter) ([]models.VacationRequest, int, error) {
	baseQuery := `FROM solicitudes_vacaciones WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("usuario_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.State != "" {
		if filter.State == models.StatePendiente {
			conditions = append(conditions, fmt.Sprintf("estado IN ($%d, $%d)", len(args)+1, len(args)+2))
			args = append(args, models.StatePendienteJefe, models.StatePendienteRRHH)
		} else {
			conditions = append(conditions, fmt.Sprintf("estado = $%d", len(args)+1))
			args = append(args, filter.State)
		}
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		vacationColumns, baseQuery, pageSize, offset)

	var requests []models.VacationRequest
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &requests, listQuery, args...)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list vacation requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count vacation requests: %w", err)
	}

	return requests, total, nil
}

// CreateGuard lists the preconditions Create enforces inside its transaction,
// in pipeline order: pending cap, balance, overlap, holiday boundary.
type CreateGuard struct {
	MaxPending       int // zero or negative disables the cap
	CheckBalance     bool
	HolidayViolation bool
}

// Create inserts a vacation request after re-validating the guarded
// preconditions inside a single transaction, so two concurrent submissions
// cannot both pass the overlap check. Auto-approved requests also move the
// requester's day counters within the same transaction.
func (r *VacationRepository) Create(ctx context.Context, req *models.VacationRequest, guard CreateGuard) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create vacation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the requester row so balance and pending-count reads are stable.
	var available int
	if err := tx.GetContext(ctx, &available,
		`SELECT dias_disponibles FROM usuarios WHERE id = $1 FOR UPDATE`, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock requester row: %w", err)
	}

	if guard.MaxPending > 0 {
		var pending int
		if err := tx.GetContext(ctx, &pending,
			`SELECT COUNT(*) FROM solicitudes_vacaciones WHERE usuario_id = $1 AND estado IN ($2, $3)`,
			req.UserID, models.StatePendienteJefe, models.StatePendienteRRHH); err != nil {
			return fmt.Errorf("count pending requests: %w", err)
		}
		if pending >= guard.MaxPending {
			return ErrTooManyPending
		}
	}

	if guard.CheckBalance && available < req.Days {
		return ErrInsufficientBalance
	}

	var overlaps bool
	if err := tx.GetContext(ctx, &overlaps,
		`SELECT EXISTS (
			SELECT 1 FROM solicitudes_vacaciones
			WHERE usuario_id = $1 AND estado IN ($2, $3, $4)
			  AND fecha_inicio <= $6 AND fecha_fin >= $5
		)`,
		req.UserID, models.StatePendienteJefe, models.StatePendienteRRHH, models.StateAprobada,
		req.StartDate, req.EndDate); err != nil {
		return fmt.Errorf("check overlapping requests: %w", err)
	}
	if overlaps {
		return ErrOverlap
	}

	if guard.HolidayViolation {
		return ErrHolidayBoundary
	}

	const insert = `INSERT INTO solicitudes_vacaciones
(id, usuario_id, fecha_inicio, fecha_fin, dias_solicitados, motivo, estado, aprobador_id, fecha_respuesta, comentarios_respuesta, created_at, updated_at)
VALUES (:id, :usuario_id, :fecha_inicio, :fecha_fin, :dias_solicitados, :motivo, :estado, :aprobador_id, :fecha_respuesta, :comentarios_respuesta, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, req); err != nil {
		return fmt.Errorf("insert vacation request: %w", err)
	}

	if req.State == models.StateAprobada {
		if _, err := tx.ExecContext(ctx,
			`UPDATE usuarios SET dias_disponibles = dias_disponibles - $2, dias_tomados = dias_tomados + $2, updated_at = $3 WHERE id = $1`,
			req.UserID, req.Days, now); err != nil {
			return fmt.Errorf("apply auto-approval balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create vacation tx: %w", err)
	}
	return nil
}

// ResolveParams drives a lifecycle transition.
type ResolveParams struct {
	ID           string
	Next         models.VacationState
	From         []models.VacationState
	ApproverID   *string
	Comments     *string
	ApplyBalance bool
}

// Resolve transitions a request to its next state. The current state is
// re-read under lock and must be in p.From; terminal or concurrently changed
// requests yield ErrAlreadyResolved, so balance effects apply exactly once.
func (r *VacationRepository) Resolve(ctx context.Context, p ResolveParams) (*models.VacationRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin resolve tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`SELECT %s FROM solicitudes_vacaciones WHERE id = $1 FOR UPDATE`, vacationColumns)
	var req models.VacationRequest
	if err := tx.GetContext(ctx, &req, query, p.ID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock vacation request: %w", err)
	}

	allowed := false
	for _, state := range p.From {
		if req.State == state {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrAlreadyResolved
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE solicitudes_vacaciones
		 SET estado = $2, aprobador_id = $3, fecha_respuesta = $4, comentarios_respuesta = $5, updated_at = $4
		 WHERE id = $1`,
		p.ID, p.Next, p.ApproverID, now, p.Comments); err != nil {
		return nil, fmt.Errorf("update vacation state: %w", err)
	}

	if p.ApplyBalance {
		if _, err := tx.ExecContext(ctx,
			`UPDATE usuarios SET dias_disponibles = dias_disponibles - $2, dias_tomados = dias_tomados + $2, updated_at = $3 WHERE id = $1`,
			req.UserID, req.Days, now); err != nil {
			return nil, fmt.Errorf("apply approval balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit resolve tx: %w", err)
	}

	req.State = p.Next
	req.ApproverID = p.ApproverID
	req.ResponseAt = &now
	req.ResponseComments = p.Comments
	req.UpdatedAt = now
	return &req, nil
}
