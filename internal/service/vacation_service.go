package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/internal/repository"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
)

type vacationRepository interface {
	FindByID(ctx context.Context, id string) (*models.VacationRequest, error)
	List(ctx context.Context, filter models.VacationFilter) ([]models.VacationRequest, int, error)
	Create(ctx context.Context, req *models.VacationRequest, guard repository.CreateGuard) error
	Resolve(ctx context.Context, p repository.ResolveParams) (*models.VacationRequest, error)
}

type vacationPolicyReader interface {
	Policy(ctx context.Context) (*Policy, error)
}

type vacationAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// VacationServiceConfig tunes runtime behaviour. Now is overridable so date
// arithmetic is deterministic in tests.
type VacationServiceConfig struct {
	Now func() time.Time
}

// VacationService implements the vacation request pipeline: day-span
// computation, policy validation, conflict detection, approval routing and
// lifecycle transitions.
type VacationService struct {
	repo      vacationRepository
	settings  vacationPolicyReader
	audit     vacationAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewVacationService constructs a VacationService.
func NewVacationService(repo vacationRepository, settings vacationPolicyReader, audit vacationAuditLogger, validate *validator.Validate, logger *zap.Logger, cfg VacationServiceConfig) *VacationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &VacationService{repo: repo, settings: settings, audit: audit, validator: validate, logger: logger, now: now}
}

// DaySpan computes the inclusive calendar-day span of a range.
func DaySpan(start, end models.Date) int {
	diff := end.Sub(start.Time)
	return int(math.Ceil(diff.Hours()/24)) + 1
}

// Create runs the request-creation pipeline. Each policy gate is hard: the
// first failing check wins and nothing is written before the final insert.
func (s *VacationService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateVacationRequest) (*models.VacationRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "fecha_inicio and fecha_fin are required")
	}

	start, err := models.ParseDate(req.FechaInicio)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_inicio must be a YYYY-MM-DD date")
	}
	end, err := models.ParseDate(req.FechaFin)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_fin must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_fin must not precede fecha_inicio")
	}

	days := DaySpan(start, end)

	policy, err := s.settings.Policy(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	if !policy.AllowPastDates {
		if start.Before(today) {
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "retroactive requests are not allowed")
		}
		notice := DaySpan(today, start) - 1
		if notice < policy.MinNoticeDays {
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation,
				fmt.Sprintf("requests need at least %d days of advance notice", policy.MinNoticeDays))
		}
	}

	if policy.MaxConsecutiveDays > 0 && days > policy.MaxConsecutiveDays {
		return nil, appErrors.Clone(appErrors.ErrPolicyViolation,
			fmt.Sprintf("requests cannot exceed %d consecutive days", policy.MaxConsecutiveDays))
	}
	if days < policy.MinConsecutiveDays {
		return nil, appErrors.Clone(appErrors.ErrPolicyViolation,
			fmt.Sprintf("requests need at least %d consecutive days", policy.MinConsecutiveDays))
	}

	if !policy.AllowWeekendStart {
		if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "requests cannot start on a weekend")
		}
	}

	holidayViolation := !policy.AllowHolidays && (policy.IsHoliday(start) || policy.IsHoliday(end))

	request := &models.VacationRequest{
		UserID:    actor.UserID,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    req.Motivo,
		State:     s.initialState(policy, days),
	}
	if request.State == models.StateAprobada {
		now := s.now().UTC()
		request.ResponseAt = &now
	}

	guard := repository.CreateGuard{
		MaxPending:       policy.MaxPendingRequests,
		CheckBalance:     true,
		HolidayViolation: holidayViolation,
	}
	if err := s.repo.Create(ctx, request, guard); err != nil {
		switch {
		case errors.Is(err, repository.ErrTooManyPending):
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation,
				fmt.Sprintf("you already have %d pending requests", policy.MaxPendingRequests))
		case errors.Is(err, repository.ErrInsufficientBalance):
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "insufficient available days for this request")
		case errors.Is(err, repository.ErrOverlap):
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "the range overlaps an existing vacation request")
		case errors.Is(err, repository.ErrHolidayBoundary):
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "requests cannot start or end on a company holiday")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requester not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vacation request")
		}
	}

	s.emitAudit(ctx, actor, models.AuditActionCreateRequest, request.ID, nil, request)

	s.logger.Info("vacation request created",
		zap.String("solicitud_id", request.ID),
		zap.String("usuario_id", request.UserID),
		zap.Int("dias", request.Days),
		zap.String("estado", string(request.State)))
	return request, nil
}

// UpdateState transitions a request to aprobada, rechazada or cancelada.
// Terminal requests are rejected with a conflict, so balance effects apply
// exactly once per request.
func (s *VacationService) UpdateState(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateVacationStateRequest) (*models.VacationRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "estado is required")
	}

	target := models.VacationState(req.Estado)
	switch target {
	case models.StateAprobada, models.StateRechazada, models.StateCancelada:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "estado must be aprobada, rechazada or cancelada")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacation request")
	}

	if current.State.Terminal() {
		return nil, appErrors.ErrTerminalState
	}

	if target == models.StateCancelada {
		if current.UserID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requester can cancel a request")
		}
	} else {
		if err := s.authorizeDecision(actor, current); err != nil {
			return nil, err
		}
	}

	next := target
	applyBalance := false
	if target == models.StateAprobada {
		policy, err := s.settings.Policy(ctx)
		if err != nil {
			return nil, err
		}
		if current.State == models.StatePendienteJefe && policy.RequireHRApproval {
			next = models.StatePendienteRRHH
		} else {
			applyBalance = true
		}
	}

	var comments *string
	if req.Comentarios != "" {
		comments = &req.Comentarios
	}
	approverID := actor.UserID
	params := repository.ResolveParams{
		ID:           id,
		Next:         next,
		From:         []models.VacationState{current.State},
		ApproverID:   &approverID,
		Comments:     comments,
		ApplyBalance: applyBalance,
	}
	updated, err := s.repo.Resolve(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyResolved):
			return nil, appErrors.ErrTerminalState
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation request not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vacation request")
		}
	}

	s.emitAudit(ctx, actor, models.AuditActionResolveRequest, updated.ID, current, updated)

	s.logger.Info("vacation request resolved",
		zap.String("solicitud_id", updated.ID),
		zap.String("estado", string(updated.State)),
		zap.String("aprobador_id", actor.UserID))
	return updated, nil
}

// List returns requests visible to the actor. Employees are always scoped to
// their own requests regardless of the requested filter.
func (s *VacationService) List(ctx context.Context, actor *models.JWTClaims, filter models.VacationFilter) ([]models.VacationRequest, int, error) {
	if actor == nil || actor.UserID == "" {
		return nil, 0, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleEmpleado {
		filter.UserID = actor.UserID
	}
	if filter.State != "" && filter.State != models.StatePendiente && !filter.State.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "unknown estado filter")
	}

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacation requests")
	}
	return requests, total, nil
}

// Get returns one request; employees may only read their own.
func (s *VacationService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.VacationRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacation request")
	}
	if actor.Role == models.RoleEmpleado && request.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request belongs to another user")
	}
	return request, nil
}

func (s *VacationService) authorizeDecision(actor *models.JWTClaims, current *models.VacationRequest) error {
	switch actor.Role {
	case models.RoleRRHH:
		return nil
	case models.RoleJefeSuperior:
		if current.State != models.StatePendienteJefe {
			return appErrors.Clone(appErrors.ErrForbidden, "request is not awaiting manager approval")
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "only managers or HR can resolve requests")
	}
}

func (s *VacationService) initialState(policy *Policy, days int) models.VacationState {
	if policy.AutoApproveMaxDays > 0 && days <= policy.AutoApproveMaxDays {
		return models.StateAprobada
	}
	if !policy.RequireManagerApproval && !policy.RequireHRApproval {
		return models.StateAprobada
	}
	if policy.RequireManagerApproval {
		return models.StatePendienteJefe
	}
	return models.StatePendienteRRHH
}

func (s *VacationService) today() models.Date {
	now := s.now().UTC()
	return models.NewDate(now.Year(), now.Month(), now.Day())
}

func (s *VacationService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, before, after *models.VacationRequest) {
	if s.audit == nil {
		return
	}
	var oldBytes, newBytes json.RawMessage
	if before != nil {
		oldBytes, _ = json.Marshal(before)
	}
	if after != nil {
		newBytes, _ = json.Marshal(after)
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "solicitud_vacaciones",
		ResourceID: &resourceID,
		OldValues:  oldBytes,
		NewValues:  newBytes,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record vacation audit", zap.Error(err))
	}
}
