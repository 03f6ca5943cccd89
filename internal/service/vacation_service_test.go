package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/internal/repository"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
)

type stubVacationRepo struct {
	createFn  func(ctx context.Context, req *models.VacationRequest, guard repository.CreateGuard) error
	findFn    func(ctx context.Context, id string) (*models.VacationRequest, error)
	resolveFn func(ctx context.Context, p repository.ResolveParams) (*models.VacationRequest, error)
	listFn    func(ctx context.Context, filter models.VacationFilter) ([]models.VacationRequest, int, error)

	lastGuard  repository.CreateGuard
	lastParams repository.ResolveParams
	lastFilter models.VacationFilter
}

func (s *stubVacationRepo) Create(ctx context.Context, req *models.VacationRequest, guard repository.CreateGuard) error {
	s.lastGuard = guard
	if s.createFn != nil {
		return s.createFn(ctx, req, guard)
	}
	req.ID = "req-1"
	return nil
}

func (s *stubVacationRepo) FindByID(ctx context.Context, id string) (*models.VacationRequest, error) {
	return s.findFn(ctx, id)
}

func (s *stubVacationRepo) Resolve(ctx context.Context, p repository.ResolveParams) (*models.VacationRequest, error) {
	s.lastParams = p
	return s.resolveFn(ctx, p)
}

func (s *stubVacationRepo) List(ctx context.Context, filter models.VacationFilter) ([]models.VacationRequest, int, error) {
	s.lastFilter = filter
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, 0, nil
}

type stubPolicyReader struct {
	policy *Policy
	err    error
}

func (s *stubPolicyReader) Policy(ctx context.Context) (*Policy, error) {
	return s.policy, s.err
}

type stubAuditLogger struct {
	logs []*models.AuditLog
}

func (s *stubAuditLogger) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func basePolicy() *Policy {
	return &Policy{
		MinNoticeDays:          7,
		MaxConsecutiveDays:     30,
		MinConsecutiveDays:     1,
		MaxPendingRequests:     3,
		RequireManagerApproval: true,
		RequireHRApproval:      true,
	}
}

func fixedNow(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t }
}

func newTestVacationService(repo *stubVacationRepo, policy *Policy, now string) (*VacationService, *stubAuditLogger) {
	audit := &stubAuditLogger{}
	svc := NewVacationService(repo, &stubPolicyReader{policy: policy}, audit, nil, nil, VacationServiceConfig{Now: fixedNow(now)})
	return svc, audit
}

func empleado(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleEmpleado}
}

func TestDaySpan(t *testing.T) {
	start := models.NewDate(2025, time.March, 10)
	end := models.NewDate(2025, time.March, 14)
	assert.Equal(t, 5, DaySpan(start, end))

	sameDay := models.NewDate(2025, time.March, 10)
	assert.Equal(t, 1, DaySpan(start, sameDay))
}

func TestVacationCreateHappyPath(t *testing.T) {
	repo := &stubVacationRepo{}
	svc, audit := newTestVacationService(repo, basePolicy(), "2025-03-01")

	created, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-10",
		FechaFin:    "2025-03-14",
		Motivo:      "family trip",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, created.Days)
	assert.Equal(t, models.StatePendienteJefe, created.State)
	assert.Equal(t, "u1", created.UserID)
	assert.Nil(t, created.ResponseAt)

	assert.Equal(t, 3, repo.lastGuard.MaxPending)
	assert.True(t, repo.lastGuard.CheckBalance)
	assert.False(t, repo.lastGuard.HolidayViolation)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCreateRequest, audit.logs[0].Action)
}

func TestVacationCreateEndBeforeStart(t *testing.T) {
	svc, _ := newTestVacationService(&stubVacationRepo{}, basePolicy(), "2025-03-01")

	_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-14",
		FechaFin:    "2025-03-10",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVacationCreateInsufficientNotice(t *testing.T) {
	svc, _ := newTestVacationService(&stubVacationRepo{}, basePolicy(), "2025-03-08")

	_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-10",
		FechaFin:    "2025-03-14",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestVacationCreateRetroactive(t *testing.T) {
	svc, _ := newTestVacationService(&stubVacationRepo{}, basePolicy(), "2025-03-20")

	_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-10",
		FechaFin:    "2025-03-14",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErrors.FromError(err).Code)
}

func TestVacationCreateAllowPastDatesSkipsNoticeChecks(t *testing.T) {
	policy := basePolicy()
	policy.AllowPastDates = true
	repo := &stubVacationRepo{}
	svc, _ := newTestVacationService(repo, policy, "2025-03-20")

	created, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-10",
		FechaFin:    "2025-03-14",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatePendienteJefe, created.State)
}

func TestVacationCreateTooManyConsecutiveDays(t *testing.T) {
	policy := basePolicy()
	policy.MaxConsecutiveDays = 10
	svc, _ := newTestVacationService(&stubVacationRepo{}, policy, "2025-03-01")

	_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-04-01",
		FechaFin:    "2025-04-20",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErrors.FromError(err).Code)
}

func TestVacationCreateWeekendStart(t *testing.T) {
	// 2025-03-15 is a Saturday.
	svc, _ := newTestVacationService(&stubVacationRepo{}, basePolicy(), "2025-03-01")

	_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-15",
		FechaFin:    "2025-03-18",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErrors.FromError(err).Code)
}

func TestVacationCreateHolidayBoundaryFlagsGuard(t *testing.T) {
	policy := basePolicy()
	policy.Holidays = []models.Date{models.NewDate(2025, time.March, 10)}
	repo := &stubVacationRepo{createFn: func(ctx context.Context, req *models.VacationRequest, guard repository.CreateGuard) error {
		if guard.HolidayViolation {
			return repository.ErrHolidayBoundary
		}
		return nil
	}}
	svc, _ := newTestVacationService(repo, policy, "2025-03-01")

	_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-10",
		FechaFin:    "2025-03-14",
	})
	require.Error(t, err)
	assert.True(t, repo.lastGuard.HolidayViolation)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErrors.FromError(err).Code)
}

func TestVacationCreateAutoApproval(t *testing.T) {
	policy := basePolicy()
	policy.AutoApproveMaxDays = 5
	repo := &stubVacationRepo{}
	svc, _ := newTestVacationService(repo, policy, "2025-03-01")

	created, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
		FechaInicio: "2025-03-10",
		FechaFin:    "2025-03-14",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateAprobada, created.State)
	require.NotNil(t, created.ResponseAt)
}

func TestVacationCreateMapsRepositorySentinels(t *testing.T) {
	cases := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"pending cap", repository.ErrTooManyPending, appErrors.ErrPolicyViolation.Code},
		{"balance", repository.ErrInsufficientBalance, appErrors.ErrPolicyViolation.Code},
		{"overlap", repository.ErrOverlap, appErrors.ErrPolicyViolation.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubVacationRepo{createFn: func(ctx context.Context, req *models.VacationRequest, guard repository.CreateGuard) error {
				return tc.repoErr
			}}
			svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

			_, err := svc.Create(context.Background(), empleado("u1"), dto.CreateVacationRequest{
				FechaInicio: "2025-03-10",
				FechaFin:    "2025-03-14",
			})
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, appErrors.FromError(err).Code)
		})
	}
}

func TestUpdateStateTerminalRequestConflicts(t *testing.T) {
	repo := &stubVacationRepo{findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
		return &models.VacationRequest{ID: id, UserID: "u1", State: models.StateAprobada}, nil
	}}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	actor := &models.JWTClaims{UserID: "boss", Role: models.RoleJefeSuperior}
	_, err := svc.UpdateState(context.Background(), actor, "req-1", dto.UpdateVacationStateRequest{Estado: "aprobada"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTerminalState.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestUpdateStateManagerApprovalRoutesToHR(t *testing.T) {
	repo := &stubVacationRepo{
		findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
			return &models.VacationRequest{ID: id, UserID: "u1", State: models.StatePendienteJefe}, nil
		},
		resolveFn: func(ctx context.Context, p repository.ResolveParams) (*models.VacationRequest, error) {
			return &models.VacationRequest{ID: p.ID, UserID: "u1", State: p.Next}, nil
		},
	}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	actor := &models.JWTClaims{UserID: "boss", Role: models.RoleJefeSuperior}
	updated, err := svc.UpdateState(context.Background(), actor, "req-1", dto.UpdateVacationStateRequest{Estado: "aprobada"})
	require.NoError(t, err)
	assert.Equal(t, models.StatePendienteRRHH, updated.State)
	assert.False(t, repo.lastParams.ApplyBalance)
}

func TestUpdateStateHRApprovalAppliesBalance(t *testing.T) {
	repo := &stubVacationRepo{
		findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
			return &models.VacationRequest{ID: id, UserID: "u1", State: models.StatePendienteRRHH, Days: 5}, nil
		},
		resolveFn: func(ctx context.Context, p repository.ResolveParams) (*models.VacationRequest, error) {
			return &models.VacationRequest{ID: p.ID, UserID: "u1", State: p.Next}, nil
		},
	}
	svc, audit := newTestVacationService(repo, basePolicy(), "2025-03-01")

	actor := &models.JWTClaims{UserID: "hr", Role: models.RoleRRHH}
	updated, err := svc.UpdateState(context.Background(), actor, "req-1", dto.UpdateVacationStateRequest{Estado: "aprobada"})
	require.NoError(t, err)
	assert.Equal(t, models.StateAprobada, updated.State)
	assert.True(t, repo.lastParams.ApplyBalance)
	assert.Equal(t, []models.VacationState{models.StatePendienteRRHH}, repo.lastParams.From)
	require.Len(t, audit.logs, 1)
}

func TestUpdateStateEmployeeCannotApprove(t *testing.T) {
	repo := &stubVacationRepo{findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
		return &models.VacationRequest{ID: id, UserID: "u1", State: models.StatePendienteJefe}, nil
	}}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	_, err := svc.UpdateState(context.Background(), empleado("u1"), "req-1", dto.UpdateVacationStateRequest{Estado: "aprobada"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateStateOnlyOwnerCancels(t *testing.T) {
	repo := &stubVacationRepo{findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
		return &models.VacationRequest{ID: id, UserID: "u1", State: models.StatePendienteJefe}, nil
	}}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	_, err := svc.UpdateState(context.Background(), empleado("u2"), "req-1", dto.UpdateVacationStateRequest{Estado: "cancelada"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateStateLostRaceSurfacesConflict(t *testing.T) {
	repo := &stubVacationRepo{
		findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
			return &models.VacationRequest{ID: id, UserID: "u1", State: models.StatePendienteRRHH}, nil
		},
		resolveFn: func(ctx context.Context, p repository.ResolveParams) (*models.VacationRequest, error) {
			return nil, repository.ErrAlreadyResolved
		},
	}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	actor := &models.JWTClaims{UserID: "hr", Role: models.RoleRRHH}
	_, err := svc.UpdateState(context.Background(), actor, "req-1", dto.UpdateVacationStateRequest{Estado: "rechazada"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTerminalState.Code, appErrors.FromError(err).Code)
}

func TestListScopesEmployeesToOwnRequests(t *testing.T) {
	repo := &stubVacationRepo{}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	_, _, err := svc.List(context.Background(), empleado("u1"), models.VacationFilter{UserID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "u1", repo.lastFilter.UserID)
}

func TestListRejectsUnknownStateFilter(t *testing.T) {
	svc, _ := newTestVacationService(&stubVacationRepo{}, basePolicy(), "2025-03-01")

	_, _, err := svc.List(context.Background(), empleado("u1"), models.VacationFilter{State: "pausada"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListAcceptsPendingAlias(t *testing.T) {
	repo := &stubVacationRepo{}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	_, _, err := svc.List(context.Background(), empleado("u1"), models.VacationFilter{State: models.StatePendiente})
	require.NoError(t, err)
	assert.Equal(t, models.StatePendiente, repo.lastFilter.State)
}

func TestGetEmployeeCannotReadOthers(t *testing.T) {
	repo := &stubVacationRepo{findFn: func(ctx context.Context, id string) (*models.VacationRequest, error) {
		return &models.VacationRequest{ID: id, UserID: "owner"}, nil
	}}
	svc, _ := newTestVacationService(repo, basePolicy(), "2025-03-01")

	_, err := svc.Get(context.Background(), empleado("intruder"), "req-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
