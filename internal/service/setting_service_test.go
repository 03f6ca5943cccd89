package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
)

type stubSettingRepo struct {
	settings map[string]models.Setting

	lastBulk map[string]string
}

func newStubSettingRepo(settings ...models.Setting) *stubSettingRepo {
	repo := &stubSettingRepo{settings: map[string]models.Setting{}}
	for _, s := range settings {
		repo.settings[s.Key] = s
	}
	return repo
}

func (s *stubSettingRepo) List(ctx context.Context, category string) ([]models.Setting, error) {
	var out []models.Setting
	for _, row := range s.settings {
		if category == "" || row.Category == category {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubSettingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	row, ok := s.settings[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (s *stubSettingRepo) GetByKeys(ctx context.Context, keys []string) ([]models.Setting, error) {
	var out []models.Setting
	for _, key := range keys {
		if row, ok := s.settings[key]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubSettingRepo) Create(ctx context.Context, setting *models.Setting) error {
	s.settings[setting.Key] = *setting
	return nil
}

func (s *stubSettingRepo) UpdateValue(ctx context.Context, key, value string, updatedBy *string) error {
	row, ok := s.settings[key]
	if !ok {
		return sql.ErrNoRows
	}
	row.Value = value
	s.settings[key] = row
	return nil
}

func (s *stubSettingRepo) Delete(ctx context.Context, key string) error {
	delete(s.settings, key)
	return nil
}

func (s *stubSettingRepo) BulkUpdateValues(ctx context.Context, updates map[string]string, updatedBy *string) error {
	s.lastBulk = updates
	for key, value := range updates {
		row := s.settings[key]
		row.Value = value
		s.settings[key] = row
	}
	return nil
}

func hrActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "hr-1", Role: models.RoleRRHH}
}

func TestPolicyUsesDefaultsWhenNothingStored(t *testing.T) {
	svc := NewSettingService(newStubSettingRepo(), &stubAuditLogger{}, nil, nil)

	policy, err := svc.Policy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, policy.MinNoticeDays)
	assert.Equal(t, 30, policy.MaxConsecutiveDays)
	assert.Equal(t, 3, policy.MaxPendingRequests)
	assert.True(t, policy.RequireManagerApproval)
	assert.True(t, policy.RequireHRApproval)
	assert.False(t, policy.AllowWeekendStart)
	assert.Empty(t, policy.Holidays)
}

func TestPolicyStoredValuesOverrideDefaults(t *testing.T) {
	repo := newStubSettingRepo(
		models.Setting{Key: "dias_anticipacion_minimo", Value: "14", Type: models.SettingTypeNumber, Editable: true},
		models.Setting{Key: "requiere_aprobacion_rrhh", Value: "false", Type: models.SettingTypeBoolean, Editable: true},
		models.Setting{Key: "feriados", Value: `["2026-12-25"]`, Type: models.SettingTypeJSON, Editable: true},
	)
	svc := NewSettingService(repo, &stubAuditLogger{}, nil, nil)

	policy, err := svc.Policy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 14, policy.MinNoticeDays)
	assert.False(t, policy.RequireHRApproval)
	require.Len(t, policy.Holidays, 1)
	assert.True(t, policy.IsHoliday(models.NewDate(2026, time.December, 25)))
	assert.False(t, policy.IsHoliday(models.NewDate(2026, time.December, 26)))
}

func TestPolicyMalformedStoredValueFallsBackToDefault(t *testing.T) {
	repo := newStubSettingRepo(
		models.Setting{Key: "dias_anticipacion_minimo", Value: "catorce", Type: models.SettingTypeNumber, Editable: true},
	)
	svc := NewSettingService(repo, &stubAuditLogger{}, nil, nil)

	policy, err := svc.Policy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, policy.MinNoticeDays)
}

func TestGetTypedFallsBackToDefault(t *testing.T) {
	svc := NewSettingService(newStubSettingRepo(), &stubAuditLogger{}, nil, nil)

	value, err := svc.GetTyped(context.Background(), "max_solicitudes_pendientes")
	require.NoError(t, err)
	assert.Equal(t, 3, value.Int())

	_, err = svc.GetTyped(context.Background(), "clave_inexistente")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateRejectsValueViolatingType(t *testing.T) {
	repo := newStubSettingRepo(
		models.Setting{Key: "dias_anticipacion_minimo", Value: "7", Type: models.SettingTypeNumber, Editable: true},
	)
	svc := NewSettingService(repo, &stubAuditLogger{}, nil, nil)

	_, err := svc.Update(context.Background(), "dias_anticipacion_minimo", dto.UpdateSettingRequest{Valor: "pronto"}, hrActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// The stored value is untouched after the rejection.
	stored, _ := repo.Get(context.Background(), "dias_anticipacion_minimo")
	assert.Equal(t, "7", stored.Value)
}

func TestUpdateRefusesNonEditableSetting(t *testing.T) {
	repo := newStubSettingRepo(
		models.Setting{Key: "version_esquema", Value: "3", Type: models.SettingTypeNumber, Editable: false},
	)
	svc := NewSettingService(repo, &stubAuditLogger{}, nil, nil)

	_, err := svc.Update(context.Background(), "version_esquema", dto.UpdateSettingRequest{Valor: "4"}, hrActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateNumberRoundTrip(t *testing.T) {
	repo := newStubSettingRepo(
		models.Setting{Key: "auto_aprobar_menos_dias", Value: "0", Type: models.SettingTypeNumber, Editable: true},
	)
	audit := &stubAuditLogger{}
	svc := NewSettingService(repo, audit, nil, nil)

	updated, err := svc.Update(context.Background(), "auto_aprobar_menos_dias", dto.UpdateSettingRequest{Valor: "5"}, hrActor())
	require.NoError(t, err)
	assert.Equal(t, "5", updated.Valor)

	value, err := svc.GetTyped(context.Background(), "auto_aprobar_menos_dias")
	require.NoError(t, err)
	assert.Equal(t, 5, value.Int())
	require.Len(t, audit.logs, 1)
}

func TestBulkUpdateIsAllOrNothing(t *testing.T) {
	repo := newStubSettingRepo(
		models.Setting{Key: "dias_anticipacion_minimo", Value: "7", Type: models.SettingTypeNumber, Editable: true},
		models.Setting{Key: "permitir_feriados", Value: "false", Type: models.SettingTypeBoolean, Editable: true},
	)
	svc := NewSettingService(repo, &stubAuditLogger{}, nil, nil)

	_, err := svc.BulkUpdate(context.Background(), dto.BulkUpdateSettingsRequest{Items: []dto.BulkSettingItem{
		{Clave: "dias_anticipacion_minimo", Valor: "10"},
		{Clave: "permitir_feriados", Valor: "not-a-bool"},
	}}, hrActor())
	require.Error(t, err)
	assert.Nil(t, repo.lastBulk, "no write should happen when any entry fails validation")

	stored, _ := repo.Get(context.Background(), "dias_anticipacion_minimo")
	assert.Equal(t, "7", stored.Value)
}

func TestCreateValidatesValueUnderDeclaredType(t *testing.T) {
	svc := NewSettingService(newStubSettingRepo(), &stubAuditLogger{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateSettingRequest{
		Clave: "nueva_clave",
		Valor: "no-bool",
		Tipo:  "boolean",
	}, hrActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	created, err := svc.Create(context.Background(), dto.CreateSettingRequest{
		Clave: "nueva_clave",
		Valor: "true",
		Tipo:  "boolean",
	}, hrActor())
	require.NoError(t, err)
	assert.True(t, created.Editable)
}
