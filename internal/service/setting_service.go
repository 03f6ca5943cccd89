package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/internal/repository"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
)

type settingRepository interface {
	List(ctx context.Context, category string) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	GetByKeys(ctx context.Context, keys []string) ([]models.Setting, error)
	Create(ctx context.Context, setting *models.Setting) error
	UpdateValue(ctx context.Context, key, value string, updatedBy *string) error
	Delete(ctx context.Context, key string) error
	BulkUpdateValues(ctx context.Context, updates map[string]string, updatedBy *string) error
}

type settingAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Policy is the snapshot of vacation policy settings the request pipeline
// validates against.
type Policy struct {
	MinNoticeDays          int
	MaxConsecutiveDays     int
	MinConsecutiveDays     int
	AllowWeekendStart      bool
	AllowPastDates         bool
	AllowHolidays          bool
	MaxPendingRequests     int
	AutoApproveMaxDays     int
	RequireManagerApproval bool
	RequireHRApproval      bool
	Holidays               []models.Date
}

// IsHoliday reports whether the date matches a configured holiday.
func (p *Policy) IsHoliday(d models.Date) bool {
	for _, holiday := range p.Holidays {
		if holiday.Equal(d.Time) {
			return true
		}
	}
	return false
}

const policyCategory = "politica_vacaciones"

type policyDefault struct {
	Type     models.SettingType
	Value    string
	Category string
}

// policyDefaults back every policy key the pipeline reads, so a fresh
// database still enforces a sane policy.
var policyDefaults = map[string]policyDefault{
	"dias_anticipacion_minimo":     {models.SettingTypeNumber, "7", policyCategory},
	"dias_maximos_consecutivos":    {models.SettingTypeNumber, "30", policyCategory},
	"dias_minimos_consecutivos":    {models.SettingTypeNumber, "1", policyCategory},
	"permitir_inicio_fin_semana":   {models.SettingTypeBoolean, "false", policyCategory},
	"permitir_solicitudes_pasadas": {models.SettingTypeBoolean, "false", policyCategory},
	"permitir_feriados":            {models.SettingTypeBoolean, "false", policyCategory},
	"max_solicitudes_pendientes":   {models.SettingTypeNumber, "3", policyCategory},
	"auto_aprobar_menos_dias":      {models.SettingTypeNumber, "0", policyCategory},
	"requiere_aprobacion_jefe":     {models.SettingTypeBoolean, "true", policyCategory},
	"requiere_aprobacion_rrhh":     {models.SettingTypeBoolean, "true", policyCategory},
	"feriados":                     {models.SettingTypeJSON, "[]", policyCategory},
}

// SettingService orchestrates typed configuration access.
type SettingService struct {
	repo      settingRepository
	audit     settingAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs a SettingService.
func NewSettingService(repo settingRepository, audit settingAuditLogger, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns stored settings, optionally filtered by category.
func (s *SettingService) List(ctx context.Context, category string) ([]dto.SettingItem, error) {
	rows, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	items := make([]dto.SettingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSettingItem(row))
	}
	return items, nil
}

// Get retrieves a single setting by key.
func (s *SettingService) Get(ctx context.Context, key string) (*dto.SettingItem, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get setting")
	}
	item := toSettingItem(*row)
	return &item, nil
}

// GetByKeys batch-fetches settings by key.
func (s *SettingService) GetByKeys(ctx context.Context, req dto.BatchGetSettingsRequest) ([]dto.SettingItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	rows, err := s.repo.GetByKeys(ctx, req.Claves)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch settings")
	}
	items := make([]dto.SettingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSettingItem(row))
	}
	return items, nil
}

// GetTyped returns the value of a key coerced per its declared type, falling
// back to the built-in policy default when the key is not stored.
func (s *SettingService) GetTyped(ctx context.Context, key string) (models.TypedValue, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if def, ok := policyDefaults[key]; ok {
				return models.ParseTypedValue(def.Type, def.Value)
			}
			return models.TypedValue{}, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return models.TypedValue{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get setting")
	}
	value, err := models.ParseTypedValue(row.Type, row.Value)
	if err != nil {
		// A stored value that no longer parses breaks the type invariant.
		return models.TypedValue{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("stored value for %s violates its declared type", key))
	}
	return value, nil
}

// Policy loads the full policy snapshot used by the vacation pipeline.
func (s *SettingService) Policy(ctx context.Context) (*Policy, error) {
	keys := make([]string, 0, len(policyDefaults))
	for key := range policyDefaults {
		keys = append(keys, key)
	}
	rows, err := s.repo.GetByKeys(ctx, keys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load policy settings")
	}

	values := make(map[string]models.TypedValue, len(policyDefaults))
	for key, def := range policyDefaults {
		parsed, err := models.ParseTypedValue(def.Type, def.Value)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid policy default")
		}
		values[key] = parsed
	}
	for _, row := range rows {
		parsed, err := models.ParseTypedValue(row.Type, row.Value)
		if err != nil {
			s.logger.Warn("stored policy value violates its type, using default",
				zap.String("clave", row.Key), zap.Error(err))
			continue
		}
		values[row.Key] = parsed
	}

	policy := &Policy{
		MinNoticeDays:          values["dias_anticipacion_minimo"].Int(),
		MaxConsecutiveDays:     values["dias_maximos_consecutivos"].Int(),
		MinConsecutiveDays:     values["dias_minimos_consecutivos"].Int(),
		AllowWeekendStart:      values["permitir_inicio_fin_semana"].Bool(),
		AllowPastDates:         values["permitir_solicitudes_pasadas"].Bool(),
		AllowHolidays:          values["permitir_feriados"].Bool(),
		MaxPendingRequests:     values["max_solicitudes_pendientes"].Int(),
		AutoApproveMaxDays:     values["auto_aprobar_menos_dias"].Int(),
		RequireManagerApproval: values["requiere_aprobacion_jefe"].Bool(),
		RequireHRApproval:      values["requiere_aprobacion_rrhh"].Bool(),
	}

	var rawHolidays []string
	if js := values["feriados"].JSON(); len(js) > 0 {
		if err := json.Unmarshal(js, &rawHolidays); err != nil {
			s.logger.Warn("feriados is not a json array of dates, ignoring", zap.Error(err))
		}
	}
	for _, raw := range rawHolidays {
		day, err := models.ParseDate(raw)
		if err != nil {
			s.logger.Warn("skipping malformed holiday entry", zap.String("valor", raw))
			continue
		}
		policy.Holidays = append(policy.Holidays, day)
	}

	return policy, nil
}

// Create registers a new setting, validating the value under its type.
func (s *SettingService) Create(ctx context.Context, req dto.CreateSettingRequest, actor *models.JWTClaims) (*dto.SettingItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid setting payload")
	}

	settingType := models.SettingType(req.Tipo)
	if _, err := models.ParseTypedValue(settingType, req.Valor); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	editable := true
	if req.Editable != nil {
		editable = *req.Editable
	}
	setting := &models.Setting{
		Key:       req.Clave,
		Value:     req.Valor,
		Type:      settingType,
		Editable:  editable,
		Category:  req.Categoria,
		UpdatedBy: actorIDPtr(actor),
	}
	if err := s.repo.Create(ctx, setting); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "setting key already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create setting")
	}

	s.emitAudit(ctx, actor, setting.Key, "", setting.Value)
	item := toSettingItem(*setting)
	return &item, nil
}

// Update changes the value of an editable setting, validating it under the
// declared type before persisting.
func (s *SettingService) Update(ctx context.Context, key string, req dto.UpdateSettingRequest, actor *models.JWTClaims) (*dto.SettingItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid setting payload")
	}

	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get setting")
	}
	if !existing.Editable {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "setting is not editable")
	}

	value, err := models.ParseTypedValue(existing.Type, req.Valor)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	if err := s.repo.UpdateValue(ctx, key, value.Raw(), actorIDPtr(actor)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update setting")
	}

	s.emitAudit(ctx, actor, key, existing.Value, value.Raw())

	existing.Value = value.Raw()
	item := toSettingItem(*existing)
	return &item, nil
}

// BulkUpdate validates and applies several value updates in one transaction.
func (s *SettingService) BulkUpdate(ctx context.Context, req dto.BulkUpdateSettingsRequest, actor *models.JWTClaims) ([]dto.SettingItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}

	keys := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		keys = append(keys, item.Clave)
	}
	existing, err := s.repo.GetByKeys(ctx, keys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	byKey := make(map[string]models.Setting, len(existing))
	for _, row := range existing {
		byKey[row.Key] = row
	}

	updates := make(map[string]string, len(req.Items))
	result := make([]dto.SettingItem, 0, len(req.Items))
	for _, item := range req.Items {
		row, ok := byKey[item.Clave]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("setting %s not found", item.Clave))
		}
		if !row.Editable {
			return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("setting %s is not editable", item.Clave))
		}
		value, err := models.ParseTypedValue(row.Type, item.Valor)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: %v", item.Clave, err))
		}
		updates[item.Clave] = value.Raw()
		row.Value = value.Raw()
		result = append(result, toSettingItem(row))
	}

	if err := s.repo.BulkUpdateValues(ctx, updates, actorIDPtr(actor)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting disappeared during update")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk update settings")
	}

	for _, item := range req.Items {
		s.emitAudit(ctx, actor, item.Clave, byKey[item.Clave].Value, updates[item.Clave])
	}
	return result, nil
}

// Delete removes an editable setting.
func (s *SettingService) Delete(ctx context.Context, key string, actor *models.JWTClaims) error {
	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get setting")
	}
	if !existing.Editable {
		return appErrors.Clone(appErrors.ErrForbidden, "setting is not editable")
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete setting")
	}
	s.emitAudit(ctx, actor, key, existing.Value, "")
	return nil
}

func (s *SettingService) emitAudit(ctx context.Context, actor *models.JWTClaims, key, oldValue, newValue string) {
	if s.audit == nil {
		return
	}
	oldBytes, _ := json.Marshal(map[string]string{"clave": key, "valor": oldValue})
	newBytes, _ := json.Marshal(map[string]string{"clave": key, "valor": newValue})
	log := &models.AuditLog{
		UserID:     actorIDPtr(actor),
		Action:     models.AuditActionSettingUpdate,
		Resource:   "configuracion",
		ResourceID: &key,
		OldValues:  oldBytes,
		NewValues:  newBytes,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record setting audit", zap.Error(err))
	}
}

func toSettingItem(setting models.Setting) dto.SettingItem {
	return dto.SettingItem{
		Clave:     setting.Key,
		Valor:     setting.Value,
		Tipo:      string(setting.Type),
		Editable:  setting.Editable,
		Categoria: setting.Category,
	}
}

func actorIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	return &actor.UserID
}
