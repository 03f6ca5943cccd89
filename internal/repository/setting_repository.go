package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/pkg/database"
)

const settingColumns = `clave, valor, tipo, editable, categoria, updated_by, updated_at`

// SettingRepository persists policy settings.
type SettingRepository struct {
	db    *sqlx.DB
	retry database.RetryPolicy
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db, retry: database.DefaultRetryPolicy}
}

// List returns settings, optionally scoped to a category.
func (r *SettingRepository) List(ctx context.Context, category string) ([]models.Setting, error) {
	query := fmt.Sprintf(`SELECT %s FROM configuraciones`, settingColumns)
	var args []interface{}
	if category != "" {
		query += ` WHERE categoria = $1`
		args = append(args, category)
	}
	query += ` ORDER BY clave ASC`

	var settings []models.Setting
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &settings, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Get fetches a single setting by key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query := fmt.Sprintf(`SELECT %s FROM configuraciones WHERE clave = $1`, settingColumns)
	var setting models.Setting
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &setting, query, key)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &setting, nil
}

// GetByKeys returns settings whose key is in the provided slice.
func (r *SettingRepository) GetByKeys(ctx context.Context, keys []string) ([]models.Setting, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM configuraciones WHERE clave IN (%s) ORDER BY clave ASC`,
		settingColumns, placeholders(len(keys)))
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	var settings []models.Setting
	err := database.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &settings, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("get settings by keys: %w", err)
	}
	return settings, nil
}

// Create inserts a new setting. Duplicate keys surface as ErrDuplicateKey.
func (r *SettingRepository) Create(ctx context.Context, setting *models.Setting) error {
	setting.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO configuraciones (clave, valor, tipo, editable, categoria, updated_by, updated_at)
VALUES (:clave, :valor, :tipo, :editable, :categoria, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create setting: %w", err)
	}
	return nil
}

// UpdateValue changes the stored value of an existing setting.
func (r *SettingRepository) UpdateValue(ctx context.Context, key, value string, updatedBy *string) error {
	const query = `UPDATE configuraciones SET valor = $2, updated_by = $3, updated_at = $4 WHERE clave = $1`
	result, err := r.db.ExecContext(ctx, query, key, value, updatedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update setting: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a setting by key.
func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM configuraciones WHERE clave = $1`, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkUpdateValues applies value updates within a single transaction.
func (r *SettingRepository) BulkUpdateValues(ctx context.Context, updates map[string]string, updatedBy *string) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk settings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	const query = `UPDATE configuraciones SET valor = $2, updated_by = $3, updated_at = $4 WHERE clave = $1`
	for key, value := range updates {
		result, err := tx.ExecContext(ctx, query, key, value, updatedBy, now)
		if err != nil {
			return fmt.Errorf("bulk update setting %s: %w", key, err)
		}
		if rows, err := result.RowsAffected(); err == nil && rows == 0 {
			return sql.ErrNoRows
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk settings tx: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	values := make([]string, n)
	for i := 1; i <= n; i++ {
		values[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(values, ",")
}
