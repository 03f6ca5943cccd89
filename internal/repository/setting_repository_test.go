package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentia-hr/vacaciones-api/internal/models"
)

func settingRows(settings ...models.Setting) *sqlmock.Rows {
	out := sqlmock.NewRows([]string{"clave", "valor", "tipo", "editable", "categoria", "updated_by", "updated_at"})
	for _, s := range settings {
		out.AddRow(s.Key, s.Value, s.Type, true, "politica_vacaciones", nil, time.Now().UTC())
	}
	return out
}

func settingRow(key, value string, settingType models.SettingType) models.Setting {
	return models.Setting{Key: key, Value: value, Type: settingType}
}

func TestSettingGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM configuraciones WHERE clave = \$1`).
		WithArgs("dias_anticipacion_minimo").
		WillReturnRows(settingRows(settingRow("dias_anticipacion_minimo", "7", models.SettingTypeNumber)))

	setting, err := repo.Get(context.Background(), "dias_anticipacion_minimo")
	require.NoError(t, err)
	assert.Equal(t, "7", setting.Value)
	assert.Equal(t, models.SettingTypeNumber, setting.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM configuraciones WHERE clave = \$1`).
		WithArgs("desconocida").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "desconocida")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSettingGetByKeys(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM configuraciones WHERE clave IN \(\$1,\$2\)`).
		WithArgs("a", "b").
		WillReturnRows(settingRows(
			settingRow("a", "1", models.SettingTypeNumber),
			settingRow("b", "true", models.SettingTypeBoolean),
		))

	settings, err := repo.GetByKeys(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, settings, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingUpdateValueMissingKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectExec(`UPDATE configuraciones SET valor`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateValue(context.Background(), "desconocida", "1", nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSettingBulkUpdateRollsBackOnMissingKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE configuraciones SET valor`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.BulkUpdateValues(context.Background(), map[string]string{"fantasma": "1"}, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingBulkUpdateCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE configuraciones SET valor`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.BulkUpdateValues(context.Background(), map[string]string{"dias_anticipacion_minimo": "10"}, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
