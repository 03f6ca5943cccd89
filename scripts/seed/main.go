package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/pkg/config"
	"github.com/talentia-hr/vacaciones-api/pkg/database"
)

type settingSeed struct {
	Key      string
	Value    string
	Type     models.SettingType
	Category string
	Editable bool
}

// Policy keys the request pipeline reads. Inserted only when missing so
// reruns never clobber values HR has already tuned.
var settingSeeds = []settingSeed{
	{"dias_anticipacion_minimo", "7", models.SettingTypeNumber, "politicas", true},
	{"dias_maximos_consecutivos", "30", models.SettingTypeNumber, "politicas", true},
	{"dias_minimos_consecutivos", "1", models.SettingTypeNumber, "politicas", true},
	{"permitir_inicio_fin_semana", "false", models.SettingTypeBoolean, "politicas", true},
	{"permitir_solicitudes_pasadas", "false", models.SettingTypeBoolean, "politicas", true},
	{"permitir_feriados", "false", models.SettingTypeBoolean, "politicas", true},
	{"max_solicitudes_pendientes", "3", models.SettingTypeNumber, "politicas", true},
	{"auto_aprobar_menos_dias", "0", models.SettingTypeNumber, "politicas", true},
	{"requiere_aprobacion_jefe", "true", models.SettingTypeBoolean, "politicas", true},
	{"requiere_aprobacion_rrhh", "true", models.SettingTypeBoolean, "politicas", true},
	{"feriados", "[]", models.SettingTypeJSON, "politicas", true},
	{"dias_vacaciones_anuales", "22", models.SettingTypeNumber, "politicas", true},
}

func main() {
	var (
		adminEmail    string
		adminPassword string
		adminName     string
		adminDays     int
		timeout       time.Duration
	)

	flag.StringVar(&adminEmail, "admin-email", "rrhh@example.com", "Email for the bootstrap HR account")
	flag.StringVar(&adminPassword, "admin-password", "", "Password for the bootstrap HR account (required to create it)")
	flag.StringVar(&adminName, "admin-name", "Administrador RRHH", "Full name for the bootstrap HR account")
	flag.IntVar(&adminDays, "admin-days", 22, "Initial vacation day balance for the bootstrap HR account")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout for the seed run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	inserted, err := seedSettings(ctx, db)
	if err != nil {
		log.Fatalf("failed to seed settings: %v", err)
	}
	log.Printf("settings: %d inserted, %d already present", inserted, len(settingSeeds)-inserted)

	if adminPassword == "" {
		log.Println("no -admin-password given, skipping bootstrap HR account")
		return
	}

	created, err := seedAdmin(ctx, db, adminEmail, adminPassword, adminName, adminDays)
	if err != nil {
		log.Fatalf("failed to seed HR account: %v", err)
	}
	if created {
		log.Printf("HR account created: %s", adminEmail)
	} else {
		log.Printf("HR account already exists: %s", adminEmail)
	}
}

func seedSettings(ctx context.Context, db *sqlx.DB) (int, error) {
	const query = `INSERT INTO configuraciones (clave, valor, tipo, editable, categoria, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (clave) DO NOTHING`

	inserted := 0
	for _, s := range settingSeeds {
		if _, err := models.ParseTypedValue(s.Type, s.Value); err != nil {
			return inserted, fmt.Errorf("seed value for %s: %w", s.Key, err)
		}
		res, err := db.ExecContext(ctx, query, s.Key, s.Value, s.Type, s.Editable, s.Category)
		if err != nil {
			return inserted, fmt.Errorf("insert %s: %w", s.Key, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func seedAdmin(ctx context.Context, db *sqlx.DB, email, password, name string, days int) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	const query = `INSERT INTO usuarios
(id, email, password_hash, nombre_completo, rol, dias_disponibles, dias_tomados, activo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, TRUE, NOW(), NOW())
ON CONFLICT (email) DO NOTHING`

	res, err := db.ExecContext(ctx, query, uuid.NewString(), email, string(hash), name, models.RoleRRHH, days)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
