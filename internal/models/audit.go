package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded across the API surface.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionCreateRequest  = "CREATE_VACATION_REQUEST"
	AuditActionResolveRequest = "RESOLVE_VACATION_REQUEST"
	AuditActionSettingUpdate  = "SETTING_UPDATE"
	AuditActionUserMutation   = "USER_MUTATION"
)

// AuditLog is an append-only record of a mutating action.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"usuario_id" json:"usuario_id,omitempty"`
	Action     string          `db:"accion" json:"accion"`
	Resource   string          `db:"recurso" json:"recurso"`
	ResourceID *string         `db:"recurso_id" json:"recurso_id,omitempty"`
	OldValues  json.RawMessage `db:"valores_anteriores" json:"valores_anteriores,omitempty"`
	NewValues  json.RawMessage `db:"valores_nuevos" json:"valores_nuevos,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
