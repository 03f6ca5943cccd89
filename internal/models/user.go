package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleEmpleado     UserRole = "empleado"
	RoleJefeSuperior UserRole = "jefe_superior"
	RoleRRHH         UserRole = "rrhh"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleEmpleado, RoleJefeSuperior, RoleRRHH:
		return true
	}
	return false
}

// User represents an application user stored in the usuarios table.
type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"nombre_completo" json:"nombre_completo"`
	Role          UserRole   `db:"rol" json:"rol"`
	AvailableDays int        `db:"dias_disponibles" json:"dias_disponibles"`
	TakenDays     int        `db:"dias_tomados" json:"dias_tomados"`
	ManagerID     *string    `db:"jefe_id" json:"jefe_id,omitempty"`
	Active        bool       `db:"activo" json:"activo"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
