package dto

// CreateUserRequest registers a new user.
type CreateUserRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	NombreCompleto string  `json:"nombre_completo" validate:"required,max=200"`
	Rol            string  `json:"rol" validate:"required,oneof=empleado jefe_superior rrhh"`
	DiasDisponible int     `json:"dias_disponibles" validate:"gte=0"`
	JefeID         *string `json:"jefe_id"`
}

// UpdateUserRequest mutates an existing user. Nil fields are left untouched.
type UpdateUserRequest struct {
	Email          *string `json:"email" validate:"omitempty,email"`
	NombreCompleto *string `json:"nombre_completo" validate:"omitempty,max=200"`
	Rol            *string `json:"rol" validate:"omitempty,oneof=empleado jefe_superior rrhh"`
	DiasDisponible *int    `json:"dias_disponibles" validate:"omitempty,gte=0"`
	JefeID         *string `json:"jefe_id"`
	Activo         *bool   `json:"activo"`
}
