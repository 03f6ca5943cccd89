package dto

// StateCountRow is one row of the by-state summary report.
type StateCountRow struct {
	Estado string `db:"estado" json:"estado"`
	Total  int    `db:"total" json:"total"`
}

// UserSummaryRow aggregates vacation usage per user.
type UserSummaryRow struct {
	UsuarioID       string `db:"usuario_id" json:"usuario_id"`
	NombreCompleto  string `db:"nombre_completo" json:"nombre_completo"`
	Email           string `db:"email" json:"email"`
	Solicitudes     int    `db:"solicitudes" json:"solicitudes"`
	DiasAprobados   int    `db:"dias_aprobados" json:"dias_aprobados"`
	DiasDisponibles int    `db:"dias_disponibles" json:"dias_disponibles"`
}

// MonthlyRow aggregates requests per calendar month of a year.
type MonthlyRow struct {
	Mes         int `db:"mes" json:"mes"`
	Solicitudes int `db:"solicitudes" json:"solicitudes"`
	Dias        int `db:"dias" json:"dias"`
}
