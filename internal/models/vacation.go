package models

import "time"

// VacationState is the lifecycle state of a vacation request.
type VacationState string

const (
	StatePendienteJefe VacationState = "pendiente_jefe"
	StatePendienteRRHH VacationState = "pendiente_rrhh"
	StateAprobada      VacationState = "aprobada"
	StateRechazada     VacationState = "rechazada"
	StateCancelada     VacationState = "cancelada"

	// StatePendiente is accepted as a list-filter alias matching both
	// pending stages. It is never stored.
	StatePendiente VacationState = "pendiente"
)

// Valid reports whether the state is a storable lifecycle value.
func (s VacationState) Valid() bool {
	switch s {
	case StatePendienteJefe, StatePendienteRRHH, StateAprobada, StateRechazada, StateCancelada:
		return true
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s VacationState) Terminal() bool {
	switch s {
	case StateAprobada, StateRechazada, StateCancelada:
		return true
	}
	return false
}

// Pending reports whether the request still awaits a decision.
func (s VacationState) Pending() bool {
	return s == StatePendienteJefe || s == StatePendienteRRHH
}

// CanTransition reports whether the lifecycle permits moving from s to next.
// Terminal states admit nothing; pending states admit only decisions.
func (s VacationState) CanTransition(next VacationState) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	switch s {
	case StatePendienteJefe:
		return next == StatePendienteRRHH || next == StateAprobada || next == StateRechazada || next == StateCancelada
	case StatePendienteRRHH:
		return next == StateAprobada || next == StateRechazada || next == StateCancelada
	}
	return false
}

// VacationRequest represents a leave request in solicitudes_vacaciones.
type VacationRequest struct {
	ID               string        `db:"id" json:"id"`
	UserID           string        `db:"usuario_id" json:"usuario_id"`
	StartDate        Date          `db:"fecha_inicio" json:"fecha_inicio"`
	EndDate          Date          `db:"fecha_fin" json:"fecha_fin"`
	Days             int           `db:"dias_solicitados" json:"dias_solicitados"`
	Reason           string        `db:"motivo" json:"motivo"`
	State            VacationState `db:"estado" json:"estado"`
	ApproverID       *string       `db:"aprobador_id" json:"aprobador_id,omitempty"`
	ResponseAt       *time.Time    `db:"fecha_respuesta" json:"fecha_respuesta,omitempty"`
	ResponseComments *string       `db:"comentarios_respuesta" json:"comentarios_respuesta,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// VacationFilter captures list criteria for vacation requests.
type VacationFilter struct {
	UserID   string
	State    VacationState
	Page     int
	PageSize int
}
