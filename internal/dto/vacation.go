package dto

// CreateVacationRequest is the employee-facing creation payload.
type CreateVacationRequest struct {
	FechaInicio string `json:"fecha_inicio" validate:"required"`
	FechaFin    string `json:"fecha_fin" validate:"required"`
	Motivo      string `json:"motivo" validate:"max=500"`
}

// UpdateVacationStateRequest resolves or cancels a pending request.
type UpdateVacationStateRequest struct {
	Estado      string `json:"estado" validate:"required"`
	Comentarios string `json:"comentarios" validate:"max=500"`
}
