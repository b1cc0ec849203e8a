package patients

import "time"

// Patient representa a un paciente asignado a un doctor.
//
// ExternalID es el identificador que el paciente usa desde el cliente móvil
// (formato PAT-YYYY-MMDD-XXX cuando lo genera el sistema); ID es la clave
// interna de persistencia.
type Patient struct {
	ID       string
	DoctorID string

	ExternalID string
	Name       string
	Email      string
	Phone      string

	DateOfBirth *time.Time
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}
