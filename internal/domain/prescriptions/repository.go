package prescriptions

import "context"

type Repository interface {
	// Create persiste la receta y sus dose events como una sola operación.
	Create(ctx context.Context, p Prescription, events []DoseEvent) error

	// ListByPatient devuelve las recetas del paciente (más reciente primero)
	// con sus dose events en orden de generación.
	ListByPatient(ctx context.Context, patientID string) ([]PrescriptionWithEvents, error)

	GetEventByID(ctx context.Context, id string) (DoseEvent, error)
	UpdateEvent(ctx context.Context, e DoseEvent) error

	StatsByPatient(ctx context.Context, patientID string) (PatientStats, error)

	// DeleteByPatient borra recetas y dose events del paciente (cascada).
	DeleteByPatient(ctx context.Context, patientID string) error
}
