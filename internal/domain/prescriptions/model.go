package prescriptions

import "time"

// Status del tratamiento.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// Prescription es una receta emitida por un doctor para un paciente.
// Inmutable después de creada; solo desaparece en cascada con su paciente.
type Prescription struct {
	ID        string
	DoctorID  string
	PatientID string

	MedicationName string
	Dosage         string
	Type           string // tablet, capsule, liquid, injection, topical, inhaler (texto libre)
	Frequency      string // texto libre, se resuelve contra la tabla de frecuencias
	Duration       string // texto libre, ej. "30 days"
	StartDate      time.Time
	Instructions   string

	Status    Status
	CreatedAt time.Time
}

// DoseEvent es una dosis concreta del calendario, generada en bloque al crear
// la receta. Solo muta su flag taken.
type DoseEvent struct {
	ID             string
	PrescriptionID string

	ScheduledAt time.Time
	Taken       bool
	TakenAt     *time.Time
}

// PrescriptionWithEvents empaqueta una receta con sus dosis materializadas,
// tal como las consume el agregador de calendario.
type PrescriptionWithEvents struct {
	Prescription
	Events []DoseEvent
}

// PatientStats resume la actividad de recetas de un paciente, para el
// listado de pacientes del doctor.
type PatientStats struct {
	ActiveCount      int
	LastPrescribedAt *time.Time
}
