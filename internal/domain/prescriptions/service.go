package prescriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"medical-calendar/internal/domain/prescriptions/schedule"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	MedicationName string
	Dosage         string
	Type           string
	Frequency      string
	Duration       string
	StartDate      time.Time
	Instructions   string
}

// Create registra la receta y expande su calendario UNA sola vez: los dose
// events se materializan aquí y quedan persistidos; las lecturas posteriores
// (listado, calendario) nunca vuelven a generar.
//
// Una duración no parseable no es error: la receta se guarda con cero dosis
// (scheduleCount=0) y el caller decide qué hacer con eso.
func (s *Service) Create(ctx context.Context, doctorID, patientID string, in CreateInput) (Prescription, int, error) {
	if strings.TrimSpace(doctorID) == "" || strings.TrimSpace(patientID) == "" {
		return Prescription{}, 0, ErrInvalidInput
	}
	if strings.TrimSpace(in.MedicationName) == "" || strings.TrimSpace(in.Dosage) == "" {
		return Prescription{}, 0, ErrInvalidInput
	}
	if strings.TrimSpace(in.Frequency) == "" || strings.TrimSpace(in.Duration) == "" {
		return Prescription{}, 0, ErrInvalidInput
	}
	if in.StartDate.IsZero() {
		return Prescription{}, 0, ErrInvalidInput
	}

	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = "tablet"
	}

	p := Prescription{
		ID:             uuid.NewString(),
		DoctorID:       doctorID,
		PatientID:      patientID,
		MedicationName: strings.TrimSpace(in.MedicationName),
		Dosage:         strings.TrimSpace(in.Dosage),
		Type:           typ,
		Frequency:      strings.TrimSpace(in.Frequency),
		Duration:       strings.TrimSpace(in.Duration),
		StartDate:      in.StartDate.UTC(),
		Instructions:   strings.TrimSpace(in.Instructions),
		Status:         StatusActive,
		CreatedAt:      s.now(),
	}

	times := schedule.Generate(p.StartDate, p.Duration, p.Frequency)

	events := make([]DoseEvent, 0, len(times))
	for _, at := range times {
		events = append(events, DoseEvent{
			ID:             uuid.NewString(),
			PrescriptionID: p.ID,
			ScheduledAt:    at,
		})
	}

	if err := s.repo.Create(ctx, p, events); err != nil {
		return Prescription{}, 0, err
	}
	return p, len(events), nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]PrescriptionWithEvents, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Calendar proyecta los dose events persistidos del paciente en la vista por
// fecha. Lectura pura: no recalcula el calendario ni toca estado.
func (s *Service) Calendar(ctx context.Context, patientID string) (map[string][]schedule.CalendarEntry, error) {
	items, err := s.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	in := make([]schedule.PrescriptionSchedule, 0, len(items))
	for _, it := range items {
		events := make([]schedule.DoseEvent, 0, len(it.Events))
		for _, ev := range it.Events {
			events = append(events, schedule.DoseEvent{
				ID:          ev.ID,
				ScheduledAt: ev.ScheduledAt,
				Taken:       ev.Taken,
			})
		}
		in = append(in, schedule.PrescriptionSchedule{
			PrescriptionID: it.ID,
			Name:           it.MedicationName,
			Dosage:         it.Dosage,
			Type:           it.Type,
			Instructions:   it.Instructions,
			Events:         events,
		})
	}

	return schedule.BuildCalendar(in), nil
}

// SetEventTaken marca o desmarca una dosis como tomada. TakenAt se fija con
// el reloj inyectado al marcar, y se limpia al desmarcar.
func (s *Service) SetEventTaken(ctx context.Context, eventID string, taken bool) (DoseEvent, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return DoseEvent{}, ErrInvalidInput
	}

	ev, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return DoseEvent{}, err
	}

	ev.Taken = taken
	if taken {
		at := s.now()
		ev.TakenAt = &at
	} else {
		ev.TakenAt = nil
	}

	if err := s.repo.UpdateEvent(ctx, ev); err != nil {
		return DoseEvent{}, err
	}
	return ev, nil
}

func (s *Service) StatsByPatient(ctx context.Context, patientID string) (PatientStats, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return PatientStats{}, ErrInvalidInput
	}
	return s.repo.StatsByPatient(ctx, patientID)
}

func (s *Service) DeleteByPatient(ctx context.Context, patientID string) error {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return ErrInvalidInput
	}
	return s.repo.DeleteByPatient(ctx, patientID)
}
