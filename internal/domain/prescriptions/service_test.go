package prescriptions

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID   map[string]Prescription
	events map[string][]DoseEvent // prescriptionID -> eventos en orden de generación
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:   map[string]Prescription{},
		events: map[string][]DoseEvent{},
	}
}

func (r *testRepo) Create(ctx context.Context, p Prescription, events []DoseEvent) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[p.ID] = p
	r.events[p.ID] = append([]DoseEvent(nil), events...)
	return nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]PrescriptionWithEvents, error) {
	out := make([]PrescriptionWithEvents, 0)
	for id, p := range r.byID {
		if p.PatientID != patientID {
			continue
		}
		out = append(out, PrescriptionWithEvents{
			Prescription: p,
			Events:       append([]DoseEvent(nil), r.events[id]...),
		})
	}
	return out, nil
}

func (r *testRepo) GetEventByID(ctx context.Context, id string) (DoseEvent, error) {
	for _, evs := range r.events {
		for _, ev := range evs {
			if ev.ID == id {
				return ev, nil
			}
		}
	}
	return DoseEvent{}, errRepoNotFound
}

func (r *testRepo) UpdateEvent(ctx context.Context, e DoseEvent) error {
	evs, ok := r.events[e.PrescriptionID]
	if !ok {
		return errRepoNotFound
	}
	for i, ev := range evs {
		if ev.ID == e.ID {
			evs[i] = e
			return nil
		}
	}
	return errRepoNotFound
}

func (r *testRepo) StatsByPatient(ctx context.Context, patientID string) (PatientStats, error) {
	var stats PatientStats
	for _, p := range r.byID {
		if p.PatientID != patientID {
			continue
		}
		if p.Status == StatusActive {
			stats.ActiveCount++
		}
		if stats.LastPrescribedAt == nil || p.CreatedAt.After(*stats.LastPrescribedAt) {
			created := p.CreatedAt
			stats.LastPrescribedAt = &created
		}
	}
	return stats, nil
}

func (r *testRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	for id, p := range r.byID {
		if p.PatientID == patientID {
			delete(r.byID, id)
			delete(r.events, id)
		}
	}
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_MaterializesSchedule(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	// 3 días x 2 tomas diarias = 6 dosis.
	p, count, err := svc.Create(context.Background(), "doctor-1", "patient-1", CreateInput{
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Frequency:      "Twice daily",
		Duration:       "3 days",
		StartDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 dose events, got %d", count)
	}
	if p.Status != StatusActive {
		t.Fatalf("expected status ACTIVE, got %s", p.Status)
	}
	if p.Type != "tablet" {
		t.Fatalf("expected type defaulted to tablet, got %s", p.Type)
	}

	evs := repo.events[p.ID]
	if len(evs) != 6 {
		t.Fatalf("expected 6 persisted events, got %d", len(evs))
	}
	first := evs[0]
	if first.ScheduledAt != time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) {
		t.Fatalf("expected first dose at 08:00 UTC, got %v", first.ScheduledAt)
	}
	if first.Taken || first.TakenAt != nil {
		t.Fatalf("expected dose events to start pending")
	}
}

func TestService_Create_UnparseableDuration_ZeroDoses(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, count, err := svc.Create(context.Background(), "doctor-1", "patient-1", CreateInput{
		MedicationName: "Ibuprofen",
		Dosage:         "200mg",
		Frequency:      "Once daily",
		Duration:       "until it gets better",
		StartDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 dose events for unparseable duration, got %d", count)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("expected prescription persisted even with 0 doses")
	}
}

func TestService_Create_ValidatesInput(t *testing.T) {
	svc := NewService(newTestRepo())
	base := CreateInput{
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Frequency:      "Once daily",
		Duration:       "7 days",
		StartDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"sin medicamento", func(in *CreateInput) { in.MedicationName = "" }},
		{"sin dosis", func(in *CreateInput) { in.Dosage = " " }},
		{"sin frecuencia", func(in *CreateInput) { in.Frequency = "" }},
		{"sin duración", func(in *CreateInput) { in.Duration = "" }},
		{"sin fecha", func(in *CreateInput) { in.StartDate = time.Time{} }},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		if _, _, err := svc.Create(context.Background(), "doctor-1", "patient-1", in); err != ErrInvalidInput {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	if _, _, err := svc.Create(context.Background(), "", "patient-1", base); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput sin doctor, got %v", err)
	}
	if _, _, err := svc.Create(context.Background(), "doctor-1", "", base); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput sin paciente, got %v", err)
	}
}

func TestService_SetEventTaken_Toggle(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, _, err := svc.Create(context.Background(), "doctor-1", "patient-1", CreateInput{
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Frequency:      "Once daily",
		Duration:       "1 day",
		StartDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	var eventID string
	for _, evs := range repo.events {
		eventID = evs[0].ID
	}

	takenAt := time.Date(2026, 3, 10, 8, 5, 0, 0, time.UTC)
	svc.now = func() time.Time { return takenAt }

	ev, err := svc.SetEventTaken(context.Background(), eventID, true)
	if err != nil {
		t.Fatalf("SetEventTaken error: %v", err)
	}
	if !ev.Taken {
		t.Fatalf("expected taken=true")
	}
	if ev.TakenAt == nil || !ev.TakenAt.Equal(takenAt) {
		t.Fatalf("expected TakenAt=%v, got %v", takenAt, ev.TakenAt)
	}

	// Desmarcar limpia el timestamp.
	ev, err = svc.SetEventTaken(context.Background(), eventID, false)
	if err != nil {
		t.Fatalf("SetEventTaken #2 error: %v", err)
	}
	if ev.Taken || ev.TakenAt != nil {
		t.Fatalf("expected taken cleared, got taken=%v takenAt=%v", ev.Taken, ev.TakenAt)
	}
}

func TestService_SetEventTaken_UnknownEvent(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.SetEventTaken(context.Background(), "nope", true); err != errRepoNotFound {
		t.Fatalf("expected repo not-found error, got %v", err)
	}
}

func TestService_Calendar_ProjectsPersistedEvents(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, count, err := svc.Create(context.Background(), "doctor-1", "patient-1", CreateInput{
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Frequency:      "Twice daily",
		Duration:       "2 days",
		StartDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Instructions:   "con comida",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 dose events, got %d", count)
	}

	cal, err := svc.Calendar(context.Background(), "patient-1")
	if err != nil {
		t.Fatalf("Calendar error: %v", err)
	}
	if len(cal) != 2 {
		t.Fatalf("expected 2 calendar days, got %d", len(cal))
	}

	day := cal["2026-03-10"]
	if len(day) != 2 {
		t.Fatalf("expected 2 entries on first day, got %d", len(day))
	}
	if day[0].Time != "08:00" || day[1].Time != "20:00" {
		t.Fatalf("expected 08:00 then 20:00, got %s %s", day[0].Time, day[1].Time)
	}
	if day[0].Name != "Amoxicillin" || day[0].Dosage != "500mg" {
		t.Fatalf("expected medication metadata on entries, got %+v", day[0])
	}
	if day[0].Instructions != "con comida" {
		t.Fatalf("expected instructions propagated, got %q", day[0].Instructions)
	}
}

func TestService_DeleteByPatient_RemovesEverything(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	for i := 0; i < 2; i++ {
		_, _, err := svc.Create(context.Background(), "doctor-1", "patient-1", CreateInput{
			MedicationName: "Amoxicillin",
			Dosage:         "500mg",
			Frequency:      "Once daily",
			Duration:       "2 days",
			StartDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	if err := svc.DeleteByPatient(context.Background(), "patient-1"); err != nil {
		t.Fatalf("DeleteByPatient error: %v", err)
	}
	if len(repo.byID) != 0 || len(repo.events) != 0 {
		t.Fatalf("expected everything deleted, got %d prescriptions %d event sets", len(repo.byID), len(repo.events))
	}

	stats, err := svc.StatsByPatient(context.Background(), "patient-1")
	if err != nil {
		t.Fatalf("StatsByPatient error: %v", err)
	}
	if stats.ActiveCount != 0 || stats.LastPrescribedAt != nil {
		t.Fatalf("expected empty stats after delete, got %+v", stats)
	}
}
