package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medical-calendar/internal/domain/prescriptions"
)

type prescriptionRepo struct {
	mu   sync.RWMutex
	byID map[string]prescriptions.Prescription

	// events por receta, en orden de generación (el orden importa: es el
	// orden de emisión del expansor de calendario)
	eventsByRx map[string][]prescriptions.DoseEvent
}

func NewPrescriptionRepo() prescriptions.Repository {
	return &prescriptionRepo{
		byID:       make(map[string]prescriptions.Prescription),
		eventsByRx: make(map[string][]prescriptions.DoseEvent),
	}
}

func (r *prescriptionRepo) Create(ctx context.Context, p prescriptions.Prescription, events []prescriptions.DoseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("prescription id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("prescription already exists")
	}

	r.byID[p.ID] = p
	r.eventsByRx[p.ID] = append([]prescriptions.DoseEvent(nil), events...)
	return nil
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, patientID string) ([]prescriptions.PrescriptionWithEvents, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prescriptions.PrescriptionWithEvents, 0)
	for _, p := range r.byID {
		if p.PatientID != patientID {
			continue
		}
		out = append(out, prescriptions.PrescriptionWithEvents{
			Prescription: p,
			Events:       append([]prescriptions.DoseEvent(nil), r.eventsByRx[p.ID]...),
		})
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *prescriptionRepo) GetEventByID(ctx context.Context, id string) (prescriptions.DoseEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, events := range r.eventsByRx {
		for _, ev := range events {
			if ev.ID == id {
				return ev, nil
			}
		}
	}
	return prescriptions.DoseEvent{}, ErrNotFound
}

func (r *prescriptionRepo) UpdateEvent(ctx context.Context, e prescriptions.DoseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events, ok := r.eventsByRx[e.PrescriptionID]
	if !ok {
		return ErrNotFound
	}
	for i, ev := range events {
		if ev.ID == e.ID {
			events[i] = e
			return nil
		}
	}
	return ErrNotFound
}

func (r *prescriptionRepo) StatsByPatient(ctx context.Context, patientID string) (prescriptions.PatientStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats prescriptions.PatientStats
	for _, p := range r.byID {
		if p.PatientID != patientID {
			continue
		}
		if p.Status == prescriptions.StatusActive {
			stats.ActiveCount++
		}
		if stats.LastPrescribedAt == nil || p.CreatedAt.After(*stats.LastPrescribedAt) {
			at := p.CreatedAt
			stats.LastPrescribedAt = &at
		}
	}
	return stats, nil
}

func (r *prescriptionRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.byID {
		if p.PatientID == patientID {
			delete(r.byID, id)
			delete(r.eventsByRx, id)
		}
	}
	return nil
}
