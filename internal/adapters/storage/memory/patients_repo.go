package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medical-calendar/internal/domain/patients"
)

type patientRepo struct {
	mu   sync.RWMutex
	byID map[string]patients.Patient
}

func NewPatientRepo() patients.Repository {
	return &patientRepo{
		byID: make(map[string]patients.Patient),
	}
}

func (r *patientRepo) Create(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("patient already exists")
	}
	for _, existing := range r.byID {
		if existing.ExternalID == p.ExternalID {
			return errors.New("external id already exists")
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *patientRepo) Update(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *patientRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return patients.Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *patientRepo) GetByExternalID(ctx context.Context, externalID string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return patients.Patient{}, ErrNotFound
}

func (r *patientRepo) ListByDoctor(ctx context.Context, doctorID string) ([]patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Patient, 0)
	for _, p := range r.byID {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *patientRepo) ListAll(ctx context.Context) ([]patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *patientRepo) CountByDoctor(ctx context.Context, doctorID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.byID {
		if p.DoctorID == doctorID {
			n++
		}
	}
	return n, nil
}

func (r *patientRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
