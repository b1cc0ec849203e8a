package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medical-calendar/internal/domain/doctors"
)

type doctorRepo struct {
	mu   sync.RWMutex
	byID map[string]doctors.Doctor
}

func NewDoctorRepo() doctors.Repository {
	return &doctorRepo{
		byID: make(map[string]doctors.Doctor),
	}
}

func (r *doctorRepo) Create(ctx context.Context, d doctors.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("doctor id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("doctor already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *doctorRepo) Update(ctx context.Context, d doctors.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; !exists {
		return ErrNotFound
	}
	r.byID[d.ID] = d
	return nil
}

func (r *doctorRepo) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return doctors.Doctor{}, ErrNotFound
	}
	return d, nil
}

func (r *doctorRepo) GetByStaffID(ctx context.Context, staffID string) (doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.byID {
		if d.StaffID == staffID {
			return d, nil
		}
	}
	return doctors.Doctor{}, ErrNotFound
}

func (r *doctorRepo) List(ctx context.Context) ([]doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doctors.Doctor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}

	// Más reciente primero, como los muestra la consola admin
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *doctorRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
