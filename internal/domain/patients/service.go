package patients

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrExternalIDConflict = errors.New("external id already exists")
)

type Service struct {
	repo  Repository
	now   func() time.Time
	randN func(n int) int
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		randN: rand.Intn,
	}
}

type CreateInput struct {
	Name        string
	Email       string
	Phone       string
	DateOfBirth *time.Time
	Notes       string

	// Opcional: si viene vacío se genera PAT-YYYY-MMDD-XXX.
	ExternalID string
}

func (s *Service) Create(ctx context.Context, doctorID string, in CreateInput) (Patient, error) {
	if strings.TrimSpace(doctorID) == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Patient{}, ErrInvalidInput
	}

	now := s.now()

	externalID := strings.TrimSpace(in.ExternalID)
	if externalID == "" {
		externalID = s.newExternalID(now, 3)
	}

	// Si el ID (propuesto o generado) ya existe, se regenera con más dígitos
	// de aleatoriedad en vez de fallar. Un segundo choque ya es conflicto real.
	if _, err := s.repo.GetByExternalID(ctx, externalID); err == nil {
		externalID = s.newExternalID(now, 4)
		if _, err := s.repo.GetByExternalID(ctx, externalID); err == nil {
			return Patient{}, ErrExternalIDConflict
		}
	}

	p := Patient{
		ID:          uuid.NewString(),
		DoctorID:    doctorID,
		ExternalID:  externalID,
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		DateOfBirth: in.DateOfBirth,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) newExternalID(now time.Time, digits int) string {
	limit := 1
	for i := 0; i < digits; i++ {
		limit *= 10
	}
	return fmt.Sprintf("PAT-%04d-%02d%02d-%0*d",
		now.Year(), int(now.Month()), now.Day(), digits, s.randN(limit))
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (Patient, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Patient{}, ErrInvalidInput
	}
	return s.repo.GetByExternalID(ctx, externalID)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID string) ([]Patient, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListAll(ctx context.Context) ([]Patient, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) CountByDoctor(ctx context.Context, doctorID string) (int, error) {
	return s.repo.CountByDoctor(ctx, doctorID)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name  *string
	Email *string
	Phone *string
	Notes *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Patient{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

// Delete elimina al paciente. El borrado en cascada de sus recetas lo
// orquesta el handler (primero recetas, después paciente).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
