package doctors

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStaffIDTaken = errors.New("staff id already exists")
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

// UpsertByStaffID busca al doctor por su staff ID y lo crea si no existe.
// Si existe, refresca nombre/email con lo que trae la identidad autenticada.
// Es el mecanismo de auto-alta: un doctor válido nunca falla por "no registrado".
func (s *Service) UpsertByStaffID(ctx context.Context, staffID, name, email string) (Doctor, error) {
	staffID = strings.ToUpper(strings.TrimSpace(staffID))
	if staffID == "" {
		return Doctor{}, ErrInvalidInput
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = staffID
	}

	now := s.now()

	existing, err := s.repo.GetByStaffID(ctx, staffID)
	if err == nil {
		existing.Name = name
		if e := strings.TrimSpace(email); e != "" {
			existing.Email = e
		}
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Doctor{}, err
		}
		return existing, nil
	}

	d := Doctor{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return Doctor{}, err
	}
	return d, nil
}

type CreateInput struct {
	StaffID string
	Name    string
	Email   string
}

// Create es el alta explícita desde la consola admin.
func (s *Service) Create(ctx context.Context, in CreateInput) (Doctor, error) {
	staffID := strings.ToUpper(strings.TrimSpace(in.StaffID))
	if staffID == "" || strings.TrimSpace(in.Name) == "" {
		return Doctor{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByStaffID(ctx, staffID); err == nil {
		return Doctor{}, ErrStaffIDTaken
	}

	now := s.now()
	d := Doctor{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return Doctor{}, err
	}
	return d, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name  *string
	Email *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Doctor{}, ErrInvalidInput
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Doctor{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Doctor{}, ErrInvalidInput
		}
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		d.Email = strings.TrimSpace(*in.Email)
	}

	d.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, d); err != nil {
		return Doctor{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Doctor{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Doctor, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
