package patients

import "context"

type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	GetByExternalID(ctx context.Context, externalID string) (Patient, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]Patient, error)
	ListAll(ctx context.Context) ([]Patient, error)
	CountByDoctor(ctx context.Context, doctorID string) (int, error)
	Delete(ctx context.Context, id string) error
}
