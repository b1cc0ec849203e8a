package doctors

import "context"

type Repository interface {
	Create(ctx context.Context, d Doctor) error
	Update(ctx context.Context, d Doctor) error
	GetByID(ctx context.Context, id string) (Doctor, error)
	GetByStaffID(ctx context.Context, staffID string) (Doctor, error)
	List(ctx context.Context) ([]Doctor, error)
	Delete(ctx context.Context, id string) error
}
