package patients

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
	byID map[string]Patient
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Patient{}}
}

func (r *testRepo) Create(ctx context.Context, p Patient) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Patient) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) GetByExternalID(ctx context.Context, externalID string) (Patient, error) {
	for _, p := range r.byID {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return Patient{}, errRepoNotFound
}

func (r *testRepo) ListByDoctor(ctx context.Context, doctorID string) ([]Patient, error) {
	out := make([]Patient, 0)
	for _, p := range r.byID {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Patient, error) {
	out := make([]Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) CountByDoctor(ctx context.Context, doctorID string) (int, error) {
	n := 0
	for _, p := range r.byID {
		if p.DoctorID == doctorID {
			n++
		}
	}
	return n, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_GeneratesExternalID(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC) }
	svc.randN = func(n int) int { return 42 }

	p, err := svc.Create(context.Background(), "doctor-1", CreateInput{Name: "Ana Pérez"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ExternalID != "PAT-2026-0310-042" {
		t.Fatalf("expected generated external ID PAT-2026-0310-042, got %s", p.ExternalID)
	}
	if p.DoctorID != "doctor-1" {
		t.Fatalf("expected doctor assigned, got %s", p.DoctorID)
	}
}

func TestService_Create_KeepsProvidedExternalID(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "doctor-1", CreateInput{
		Name:       "Ana Pérez",
		ExternalID: "PAT-2026-0101-999",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ExternalID != "PAT-2026-0101-999" {
		t.Fatalf("expected provided external ID kept, got %s", p.ExternalID)
	}
}

func TestService_Create_RegeneratesOnCollision(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Primer paciente ocupa PAT-2026-0310-042.
	svc.randN = func(n int) int { return 42 }
	if _, err := svc.Create(context.Background(), "doctor-1", CreateInput{Name: "Ana"}); err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}

	// El segundo choca con el mismo random de 3 dígitos; el reintento usa 4.
	calls := 0
	svc.randN = func(n int) int {
		calls++
		if calls == 1 {
			return 42
		}
		return 7
	}
	p2, err := svc.Create(context.Background(), "doctor-1", CreateInput{Name: "Beto"})
	if err != nil {
		t.Fatalf("Create #2 error: %v", err)
	}
	if p2.ExternalID != "PAT-2026-0310-0007" {
		t.Fatalf("expected regenerated 4-digit external ID, got %s", p2.ExternalID)
	}
}

func TestService_Create_ConflictAfterRetry(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Seed: ambos candidatos ya ocupados.
	_ = repo.Create(context.Background(), Patient{ID: "p1", DoctorID: "d1", ExternalID: "PAT-2026-0310-042", Name: "X"})
	_ = repo.Create(context.Background(), Patient{ID: "p2", DoctorID: "d1", ExternalID: "PAT-2026-0310-0042", Name: "Y"})

	svc.randN = func(n int) int { return 42 }
	_, err := svc.Create(context.Background(), "doctor-1", CreateInput{Name: "Ana"})
	if err != ErrExternalIDConflict {
		t.Fatalf("expected ErrExternalIDConflict, got %v", err)
	}
}

func TestService_Create_RequiresDoctorAndName(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), "", CreateInput{Name: "Ana"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput sin doctor, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "doctor-1", CreateInput{Name: "  "}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput sin nombre, got %v", err)
	}
}

func TestService_Create_NormalizesFields(t *testing.T) {
	svc := NewService(newTestRepo())

	p, err := svc.Create(context.Background(), "doctor-1", CreateInput{
		Name:  "  Ana Pérez  ",
		Email: " Ana@Example.COM ",
		Phone: " 555-0101 ",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.Name != "Ana Pérez" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.Email != "ana@example.com" {
		t.Fatalf("expected lower-cased email, got %q", p.Email)
	}
	if p.Phone != "555-0101" {
		t.Fatalf("expected trimmed phone, got %q", p.Phone)
	}
}

func TestService_Update_PatchSemantics(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "doctor-1", CreateInput{Name: "Ana", Phone: "555-0101"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	notes := "alérgica a penicilina"
	updated, err := svc.Update(context.Background(), p.ID, UpdateInput{Notes: &notes})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Notes != notes {
		t.Fatalf("expected notes updated, got %q", updated.Notes)
	}
	if updated.Phone != "555-0101" {
		t.Fatalf("expected phone untouched, got %q", updated.Phone)
	}
}
