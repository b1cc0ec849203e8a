package doctors

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
	byID map[string]Doctor
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Doctor{}}
}

func (r *testRepo) Create(ctx context.Context, d Doctor) error {
	if d.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[d.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) Update(ctx context.Context, d Doctor) error {
	if _, ok := r.byID[d.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Doctor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Doctor{}, errRepoNotFound
	}
	return d, nil
}

func (r *testRepo) GetByStaffID(ctx context.Context, staffID string) (Doctor, error) {
	for _, d := range r.byID {
		if d.StaffID == staffID {
			return d, nil
		}
	}
	return Doctor{}, errRepoNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Doctor, error) {
	out := make([]Doctor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	return out, nil
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

func TestService_UpsertByStaffID_CreatesOnFirstSeen(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	d, err := svc.UpsertByStaffID(context.Background(), "doc-001", "Dr. Smith", "smith@clinic.test")
	if err != nil {
		t.Fatalf("UpsertByStaffID returned error: %v", err)
	}
	if d.StaffID != "DOC-001" {
		t.Fatalf("expected staff ID normalized to upper case, got %s", d.StaffID)
	}
	if d.CreatedAt != now || d.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 doctor stored, got %d", len(repo.byID))
	}
}

func TestService_UpsertByStaffID_RefreshesExisting(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)

	svc.now = func() time.Time { return now1 }
	d1, err := svc.UpsertByStaffID(context.Background(), "DOC-001", "Dr. Smith", "")
	if err != nil {
		t.Fatalf("Upsert #1 error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	d2, err := svc.UpsertByStaffID(context.Background(), "doc-001", "Dr. Jane Smith", "jane@clinic.test")
	if err != nil {
		t.Fatalf("Upsert #2 error: %v", err)
	}

	if d2.ID != d1.ID {
		t.Fatalf("expected same doctor ID on upsert, got %s vs %s", d1.ID, d2.ID)
	}
	if d2.Name != "Dr. Jane Smith" || d2.Email != "jane@clinic.test" {
		t.Fatalf("expected refreshed name/email, got %q %q", d2.Name, d2.Email)
	}
	if d2.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on upsert")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected no duplicate, got %d doctors", len(repo.byID))
	}
}

func TestService_UpsertByStaffID_DefaultsNameToStaffID(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	d, err := svc.UpsertByStaffID(context.Background(), "doc-777", "", "")
	if err != nil {
		t.Fatalf("UpsertByStaffID error: %v", err)
	}
	if d.Name != "DOC-777" {
		t.Fatalf("expected name defaulted to staff ID, got %q", d.Name)
	}
}

func TestService_Create_RejectsDuplicateStaffID(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{StaffID: "DOC-001", Name: "Dr. A"})
	if err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{StaffID: "doc-001", Name: "Dr. B"})
	if err != ErrStaffIDTaken {
		t.Fatalf("expected ErrStaffIDTaken, got %v", err)
	}
}

func TestService_Create_RequiresStaffIDAndName(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Dr. A"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput sin staff ID, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{StaffID: "DOC-1"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput sin nombre, got %v", err)
	}
}

func TestService_Update_PatchSemantics(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	d, err := svc.Create(context.Background(), CreateInput{StaffID: "DOC-001", Name: "Dr. A", Email: "a@clinic.test"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Solo nombre: el email no se toca.
	name := "Dr. A. Renamed"
	updated, err := svc.Update(context.Background(), d.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name updated, got %q", updated.Name)
	}
	if updated.Email != "a@clinic.test" {
		t.Fatalf("expected email untouched, got %q", updated.Email)
	}

	// Nombre vacío explícito se rechaza.
	empty := "   "
	if _, err := svc.Update(context.Background(), d.ID, UpdateInput{Name: &empty}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}
