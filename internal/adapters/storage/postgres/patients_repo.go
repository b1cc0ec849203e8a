package postgres

import (
	"context"
	"database/sql"
	"time"

	"medical-calendar/internal/domain/patients"
)

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

const patientColumns = `id, doctor_id, external_id, name, email, phone, date_of_birth, notes, created_at, updated_at`

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (`+patientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.DoctorID,
		p.ExternalID,
		p.Name,
		p.Email,
		p.Phone,
		toNullTime(p.DateOfBirth),
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET name = $2, email = $3, phone = $4, date_of_birth = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Email,
		p.Phone,
		toNullTime(p.DateOfBirth),
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PatientsRepo) GetByExternalID(ctx context.Context, externalID string) (patients.Patient, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE external_id = $1
	`, externalID)
	return scanPatient(row)
}

func (r *PatientsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]patients.Patient, error) {
	return r.list(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE doctor_id = $1
		ORDER BY created_at DESC
	`, doctorID)
}

func (r *PatientsRepo) ListAll(ctx context.Context) ([]patients.Patient, error) {
	return r.list(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY created_at DESC
	`)
}

func (r *PatientsRepo) list(ctx context.Context, query string, args ...any) ([]patients.Patient, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PatientsRepo) CountByDoctor(ctx context.Context, doctorID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM patients WHERE doctor_id = $1
	`, doctorID).Scan(&n)
	return n, err
}

func (r *PatientsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row rowScanner) (patients.Patient, error) {
	var p patients.Patient
	var dob sql.NullTime

	if err := row.Scan(
		&p.ID,
		&p.DoctorID,
		&p.ExternalID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&dob,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return patients.Patient{}, ErrNotFound
		}
		return patients.Patient{}, err
	}

	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	return p, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
