package postgres

import (
	"context"
	"database/sql"

	"medical-calendar/internal/domain/doctors"
)

type DoctorsRepo struct {
	db *sql.DB
}

func NewDoctorsRepo(db *sql.DB) *DoctorsRepo {
	return &DoctorsRepo{db: db}
}

const doctorColumns = `id, staff_id, name, email, created_at, updated_at`

func (r *DoctorsRepo) Create(ctx context.Context, d doctors.Doctor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctors (`+doctorColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		d.ID,
		d.StaffID,
		d.Name,
		d.Email,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

func (r *DoctorsRepo) Update(ctx context.Context, d doctors.Doctor) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE doctors
		SET name = $2, email = $3, updated_at = $4
		WHERE id = $1
	`,
		d.ID,
		d.Name,
		d.Email,
		d.UpdatedAt,
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

func (r *DoctorsRepo) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *DoctorsRepo) GetByStaffID(ctx context.Context, staffID string) (doctors.Doctor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE staff_id = $1
	`, staffID)
	return scanDoctor(row)
}

func (r *DoctorsRepo) List(ctx context.Context) ([]doctors.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doctors.Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DoctorsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (doctors.Doctor, error) {
	var d doctors.Doctor
	if err := row.Scan(
		&d.ID,
		&d.StaffID,
		&d.Name,
		&d.Email,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return doctors.Doctor{}, ErrNotFound
		}
		return doctors.Doctor{}, err
	}
	return d, nil
}
