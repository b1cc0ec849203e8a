package postgres

import (
	"context"
	"database/sql"

	"medical-calendar/internal/domain/prescriptions"
)

type PrescriptionsRepo struct {
	db *sql.DB
}

func NewPrescriptionsRepo(db *sql.DB) *PrescriptionsRepo {
	return &PrescriptionsRepo{db: db}
}

const prescriptionColumns = `id, doctor_id, patient_id, medication_name, dosage, type, frequency, duration, start_date, instructions, status, created_at`

// Create inserta la receta y sus dose events en una sola transacción.
// La columna seq conserva el orden de generación del calendario.
func (r *PrescriptionsRepo) Create(ctx context.Context, p prescriptions.Prescription, events []prescriptions.DoseEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO prescriptions (`+prescriptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.DoctorID,
		p.PatientID,
		p.MedicationName,
		p.Dosage,
		p.Type,
		p.Frequency,
		p.Duration,
		p.StartDate,
		p.Instructions,
		string(p.Status),
		p.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, e := range events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dose_events (id, prescription_id, seq, scheduled_at, taken, taken_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			e.ID,
			e.PrescriptionID,
			i,
			e.ScheduledAt,
			e.Taken,
			toNullTime(e.TakenAt),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PrescriptionsRepo) ListByPatient(ctx context.Context, patientID string) ([]prescriptions.PrescriptionWithEvents, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prescriptions.PrescriptionWithEvents, 0)
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(out)
		out = append(out, prescriptions.PrescriptionWithEvents{Prescription: p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	evRows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.prescription_id, e.scheduled_at, e.taken, e.taken_at
		FROM dose_events e
		JOIN prescriptions p ON p.id = e.prescription_id
		WHERE p.patient_id = $1
		ORDER BY e.seq
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer evRows.Close()

	for evRows.Next() {
		e, err := scanDoseEvent(evRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[e.PrescriptionID]; ok {
			out[i].Events = append(out[i].Events, e)
		}
	}
	return out, evRows.Err()
}

func (r *PrescriptionsRepo) GetEventByID(ctx context.Context, id string) (prescriptions.DoseEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, prescription_id, scheduled_at, taken, taken_at
		FROM dose_events
		WHERE id = $1
	`, id)
	return scanDoseEvent(row)
}

func (r *PrescriptionsRepo) UpdateEvent(ctx context.Context, e prescriptions.DoseEvent) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dose_events
		SET taken = $2, taken_at = $3
		WHERE id = $1
	`, e.ID, e.Taken, toNullTime(e.TakenAt))
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PrescriptionsRepo) StatsByPatient(ctx context.Context, patientID string) (prescriptions.PatientStats, error) {
	var stats prescriptions.PatientStats
	var last sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $2),
			MAX(created_at)
		FROM prescriptions
		WHERE patient_id = $1
	`, patientID, string(prescriptions.StatusActive)).Scan(&stats.ActiveCount, &last)
	if err != nil {
		return prescriptions.PatientStats{}, err
	}

	if last.Valid {
		t := last.Time
		stats.LastPrescribedAt = &t
	}
	return stats, nil
}

func (r *PrescriptionsRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM dose_events
		WHERE prescription_id IN (SELECT id FROM prescriptions WHERE patient_id = $1)
	`, patientID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM prescriptions WHERE patient_id = $1`, patientID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func scanPrescription(row rowScanner) (prescriptions.Prescription, error) {
	var p prescriptions.Prescription
	var status string

	if err := row.Scan(
		&p.ID,
		&p.DoctorID,
		&p.PatientID,
		&p.MedicationName,
		&p.Dosage,
		&p.Type,
		&p.Frequency,
		&p.Duration,
		&p.StartDate,
		&p.Instructions,
		&status,
		&p.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return prescriptions.Prescription{}, ErrNotFound
		}
		return prescriptions.Prescription{}, err
	}

	p.Status = prescriptions.Status(status)
	return p, nil
}

func scanDoseEvent(row rowScanner) (prescriptions.DoseEvent, error) {
	var e prescriptions.DoseEvent
	var takenAt sql.NullTime

	if err := row.Scan(
		&e.ID,
		&e.PrescriptionID,
		&e.ScheduledAt,
		&e.Taken,
		&takenAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return prescriptions.DoseEvent{}, ErrNotFound
		}
		return prescriptions.DoseEvent{}, err
	}

	if takenAt.Valid {
		t := takenAt.Time
		e.TakenAt = &t
	}
	return e, nil
}
