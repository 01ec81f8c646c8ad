package repository

import (
	"github.com/afyalink/care-booking/backend/internal/domain"
)

const appointmentSelect = `
	SELECT
		id,
		reference::text,
		provider_id,
		patient_id,
		to_char(date, 'YYYY-MM-DD'),
		to_char(start_time, 'HH24:MI'),
		duration_minutes,
		status,
		notes,
		created_at,
		version
	FROM appointments
`

func scanAppointment(row interface{ Scan(...any) error }) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	dst := []any{&a.ID, &a.Reference, &a.ProviderID, &a.PatientID, &a.Date, &a.StartTime, &a.DurationMinutes, &a.Status, &a.Notes, &a.CreatedAt, &a.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repository) queryAppointments(query string, args ...any) ([]*domain.Appointment, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appointments, nil
}

// GetScheduledAppointmentsByDate returns what occupies the provider's slots on date.
func (r *Repository) GetScheduledAppointmentsByDate(providerID int64, date string) ([]*domain.Appointment, error) {
	query := appointmentSelect + ` WHERE provider_id = $1 AND date = $2::date AND status = 'scheduled' ORDER BY start_time`
	return r.queryAppointments(query, providerID, date)
}

func (r *Repository) GetAppointmentsByProvider(providerID int64) ([]*domain.Appointment, error) {
	query := appointmentSelect + ` WHERE provider_id = $1 ORDER BY date DESC, start_time DESC`
	return r.queryAppointments(query, providerID)
}

func (r *Repository) GetAppointmentsByPatient(patientID int64) ([]*domain.Appointment, error) {
	query := appointmentSelect + ` WHERE patient_id = $1 ORDER BY date DESC, start_time DESC`
	return r.queryAppointments(query, patientID)
}

func (r *Repository) GetAppointmentByID(id int64) (*domain.Appointment, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanAppointment(r.dbpool.QueryRowContext(ctx, appointmentSelect+` WHERE id = $1`, id))
}

// CreateAppointment inserts a scheduled appointment after re-checking, inside a transaction,
// that no unavailable session covers the slot. Double booking is rejected by the
// appointments_provider_slot_key index.
func (r *Repository) CreateAppointment(a *domain.Appointment) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM unavailable_sessions
			WHERE provider_id = $1
				AND date = $2::date
				AND start_time < $3::time + make_interval(mins => $4)
				AND end_time > $3::time
		)
	`
	blocked := false
	if err := tx.QueryRowContext(ctx, query, a.ProviderID, a.Date, a.StartTime, a.DurationMinutes).Scan(&blocked); err != nil {
		return err
	}
	if blocked {
		return ErrSlotBlocked
	}

	query = `
		INSERT INTO appointments (reference, provider_id, patient_id, date, start_time, duration_minutes, notes)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7)
		RETURNING id, status, created_at, version
	`
	args := []any{a.Reference, a.ProviderID, a.PatientID, a.Date, a.StartTime, a.DurationMinutes, a.Notes}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.Status, &a.CreatedAt, &a.Version); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelAppointment moves a scheduled appointment to cancelled. Anything else, including a
// stale version, surfaces as sql.ErrNoRows.
func (r *Repository) CancelAppointment(a *domain.Appointment) error {
	return r.closeAppointment(a, domain.AppointmentCancelled)
}

func (r *Repository) CompleteAppointment(a *domain.Appointment) error {
	return r.closeAppointment(a, domain.AppointmentCompleted)
}

// closeAppointment moves a scheduled appointment to status. sql.ErrNoRows means it changed
// since it was read.
func (r *Repository) closeAppointment(a *domain.Appointment, status domain.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $3, version = version + 1
		WHERE id = $1 AND version = $2 AND status = 'scheduled'
		RETURNING status, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, a.ID, a.Version, string(status)).Scan(&a.Status, &a.Version)
}
