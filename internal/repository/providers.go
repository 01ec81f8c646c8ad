package repository

import (
	"encoding/json"
	"fmt"

	"github.com/afyalink/care-booking/backend/internal/domain"
)

const providerSelect = `
	SELECT
		p.id,
		p.user_id,
		p.kind,
		u.full_name,
		p.specialty,
		p.availability_schedule,
		p.appointment_duration_minutes,
		p.repeat_weekly,
		p.created_at,
		p.version
	FROM providers p
	JOIN users u ON u.id = p.user_id
`

func scanProvider(row interface{ Scan(...any) error }) (*domain.Provider, error) {
	p := &domain.Provider{}
	var schedule []byte

	dst := []any{
		&p.ID,
		&p.UserID,
		&p.Kind,
		&p.FullName,
		&p.Specialty,
		&schedule,
		&p.Settings.AppointmentDurationMinutes,
		&p.Settings.RepeatWeekly,
		&p.CreatedAt,
		&p.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(schedule, &p.Settings.Schedule); err != nil {
		return nil, fmt.Errorf("decode availability schedule of provider %d: %w", p.ID, err)
	}

	return p, nil
}

func (r *Repository) GetProviderByID(id int64) (*domain.Provider, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanProvider(r.dbpool.QueryRowContext(ctx, providerSelect+` WHERE p.id = $1`, id))
}

func (r *Repository) GetProviderByUserID(userID int64) (*domain.Provider, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanProvider(r.dbpool.QueryRowContext(ctx, providerSelect+` WHERE p.user_id = $1`, userID))
}

// GetProviders lists active providers, optionally restricted to one kind.
func (r *Repository) GetProviders(kind domain.ProviderKind) ([]*domain.Provider, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := providerSelect + ` WHERE u.is_active AND ($1 = '' OR p.kind = $1) ORDER BY p.id`

	rows, err := r.dbpool.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := make([]*domain.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return providers, nil
}

func (r *Repository) CreateProvider(p *domain.Provider) error {
	schedule, err := json.Marshal(p.Settings.Schedule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO providers (user_id, kind, specialty, availability_schedule, appointment_duration_minutes, repeat_weekly)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{p.UserID, p.Kind, p.Specialty, schedule, p.Settings.AppointmentDurationMinutes, p.Settings.RepeatWeekly}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.Version)
}

// UpdateAvailabilitySettings replaces the provider's settings and returns the new version.
func (r *Repository) UpdateAvailabilitySettings(providerID int64, settings domain.AvailabilitySettings) (int32, error) {
	schedule, err := json.Marshal(settings.Schedule)
	if err != nil {
		return 0, err
	}

	query := `
		UPDATE providers
		SET
			availability_schedule = $1,
			appointment_duration_minutes = $2,
			repeat_weekly = $3,
			version = version + 1
		WHERE id = $4
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var version int32
	args := []any{schedule, settings.AppointmentDurationMinutes, settings.RepeatWeekly, providerID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}
