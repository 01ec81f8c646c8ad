package repository

import (
	"github.com/afyalink/care-booking/backend/internal/domain"
)

const unavailableSessionSelect = `
	SELECT
		id,
		provider_id,
		to_char(date, 'YYYY-MM-DD'),
		to_char(start_time, 'HH24:MI'),
		to_char(end_time, 'HH24:MI'),
		reason,
		created_at
	FROM unavailable_sessions
`

func (r *Repository) queryUnavailableSessions(query string, args ...any) ([]*domain.UnavailableSession, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*domain.UnavailableSession, 0)
	for rows.Next() {
		s := &domain.UnavailableSession{}
		dst := []any{&s.ID, &s.ProviderID, &s.Date, &s.StartTime, &s.EndTime, &s.Reason, &s.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetUnavailableSessions returns the provider's sessions on or after fromDate.
func (r *Repository) GetUnavailableSessions(providerID int64, fromDate string) ([]*domain.UnavailableSession, error) {
	query := unavailableSessionSelect + ` WHERE provider_id = $1 AND date >= $2::date ORDER BY date, start_time`
	return r.queryUnavailableSessions(query, providerID, fromDate)
}

func (r *Repository) GetUnavailableSessionsByDate(providerID int64, date string) ([]*domain.UnavailableSession, error) {
	query := unavailableSessionSelect + ` WHERE provider_id = $1 AND date = $2::date ORDER BY start_time`
	return r.queryUnavailableSessions(query, providerID, date)
}

func (r *Repository) CreateUnavailableSession(s *domain.UnavailableSession) error {
	query := `
		INSERT INTO unavailable_sessions (provider_id, date, start_time, end_time, reason)
		VALUES ($1, $2::date, $3::time, $4::time, $5)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{s.ProviderID, s.Date, s.StartTime, s.EndTime, s.Reason}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt)
}

// DeleteUnavailableSession removes a session owned by providerID and returns its date.
// A session owned by someone else surfaces as sql.ErrNoRows.
func (r *Repository) DeleteUnavailableSession(providerID, id int64) (string, error) {
	query := `
		DELETE FROM unavailable_sessions
		WHERE id = $1 AND provider_id = $2
		RETURNING to_char(date, 'YYYY-MM-DD')
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var date string
	if err := r.dbpool.QueryRowContext(ctx, query, id, providerID).Scan(&date); err != nil {
		return "", err
	}

	return date, nil
}
