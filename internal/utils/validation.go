package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
)

var (
	ErrSessionInPast         = errors.New("cannot declare unavailability for a past date")
	ErrSessionTimeOrder      = errors.New("end time must be after start time")
	ErrSessionOverlap        = errors.New("overlaps an existing unavailable session")
	ErrSessionHasAppointment = errors.New("a scheduled appointment falls inside this window")
)

type clockRange struct {
	start, end int
}

func (r clockRange) overlaps(o clockRange) bool {
	return r.start < o.end && o.start < r.end
}

func parseRange(start, end string) (clockRange, error) {
	s, err := schedule.ParseClock(start)
	if err != nil {
		return clockRange{}, fmt.Errorf("start time: %w", err)
	}
	e, err := schedule.ParseClock(end)
	if err != nil {
		return clockRange{}, fmt.Errorf("end time: %w", err)
	}
	return clockRange{start: s, end: e}, nil
}

// ValidateUnavailableSession checks a new session against today's date, the provider's other
// sessions on the same date and their scheduled appointments on that date.
func ValidateUnavailableSession(session *domain.UnavailableSession, today time.Time, existing []*domain.UnavailableSession, appointments []*domain.Appointment) error {
	date, err := time.Parse("2006-01-02", session.Date)
	if err != nil {
		return fmt.Errorf("date must be formatted as YYYY-MM-DD: %q", session.Date)
	}
	todayDate, _ := time.Parse("2006-01-02", today.Format("2006-01-02"))
	if date.Before(todayDate) {
		return ErrSessionInPast
	}

	r, err := parseRange(session.StartTime, session.EndTime)
	if err != nil {
		return err
	}
	if r.end <= r.start {
		return ErrSessionTimeOrder
	}

	for _, other := range existing {
		if other.Date != session.Date || other.ID == session.ID && session.ID != 0 {
			continue
		}
		o, err := parseRange(other.StartTime, other.EndTime)
		if err != nil {
			continue
		}
		if r.overlaps(o) {
			return fmt.Errorf("%w (%s-%s)", ErrSessionOverlap, other.StartTime, other.EndTime)
		}
	}

	for _, a := range appointments {
		if a.Date != session.Date || a.Status != domain.AppointmentScheduled {
			continue
		}
		start, err := schedule.ParseClock(a.StartTime)
		if err != nil {
			continue
		}
		if r.overlaps(clockRange{start: start, end: start + a.DurationMinutes}) {
			return fmt.Errorf("%w (%s)", ErrSessionHasAppointment, a.StartTime)
		}
	}

	return nil
}
