package schedule

import (
	"fmt"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
)

// Placeholder span persisted for days without availability. It is ignored on read.
const (
	placeholderStart = "09:00"
	placeholderEnd   = "17:00"
)

// ToAvailabilitySchedule collapses every available day to the span between its earliest
// start and latest end.
func ToAvailabilitySchedule(w domain.WeeklySchedule) (domain.AvailabilitySchedule, error) {
	var out domain.AvailabilitySchedule

	for _, d := range domain.Weekdays {
		day := w.Day(d)
		target := out.Day(d)

		if !day.Available || len(day.Times) == 0 {
			*target = domain.DayAvailability{Available: false, StartTime: placeholderStart, EndTime: placeholderEnd}
			continue
		}

		earliest, latest := "", ""
		for i, window := range day.Times {
			start, err := To24Hour(window.Start)
			if err != nil {
				return out, fmt.Errorf("%s window %d: %w", domain.DayKey(d), i, err)
			}
			end, err := To24Hour(window.End)
			if err != nil {
				return out, fmt.Errorf("%s window %d: %w", domain.DayKey(d), i, err)
			}
			// zero-padded HH:MM compares correctly as a string
			if earliest == "" || start < earliest {
				earliest = start
			}
			if latest == "" || end > latest {
				latest = end
			}
		}

		*target = domain.DayAvailability{Available: true, StartTime: earliest, EndTime: latest}
	}

	return out, nil
}

// ToWeeklySchedule expands the persisted form back into an editable week with one window per
// available day.
func ToWeeklySchedule(a domain.AvailabilitySchedule) (domain.WeeklySchedule, error) {
	var out domain.WeeklySchedule

	for _, d := range domain.Weekdays {
		day := a.Day(d)
		target := out.Day(d)

		if !day.Available {
			*target = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}
			continue
		}

		start, err := To12Hour(day.StartTime)
		if err != nil {
			return out, fmt.Errorf("%s start: %w", domain.DayKey(d), err)
		}
		end, err := To12Hour(day.EndTime)
		if err != nil {
			return out, fmt.Errorf("%s end: %w", domain.DayKey(d), err)
		}

		*target = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: start, End: end}}}
	}

	return out, nil
}

// DefaultWeeklySchedule is what a provider sees before saving anything: Mon-Fri 9am to 5pm.
func DefaultWeeklySchedule() domain.WeeklySchedule {
	var w domain.WeeklySchedule
	for _, d := range domain.Weekdays {
		if d == time.Saturday || d == time.Sunday {
			*w.Day(d) = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}
			continue
		}
		*w.Day(d) = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: "9:00am", End: "5:00pm"}}}
	}
	return w
}

func DefaultAvailabilitySettings() domain.AvailabilitySettings {
	// the default week always converts
	sched, _ := ToAvailabilitySchedule(DefaultWeeklySchedule())
	return domain.AvailabilitySettings{
		Schedule:                   sched,
		AppointmentDurationMinutes: DefaultDurationMinutes,
		RepeatWeekly:               true,
	}
}
