package slots

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Interval is a half-open range [Start, End) in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// ParseInterval builds an interval from two "HH:MM" values.
func ParseInterval(start, end string) (Interval, error) {
	s, err := schedule.ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := schedule.ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// ParseDate reads a civil date. The weekday is taken from the calendar date itself, without
// any timezone shift.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// DayFor picks the availability of the weekday date falls on.
func DayFor(settings domain.AvailabilitySettings, date string) (domain.DayAvailability, error) {
	t, err := ParseDate(date)
	if err != nil {
		return domain.DayAvailability{}, err
	}
	return *settings.Schedule.Day(t.Weekday()), nil
}

// Candidates lists the start minute of every slot of durationMinutes that fits in the day's
// span. Unavailable days have no candidates.
func Candidates(day domain.DayAvailability, durationMinutes int) ([]int, error) {
	if !day.Available {
		return []int{}, nil
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d minutes", schedule.ErrInvalidDuration, durationMinutes)
	}

	span, err := ParseInterval(day.StartTime, day.EndTime)
	if err != nil {
		return nil, err
	}
	if span.End <= span.Start {
		return nil, fmt.Errorf("%w: %s-%s", schedule.ErrInvalidWindow, day.StartTime, day.EndTime)
	}

	out := make([]int, 0, (span.End-span.Start)/durationMinutes+1)
	for start := span.Start; start+durationMinutes <= span.End; start += durationMinutes {
		out = append(out, start)
	}
	return out, nil
}

// Input is everything Classify needs for one provider and one date.
type Input struct {
	Day             domain.DayAvailability
	DurationMinutes int
	// Booked holds scheduled appointments.
	Booked []Interval
	// Blocked holds unavailability sessions declared by the provider.
	Blocked []Interval
	// Slots starting before NotBefore are unavailable. Zero disables the check.
	NotBefore int
}

// Classify generates the candidate slots and sorts each into exactly one class. A slot
// overlapping an appointment is booked even when it is also blocked.
func Classify(in Input) (domain.AvailableTimeSlots, error) {
	res := domain.AvailableTimeSlots{
		Slots:                      []domain.TimeSlot{},
		AvailableSlots:             []string{},
		OccupiedSlots:              []string{},
		UnavailableSlots:           []string{},
		AppointmentDurationMinutes: in.DurationMinutes,
	}

	candidates, err := Candidates(in.Day, in.DurationMinutes)
	if err != nil {
		return res, err
	}

	for _, start := range candidates {
		slot := Interval{Start: start, End: start + in.DurationMinutes}
		display := schedule.FormatDisplay(start)

		switch {
		case overlapsAny(slot, in.Booked):
			res.OccupiedSlots = append(res.OccupiedSlots, display)
		case overlapsAny(slot, in.Blocked), start < in.NotBefore:
			res.UnavailableSlots = append(res.UnavailableSlots, display)
		default:
			res.AvailableSlots = append(res.AvailableSlots, display)
		}
	}

	res.Slots = Merge(res.AvailableSlots, res.OccupiedSlots, res.UnavailableSlots)
	return res, nil
}

func overlapsAny(slot Interval, others []Interval) bool {
	for _, o := range others {
		if slot.overlaps(o) {
			return true
		}
	}
	return false
}

// Merge joins the three classes into one list sorted by time of day. Times are compared by
// clock value, so "9:00 AM" and "9:00am" are one slot, reported in the "9:00am" form. A time
// listed in more than one class keeps the first of booked, unavailable, available.
func Merge(available, occupied, unavailable []string) []domain.TimeSlot {
	seen := make(map[string]bool, len(available)+len(occupied)+len(unavailable))
	out := make([]domain.TimeSlot, 0, len(available)+len(occupied)+len(unavailable))

	add := func(times []string, status domain.SlotStatus) {
		for _, t := range times {
			key, display := t, t
			if h24, err := schedule.To24Hour(t); err == nil {
				key = h24
				display, _ = schedule.To12Hour(h24)
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, domain.TimeSlot{
				Time:      display,
				Available: status == domain.SlotAvailable,
				Status:    status,
			})
		}
	}
	add(occupied, domain.SlotBooked)
	add(unavailable, domain.SlotUnavailable)
	add(available, domain.SlotAvailable)

	sort.SliceStable(out, func(i, j int) bool {
		return schedule.DisplayKey(out[i].Time) < schedule.DisplayKey(out[j].Time)
	})
	return out
}

// Find returns the slot with the given display time.
func Find(slots []domain.TimeSlot, display string) (domain.TimeSlot, bool) {
	key := schedule.DisplayKey(display)
	for _, s := range slots {
		if schedule.DisplayKey(s.Time) == key {
			return s, true
		}
	}
	return domain.TimeSlot{}, false
}
