package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
)

var (
	ErrIndexOutOfRange = errors.New("time window index out of range")
	ErrInvalidWindow   = errors.New("time window must start before it ends")
	ErrInvalidDay      = errors.New("day marked available without any time window")
	ErrSaveInProgress  = errors.New("a save is already in progress")
)

type WindowField string

const (
	FieldStart WindowField = "start"
	FieldEnd   WindowField = "end"
)

// Window used by AddTimeSlot.
var defaultAddedWindow = domain.TimeWindow{Start: "9:00am", End: "5:00pm"}

// Window assigned when a day is switched on.
var defaultDayWindows = map[time.Weekday]domain.TimeWindow{
	time.Sunday:    {Start: "10:00am", End: "4:00pm"},
	time.Monday:    {Start: "8:00am", End: "6:00pm"},
	time.Tuesday:   {Start: "8:00am", End: "6:00pm"},
	time.Wednesday: {Start: "8:00am", End: "6:00pm"},
	time.Thursday:  {Start: "8:00am", End: "6:00pm"},
	time.Friday:    {Start: "8:00am", End: "5:00pm"},
	time.Saturday:  {Start: "9:00am", End: "3:00pm"},
}

// DefaultDayWindow returns the window a day gets when it is toggled on.
func DefaultDayWindow(d time.Weekday) domain.TimeWindow {
	return defaultDayWindows[d]
}

// SaveFunc persists a converted schedule. It is called at most once per successful Save.
type SaveFunc func(ctx context.Context, schedule domain.AvailabilitySchedule, durationMinutes int, repeatWeekly bool) error

// Editor holds a provider's weekly schedule while it is being edited.
//
// Mutating methods are not safe for concurrent use. Save may be called concurrently: only one
// call runs at a time and the others fail with ErrSaveInProgress.
type Editor struct {
	schedule        domain.WeeklySchedule
	durationMinutes int
	repeatWeekly    bool
	saving          atomic.Bool
}

// NewEditor starts from current, or from DefaultWeeklySchedule when current is nil.
func NewEditor(current *domain.WeeklySchedule, durationMinutes int, repeatWeekly bool) *Editor {
	e := &Editor{
		schedule:        DefaultWeeklySchedule(),
		durationMinutes: durationMinutes,
		repeatWeekly:    repeatWeekly,
	}
	if current != nil {
		e.schedule = cloneWeek(*current)
		e.normalize()
	}
	if e.durationMinutes == 0 {
		e.durationMinutes = DefaultDurationMinutes
	}
	return e
}

// NewEditorFromSettings loads persisted settings into an editor.
func NewEditorFromSettings(settings domain.AvailabilitySettings) (*Editor, error) {
	week, err := ToWeeklySchedule(settings.Schedule)
	if err != nil {
		return nil, err
	}
	return NewEditor(&week, settings.AppointmentDurationMinutes, settings.RepeatWeekly), nil
}

// Schedule returns a copy of the schedule being edited.
func (e *Editor) Schedule() domain.WeeklySchedule {
	return cloneWeek(e.schedule)
}

func (e *Editor) DurationMinutes() int {
	return e.durationMinutes
}

func (e *Editor) RepeatWeekly() bool {
	return e.repeatWeekly
}

func (e *Editor) SetRepeatWeekly(repeat bool) {
	e.repeatWeekly = repeat
}

func (e *Editor) ToggleDayAvailability(day time.Weekday) {
	d := e.schedule.Day(day)
	if d.Available {
		*d = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}
		return
	}
	*d = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{DefaultDayWindow(day)}}
}

// AddTimeSlot appends a 9:00am-5:00pm window. Adding to an unavailable day makes it available.
func (e *Editor) AddTimeSlot(day time.Weekday) {
	d := e.schedule.Day(day)
	d.Times = append(d.Times, defaultAddedWindow)
	d.Available = true
}

// RemoveTimeSlot drops the window at index. A day left without windows becomes unavailable.
func (e *Editor) RemoveTimeSlot(day time.Weekday, index int) error {
	d := e.schedule.Day(day)
	if index < 0 || index >= len(d.Times) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, domain.DayKey(day), index)
	}

	times := make([]domain.TimeWindow, 0, len(d.Times)-1)
	times = append(times, d.Times[:index]...)
	times = append(times, d.Times[index+1:]...)

	if len(times) == 0 {
		*d = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}
		return nil
	}
	d.Times = times
	return nil
}

// UpdateTime sets one end of a window. The value must be a 12-hour display time; ordering is
// checked on Save so that both ends can be edited one after the other.
func (e *Editor) UpdateTime(day time.Weekday, index int, field WindowField, value string) error {
	d := e.schedule.Day(day)
	if index < 0 || index >= len(d.Times) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, domain.DayKey(day), index)
	}

	h24, err := To24Hour(value)
	if err != nil {
		return err
	}
	display, _ := To12Hour(h24)

	switch field {
	case FieldStart:
		d.Times[index].Start = display
	case FieldEnd:
		d.Times[index].End = display
	default:
		return fmt.Errorf("unknown window field %q", field)
	}
	return nil
}

// SetAppointmentDuration accepts a preset or a custom value in minutes or hours. Out of range
// values leave the current duration untouched.
func (e *Editor) SetAppointmentDuration(value float64, unit DurationUnit) error {
	minutes, err := DurationMinutes(value, unit)
	if err != nil {
		return err
	}
	e.durationMinutes = minutes
	return nil
}

// Validate checks everything Save checks, without saving.
func (e *Editor) Validate() error {
	if err := ValidateDuration(e.durationMinutes); err != nil {
		return err
	}
	return ValidateWeeklySchedule(e.schedule)
}

// Save validates the editor state, converts it and hands it to onSave. Edits are kept when
// onSave fails so the caller can retry.
func (e *Editor) Save(ctx context.Context, onSave SaveFunc) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer e.saving.Store(false)

	if err := e.Validate(); err != nil {
		return err
	}

	converted, err := ToAvailabilitySchedule(e.schedule)
	if err != nil {
		return err
	}

	return onSave(ctx, converted, e.durationMinutes, e.repeatWeekly)
}

// ValidateWeeklySchedule checks the per-day invariant and that every window starts before it ends.
func ValidateWeeklySchedule(w domain.WeeklySchedule) error {
	for _, d := range domain.Weekdays {
		day := w.Day(d)
		if !day.Available {
			if len(day.Times) != 0 {
				return fmt.Errorf("%s: unavailable day has %d time windows", domain.DayKey(d), len(day.Times))
			}
			continue
		}
		if len(day.Times) == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidDay, domain.DayKey(d))
		}
		for i, window := range day.Times {
			start, err := To24Hour(window.Start)
			if err != nil {
				return fmt.Errorf("%s window %d: %w", domain.DayKey(d), i, err)
			}
			end, err := To24Hour(window.End)
			if err != nil {
				return fmt.Errorf("%s window %d: %w", domain.DayKey(d), i, err)
			}
			if start >= end {
				return fmt.Errorf("%w: %s %s-%s", ErrInvalidWindow, domain.DayKey(d), window.Start, window.End)
			}
		}
	}
	return nil
}

// normalize repairs input that breaks the per-day invariant.
func (e *Editor) normalize() {
	for _, d := range domain.Weekdays {
		day := e.schedule.Day(d)
		if !day.Available || len(day.Times) == 0 {
			*day = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}
		}
	}
}

func cloneWeek(w domain.WeeklySchedule) domain.WeeklySchedule {
	var out domain.WeeklySchedule
	for _, d := range domain.Weekdays {
		src := w.Day(d)
		times := make([]domain.TimeWindow, len(src.Times))
		copy(times, src.Times)
		*out.Day(d) = domain.DaySchedule{Available: src.Available, Times: times}
	}
	return out
}
