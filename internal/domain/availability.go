package domain

import (
	"strings"
	"time"
)

// TimeWindow is a contiguous range in 12-hour display form, e.g. "9:00am".
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DaySchedule struct {
	Available bool         `json:"available"`
	Times     []TimeWindow `json:"times"`
}

// WeeklySchedule is the editor-side view of a provider's week.
type WeeklySchedule struct {
	Sun DaySchedule `json:"Sun"`
	Mon DaySchedule `json:"Mon"`
	Tue DaySchedule `json:"Tue"`
	Wed DaySchedule `json:"Wed"`
	Thu DaySchedule `json:"Thu"`
	Fri DaySchedule `json:"Fri"`
	Sat DaySchedule `json:"Sat"`
}

// Day returns the schedule of the given weekday. It never returns nil.
func (w *WeeklySchedule) Day(d time.Weekday) *DaySchedule {
	switch d {
	case time.Sunday:
		return &w.Sun
	case time.Monday:
		return &w.Mon
	case time.Tuesday:
		return &w.Tue
	case time.Wednesday:
		return &w.Wed
	case time.Thursday:
		return &w.Thu
	case time.Friday:
		return &w.Fri
	default:
		return &w.Sat
	}
}

// Weekdays lists the days in calendar order starting Sunday.
var Weekdays = []time.Weekday{
	time.Sunday,
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// DayKey returns the three letter key of d, e.g. "Sun".
func DayKey(d time.Weekday) string {
	return d.String()[:3]
}

// ParseDayKey accepts "Sun".."Sat" in any case.
func ParseDayKey(key string) (time.Weekday, bool) {
	for _, d := range Weekdays {
		if strings.EqualFold(DayKey(d), key) {
			return d, true
		}
	}
	return 0, false
}

// DayAvailability is the persisted form of a single day: one 24-hour span.
type DayAvailability struct {
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailabilitySchedule struct {
	Sun DayAvailability `json:"sun"`
	Mon DayAvailability `json:"mon"`
	Tue DayAvailability `json:"tue"`
	Wed DayAvailability `json:"wed"`
	Thu DayAvailability `json:"thu"`
	Fri DayAvailability `json:"fri"`
	Sat DayAvailability `json:"sat"`
}

func (a *AvailabilitySchedule) Day(d time.Weekday) *DayAvailability {
	switch d {
	case time.Sunday:
		return &a.Sun
	case time.Monday:
		return &a.Mon
	case time.Tuesday:
		return &a.Tue
	case time.Wednesday:
		return &a.Wed
	case time.Thursday:
		return &a.Thu
	case time.Friday:
		return &a.Fri
	default:
		return &a.Sat
	}
}

type AvailabilitySettings struct {
	Schedule                   AvailabilitySchedule `json:"availability_schedule"`
	AppointmentDurationMinutes int                  `json:"appointment_duration_minutes"`
	RepeatWeekly               bool                 `json:"repeat_weekly"`
}
