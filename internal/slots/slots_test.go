package slots

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
)

func TestCandidatesFitInsideWindow(t *testing.T) {
	day := domain.DayAvailability{Available: true, StartTime: "09:00", EndTime: "11:00"}

	got, err := Candidates(day, 30)
	require.NoError(t, err)
	assert.Equal(t, []int{540, 570, 600, 630}, got)

	got, err = Candidates(day, 45)
	require.NoError(t, err)
	assert.Equal(t, []int{540, 585}, got)

	got, err = Candidates(domain.DayAvailability{Available: false, StartTime: "09:00", EndTime: "17:00"}, 30)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Candidates(day, 0)
	assert.ErrorIs(t, err, schedule.ErrInvalidDuration)
}

func TestCandidatesRejectReversedWindow(t *testing.T) {
	for _, day := range []domain.DayAvailability{
		{Available: true, StartTime: "17:00", EndTime: "09:00"},
		{Available: true, StartTime: "09:00", EndTime: "09:00"},
	} {
		var err error
		assert.NotPanics(t, func() { _, err = Candidates(day, 30) })
		assert.ErrorIs(t, err, schedule.ErrInvalidWindow)
	}

	_, err := Classify(Input{Day: domain.DayAvailability{Available: true, StartTime: "17:00", EndTime: "09:00"}, DurationMinutes: 30})
	assert.ErrorIs(t, err, schedule.ErrInvalidWindow)
}

func TestClassifyMarksBookedSlot(t *testing.T) {
	res, err := Classify(Input{
		Day:             domain.DayAvailability{Available: true, StartTime: "09:00", EndTime: "11:00"},
		DurationMinutes: 30,
		Booked:          []Interval{{Start: 600, End: 630}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"9:00am", "9:30am", "10:30am"}, res.AvailableSlots)
	assert.Equal(t, []string{"10:00am"}, res.OccupiedSlots)
	assert.Empty(t, res.UnavailableSlots)
	assert.Equal(t, []domain.TimeSlot{
		{Time: "9:00am", Available: true, Status: domain.SlotAvailable},
		{Time: "9:30am", Available: true, Status: domain.SlotAvailable},
		{Time: "10:00am", Available: false, Status: domain.SlotBooked},
		{Time: "10:30am", Available: true, Status: domain.SlotAvailable},
	}, res.Slots)
	assert.Equal(t, 30, res.AppointmentDurationMinutes)
}

func TestClassifyBlockedAndPast(t *testing.T) {
	res, err := Classify(Input{
		Day:             domain.DayAvailability{Available: true, StartTime: "08:00", EndTime: "13:00"},
		DurationMinutes: 60,
		Booked:          []Interval{{Start: 660, End: 720}},
		Blocked:         []Interval{{Start: 630, End: 780}},
		NotBefore:       9 * 60,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"9:00am"}, res.AvailableSlots)
	assert.Equal(t, []string{"11:00am"}, res.OccupiedSlots)
	assert.Equal(t, []string{"8:00am", "10:00am", "12:00pm"}, res.UnavailableSlots)
}

func TestClassifyUnavailableDay(t *testing.T) {
	res, err := Classify(Input{
		Day:             domain.DayAvailability{Available: false, StartTime: "09:00", EndTime: "17:00"},
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.NotNil(t, res.Slots)
}

func TestClassifyPartitionsCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	durations := []int{15, 30, 45, 60, 90, 120}

	for i := 0; i < 200; i++ {
		start := rng.Intn(20) * 30
		end := start + 60 + rng.Intn(24)*30
		if end > 24*60-1 {
			end = 24*60 - 1
		}
		dur := durations[rng.Intn(len(durations))]

		var booked, blocked []Interval
		for j := 0; j < rng.Intn(4); j++ {
			s := start + rng.Intn(end-start)
			booked = append(booked, Interval{Start: s, End: s + dur})
		}
		for j := 0; j < rng.Intn(3); j++ {
			s := start + rng.Intn(end-start)
			blocked = append(blocked, Interval{Start: s, End: s + 30 + rng.Intn(120)})
		}

		day := domain.DayAvailability{Available: true, StartTime: schedule.FormatClock(start), EndTime: schedule.FormatClock(end)}
		res, err := Classify(Input{Day: day, DurationMinutes: dur, Booked: booked, Blocked: blocked, NotBefore: rng.Intn(24 * 60)})
		require.NoError(t, err)

		candidates, err := Candidates(day, dur)
		require.NoError(t, err)

		seen := map[string]int{}
		for _, list := range [][]string{res.AvailableSlots, res.OccupiedSlots, res.UnavailableSlots} {
			for _, s := range list {
				seen[s]++
			}
		}
		for s, n := range seen {
			assert.Equal(t, 1, n, "slot %s in more than one class", s)
		}

		want := make([]string, 0, len(candidates))
		for _, c := range candidates {
			want = append(want, schedule.FormatDisplay(c))
		}
		got := make([]string, 0, len(res.Slots))
		for _, s := range res.Slots {
			got = append(got, s.Time)
			assert.Equal(t, s.Status == domain.SlotAvailable, s.Available)
		}
		assert.Equal(t, want, got)

		assert.True(t, sort.SliceIsSorted(res.Slots, func(a, b int) bool {
			return schedule.DisplayKey(res.Slots[a].Time) < schedule.DisplayKey(res.Slots[b].Time)
		}))
	}
}

func TestMergeSortsByTimeOfDay(t *testing.T) {
	got := Merge(
		[]string{"1:00pm", "9:00am", "12:00pm"},
		[]string{"10:00am"},
		[]string{"11:30am", "9:00am"},
	)

	times := make([]string, 0, len(got))
	for _, s := range got {
		times = append(times, s.Time)
	}
	assert.Equal(t, []string{"9:00am", "10:00am", "11:30am", "12:00pm", "1:00pm"}, times)

	first, ok := Find(got, "9:00am")
	require.True(t, ok)
	assert.Equal(t, domain.SlotUnavailable, first.Status)
	assert.False(t, first.Available)
}

func TestMergeTreatsSpellingsOfOneTimeAsOneSlot(t *testing.T) {
	got := Merge([]string{"9:00 AM", "9:30am"}, []string{"9:00am"}, []string{"12:00 PM"})

	assert.Equal(t, []domain.TimeSlot{
		{Time: "9:00am", Available: false, Status: domain.SlotBooked},
		{Time: "9:30am", Available: true, Status: domain.SlotAvailable},
		{Time: "12:00pm", Available: false, Status: domain.SlotUnavailable},
	}, got)
}

func TestDayForUsesCalendarWeekday(t *testing.T) {
	settings := schedule.DefaultAvailabilitySettings()

	// 2026-10-19 is a Monday
	day, err := DayFor(settings, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, settings.Schedule.Mon, day)

	// 2026-10-18 is a Sunday
	day, err = DayFor(settings, "2026-10-18")
	require.NoError(t, err)
	assert.False(t, day.Available)

	_, err = DayFor(settings, "19/10/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
