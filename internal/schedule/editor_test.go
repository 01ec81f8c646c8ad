package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afyalink/care-booking/backend/internal/domain"
)

func assertWeekInvariant(t *testing.T, w domain.WeeklySchedule) {
	t.Helper()
	for _, d := range domain.Weekdays {
		day := w.Day(d)
		if day.Available {
			assert.NotEmpty(t, day.Times, domain.DayKey(d))
		} else {
			assert.Empty(t, day.Times, domain.DayKey(d))
		}
	}
}

func TestToggleDayAvailabilityAssignsDayDefault(t *testing.T) {
	e := NewEditor(nil, 30, true)

	e.ToggleDayAvailability(time.Saturday)
	sat := e.Schedule().Sat
	assert.True(t, sat.Available)
	assert.Equal(t, []domain.TimeWindow{{Start: "9:00am", End: "3:00pm"}}, sat.Times)

	e.ToggleDayAvailability(time.Saturday)
	sat = e.Schedule().Sat
	assert.False(t, sat.Available)
	assert.Empty(t, sat.Times)

	e.ToggleDayAvailability(time.Sunday)
	assert.Equal(t, []domain.TimeWindow{{Start: "10:00am", End: "4:00pm"}}, e.Schedule().Sun.Times)

	// Monday starts on, so two toggles land on the weekday default
	e.ToggleDayAvailability(time.Monday)
	e.ToggleDayAvailability(time.Monday)
	assert.Equal(t, []domain.TimeWindow{{Start: "8:00am", End: "6:00pm"}}, e.Schedule().Mon.Times)
}

func TestRemoveLastWindowMarksDayUnavailable(t *testing.T) {
	e := NewEditor(nil, 30, true)

	require.NoError(t, e.RemoveTimeSlot(time.Wednesday, 0))
	wed := e.Schedule().Wed
	assert.Equal(t, domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}, wed)
}

func TestAddAndRemoveWindows(t *testing.T) {
	e := NewEditor(nil, 30, true)

	e.AddTimeSlot(time.Tuesday)
	require.NoError(t, e.UpdateTime(time.Tuesday, 1, FieldStart, "6:00pm"))
	require.NoError(t, e.UpdateTime(time.Tuesday, 1, FieldEnd, "8:00pm"))
	assert.Len(t, e.Schedule().Tue.Times, 2)

	require.NoError(t, e.RemoveTimeSlot(time.Tuesday, 0))
	tue := e.Schedule().Tue
	assert.True(t, tue.Available)
	assert.Equal(t, []domain.TimeWindow{{Start: "6:00pm", End: "8:00pm"}}, tue.Times)

	assert.ErrorIs(t, e.RemoveTimeSlot(time.Tuesday, 3), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.UpdateTime(time.Tuesday, -1, FieldStart, "9:00am"), ErrIndexOutOfRange)
}

func TestAddTimeSlotOnUnavailableDayKeepsInvariant(t *testing.T) {
	e := NewEditor(nil, 30, true)

	e.AddTimeSlot(time.Sunday)
	sun := e.Schedule().Sun
	assert.True(t, sun.Available)
	assert.Equal(t, []domain.TimeWindow{{Start: "9:00am", End: "5:00pm"}}, sun.Times)
}

func TestUpdateTimeNormalizesDisplay(t *testing.T) {
	e := NewEditor(nil, 30, true)

	require.NoError(t, e.UpdateTime(time.Monday, 0, FieldStart, "09:30 AM"))
	assert.Equal(t, "9:30am", e.Schedule().Mon.Times[0].Start)

	assert.ErrorIs(t, e.UpdateTime(time.Monday, 0, FieldEnd, "half past five"), ErrInvalidTime)
}

func TestEditorInvariantHoldsAcrossOperations(t *testing.T) {
	e := NewEditor(nil, 30, true)
	for _, d := range domain.Weekdays {
		e.ToggleDayAvailability(d)
		assertWeekInvariant(t, e.Schedule())
		e.AddTimeSlot(d)
		assertWeekInvariant(t, e.Schedule())
		for {
			s := e.Schedule()
			if len(s.Day(d).Times) == 0 {
				break
			}
			require.NoError(t, e.RemoveTimeSlot(d, 0))
			assertWeekInvariant(t, e.Schedule())
		}
		e.ToggleDayAvailability(d)
		assertWeekInvariant(t, e.Schedule())
	}
}

func TestNewEditorRepairsInconsistentInput(t *testing.T) {
	w := DefaultWeeklySchedule()
	w.Mon = domain.DaySchedule{Available: true, Times: nil}
	w.Sun = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{{Start: "9:00am", End: "5:00pm"}}}

	e := NewEditor(&w, 30, true)
	assertWeekInvariant(t, e.Schedule())
	assert.False(t, e.Schedule().Mon.Available)
}

func TestSetAppointmentDuration(t *testing.T) {
	e := NewEditor(nil, 30, true)

	assert.ErrorIs(t, e.SetAppointmentDuration(9, UnitHours), ErrInvalidDuration)
	assert.Equal(t, 30, e.DurationMinutes())

	require.NoError(t, e.SetAppointmentDuration(8, UnitHours))
	assert.Equal(t, 480, e.DurationMinutes())

	require.NoError(t, e.SetAppointmentDuration(45, UnitMinutes))
	assert.Equal(t, 45, e.DurationMinutes())
}

func TestSaveCallsCallbackOnce(t *testing.T) {
	w := unavailableWeek()
	w.Mon = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: "9:00am", End: "5:00pm"}}}
	e := NewEditor(&w, 30, false)

	calls := 0
	err := e.Save(context.Background(), func(_ context.Context, s domain.AvailabilitySchedule, d int, repeat bool) error {
		calls++
		assert.Equal(t, domain.DayAvailability{Available: true, StartTime: "09:00", EndTime: "17:00"}, s.Mon)
		assert.Equal(t, 30, d)
		assert.False(t, repeat)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSaveRejectsInvalidDurationWithoutCallback(t *testing.T) {
	e := NewEditor(nil, 500, true)

	err := e.Save(context.Background(), func(context.Context, domain.AvailabilitySchedule, int, bool) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestSaveRejectsReversedWindow(t *testing.T) {
	e := NewEditor(nil, 30, true)
	require.NoError(t, e.UpdateTime(time.Friday, 0, FieldStart, "6:00pm"))

	err := e.Save(context.Background(), func(context.Context, domain.AvailabilitySchedule, int, bool) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSaveKeepsEditsWhenCallbackFails(t *testing.T) {
	e := NewEditor(nil, 30, true)
	e.ToggleDayAvailability(time.Saturday)

	boom := errors.New("network down")
	err := e.Save(context.Background(), func(context.Context, domain.AvailabilitySchedule, int, bool) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, e.Schedule().Sat.Available)

	require.NoError(t, e.Save(context.Background(), func(context.Context, domain.AvailabilitySchedule, int, bool) error {
		return nil
	}))
}

func TestConcurrentSaveIsRejected(t *testing.T) {
	e := NewEditor(nil, 30, true)

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Save(context.Background(), func(context.Context, domain.AvailabilitySchedule, int, bool) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := e.Save(context.Background(), func(context.Context, domain.AvailabilitySchedule, int, bool) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrSaveInProgress)

	close(release)
	wg.Wait()
}
