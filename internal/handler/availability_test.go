package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offWeek() domain.WeeklySchedule {
	var w domain.WeeklySchedule
	for _, d := range domain.Weekdays {
		*w.Day(d) = domain.DaySchedule{Available: false, Times: []domain.TimeWindow{}}
	}
	return w
}

func settingsBody(week domain.WeeklySchedule, duration float64, unit string) map[string]any {
	return map[string]any{
		"schedule":            week,
		"appointmentDuration": duration,
		"durationUnit":        unit,
		"repeatWeekly":        true,
	}
}

func (e *testEnv) expectProviderSession(userID, providerID int64) {
	e.expectUser(userID, domain.RoleDoctor)
	e.mock.ExpectQuery("FROM providers p").WithArgs(userID).WillReturnRows(providerRow(providerID, userID))
}

func TestUpdateMyAvailabilitySettings(t *testing.T) {
	env := newTestEnv(t)

	week := offWeek()
	week.Mon = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{
		{Start: "1:00pm", End: "5:00pm"},
		{Start: "8:00am", End: "12:00pm"},
	}}

	env.expectProviderSession(11, 3)
	env.mock.ExpectQuery("UPDATE providers").
		WithArgs(sqlmock.AnyArg(), 45, true, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))

	_, resp := env.do(t, http.MethodPut, "/my-info/availability-settings", settingsBody(week, 45, "minutes"), env.cookie(t, 11, domain.RoleDoctor))
	require.True(t, resp.Success, resp.Message)

	var got struct {
		Schedule domain.AvailabilitySchedule `json:"availability_schedule"`
		Duration int                         `json:"appointment_duration_minutes"`
	}
	decodeData(t, resp, &got)

	assert.Equal(t, domain.DayAvailability{Available: true, StartTime: "08:00", EndTime: "17:00"}, got.Schedule.Mon)
	assert.Equal(t, domain.DayAvailability{Available: false, StartTime: "09:00", EndTime: "17:00"}, got.Schedule.Tue)
	assert.Equal(t, 45, got.Duration)

	assert.False(t, env.redis.Exists(availabilitySaveLockKey(3)), "lock must be released")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestUpdateMyAvailabilitySettingsInHours(t *testing.T) {
	env := newTestEnv(t)

	week := offWeek()
	week.Fri = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: "8:00am", End: "5:00pm"}}}

	env.expectProviderSession(11, 3)
	env.mock.ExpectQuery("UPDATE providers").
		WithArgs(sqlmock.AnyArg(), 180, true, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))

	_, resp := env.do(t, http.MethodPut, "/my-info/availability-settings", settingsBody(week, 3, "hours"), env.cookie(t, 11, domain.RoleDoctor))
	require.True(t, resp.Success, resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestUpdateMyAvailabilitySettingsRejectsInvalidInput(t *testing.T) {
	reversed := offWeek()
	reversed.Mon = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: "5:00pm", End: "8:00am"}}}

	valid := offWeek()
	valid.Mon = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: "8:00am", End: "5:00pm"}}}

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"reversed window", settingsBody(reversed, 30, "minutes"), schedule.ErrInvalidWindow.Error()},
		{"too short", settingsBody(valid, 10, "minutes"), schedule.ErrInvalidDuration.Error()},
		{"too long", settingsBody(valid, 9, "hours"), schedule.ErrInvalidDuration.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.expectProviderSession(11, 3)

			_, resp := env.do(t, http.MethodPut, "/my-info/availability-settings", tt.body, env.cookie(t, 11, domain.RoleDoctor))
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.message)
			// no UPDATE was expected, so nothing was persisted
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateMyAvailabilitySettingsWhileAnotherSaveRuns(t *testing.T) {
	env := newTestEnv(t)

	week := offWeek()
	week.Mon = domain.DaySchedule{Available: true, Times: []domain.TimeWindow{{Start: "8:00am", End: "5:00pm"}}}

	require.NoError(t, env.redis.Set(availabilitySaveLockKey(3), "1"))
	env.expectProviderSession(11, 3)

	_, resp := env.do(t, http.MethodPut, "/my-info/availability-settings", settingsBody(week, 30, "minutes"), env.cookie(t, 11, domain.RoleDoctor))
	assert.False(t, resp.Success)
	assert.Equal(t, schedule.ErrSaveInProgress.Error(), resp.Message)

	// the other save still owns the lock
	assert.True(t, env.redis.Exists(availabilitySaveLockKey(3)))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateUnavailableSession(t *testing.T) {
	env := newTestEnv(t)

	env.expectProviderSession(11, 3)
	env.mock.ExpectQuery("FROM unavailable_sessions").
		WithArgs(int64(3), "2026-10-20").
		WillReturnRows(sqlmock.NewRows(sessionColumns))
	env.mock.ExpectQuery("FROM appointments").
		WithArgs(int64(3), "2026-10-20").
		WillReturnRows(sqlmock.NewRows(appointmentColumns))
	env.mock.ExpectQuery("INSERT INTO unavailable_sessions").
		WithArgs(int64(3), "2026-10-20", "09:00", "10:00", "training").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, fixedNow))

	// a cached result for that day must be dropped
	cacheKey := "available_time_slots_3_v1_2026-10-20"
	require.NoError(t, env.redis.Set(cacheKey, "{}"))

	body := map[string]any{"date": "2026-10-20", "startTime": "09:00", "endTime": "10:00", "reason": "training"}
	_, resp := env.do(t, http.MethodPost, "/my-info/unavailable-sessions/", body, env.cookie(t, 11, domain.RoleDoctor))
	require.True(t, resp.Success, resp.Message)

	assert.False(t, env.redis.Exists(cacheKey))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateUnavailableSessionOverAppointment(t *testing.T) {
	env := newTestEnv(t)

	env.expectProviderSession(11, 3)
	env.mock.ExpectQuery("FROM unavailable_sessions").WillReturnRows(sqlmock.NewRows(sessionColumns))
	env.mock.ExpectQuery("FROM appointments").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(1, "ref", 3, 8, "2026-10-20", "09:30", 60, "scheduled", "", fixedNow, 1))

	body := map[string]any{"date": "2026-10-20", "startTime": "09:00", "endTime": "10:00"}
	_, resp := env.do(t, http.MethodPost, "/my-info/unavailable-sessions/", body, env.cookie(t, 11, domain.RoleDoctor))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "appointment")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateUnavailableSessionValidatesFormat(t *testing.T) {
	env := newTestEnv(t)

	env.expectProviderSession(11, 3)

	body := map[string]any{"date": "2026-10-20", "startTime": "9am", "endTime": "10:00"}
	_, resp := env.do(t, http.MethodPost, "/my-info/unavailable-sessions/", body, env.cookie(t, 11, domain.RoleDoctor))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "StartTime")
}
