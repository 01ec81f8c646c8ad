package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) expectSlotInputs(providerID int64, date string, appointments *sqlmock.Rows) {
	e.mock.ExpectQuery("FROM providers p").WithArgs(providerID).WillReturnRows(providerRow(providerID, 11))
	e.mock.ExpectQuery("FROM appointments").WithArgs(providerID, date).WillReturnRows(appointments)
	e.mock.ExpectQuery("FROM unavailable_sessions").WithArgs(providerID, date).WillReturnRows(sqlmock.NewRows(sessionColumns))
}

func TestCreateAppointment(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(8, domain.RolePatient)
	env.expectSlotInputs(3, "2026-10-20", sqlmock.NewRows(appointmentColumns))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery("FROM unavailable_sessions").
		WithArgs(int64(3), "2026-10-20", "09:00", 60).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	env.mock.ExpectQuery("INSERT INTO appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "version"}).AddRow(40, "scheduled", fixedNow, 1))
	env.mock.ExpectCommit()

	body := map[string]any{"providerID": 3, "date": "2026-10-20", "time": "9:00am"}
	_, resp := env.do(t, http.MethodPost, "/appointments/", body, env.cookie(t, 8, domain.RolePatient))
	require.True(t, resp.Success, resp.Message)

	var got domain.Appointment
	decodeData(t, resp, &got)
	assert.Equal(t, int64(40), got.ID)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, 60, got.DurationMinutes)
	assert.NotEmpty(t, got.Reference)

	sent := env.mail.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.MailTypeAppointmentBooked, sent[0].Type)
	assert.Equal(t, "user@example.com", sent[0].To)
	assert.Equal(t, []string{"email_queue"}, env.mail.keys)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateAppointmentOnTakenSlot(t *testing.T) {
	tests := []struct {
		name string
		time string
	}{
		{"booked", "10:00am"},
		{"outside working hours", "2:00pm"},
		{"not a time", "noon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			env.expectUser(8, domain.RolePatient)
			env.expectSlotInputs(3, "2026-10-20", sqlmock.NewRows(appointmentColumns).
				AddRow(1, "ref", 3, 9, "2026-10-20", "10:00", 60, "scheduled", "", fixedNow, 1))

			body := map[string]any{"providerID": 3, "date": "2026-10-20", "time": tt.time}
			_, resp := env.do(t, http.MethodPost, "/appointments/", body, env.cookie(t, 8, domain.RolePatient))
			assert.False(t, resp.Success)
			assert.Equal(t, "The selected time slot is not available", resp.Message)
			assert.Empty(t, env.mail.sent())
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestCreateAppointmentLosesRace(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(8, domain.RolePatient)
	env.expectSlotInputs(3, "2026-10-20", sqlmock.NewRows(appointmentColumns))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery("FROM unavailable_sessions").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	env.mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_provider_slot_key"})
	env.mock.ExpectRollback()

	body := map[string]any{"providerID": 3, "date": "2026-10-20", "time": "9:00am"}
	_, resp := env.do(t, http.MethodPost, "/appointments/", body, env.cookie(t, 8, domain.RolePatient))
	assert.False(t, resp.Success)
	assert.Equal(t, "The selected time slot has just been booked", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateAppointmentRequiresPatient(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(11, domain.RoleDoctor)

	body := map[string]any{"providerID": 3, "date": "2026-10-20", "time": "9:00am"}
	_, resp := env.do(t, http.MethodPost, "/appointments/", body, env.cookie(t, 11, domain.RoleDoctor))
	assert.False(t, resp.Success)
	assert.Equal(t, "Permission denied", resp.Message)
}

func TestCancelAppointment(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(8, domain.RolePatient)
	env.mock.ExpectQuery("FROM appointments").
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(40, "ref-40", 3, 8, "2026-10-20", "09:00", 60, "scheduled", "", fixedNow, 1))
	env.mock.ExpectQuery("UPDATE appointments").
		WithArgs(int64(40), int32(1), "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"status", "version"}).AddRow("cancelled", 2))
	env.mock.ExpectQuery("FROM providers p").WithArgs(int64(3)).WillReturnRows(providerRow(3, 11))
	env.expectUser(8, domain.RolePatient)

	_, resp := env.do(t, http.MethodPatch, "/appointments/40/cancel", nil, env.cookie(t, 8, domain.RolePatient))
	require.True(t, resp.Success, resp.Message)

	sent := env.mail.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.MailTypeAppointmentCancelled, sent[0].Type)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCancelSomeoneElsesAppointment(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(9, domain.RolePatient)
	env.mock.ExpectQuery("FROM appointments").
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(40, "ref-40", 3, 8, "2026-10-20", "09:00", 60, "scheduled", "", fixedNow, 1))

	_, resp := env.do(t, http.MethodPatch, "/appointments/40/cancel", nil, env.cookie(t, 9, domain.RolePatient))
	assert.False(t, resp.Success)
	assert.Equal(t, "Appointment not found", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCancelAppointmentSucceedsWhenFollowUpLookupFails(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(8, domain.RolePatient)
	env.mock.ExpectQuery("FROM appointments").
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(40, "ref-40", 3, 8, "2026-10-20", "09:00", 60, "scheduled", "", fixedNow, 1))
	env.mock.ExpectQuery("UPDATE appointments").
		WithArgs(int64(40), int32(1), "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"status", "version"}).AddRow("cancelled", 2))
	env.mock.ExpectQuery("FROM providers p").WithArgs(int64(3)).WillReturnError(errors.New("connection reset"))

	rec, resp := env.do(t, http.MethodPatch, "/appointments/40/cancel", nil, env.cookie(t, 8, domain.RolePatient))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Appointment cancelled", resp.Message)
	assert.Empty(t, env.mail.sent())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func (e *testEnv) expectProviderAppointment(date, start string) {
	e.expectUser(11, domain.RoleDoctor)
	e.mock.ExpectQuery("FROM appointments").
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(40, "ref-40", 3, 8, date, start, 60, "scheduled", "", fixedNow, 1))
	// ownership check, then the provider profile
	e.mock.ExpectQuery("FROM providers p").WithArgs(int64(11)).WillReturnRows(providerRow(3, 11))
	e.mock.ExpectQuery("FROM providers p").WithArgs(int64(11)).WillReturnRows(providerRow(3, 11))
}

func TestCompleteAppointment(t *testing.T) {
	env := newTestEnv(t)

	env.expectProviderAppointment("2026-10-19", "07:00")
	env.mock.ExpectQuery("UPDATE appointments").
		WithArgs(int64(40), int32(1), "completed").
		WillReturnRows(sqlmock.NewRows([]string{"status", "version"}).AddRow("completed", 2))

	_, resp := env.do(t, http.MethodPatch, "/appointments/40/complete", nil, env.cookie(t, 11, domain.RoleDoctor))
	require.True(t, resp.Success, resp.Message)

	var got domain.Appointment
	decodeData(t, resp, &got)
	assert.Equal(t, domain.AppointmentCompleted, got.Status)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCompleteAppointmentBeforeItStarts(t *testing.T) {
	env := newTestEnv(t)

	env.expectProviderAppointment("2026-10-20", "09:00")

	_, resp := env.do(t, http.MethodPatch, "/appointments/40/complete", nil, env.cookie(t, 11, domain.RoleDoctor))
	assert.False(t, resp.Success)
	assert.Equal(t, "An appointment can only be completed once it has started", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestPatientCannotCompleteAppointment(t *testing.T) {
	env := newTestEnv(t)

	env.expectUser(8, domain.RolePatient)
	env.mock.ExpectQuery("FROM appointments").
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(40, "ref-40", 3, 8, "2026-10-19", "07:00", 60, "scheduled", "", fixedNow, 1))

	_, resp := env.do(t, http.MethodPatch, "/appointments/40/complete", nil, env.cookie(t, 8, domain.RolePatient))
	assert.False(t, resp.Success)
	assert.Equal(t, "Permission denied", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
