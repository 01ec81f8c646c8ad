package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/repository"
	"github.com/afyalink/care-booking/backend/internal/schedule"
	"github.com/afyalink/care-booking/backend/internal/slots"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ProviderID int64  `json:"providerID" validate:"required,gt=0"`
		Date       string `json:"date" validate:"required,datetime=2006-01-02"`
		Time       string `json:"time" validate:"required"`
		Notes      string `json:"notes" validate:"max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	p, err := h.repository.GetProviderByID(req.ProviderID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Provider not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	available, err := h.availableTimeSlots(p, req.Date, false)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidDate):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	slot, ok := slots.Find(available.Slots, req.Time)
	if !ok || !slot.Available {
		h.metrics.ObserveAppointment("rejected")
		h.errorResponse(w, r, "The selected time slot is not available")
		return
	}
	startTime, err := schedule.To24Hour(slot.Time)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	a := &domain.Appointment{
		Reference:       uuid.NewString(),
		ProviderID:      p.ID,
		PatientID:       myInfo.ID,
		Date:            req.Date,
		StartTime:       startTime,
		DurationMinutes: available.AppointmentDurationMinutes,
		Notes:           req.Notes,
	}

	if err := h.repository.CreateAppointment(a); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, repository.ErrSlotBlocked):
			h.metrics.ObserveAppointment("rejected")
			h.errorResponse(w, r, "The selected time slot is not available")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "appointments_provider_slot_key":
			h.metrics.ObserveAppointment("rejected")
			h.errorResponse(w, r, "The selected time slot has just been booked")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	h.metrics.ObserveAppointment("booked")

	h.invalidateTimeSlots(p, a.Date)

	// the booking stands even when the confirmation mail cannot be queued
	if err := h.publishMail(domain.MailMessage{
		Type: domain.MailTypeAppointmentBooked,
		To:   myInfo.Email,
		Data: domain.AppointmentMailData{
			FullName:     myInfo.FullName,
			ProviderName: p.FullName,
			Reference:    a.Reference,
			Date:         a.Date,
			Time:         slot.Time,
		},
	}); err != nil {
		slog.Error("failed to queue booking confirmation", "appointment_id", a.ID, "error", err)
	}

	h.successResponse(w, r, "Appointment booked", a)
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(AppointmentCtx).(*domain.Appointment)
	h.successResponse(w, r, "Fetched appointment", a)
}

func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(AppointmentCtx).(*domain.Appointment)

	if a.Status != domain.AppointmentScheduled {
		h.errorResponse(w, r, "Only scheduled appointments can be cancelled")
		return
	}

	if err := h.repository.CancelAppointment(a); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "The appointment changed meanwhile, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	h.metrics.ObserveAppointment("cancelled")

	// the cancellation is committed; follow-ups below are best effort
	p, err := h.repository.GetProviderByID(a.ProviderID)
	if err != nil {
		slog.Error("failed to load provider after cancellation", "appointment_id", a.ID, "error", err)
		h.successResponse(w, r, "Appointment cancelled", a)
		return
	}
	h.invalidateTimeSlots(p, a.Date)

	patient, err := h.repository.GetUserByID(a.PatientID)
	if err != nil {
		slog.Error("failed to load patient after cancellation", "appointment_id", a.ID, "error", err)
		h.successResponse(w, r, "Appointment cancelled", a)
		return
	}

	display, _ := schedule.To12Hour(a.StartTime)
	if err := h.publishMail(domain.MailMessage{
		Type: domain.MailTypeAppointmentCancelled,
		To:   patient.Email,
		Data: domain.AppointmentMailData{
			FullName:     patient.FullName,
			ProviderName: p.FullName,
			Reference:    a.Reference,
			Date:         a.Date,
			Time:         display,
		},
	}); err != nil {
		slog.Error("failed to queue cancellation notice", "appointment_id", a.ID, "error", err)
	}

	h.successResponse(w, r, "Appointment cancelled", a)
}

// CompleteAppointment lets the appointment's provider close it once it has started.
func (h *Handler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(AppointmentCtx).(*domain.Appointment)
	p := r.Context().Value(MyProviderCtx).(*domain.Provider)

	if a.ProviderID != p.ID {
		h.errorResponse(w, r, "Appointment not found")
		return
	}
	if a.Status != domain.AppointmentScheduled {
		h.errorResponse(w, r, "Only scheduled appointments can be completed")
		return
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.StartTime, h.location)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if h.now().Before(start) {
		h.errorResponse(w, r, "An appointment can only be completed once it has started")
		return
	}

	if err := h.repository.CompleteAppointment(a); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "The appointment changed meanwhile, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	h.metrics.ObserveAppointment("completed")

	h.successResponse(w, r, "Appointment completed", a)
}
