package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
)

func availabilitySaveLockKey(providerID int64) string {
	return fmt.Sprintf("availability_save_lock_%d", providerID)
}

func (h *Handler) GetMyAvailabilitySettings(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(MyProviderCtx).(*domain.Provider)

	view, err := newAvailabilitySettingsView(p.Settings)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched availability settings", view)
}

// UpdateMyAvailabilitySettings runs the submitted week through the schedule editor and stores
// the collapsed result. Only one save per provider may run at a time.
func (h *Handler) UpdateMyAvailabilitySettings(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(MyProviderCtx).(*domain.Provider)

	var req struct {
		Schedule            domain.WeeklySchedule `json:"schedule"`
		AppointmentDuration float64               `json:"appointmentDuration" validate:"required,gt=0"`
		DurationUnit        string                `json:"durationUnit" validate:"omitempty,oneof=minutes hours"`
		RepeatWeekly        bool                  `json:"repeatWeekly"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	unit := schedule.UnitMinutes
	if req.DurationUnit != "" {
		unit = schedule.DurationUnit(req.DurationUnit)
	}

	editor := schedule.NewEditor(&req.Schedule, p.Settings.AppointmentDurationMinutes, req.RepeatWeekly)
	if err := editor.SetAppointmentDuration(req.AppointmentDuration, unit); err != nil {
		h.metrics.ObserveSettingsSave("invalid")
		h.errorResponse(w, r, err.Error())
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	lockKey := availabilitySaveLockKey(p.ID)
	acquired, err := h.redisClient.SetNX(ctx, lockKey, h.now().Unix(), time.Duration(h.config.Booking.SaveLockTTL)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.metrics.ObserveSettingsSave("conflict")
		h.errorResponse(w, r, schedule.ErrSaveInProgress.Error())
		return
	}
	defer func() {
		releaseCtx, cancel := h.redisContext()
		defer cancel()
		h.redisClient.Del(releaseCtx, lockKey)
	}()

	err = editor.Save(r.Context(), func(_ context.Context, s domain.AvailabilitySchedule, duration int, repeat bool) error {
		settings := domain.AvailabilitySettings{
			Schedule:                   s,
			AppointmentDurationMinutes: duration,
			RepeatWeekly:               repeat,
		}
		version, err := h.repository.UpdateAvailabilitySettings(p.ID, settings)
		if err != nil {
			return err
		}
		p.Settings = settings
		p.Version = version
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidDuration),
			errors.Is(err, schedule.ErrInvalidWindow),
			errors.Is(err, schedule.ErrInvalidTime),
			errors.Is(err, schedule.ErrInvalidDay):
			h.metrics.ObserveSettingsSave("invalid")
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, schedule.ErrSaveInProgress):
			h.metrics.ObserveSettingsSave("conflict")
			h.errorResponse(w, r, err.Error())
		default:
			h.metrics.ObserveSettingsSave("error")
			h.internalServerError(w, r, err)
		}
		return
	}
	h.metrics.ObserveSettingsSave("ok")

	view, err := newAvailabilitySettingsView(p.Settings)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Availability settings saved", view)
}
