package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
	"github.com/afyalink/care-booking/backend/internal/slots"
)

func (h *Handler) GetProviders(w http.ResponseWriter, r *http.Request) {
	kind := domain.ProviderKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", domain.ProviderKindDoctor, domain.ProviderKindNurse:
	default:
		h.errorResponse(w, r, "kind must be doctor or nurse")
		return
	}

	providers, err := h.repository.GetProviders(kind)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched providers", providers)
}

func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProviderCtx).(*domain.Provider)
	h.successResponse(w, r, "Fetched provider", p)
}

// availabilitySettingsView carries the persisted settings together with the editor form.
type availabilitySettingsView struct {
	domain.AvailabilitySettings
	WeeklySchedule domain.WeeklySchedule `json:"weekly_schedule"`
	DurationValue  float64               `json:"duration_value"`
	DurationUnit   schedule.DurationUnit `json:"duration_unit"`
	IsPreset       bool                  `json:"is_preset_duration"`
}

func newAvailabilitySettingsView(settings domain.AvailabilitySettings) (*availabilitySettingsView, error) {
	week, err := schedule.ToWeeklySchedule(settings.Schedule)
	if err != nil {
		return nil, err
	}
	value, unit := schedule.DisplayDuration(settings.AppointmentDurationMinutes)

	return &availabilitySettingsView{
		AvailabilitySettings: settings,
		WeeklySchedule:       week,
		DurationValue:        value,
		DurationUnit:         unit,
		IsPreset:             schedule.IsPresetDuration(settings.AppointmentDurationMinutes),
	}, nil
}

func (h *Handler) GetProviderAvailabilitySettings(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProviderCtx).(*domain.Provider)

	view, err := newAvailabilitySettingsView(p.Settings)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched availability settings", view)
}

func (h *Handler) GetAvailableTimeSlots(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProviderCtx).(*domain.Provider)

	date := r.URL.Query().Get("date")
	if date == "" {
		h.errorResponse(w, r, "Select a date to see available times")
		return
	}

	res, err := h.availableTimeSlots(p, date, true)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidDate):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Fetched available time slots", res)
}

// maxOccupiedDatesRange caps how many days one occupied-dates request may reconcile.
const maxOccupiedDatesRange = 62

// GetOccupiedDates lists the dates in [from, to] on which the provider works but has no
// bookable slot left, so a calendar can grey them out. from defaults to today and is never
// earlier than today; to defaults to 30 days after from.
func (h *Handler) GetOccupiedDates(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProviderCtx).(*domain.Provider)

	today, _ := slots.ParseDate(h.today())

	from := today
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := slots.ParseDate(v)
		if err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		if t.After(today) {
			from = t
		}
	}

	to := from.AddDate(0, 0, 30)
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := slots.ParseDate(v)
		if err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		to = t
	}

	if to.Before(from) {
		h.errorResponse(w, r, "to must not be before from")
		return
	}
	if to.Sub(from) > maxOccupiedDatesRange*24*time.Hour {
		h.errorResponse(w, r, fmt.Sprintf("a range covers at most %d days", maxOccupiedDatesRange))
		return
	}

	occupied := []string{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(slots.DateLayout)

		day, err := slots.DayFor(p.Settings, date)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if !day.Available {
			continue
		}

		res, err := h.availableTimeSlots(p, date, true)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if len(res.Slots) > 0 && len(res.AvailableSlots) == 0 {
			occupied = append(occupied, date)
		}
	}

	h.successResponse(w, r, "Fetched occupied dates", occupied)
}
