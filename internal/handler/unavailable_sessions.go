package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (h *Handler) GetMyUnavailableSessions(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(MyProviderCtx).(*domain.Provider)

	sessions, err := h.repository.GetUnavailableSessions(p.ID, h.today())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched unavailable sessions", sessions)
}

func (h *Handler) CreateUnavailableSession(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(MyProviderCtx).(*domain.Provider)

	var req struct {
		Date      string `json:"date" validate:"required,datetime=2006-01-02"`
		StartTime string `json:"startTime" validate:"required,datetime=15:04"`
		EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
		Reason    string `json:"reason" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session := &domain.UnavailableSession{
		ProviderID: p.ID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
	}

	existing, err := h.repository.GetUnavailableSessionsByDate(p.ID, req.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	appointments, err := h.repository.GetScheduledAppointmentsByDate(p.ID, req.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateUnavailableSession(session, h.now().In(h.location), existing, appointments); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateUnavailableSession(session); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "unavailable_sessions_time_order_check":
			h.errorResponse(w, r, utils.ErrSessionTimeOrder.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateTimeSlots(p, session.Date)

	h.successResponse(w, r, "Unavailable session created", session)
}

func (h *Handler) DeleteUnavailableSession(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(MyProviderCtx).(*domain.Provider)

	sessionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid session ID")
		return
	}

	date, err := h.repository.DeleteUnavailableSession(p.ID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Unavailable session not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateTimeSlots(p, date)

	h.successResponse(w, r, "Unavailable session deleted", nil)
}
