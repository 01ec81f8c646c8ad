package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "Fetched account", myInfo)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "Current password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateUserPassword(myInfo); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Could not update the password, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Password updated", nil)
}

// GetMyAppointments lists the provider's agenda for doctors and nurses, and the patient's own
// bookings for everyone else.
func (h *Handler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var (
		appointments []*domain.Appointment
		err          error
	)

	if myInfo.Role.IsProvider() {
		p, perr := h.repository.GetProviderByUserID(myInfo.ID)
		if perr != nil {
			switch {
			case errors.Is(perr, sql.ErrNoRows):
				h.errorResponse(w, r, "Provider profile not found")
			default:
				h.internalServerError(w, r, perr)
			}
			return
		}
		appointments, err = h.repository.GetAppointmentsByProvider(p.ID)
	} else {
		appointments, err = h.repository.GetAppointmentsByPatient(myInfo.ID)
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched appointments", appointments)
}
