package handler

import (
	"net/http"

	"github.com/afyalink/care-booking/backend/internal/assistant"
)

func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symptoms string `json:"symptoms" validate:"required,max=2000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "Recommendation ready", assistant.Recommend(req.Symptoms))
}
