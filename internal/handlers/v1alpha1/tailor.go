package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/lifecycle"
)

// (GET /api/v1/tailors)
func (h *Handler) ListTailors(w http.ResponseWriter, r *http.Request) {
	tailors, err := h.tailors.ListTailors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tailors)
}

// (GET /api/v1/tailors/{id})
func (h *Handler) GetTailor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("tailor id must be a uuid"))
		return
	}

	tailor, err := h.tailors.GetTailor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tailor)
}

// (PUT /api/v1/tailors/{id}/availability)
func (h *Handler) SetTailorAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("tailor id must be a uuid"))
		return
	}

	var request api.TailorAvailabilityUpdate
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, lifecycle.NewValidationError(err.Error()))
		return
	}

	tailor, err := h.tailors.SetAvailability(r.Context(), id, request.IsAvailable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tailor)
}

// (POST /api/v1/tailors/{id}/reconcile)
func (h *Handler) ReconcileTailorCounters(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("tailor id must be a uuid"))
		return
	}

	tailor, err := h.tailors.ReconcileCounters(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tailor)
}
