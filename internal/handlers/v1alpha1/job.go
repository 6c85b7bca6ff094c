package v1alpha1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/lifecycle"
	"github.com/stitchup/stitchup/internal/service"
)

const maxUploadBytes = 32 << 20

// (POST /api/v1/jobs)
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var request api.JobCreate
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, lifecycle.NewValidationError(err.Error()))
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), request)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, job)
}

// (GET /api/v1/jobs)
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := service.JobFilter{
		CustomerID: r.URL.Query().Get("customerId"),
		Status:     r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("tailorId"); raw != "" {
		tailorID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, lifecycle.NewValidationError("tailorId must be a uuid"))
			return
		}
		filter.TailorID = tailorID
	}

	jobs, err := h.jobs.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, jobs)
}

// (GET /api/v1/jobs/{id})
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// applyAction builds a handler for the bodyless transitions.
func (h *Handler) applyAction(action api.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
			return
		}

		job, err := h.jobs.ApplyAction(r.Context(), id, action, lifecycle.Payload{})
		if err != nil {
			writeError(w, r, err)
			return
		}
		render.JSON(w, r, job)
	}
}

// (POST /api/v1/jobs/{id}/finish)
//
// Accepts either a JSON body with already-hosted image URLs or a multipart
// form with the image files themselves. Files are uploaded to the blob
// store before the transition is applied, so a failed upload leaves the
// job in_progress.
func (h *Handler) FinishJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}

	var payload lifecycle.Payload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, r, lifecycle.NewValidationError(err.Error()))
			return
		}
		if raw := r.FormValue("price"); raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				writeError(w, r, lifecycle.NewValidationError("price must be a number"))
				return
			}
			payload.Price = &price
		}
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				writeError(w, r, lifecycle.NewValidationError(err.Error()))
				return
			}
			url, err := h.jobs.StoreProofImage(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
			_ = file.Close()
			if err != nil {
				writeError(w, r, err)
				return
			}
			payload.ImageURLs = append(payload.ImageURLs, url)
		}
	} else {
		var request api.JobFinish
		if err := render.DecodeJSON(r.Body, &request); err != nil {
			writeError(w, r, lifecycle.NewValidationError(err.Error()))
			return
		}
		payload.ImageURLs = request.ImageURLs
		payload.Price = request.Price
	}

	job, err := h.jobs.ApplyAction(r.Context(), id, api.ActionFinish, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// (POST /api/v1/jobs/{id}/confirm)
func (h *Handler) ConfirmJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}

	var request api.JobConfirm
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, lifecycle.NewValidationError(err.Error()))
		return
	}

	job, err := h.jobs.ApplyAction(r.Context(), id, api.ActionConfirm, lifecycle.Payload{
		DeliveryDate: request.DeliveryDate,
		DeliveryTime: request.DeliveryTime,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// (POST /api/v1/jobs/{id}/cancel)
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}

	// body is optional
	var request api.JobCancel
	_ = render.DecodeJSON(r.Body, &request)

	job, err := h.jobs.ApplyAction(r.Context(), id, api.ActionCancel, lifecycle.Payload{Reason: request.Reason})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// (POST /api/v1/jobs/{id}/messages)
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}

	var request api.MessageCreate
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, lifecycle.NewValidationError(err.Error()))
		return
	}

	msg, err := h.jobs.AddMessage(r.Context(), id, request)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, msg)
}

// (POST /api/v1/jobs/{id}/images)
func (h *Handler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}

	var request api.ImageCreate
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, lifecycle.NewValidationError(err.Error()))
		return
	}

	if err := h.jobs.AddImage(r.Context(), id, request); err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"url": request.URL})
}
