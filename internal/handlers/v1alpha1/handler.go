package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/events"
	"github.com/stitchup/stitchup/internal/lifecycle"
	"github.com/stitchup/stitchup/internal/service"
)

// Handler exposes the v1alpha1 REST surface. Business rules live in the
// services; handlers only decode, delegate and encode.
type Handler struct {
	jobs    *service.JobService
	tailors *service.TailorService
	broker  *events.Broker
}

func NewHandler(jobs *service.JobService, tailors *service.TailorService, broker *events.Broker) *Handler {
	return &Handler{jobs: jobs, tailors: tailors, broker: broker}
}

func (h *Handler) Routes(router chi.Router) {
	router.Route("/jobs", func(r chi.Router) {
		r.Post("/", h.CreateJob)
		r.Get("/", h.ListJobs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetJob)
			r.Get("/events", h.StreamJobEvents)
			r.Post("/accept", h.applyAction(api.ActionAccept))
			r.Post("/start", h.applyAction(api.ActionStart))
			r.Post("/finish", h.FinishJob)
			r.Post("/confirm", h.ConfirmJob)
			r.Post("/reopen", h.applyAction(api.ActionReopen))
			r.Post("/deliver", h.applyAction(api.ActionDeliver))
			r.Post("/close", h.applyAction(api.ActionClose))
			r.Post("/cancel", h.CancelJob)
			r.Post("/messages", h.AddMessage)
			r.Post("/images", h.AddImage)
		})
	})
	router.Route("/tailors", func(r chi.Router) {
		r.Get("/", h.ListTailors)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTailor)
			r.Put("/availability", h.SetTailorAvailability)
			r.Post("/reconcile", h.ReconcileTailorCounters)
		})
	})
}

func parseID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// writeError maps the error taxonomy onto HTTP status codes. Invalid
// transitions are 422 (the request can never succeed from the observed
// status), conflicts are 409 (a retry after re-read may succeed).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case *lifecycle.ValidationError:
		status = http.StatusBadRequest
	case *lifecycle.InvalidTransitionError:
		status = http.StatusUnprocessableEntity
	case *lifecycle.ConflictError:
		status = http.StatusConflict
	case *lifecycle.NotFoundError:
		status = http.StatusNotFound
	case *lifecycle.ForbiddenError:
		status = http.StatusForbidden
	case *lifecycle.DependencyError:
		status = http.StatusServiceUnavailable
	}
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: err.Error()})
}
