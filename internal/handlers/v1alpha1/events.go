package v1alpha1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stitchup/stitchup/internal/lifecycle"
)

const heartbeatInterval = 30 * time.Second

// (GET /api/v1/jobs/{id}/events)
//
// Streams the job's events over SSE. Subscription starts at the moment of
// the request; clients wanting the current state should GET the job first,
// then attach.
func (h *Handler) StreamJobEvents(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, lifecycle.NewValidationError("job id must be a uuid"))
		return
	}
	if _, err := h.jobs.GetJob(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.broker.Subscribe(uuid.NewString(), id)
	defer h.broker.RemoveSubscriber(sub.ID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case env, open := <-sub.C():
			if !open {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Kind, data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
