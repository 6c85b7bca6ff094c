package v1alpha1

import "github.com/google/uuid"

// Event kinds delivered to job subscribers.
const (
	EventKindStatusChanged = "job:status_changed"
	EventKindMessageAdded  = "job:new_message"
)

// StatusChangedEvent carries the new status plus any transition-specific
// payload (proof images on finish, rider info on confirm).
type StatusChangedEvent struct {
	JobID         uuid.UUID  `json:"jobId"`
	NewStatus     JobStatus  `json:"newStatus"`
	Images        []string   `json:"images,omitempty"`
	RiderInfo     *RiderInfo `json:"riderInfo,omitempty"`
	NeedsRevision *bool      `json:"needsRevision,omitempty"`
}

// MessageAddedEvent carries a chat message. Messages flow independently of
// the job state machine.
type MessageAddedEvent struct {
	JobID   uuid.UUID `json:"jobId"`
	Message Message   `json:"message"`
}
