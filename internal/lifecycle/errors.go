package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	api "github.com/stitchup/stitchup/api/v1alpha1"
)

// ValidationError reports a missing or malformed payload. The caller can
// recover by correcting its input; no state was mutated.
type ValidationError struct {
	error
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{fmt.Errorf("validation failed: %s", message)}
}

// InvalidTransitionError reports an action that is categorically illegal
// from the job's last-known status. The message names the current status
// and the allowed source set for client messaging.
type InvalidTransitionError struct {
	error
}

func NewInvalidTransitionError(action api.Action, current api.JobStatus, allowedFrom []api.JobStatus) *InvalidTransitionError {
	return &InvalidTransitionError{fmt.Errorf("cannot %s a job with status '%s', allowed from: %v", action, current, allowedFrom)}
}

func NewUnknownActionError(action api.Action) *InvalidTransitionError {
	return &InvalidTransitionError{fmt.Errorf("unknown action '%s'", action)}
}

// ConflictError reports a transition that lost the race to another
// concurrent transition: the conditional update matched no row because the
// status changed between read and write. The caller should re-read and
// decide whether to retry.
type ConflictError struct {
	error
}

func NewConflictError(jobID uuid.UUID, action api.Action) *ConflictError {
	return &ConflictError{fmt.Errorf("job %s changed concurrently while applying '%s', re-read and retry", jobID, action)}
}

// NotFoundError reports an unknown job or tailor id.
type NotFoundError struct {
	error
}

func NewNotFoundError(id uuid.UUID, resourceType string) *NotFoundError {
	return &NotFoundError{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewJobNotFoundError(id uuid.UUID) *NotFoundError {
	return NewNotFoundError(id, "job")
}

func NewTailorNotFoundError(id uuid.UUID) *NotFoundError {
	return NewNotFoundError(id, "tailor")
}

// ForbiddenError reports an actor whose role is not allowed to perform the
// action.
type ForbiddenError struct {
	error
}

func NewForbiddenError(action api.Action, role string) *ForbiddenError {
	return &ForbiddenError{fmt.Errorf("role '%s' is not allowed to %s a job", role, action)}
}

// DependencyError reports an unavailable collaborator (store, blob store,
// rider dispatch). Retryable with backoff at the caller.
type DependencyError struct {
	error
}

func NewDependencyError(dependency string, err error) *DependencyError {
	return &DependencyError{fmt.Errorf("%s unavailable: %w", dependency, err)}
}
