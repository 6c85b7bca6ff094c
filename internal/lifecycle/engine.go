package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/estimation"
	"github.com/stitchup/stitchup/internal/rider"
	"github.com/stitchup/stitchup/internal/store"
	"github.com/stitchup/stitchup/internal/store/model"
	"github.com/stitchup/stitchup/pkg/metrics"
)

// EventSink receives per-job notifications after a transition commits.
// Delivery is best effort; the engine never blocks or fails on it.
type EventSink interface {
	PublishStatusChanged(jobID uuid.UUID, event api.StatusChangedEvent)
	PublishMessageAdded(jobID uuid.UUID, event api.MessageAddedEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) PublishStatusChanged(uuid.UUID, api.StatusChangedEvent) {}
func (NopSink) PublishMessageAdded(uuid.UUID, api.MessageAddedEvent)   {}

// Payload carries the action-specific inputs of a transition. Fields not
// used by the action are ignored.
type Payload struct {
	ImageURLs    []string
	Price        *float64
	DeliveryDate string
	DeliveryTime string
	Reason       string
}

// Engine drives the job state machine. Every transition is applied with a
// conditional update keyed on the status the engine observed, so concurrent
// actors cannot double-apply an action or skip a state.
type Engine struct {
	store  store.Store
	sink   EventSink
	riders rider.Dispatch
	nowFn  func() time.Time
	log    *zap.SugaredLogger
}

func NewEngine(st store.Store, sink EventSink, riders rider.Dispatch) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		store:  st,
		sink:   sink,
		riders: riders,
		nowFn:  time.Now,
		log:    zap.S().Named("lifecycle"),
	}
}

// Create registers a new job in requested status. The waiting list counter
// is reserved atomically before the insert so the stored estimate reflects
// the queue position this job actually got.
func (e *Engine) Create(ctx context.Context, actor auth.User, request api.JobCreate) (*model.Job, error) {
	if actor.Role != auth.RoleCustomer {
		metrics.IncreaseJobTransitionsTotalMetric(string(api.ActionCreate), "forbidden")
		return nil, NewForbiddenError(api.ActionCreate, string(actor.Role))
	}

	tailor, err := e.store.Tailor().Get(ctx, request.TailorID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewTailorNotFoundError(request.TailorID)
		}
		return nil, NewDependencyError("store", err)
	}
	if !tailor.IsAvailable {
		metrics.IncreaseJobTransitionsTotalMetric(string(api.ActionCreate), "validation")
		return nil, NewValidationError("tailor is not accepting new jobs")
	}

	newCount, err := e.store.Tailor().Increment(ctx, request.TailorID, store.CounterWaitingList, +1)
	if err != nil {
		return nil, NewDependencyError("store", err)
	}
	queueDepthBefore := newCount - 1

	job := model.Job{
		ID:               uuid.New(),
		CreatedAt:        e.nowFn(),
		CustomerID:       actor.ID,
		TailorID:         request.TailorID,
		WorkType:         string(request.WorkType),
		Status:           string(api.JobStatusRequested),
		EstimatedMinutes: estimation.Estimate(queueDepthBefore, tailor.AvgMinsFor(request.WorkType)),
	}
	created, err := e.store.Job().Create(ctx, job)
	if err != nil {
		// Release the reserved queue slot. Best effort: a failure here
		// leaves a drifted counter for reconciliation to repair.
		if _, derr := e.store.Tailor().Increment(ctx, request.TailorID, store.CounterWaitingList, -1); derr != nil {
			e.log.Errorw("failed to release waiting list slot", "tailor_id", request.TailorID, "error", derr)
		}
		return nil, NewDependencyError("store", err)
	}

	metrics.IncreaseJobTransitionsTotalMetric(string(api.ActionCreate), "success")
	e.log.Infow("job created",
		"job_id", created.ID, "tailor_id", created.TailorID,
		"work_type", created.WorkType, "estimated_minutes", created.EstimatedMinutes)
	return created, nil
}

// ApplyAction applies one lifecycle action to a job and returns the updated
// job. The status swap is conditional on the status observed during the
// legality check, so a concurrent transition surfaces as a ConflictError
// rather than a lost update.
func (e *Engine) ApplyAction(ctx context.Context, jobID uuid.UUID, action api.Action, actor auth.User, payload Payload) (*model.Job, error) {
	rule, terr := Resolve(action)
	if terr != nil {
		metrics.IncreaseJobTransitionsTotalMetric(string(action), "invalid")
		return nil, terr
	}
	if err := validatePayload(action, payload); err != nil {
		metrics.IncreaseJobTransitionsTotalMetric(string(action), "validation")
		return nil, err
	}

	job, err := e.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewJobNotFoundError(jobID)
		}
		return nil, NewDependencyError("store", err)
	}
	if !rule.allowsActor(actor.Role) {
		metrics.IncreaseJobTransitionsTotalMetric(string(action), "forbidden")
		return nil, NewForbiddenError(action, string(actor.Role))
	}

	observed := api.JobStatus(job.Status)
	if !rule.allowsFrom(observed) {
		metrics.IncreaseJobTransitionsTotalMetric(string(action), "invalid")
		return nil, NewInvalidTransitionError(action, observed, rule.From)
	}

	patch, event, err := e.buildPatch(ctx, rule, action, jobID, payload)
	if err != nil {
		return nil, err
	}

	matched, err := e.applyPatch(ctx, jobID, action, observed, patch, payload)
	if err != nil {
		return nil, err
	}
	if !matched {
		metrics.IncreaseJobTransitionsTotalMetric(string(action), "conflict")
		return nil, NewConflictError(jobID, action)
	}

	for _, delta := range rule.DeltasFor(observed) {
		if _, derr := e.store.Tailor().Increment(ctx, job.TailorID, delta.Field, delta.Delta); derr != nil {
			e.log.Errorw("counter adjustment failed",
				"job_id", jobID, "tailor_id", job.TailorID,
				"counter", string(delta.Field), "delta", delta.Delta, "error", derr)
		}
	}

	metrics.IncreaseJobTransitionsTotalMetric(string(action), "success")
	e.log.Infow("job transitioned",
		"job_id", jobID, "action", string(action),
		"from", string(observed), "to", string(rule.To))
	e.sink.PublishStatusChanged(jobID, event)

	updated, err := e.store.Job().Get(ctx, jobID)
	if err != nil {
		return nil, NewDependencyError("store", err)
	}
	return updated, nil
}

func validatePayload(action api.Action, payload Payload) *ValidationError {
	switch action {
	case api.ActionFinish:
		if len(payload.ImageURLs) == 0 {
			return NewValidationError("finish requires at least one proof image")
		}
	case api.ActionConfirm:
		if payload.DeliveryDate == "" || payload.DeliveryTime == "" {
			return NewValidationError("confirm requires deliveryDate and deliveryTime")
		}
	}
	return nil
}

func (e *Engine) buildPatch(ctx context.Context, rule Rule, action api.Action, jobID uuid.UUID, payload Payload) (model.JobPatch, api.StatusChangedEvent, error) {
	now := e.nowFn()
	patch := model.JobPatch{Status: rule.To}
	event := api.StatusChangedEvent{JobID: jobID, NewStatus: rule.To}

	switch action {
	case api.ActionAccept:
		patch.AcceptedAt = &now
	case api.ActionStart:
		patch.StartedAt = &now
	case api.ActionFinish:
		patch.FinishedAt = &now
		patch.NeedsRevision = boolPtr(false)
		patch.Price = payload.Price
		event.Images = payload.ImageURLs
	case api.ActionConfirm:
		info, err := e.riders.Assign(ctx, jobID)
		if err != nil {
			return model.JobPatch{}, api.StatusChangedEvent{}, NewDependencyError("rider dispatch", err)
		}
		patch.ConfirmedAt = &now
		patch.NeedsRevision = boolPtr(false)
		patch.RiderInfo = &info
		patch.DeliveryDate = &payload.DeliveryDate
		patch.DeliveryTime = &payload.DeliveryTime
		event.RiderInfo = &info
	case api.ActionReopen:
		patch.NeedsRevision = boolPtr(true)
		event.NeedsRevision = boolPtr(true)
	case api.ActionDeliver:
		patch.DeliveredAt = &now
	case api.ActionCancel:
		if payload.Reason != "" {
			patch.CancelReason = &payload.Reason
		}
	}
	return patch, event, nil
}

// applyPatch runs the conditional status swap. Finish additionally appends
// the proof images in the same transaction, so a job never lands in
// finished_by_tailor without its images.
func (e *Engine) applyPatch(ctx context.Context, jobID uuid.UUID, action api.Action, observed api.JobStatus, patch model.JobPatch, payload Payload) (bool, error) {
	from := []api.JobStatus{observed}

	if action != api.ActionFinish {
		matched, err := e.store.Job().UpdateStatus(ctx, jobID, from, patch)
		if err != nil {
			return false, NewDependencyError("store", err)
		}
		return matched, nil
	}

	txCtx, err := e.store.NewTransactionContext(ctx)
	if err != nil {
		return false, NewDependencyError("store", err)
	}
	matched, err := e.store.Job().UpdateStatus(txCtx, jobID, from, patch)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return false, NewDependencyError("store", err)
	}
	if matched {
		if err := e.store.Job().AddImages(txCtx, jobID, payload.ImageURLs); err != nil {
			_, _ = store.Rollback(txCtx)
			return false, NewDependencyError("store", err)
		}
	}
	if _, err := store.Commit(txCtx); err != nil {
		return false, NewDependencyError("store", err)
	}
	return matched, nil
}

func boolPtr(v bool) *bool {
	return &v
}
