package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/blob"
	"github.com/stitchup/stitchup/internal/lifecycle"
	"github.com/stitchup/stitchup/internal/store"
)

// JobService is the application surface over the lifecycle engine: request
// validation, read paths, messages and proof image storage. All state
// transitions go through the engine.
type JobService struct {
	store    store.Store
	engine   *lifecycle.Engine
	sink     lifecycle.EventSink
	blobs    blob.Store
	validate *validator.Validate
}

func NewJobService(st store.Store, engine *lifecycle.Engine, sink lifecycle.EventSink, blobs blob.Store) *JobService {
	if sink == nil {
		sink = lifecycle.NopSink{}
	}
	return &JobService{
		store:    st,
		engine:   engine,
		sink:     sink,
		blobs:    blobs,
		validate: validator.New(),
	}
}

func (s *JobService) CreateJob(ctx context.Context, request api.JobCreate) (*api.Job, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, lifecycle.NewValidationError(err.Error())
	}

	actor := auth.MustHaveUser(ctx)
	job, err := s.engine.Create(ctx, actor, request)
	if err != nil {
		return nil, err
	}
	resource := job.ToApiResource()
	return &resource, nil
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, lifecycle.NewJobNotFoundError(id)
		}
		return nil, lifecycle.NewDependencyError("store", err)
	}
	resource := job.ToApiResource()
	return &resource, nil
}

// JobFilter narrows ListJobs. Zero values mean no constraint.
type JobFilter struct {
	CustomerID string
	TailorID   uuid.UUID
	Status     string
}

// ListJobs returns jobs newest first. Customers only ever see their own
// jobs regardless of the requested filter.
func (s *JobService) ListJobs(ctx context.Context, filter JobFilter) (api.JobList, error) {
	actor := auth.MustHaveUser(ctx)

	storeFilter := store.NewJobQueryFilter()
	if actor.Role == auth.RoleCustomer {
		storeFilter = storeFilter.ByCustomerID(actor.ID)
	} else if filter.CustomerID != "" {
		storeFilter = storeFilter.ByCustomerID(filter.CustomerID)
	}
	if filter.TailorID != uuid.Nil {
		storeFilter = storeFilter.ByTailorID(filter.TailorID)
	}
	if filter.Status != "" {
		if api.StringToJobStatus(filter.Status) == "" {
			return nil, lifecycle.NewValidationError(fmt.Sprintf("unknown status '%s'", filter.Status))
		}
		storeFilter = storeFilter.ByStatus(filter.Status)
	}

	jobs, err := s.store.Job().List(ctx, storeFilter)
	if err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}
	return jobs.ToApiResource(), nil
}

// ApplyAction applies a lifecycle action on behalf of the authenticated
// actor.
func (s *JobService) ApplyAction(ctx context.Context, jobID uuid.UUID, action api.Action, payload lifecycle.Payload) (*api.Job, error) {
	actor := auth.MustHaveUser(ctx)
	job, err := s.engine.ApplyAction(ctx, jobID, action, actor, payload)
	if err != nil {
		return nil, err
	}
	resource := job.ToApiResource()
	return &resource, nil
}

// AddMessage appends a chat message. Messages are independent of the state
// machine: any participant can write at any status.
func (s *JobService) AddMessage(ctx context.Context, jobID uuid.UUID, request api.MessageCreate) (*api.Message, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, lifecycle.NewValidationError(err.Error())
	}
	actor := auth.MustHaveUser(ctx)

	if _, err := s.store.Job().Get(ctx, jobID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, lifecycle.NewJobNotFoundError(jobID)
		}
		return nil, lifecycle.NewDependencyError("store", err)
	}

	msg, err := s.store.Job().AddMessage(ctx, jobID, actor.ID, request.Text)
	if err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}

	resource := api.Message{SenderID: msg.SenderID, Text: msg.Text, CreatedAt: msg.CreatedAt}
	s.sink.PublishMessageAdded(jobID, api.MessageAddedEvent{JobID: jobID, Message: resource})
	return &resource, nil
}

// AddImage appends an already-hosted image URL to a job.
func (s *JobService) AddImage(ctx context.Context, jobID uuid.UUID, request api.ImageCreate) error {
	if err := s.validate.Struct(request); err != nil {
		return lifecycle.NewValidationError(err.Error())
	}

	if _, err := s.store.Job().Get(ctx, jobID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return lifecycle.NewJobNotFoundError(jobID)
		}
		return lifecycle.NewDependencyError("store", err)
	}

	if err := s.store.Job().AddImages(ctx, jobID, []string{request.URL}); err != nil {
		return lifecycle.NewDependencyError("store", err)
	}
	return nil
}

// StoreProofImage uploads image bytes to the blob store and returns the
// public URL. Used by the finish flow before the transition is applied.
func (s *JobService) StoreProofImage(ctx context.Context, jobID uuid.UUID, filename, contentType string, body io.Reader, size int64) (string, error) {
	name := fmt.Sprintf("%s-%s", jobID, filename)
	url, err := s.blobs.Put(ctx, name, contentType, body, size)
	if err != nil {
		return "", lifecycle.NewDependencyError("blob store", err)
	}
	zap.S().Named("job_service").Debugw("proof image stored", "job_id", jobID, "url", url)
	return url, nil
}
