package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/lifecycle"
	"github.com/stitchup/stitchup/internal/store"
	"github.com/stitchup/stitchup/pkg/metrics"
)

// activeStatuses are the statuses counted as a tailor's current workload:
// accepted and in-progress work, including revisions. Finished jobs have
// already released their slot.
var activeStatuses = []api.JobStatus{
	api.JobStatusAccepted,
	api.JobStatusInProgress,
}

type TailorService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewTailorService(st store.Store) *TailorService {
	return &TailorService{store: st, log: zap.S().Named("tailor_service")}
}

func (s *TailorService) GetTailor(ctx context.Context, id uuid.UUID) (*api.Tailor, error) {
	tailor, err := s.store.Tailor().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, lifecycle.NewTailorNotFoundError(id)
		}
		return nil, lifecycle.NewDependencyError("store", err)
	}
	resource := tailor.ToApiResource()
	return &resource, nil
}

func (s *TailorService) ListTailors(ctx context.Context) (api.TailorList, error) {
	tailors, err := s.store.Tailor().List(ctx)
	if err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}
	return tailors.ToApiResource(), nil
}

// SetAvailability toggles whether the tailor accepts new jobs. Only the
// tailor themselves or the system may flip it.
func (s *TailorService) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*api.Tailor, error) {
	actor := auth.MustHaveUser(ctx)
	if actor.Role != auth.RoleTailor && actor.Role != auth.RoleSystem {
		return nil, lifecycle.NewForbiddenError("set availability for", string(actor.Role))
	}

	tailor, err := s.store.Tailor().SetAvailability(ctx, id, available)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, lifecycle.NewTailorNotFoundError(id)
		}
		return nil, lifecycle.NewDependencyError("store", err)
	}
	s.log.Infow("tailor availability updated", "tailor_id", id, "is_available", available)
	resource := tailor.ToApiResource()
	return &resource, nil
}

// ReconcileCounters recomputes a tailor's capacity counters from the job
// statuses and overwrites the stored values. Counters drift when a counter
// adjustment fails after a committed transition; the job statuses are the
// source of truth.
func (s *TailorService) ReconcileCounters(ctx context.Context, id uuid.UUID) (*api.Tailor, error) {
	actor := auth.MustHaveUser(ctx)
	if actor.Role != auth.RoleSystem {
		return nil, lifecycle.NewForbiddenError("reconcile counters for", string(actor.Role))
	}

	if _, err := s.store.Tailor().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, lifecycle.NewTailorNotFoundError(id)
		}
		return nil, lifecycle.NewDependencyError("store", err)
	}

	waiting, err := s.store.Job().CountForTailorByStatus(ctx, id, []api.JobStatus{api.JobStatusRequested})
	if err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}
	current, err := s.store.Job().CountForTailorByStatus(ctx, id, activeStatuses)
	if err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}

	if err := s.store.Tailor().SetCounters(ctx, id, waiting, current); err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}
	s.log.Infow("tailor counters reconciled",
		"tailor_id", id, "waiting_list_count", waiting, "current_orders", current)

	tailor, err := s.store.Tailor().Get(ctx, id)
	if err != nil {
		return nil, lifecycle.NewDependencyError("store", err)
	}
	resource := tailor.ToApiResource()
	return &resource, nil
}

// RefreshStatusMetrics republishes the per-status job count gauge. Called
// on a timer by the API server.
func (s *TailorService) RefreshStatusMetrics(ctx context.Context) error {
	counts, err := s.store.Job().CountByStatus(ctx)
	if err != nil {
		return err
	}
	for _, status := range []api.JobStatus{
		api.JobStatusRequested, api.JobStatusAccepted, api.JobStatusInProgress,
		api.JobStatusFinishedByTailor, api.JobStatusRiderAssigned,
		api.JobStatusDelivered, api.JobStatusClosed, api.JobStatusCancelled,
	} {
		metrics.UpdateJobStatusCountMetric(string(status), counts[string(status)])
	}
	return nil
}
