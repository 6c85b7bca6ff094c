// Package memory provides a mutex-guarded in-memory Store. It backs unit
// tests that exercise concurrent transitions without a database; semantics
// mirror the gorm store, including conditional status swaps and counter
// floors.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/store"
	"github.com/stitchup/stitchup/internal/store/model"
)

type Store struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*model.Job
	tailors map[uuid.UUID]*model.Tailor
	nextID  uint
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		jobs:    make(map[uuid.UUID]*model.Job),
		tailors: make(map[uuid.UUID]*model.Tailor),
	}
}

func (s *Store) NewTransactionContext(ctx context.Context) (context.Context, error) {
	// Single-mutex store: every operation is already atomic.
	return ctx, nil
}

func (s *Store) Job() store.Job       { return (*jobStore)(s) }
func (s *Store) Tailor() store.Tailor { return (*tailorStore)(s) }

func (s *Store) InitialMigration() error { return nil }
func (s *Store) Seed() error             { return nil }
func (s *Store) Close() error            { return nil }

type jobStore Store

var _ store.Job = (*jobStore)(nil)

func (s *jobStore) InitialMigration() error { return nil }

func (s *jobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return nil, store.ErrDuplicateKey
	}
	stored := job
	s.jobs[job.ID] = &stored
	return copyJob(&stored), nil
}

func (s *jobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return copyJob(job), nil
}

func (s *jobStore) List(ctx context.Context, filter *store.JobQueryFilter) (model.JobList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make(model.JobList, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *copyJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (s *jobStore) UpdateStatus(ctx context.Context, id uuid.UUID, allowedFrom []api.JobStatus, patch model.JobPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, from := range allowedFrom {
		if job.Status == string(from) {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	job.Status = string(patch.Status)
	job.UpdatedAt = time.Now()
	if patch.NeedsRevision != nil {
		job.NeedsRevision = *patch.NeedsRevision
	}
	if patch.Price != nil {
		job.Price = patch.Price
	}
	if patch.CancelReason != nil {
		job.CancelReason = patch.CancelReason
	}
	if patch.DeliveryDate != nil {
		job.DeliveryDate = patch.DeliveryDate
	}
	if patch.DeliveryTime != nil {
		job.DeliveryTime = patch.DeliveryTime
	}
	if patch.RiderInfo != nil {
		job.RiderInfo = model.MakeJSONField(*patch.RiderInfo)
	}
	if patch.AcceptedAt != nil {
		job.AcceptedAt = patch.AcceptedAt
	}
	if patch.StartedAt != nil {
		job.StartedAt = patch.StartedAt
	}
	if patch.FinishedAt != nil {
		job.FinishedAt = patch.FinishedAt
	}
	if patch.ConfirmedAt != nil {
		job.ConfirmedAt = patch.ConfirmedAt
	}
	if patch.DeliveredAt != nil {
		job.DeliveredAt = patch.DeliveredAt
	}
	return true, nil
}

func (s *jobStore) AddImages(ctx context.Context, jobID uuid.UUID, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.ErrRecordNotFound
	}
	now := time.Now()
	for _, url := range urls {
		s.nextID++
		job.Images = append(job.Images, model.JobImage{ID: s.nextID, CreatedAt: now, JobID: jobID, URL: url})
	}
	return nil
}

func (s *jobStore) AddMessage(ctx context.Context, jobID uuid.UUID, senderID, text string) (*model.JobMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	s.nextID++
	msg := model.JobMessage{ID: s.nextID, CreatedAt: time.Now(), JobID: jobID, SenderID: senderID, Text: text}
	job.Messages = append(job.Messages, msg)
	return &msg, nil
}

func (s *jobStore) CountForTailorByStatus(ctx context.Context, tailorID uuid.UUID, statuses []api.JobStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, job := range s.jobs {
		if job.TailorID != tailorID {
			continue
		}
		for _, st := range statuses {
			if job.Status == string(st) {
				count++
				break
			}
		}
	}
	return count, nil
}

func (s *jobStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

type tailorStore Store

var _ store.Tailor = (*tailorStore)(nil)

func (s *tailorStore) InitialMigration() error { return nil }

func (s *tailorStore) Create(ctx context.Context, tailor model.Tailor) (*model.Tailor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tailors[tailor.ID]; exists {
		return nil, store.ErrDuplicateKey
	}
	stored := tailor
	s.tailors[tailor.ID] = &stored
	out := stored
	return &out, nil
}

func (s *tailorStore) Get(ctx context.Context, id uuid.UUID) (*model.Tailor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tailor, ok := s.tailors[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	out := *tailor
	return &out, nil
}

func (s *tailorStore) List(ctx context.Context) (model.TailorList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tailors := make(model.TailorList, 0, len(s.tailors))
	for _, tailor := range s.tailors {
		tailors = append(tailors, *tailor)
	}
	sort.Slice(tailors, func(i, j int) bool { return tailors[i].Name < tailors[j].Name })
	return tailors, nil
}

func (s *tailorStore) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*model.Tailor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tailor, ok := s.tailors[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	tailor.IsAvailable = available
	out := *tailor
	return &out, nil
}

func (s *tailorStore) Increment(ctx context.Context, id uuid.UUID, field store.CounterField, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tailor, ok := s.tailors[id]
	if !ok {
		return 0, store.ErrRecordNotFound
	}
	value := &tailor.WaitingListCount
	if field == store.CounterCurrentOrders {
		value = &tailor.CurrentOrders
	}
	*value += delta
	if *value < 0 {
		zap.S().Named("memory_store").Errorw("counter underflow floored at zero",
			"tailor_id", id, "counter", string(field), "value", *value)
		*value = 0
	}
	return *value, nil
}

func (s *tailorStore) SetCounters(ctx context.Context, id uuid.UUID, waitingList, currentOrders int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tailor, ok := s.tailors[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	tailor.WaitingListCount = waitingList
	tailor.CurrentOrders = currentOrders
	return nil
}

func copyJob(job *model.Job) *model.Job {
	out := *job
	out.Images = append([]model.JobImage(nil), job.Images...)
	out.Messages = append([]model.JobMessage(nil), job.Messages...)
	return &out
}
