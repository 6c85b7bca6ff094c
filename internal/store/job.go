package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/store/model"
	"gorm.io/gorm"
)

type Job interface {
	InitialMigration() error
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter *JobQueryFilter) (model.JobList, error)
	// UpdateStatus performs the compare-and-swap transition: the patch is
	// applied in a single conditional UPDATE that only matches while the
	// job's current status is in allowedFrom. It reports whether a row
	// matched; a false return with a nil error means the job's status
	// changed since the caller observed it.
	UpdateStatus(ctx context.Context, id uuid.UUID, allowedFrom []api.JobStatus, patch model.JobPatch) (bool, error)
	AddImages(ctx context.Context, jobID uuid.UUID, urls []string) error
	AddMessage(ctx context.Context, jobID uuid.UUID, senderID, text string) (*model.JobMessage, error)
	CountForTailorByStatus(ctx context.Context, tailorID uuid.UUID, statuses []api.JobStatus) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to the Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Job{}, &model.JobImage{}, &model.JobMessage{})
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if result := s.getDB(ctx).Create(&job); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job := model.NewJobFromID(id)
	result := s.getDB(ctx).
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("job_images.id") }).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB { return tx.Order("job_messages.id") }).
		First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return job, nil
}

func (s *JobStore) List(ctx context.Context, filter *JobQueryFilter) (model.JobList, error) {
	var jobs model.JobList
	tx := s.getDB(ctx).
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("job_images.id") }).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB { return tx.Order("job_messages.id") })
	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if result := tx.Order("created_at DESC").Find(&jobs); result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, allowedFrom []api.JobStatus, patch model.JobPatch) (bool, error) {
	updates := map[string]any{"status": string(patch.Status)}
	if patch.NeedsRevision != nil {
		updates["needs_revision"] = *patch.NeedsRevision
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.CancelReason != nil {
		updates["cancel_reason"] = *patch.CancelReason
	}
	if patch.DeliveryDate != nil {
		updates["delivery_date"] = *patch.DeliveryDate
	}
	if patch.DeliveryTime != nil {
		updates["delivery_time"] = *patch.DeliveryTime
	}
	if patch.RiderInfo != nil {
		updates["rider_info"] = model.MakeJSONField(*patch.RiderInfo)
	}
	if patch.AcceptedAt != nil {
		updates["accepted_at"] = *patch.AcceptedAt
	}
	if patch.StartedAt != nil {
		updates["started_at"] = *patch.StartedAt
	}
	if patch.FinishedAt != nil {
		updates["finished_at"] = *patch.FinishedAt
	}
	if patch.ConfirmedAt != nil {
		updates["confirmed_at"] = *patch.ConfirmedAt
	}
	if patch.DeliveredAt != nil {
		updates["delivered_at"] = *patch.DeliveredAt
	}

	from := make([]string, 0, len(allowedFrom))
	for _, st := range allowedFrom {
		from = append(from, string(st))
	}

	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *JobStore) AddImages(ctx context.Context, jobID uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	images := make([]model.JobImage, 0, len(urls))
	now := time.Now()
	for _, url := range urls {
		images = append(images, model.JobImage{JobID: jobID, URL: url, CreatedAt: now})
	}
	return s.getDB(ctx).Create(&images).Error
}

func (s *JobStore) AddMessage(ctx context.Context, jobID uuid.UUID, senderID, text string) (*model.JobMessage, error) {
	msg := model.JobMessage{
		JobID:     jobID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if result := s.getDB(ctx).Create(&msg); result.Error != nil {
		return nil, result.Error
	}
	return &msg, nil
}

func (s *JobStore) CountForTailorByStatus(ctx context.Context, tailorID uuid.UUID, statuses []api.JobStatus) (int, error) {
	in := make([]string, 0, len(statuses))
	for _, st := range statuses {
		in = append(in, string(st))
	}
	var count int64
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("tailor_id = ? AND status IN ?", tailorID, in).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

func (s *JobStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string
		Total  int
	}
	result := s.getDB(ctx).Model(&model.Job{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
