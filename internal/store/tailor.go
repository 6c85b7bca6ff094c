package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stitchup/stitchup/internal/store/model"
	"github.com/stitchup/stitchup/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterField names a tailor capacity counter. Counters are mutated only
// through Increment; any other write path is a bug.
type CounterField string

const (
	CounterWaitingList   CounterField = "waiting_list_count"
	CounterCurrentOrders CounterField = "current_orders"
)

type Tailor interface {
	InitialMigration() error
	Create(ctx context.Context, tailor model.Tailor) (*model.Tailor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Tailor, error)
	List(ctx context.Context) (model.TailorList, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*model.Tailor, error)
	// Increment applies an atomic counter delta and returns the new value.
	// Decrements that would go below zero are floored at zero and logged;
	// underflow indicates drifted counters, not a caller error.
	Increment(ctx context.Context, id uuid.UUID, field CounterField, delta int) (int, error)
	// SetCounters overwrites both counters. Reserved for reconciliation
	// from job statuses; never called on the transition path.
	SetCounters(ctx context.Context, id uuid.UUID, waitingList, currentOrders int) error
}

type TailorStore struct {
	db *gorm.DB
}

// Make sure we conform to the Tailor interface
var _ Tailor = (*TailorStore)(nil)

func NewTailorStore(db *gorm.DB) Tailor {
	return &TailorStore{db: db}
}

func (s *TailorStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Tailor{})
}

func (s *TailorStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *TailorStore) Create(ctx context.Context, tailor model.Tailor) (*model.Tailor, error) {
	if result := s.getDB(ctx).Create(&tailor); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &tailor, nil
}

func (s *TailorStore) Get(ctx context.Context, id uuid.UUID) (*model.Tailor, error) {
	tailor := model.NewTailorFromID(id)
	if result := s.getDB(ctx).First(&tailor); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return tailor, nil
}

func (s *TailorStore) List(ctx context.Context) (model.TailorList, error) {
	var tailors model.TailorList
	if result := s.getDB(ctx).Order("name").Find(&tailors); result.Error != nil {
		return nil, result.Error
	}
	return tailors, nil
}

func (s *TailorStore) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*model.Tailor, error) {
	tailor := model.NewTailorFromID(id)
	result := s.getDB(ctx).Model(tailor).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("is_available", available)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return tailor, nil
}

func (s *TailorStore) Increment(ctx context.Context, id uuid.UUID, field CounterField, delta int) (int, error) {
	tailor := model.NewTailorFromID(id)
	result := s.getDB(ctx).Model(tailor).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		UpdateColumn(string(field), gorm.Expr(fmt.Sprintf("%s + ?", field), delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrRecordNotFound
	}

	newValue := tailor.WaitingListCount
	if field == CounterCurrentOrders {
		newValue = tailor.CurrentOrders
	}
	if newValue >= 0 {
		return newValue, nil
	}

	// Underflow: the counter drifted from the job statuses. Floor at zero
	// and leave a trace for out-of-band reconciliation.
	zap.S().Named("tailor_store").Errorw("counter underflow floored at zero",
		"tailor_id", id, "counter", string(field), "value", newValue)
	metrics.IncreaseCounterUnderflowsTotalMetric(string(field))

	result = s.getDB(ctx).Model(&model.Tailor{}).
		Where(fmt.Sprintf("id = ? AND %s < 0", field), id).
		UpdateColumn(string(field), 0)
	if result.Error != nil {
		return 0, result.Error
	}
	return 0, nil
}

func (s *TailorStore) SetCounters(ctx context.Context, id uuid.UUID, waitingList, currentOrders int) error {
	result := s.getDB(ctx).Model(&model.Tailor{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"waiting_list_count": waitingList,
			"current_orders":     currentOrders,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
