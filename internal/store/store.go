package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Tailor() Tailor
	InitialMigration() error
	Seed() error
	Close() error
}

type DataStore struct {
	db     *gorm.DB
	job    Job
	tailor Tailor
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		job:    NewJobStore(db),
		tailor: NewTailorStore(db),
		db:     db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Tailor() Tailor {
	return s.tailor
}

func (s *DataStore) InitialMigration() error {
	if err := s.job.InitialMigration(); err != nil {
		return err
	}
	return s.tailor.InitialMigration()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
