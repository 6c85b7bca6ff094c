package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	api "github.com/stitchup/stitchup/api/v1alpha1"
)

type Job struct {
	ID               uuid.UUID `gorm:"primaryKey;"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
	CustomerID       string    `gorm:"index;not null"`
	TailorID         uuid.UUID `gorm:"index;not null"`
	WorkType         string    `gorm:"not null"`
	Status           string    `gorm:"index;not null"`
	EstimatedMinutes int       `gorm:"not null"`
	Price            *float64
	NeedsRevision    bool `gorm:"not null;default:false"`
	CancelReason     *string
	DeliveryDate     *string
	DeliveryTime     *string
	RiderInfo        *JSONField[api.RiderInfo] `gorm:"type:jsonb"`
	Images           []JobImage                `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE;"`
	Messages         []JobMessage              `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE;"`
	AcceptedAt       *time.Time
	StartedAt        *time.Time
	FinishedAt       *time.Time
	ConfirmedAt      *time.Time
	DeliveredAt      *time.Time
}

// JobImage is an append-only proof image reference.
type JobImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	JobID     uuid.UUID `gorm:"index;not null"`
	URL       string    `gorm:"not null"`
}

// JobMessage is an append-only chat message, independent of job status.
type JobMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	JobID     uuid.UUID `gorm:"index;not null"`
	SenderID  string    `gorm:"not null"`
	Text      string    `gorm:"not null"`
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

func NewJobFromID(id uuid.UUID) *Job {
	return &Job{ID: id}
}

// JobPatch holds the fields a lifecycle transition may set alongside the
// status change. Nil fields are left untouched. The patch is applied in the
// same conditional update that swaps the status.
type JobPatch struct {
	Status        api.JobStatus
	NeedsRevision *bool
	Price         *float64
	CancelReason  *string
	DeliveryDate  *string
	DeliveryTime  *string
	RiderInfo     *api.RiderInfo
	AcceptedAt    *time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	ConfirmedAt   *time.Time
	DeliveredAt   *time.Time
}
