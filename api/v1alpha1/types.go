package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

type WorkType string

const (
	WorkTypeLight WorkType = "light"
	WorkTypeHeavy WorkType = "heavy"
)

type JobStatus string

const (
	JobStatusRequested        JobStatus = "requested"
	JobStatusAccepted         JobStatus = "accepted"
	JobStatusInProgress       JobStatus = "in_progress"
	JobStatusFinishedByTailor JobStatus = "finished_by_tailor"
	// JobStatusAwaitingUserConfirmation is a legacy alias accepted as a
	// source state by confirm/reopen. No transition produces it.
	JobStatusAwaitingUserConfirmation JobStatus = "awaiting_user_confirmation"
	JobStatusRiderAssigned            JobStatus = "rider_assigned"
	JobStatusDelivered                JobStatus = "delivered"
	JobStatusClosed                   JobStatus = "closed"
	JobStatusCancelled                JobStatus = "cancelled"
)

type Action string

const (
	ActionCreate  Action = "create"
	ActionAccept  Action = "accept"
	ActionStart   Action = "start"
	ActionFinish  Action = "finish"
	ActionConfirm Action = "confirm"
	ActionReopen  Action = "reopen"
	ActionDeliver Action = "deliver"
	ActionClose   Action = "close"
	ActionCancel  Action = "cancel"
)

type RiderInfo struct {
	Name       string `json:"name"`
	Vehicle    string `json:"vehicle"`
	Phone      string `json:"phone"`
	EtaMinutes int    `json:"etaMinutes"`
}

type Message struct {
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Job struct {
	ID               uuid.UUID  `json:"id"`
	CustomerID       string     `json:"customerId"`
	TailorID         uuid.UUID  `json:"tailorId"`
	WorkType         WorkType   `json:"workType"`
	Status           JobStatus  `json:"status"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	Images           []string   `json:"images"`
	Messages         []Message  `json:"messages"`
	Price            *float64   `json:"price,omitempty"`
	NeedsRevision    bool       `json:"needsRevision"`
	CancelReason     *string    `json:"cancelReason,omitempty"`
	DeliveryDate     *string    `json:"deliveryDate,omitempty"`
	DeliveryTime     *string    `json:"deliveryTime,omitempty"`
	RiderInfo        *RiderInfo `json:"riderInfo,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	AcceptedAt       *time.Time `json:"acceptedAt,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	FinishedAt       *time.Time `json:"finishedAt,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmedAt,omitempty"`
	DeliveredAt      *time.Time `json:"deliveredAt,omitempty"`
}

type JobList []Job

type Tailor struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone,omitempty"`
	ShopPhotoURL     string    `json:"shopPhotoUrl,omitempty"`
	Address          string    `json:"address,omitempty"`
	IsAvailable      bool      `json:"isAvailable"`
	CurrentOrders    int       `json:"currentOrders"`
	WaitingListCount int       `json:"waitingListCount"`
	Rating           float64   `json:"rating"`
	PriceFrom        float64   `json:"priceFrom"`
	LightAvgMins     int       `json:"lightAvgMins"`
	HeavyAvgMins     int       `json:"heavyAvgMins"`
	// Wait estimates computed at read time from the live queue depth.
	EstimatedWaitLight int `json:"estimatedWaitLight"`
	EstimatedWaitHeavy int `json:"estimatedWaitHeavy"`
}

type TailorList []Tailor

type JobCreate struct {
	TailorID uuid.UUID `json:"tailorId" validate:"required"`
	WorkType WorkType  `json:"workType" validate:"required,oneof=light heavy"`
}

type JobConfirm struct {
	DeliveryDate string `json:"deliveryDate" validate:"required"`
	DeliveryTime string `json:"deliveryTime" validate:"required"`
}

type JobFinish struct {
	ImageURLs []string `json:"imageUrls"`
	Price     *float64 `json:"price,omitempty"`
}

type JobCancel struct {
	Reason string `json:"reason,omitempty"`
}

type MessageCreate struct {
	Text string `json:"text" validate:"required"`
}

type ImageCreate struct {
	URL string `json:"url" validate:"required,url"`
}

type TailorAvailabilityUpdate struct {
	IsAvailable bool `json:"isAvailable"`
}

type Error struct {
	Message string `json:"message"`
}
