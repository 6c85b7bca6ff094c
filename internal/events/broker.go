package events

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/pkg/metrics"
)

// DefaultBufferSize is the default per-subscriber envelope buffer.
const DefaultBufferSize = 64

// Broker fans job events out to in-process subscribers, one topic per job.
// Delivery is at most once and never blocks the caller; drops are counted
// and logged. When an audit producer is attached every published envelope
// is also handed to it.
type Broker struct {
	topics      *TopicRegistry
	subscribers sync.Map // subscriberID → *Subscriber
	audit       *EventProducer
	bufferSize  int
	log         *zap.SugaredLogger
}

type BrokerOption func(*Broker)

// WithBufferSize sets the per-subscriber envelope buffer size.
func WithBufferSize(size int) BrokerOption {
	return func(b *Broker) { b.bufferSize = size }
}

// WithAuditProducer attaches a producer that receives a copy of every
// published envelope.
func WithAuditProducer(producer *EventProducer) BrokerOption {
	return func(b *Broker) { b.audit = producer }
}

func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		topics:     NewTopicRegistry(),
		bufferSize: DefaultBufferSize,
		log:        zap.S().Named("events"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe creates a subscriber watching the given jobs. Events published
// before this call are not replayed; callers needing the current state
// should read the job first.
func (b *Broker) Subscribe(subscriberID string, jobIDs ...uuid.UUID) *Subscriber {
	sub := NewSubscriber(subscriberID, b.bufferSize)
	b.subscribers.Store(subscriberID, sub)
	for _, jobID := range jobIDs {
		b.topics.Subscribe(JobTopic(jobID), sub)
	}
	return sub
}

// RemoveSubscriber detaches a subscriber from all topics and closes its
// channel.
func (b *Broker) RemoveSubscriber(subscriberID string) {
	b.topics.UnsubscribeAll(subscriberID)
	if val, ok := b.subscribers.LoadAndDelete(subscriberID); ok {
		val.(*Subscriber).Close()
	}
}

func (b *Broker) PublishStatusChanged(jobID uuid.UUID, event api.StatusChangedEvent) {
	b.publish(jobID, api.EventKindStatusChanged, event)
}

func (b *Broker) PublishMessageAdded(jobID uuid.UUID, event api.MessageAddedEvent) {
	b.publish(jobID, api.EventKindMessageAdded, event)
}

func (b *Broker) publish(jobID uuid.UUID, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.log.Errorw("failed to encode event", "kind", kind, "job_id", jobID, "error", err)
		return
	}
	env := Envelope{Kind: kind, Timestamp: time.Now().UTC(), Data: data}

	targeted, delivered := b.topics.Publish(JobTopic(jobID), env)
	metrics.IncreaseFanoutEventsTotalMetric(kind)
	if dropped := targeted - delivered; dropped > 0 {
		metrics.IncreaseFanoutDropsTotalMetric(kind)
		b.log.Warnw("dropped events for slow subscribers",
			"kind", kind, "job_id", jobID, "dropped", dropped)
	}

	if b.audit != nil {
		if err := b.audit.Write(context.Background(), kind, bytes.NewReader(data)); err != nil {
			b.log.Errorw("failed to hand event to audit producer", "kind", kind, "error", err)
		}
	}
}

// Close closes every subscriber.
func (b *Broker) Close() {
	b.subscribers.Range(func(key, value any) bool {
		value.(*Subscriber).Close()
		b.subscribers.Delete(key)
		return true
	})
	b.log.Info("event broker closed")
}
