package events

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// Envelope is the unit delivered to job subscribers. Data holds the kind's
// payload encoded as JSON.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Subscriber receives envelopes for the jobs it watches. Delivery is at
// most once: a full buffer drops the envelope rather than block the
// transition path.
type Subscriber struct {
	id     string
	ch     chan Envelope
	closed atomic.Bool
}

func NewSubscriber(id string, bufferSize int) *Subscriber {
	return &Subscriber{
		id: id,
		ch: make(chan Envelope, bufferSize),
	}
}

func (s *Subscriber) ID() string { return s.id }

// C returns the read-only envelope channel. It is closed when the
// subscriber is removed from the broker.
func (s *Subscriber) C() <-chan Envelope { return s.ch }

// send attempts a non-blocking delivery. It reports false when the
// envelope was dropped.
func (s *Subscriber) send(env Envelope) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.ch <- env:
		return true
	default:
		return false
	}
}

// Close closes the subscriber channel. Safe to call multiple times.
func (s *Subscriber) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}
