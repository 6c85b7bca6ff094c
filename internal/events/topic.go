package events

import (
	"sync"

	"github.com/google/uuid"
)

// JobTopic returns the topic name carrying a single job's events.
func JobTopic(jobID uuid.UUID) string { return "job:" + jobID.String() }

// TopicRegistry tracks which subscribers watch which topics. Safe for
// concurrent use.
type TopicRegistry struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscriber
}

func NewTopicRegistry() *TopicRegistry {
	return &TopicRegistry{topics: make(map[string]map[string]*Subscriber)}
}

func (tr *TopicRegistry) Subscribe(topic string, sub *Subscriber) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	subs, ok := tr.topics[topic]
	if !ok {
		subs = make(map[string]*Subscriber)
		tr.topics[topic] = subs
	}
	subs[sub.ID()] = sub
}

func (tr *TopicRegistry) Unsubscribe(topic, subscriberID string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	subs, ok := tr.topics[topic]
	if !ok {
		return
	}
	delete(subs, subscriberID)
	if len(subs) == 0 {
		delete(tr.topics, topic)
	}
}

func (tr *TopicRegistry) UnsubscribeAll(subscriberID string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for topic, subs := range tr.topics {
		delete(subs, subscriberID)
		if len(subs) == 0 {
			delete(tr.topics, topic)
		}
	}
}

// Publish delivers the envelope to every subscriber on the topic. It
// returns how many subscribers were targeted and how many deliveries
// succeeded; the difference is the drop count.
func (tr *TopicRegistry) Publish(topic string, env Envelope) (targeted, delivered int) {
	tr.mu.RLock()
	subs := tr.topics[topic]
	// copy so the send happens outside the lock
	targets := make([]*Subscriber, 0, len(subs))
	for _, sub := range subs {
		targets = append(targets, sub)
	}
	tr.mu.RUnlock()

	for _, sub := range targets {
		if sub.send(env) {
			delivered++
		}
	}
	return len(targets), delivered
}

func (tr *TopicRegistry) SubscriberCount(topic string) int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return len(tr.topics[topic])
}
