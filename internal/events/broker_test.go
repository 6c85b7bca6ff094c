package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/stitchup/stitchup/api/v1alpha1"
)

func TestBrokerDeliversToJobSubscribers(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	jobID := uuid.New()
	sub := broker.Subscribe("client-1", jobID)

	broker.PublishStatusChanged(jobID, api.StatusChangedEvent{JobID: jobID, NewStatus: api.JobStatusAccepted})

	env := <-sub.C()
	assert.Equal(t, api.EventKindStatusChanged, env.Kind)

	var event api.StatusChangedEvent
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, jobID, event.JobID)
	assert.Equal(t, api.JobStatusAccepted, event.NewStatus)
}

func TestBrokerScopesDeliveryToTheJob(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	watched := uuid.New()
	other := uuid.New()
	sub := broker.Subscribe("client-1", watched)

	broker.PublishStatusChanged(other, api.StatusChangedEvent{JobID: other, NewStatus: api.JobStatusAccepted})
	broker.PublishMessageAdded(watched, api.MessageAddedEvent{JobID: watched, Message: api.Message{SenderID: "asha@example.com", Text: "hi"}})

	env := <-sub.C()
	assert.Equal(t, api.EventKindMessageAdded, env.Kind)
	select {
	case env := <-sub.C():
		t.Fatalf("unexpected second envelope: %s", env.Kind)
	default:
	}
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	broker := NewBroker(WithBufferSize(1))
	defer broker.Close()

	jobID := uuid.New()
	sub := broker.Subscribe("slow-client", jobID)

	broker.PublishStatusChanged(jobID, api.StatusChangedEvent{JobID: jobID, NewStatus: api.JobStatusAccepted})
	broker.PublishStatusChanged(jobID, api.StatusChangedEvent{JobID: jobID, NewStatus: api.JobStatusInProgress})

	// only the first envelope made it, the second was dropped not queued
	env := <-sub.C()
	var event api.StatusChangedEvent
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, api.JobStatusAccepted, event.NewStatus)

	select {
	case <-sub.C():
		t.Fatal("expected the second envelope to be dropped")
	default:
	}
}

func TestRemoveSubscriberClosesChannel(t *testing.T) {
	broker := NewBroker()
	jobID := uuid.New()
	sub := broker.Subscribe("client-1", jobID)

	broker.RemoveSubscriber("client-1")

	_, open := <-sub.C()
	assert.False(t, open)

	// publishing after removal must not panic
	broker.PublishStatusChanged(jobID, api.StatusChangedEvent{JobID: jobID, NewStatus: api.JobStatusAccepted})
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	sub := NewSubscriber("client-1", 1)
	sub.Close()
	sub.Close()
	assert.False(t, sub.send(Envelope{Kind: api.EventKindStatusChanged}))
}
