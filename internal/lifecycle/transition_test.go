package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/store"
)

func TestResolveKnownActions(t *testing.T) {
	for _, action := range []api.Action{
		api.ActionAccept, api.ActionStart, api.ActionFinish, api.ActionConfirm,
		api.ActionReopen, api.ActionDeliver, api.ActionClose, api.ActionCancel,
	} {
		_, err := Resolve(action)
		assert.Nil(t, err, "action %s", action)
	}
}

func TestResolveUnknownAction(t *testing.T) {
	_, err := Resolve(api.Action("reject"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "reject")
}

func TestConfirmAcceptsLegacyAlias(t *testing.T) {
	rule, err := Resolve(api.ActionConfirm)
	require.Nil(t, err)
	assert.True(t, rule.allowsFrom(api.JobStatusFinishedByTailor))
	assert.True(t, rule.allowsFrom(api.JobStatusAwaitingUserConfirmation))
	assert.False(t, rule.allowsFrom(api.JobStatusInProgress))
}

func TestCancelDeltasDependOnSource(t *testing.T) {
	rule, err := Resolve(api.ActionCancel)
	require.Nil(t, err)

	deltas := rule.DeltasFor(api.JobStatusRequested)
	require.Len(t, deltas, 1)
	assert.Equal(t, store.CounterWaitingList, deltas[0].Field)
	assert.Equal(t, -1, deltas[0].Delta)

	deltas = rule.DeltasFor(api.JobStatusAccepted)
	require.Len(t, deltas, 1)
	assert.Equal(t, store.CounterCurrentOrders, deltas[0].Field)
	assert.Equal(t, -1, deltas[0].Delta)
}

func TestAcceptMovesBothCounters(t *testing.T) {
	rule, err := Resolve(api.ActionAccept)
	require.Nil(t, err)

	deltas := rule.DeltasFor(api.JobStatusRequested)
	require.Len(t, deltas, 2)
	assert.Equal(t, store.CounterWaitingList, deltas[0].Field)
	assert.Equal(t, -1, deltas[0].Delta)
	assert.Equal(t, store.CounterCurrentOrders, deltas[1].Field)
	assert.Equal(t, +1, deltas[1].Delta)
}

func TestFinishAndReopenMoveTheOrderSlot(t *testing.T) {
	rule, err := Resolve(api.ActionFinish)
	require.Nil(t, err)
	deltas := rule.DeltasFor(api.JobStatusInProgress)
	require.Len(t, deltas, 1)
	assert.Equal(t, store.CounterCurrentOrders, deltas[0].Field)
	assert.Equal(t, -1, deltas[0].Delta)

	rule, err = Resolve(api.ActionReopen)
	require.Nil(t, err)
	deltas = rule.DeltasFor(api.JobStatusFinishedByTailor)
	require.Len(t, deltas, 1)
	assert.Equal(t, store.CounterCurrentOrders, deltas[0].Field)
	assert.Equal(t, +1, deltas[0].Delta)

	// delivery does not touch the counters
	rule, err = Resolve(api.ActionDeliver)
	require.Nil(t, err)
	assert.Empty(t, rule.DeltasFor(api.JobStatusRiderAssigned))
}

func TestActorSets(t *testing.T) {
	cancel, err := Resolve(api.ActionCancel)
	require.Nil(t, err)
	assert.True(t, cancel.allowsActor(auth.RoleCustomer))
	assert.True(t, cancel.allowsActor(auth.RoleTailor))
	assert.False(t, cancel.allowsActor(auth.RoleRider))

	closeRule, err := Resolve(api.ActionClose)
	require.Nil(t, err)
	assert.True(t, closeRule.allowsActor(auth.RoleSystem))
	assert.False(t, closeRule.allowsActor(auth.RoleCustomer))
}

func TestNoTransitionProducesTheLegacyAlias(t *testing.T) {
	for action, rule := range transitions {
		assert.NotEqual(t, api.JobStatusAwaitingUserConfirmation, rule.To, "action %s", action)
	}
}
