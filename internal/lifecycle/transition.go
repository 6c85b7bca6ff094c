package lifecycle

import (
	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/store"

	api "github.com/stitchup/stitchup/api/v1alpha1"
)

// CounterDelta is a capacity counter adjustment applied after a successful
// transition. Counter failures are logged, not surfaced: the status change
// is the source of truth and counters can be reconciled from it.
type CounterDelta struct {
	Field store.CounterField
	Delta int
}

// Rule describes one lifecycle action: the statuses it may be applied from,
// the status it produces, and who may perform it.
type Rule struct {
	From   []api.JobStatus
	To     api.JobStatus
	Actors []auth.Role
	// Deltas are keyed by the source status the transition was applied
	// from; deltas under anySource apply regardless of the source.
	Deltas map[api.JobStatus][]CounterDelta
}

const anySource api.JobStatus = "*"

var transitions = map[api.Action]Rule{
	api.ActionAccept: {
		From:   []api.JobStatus{api.JobStatusRequested},
		To:     api.JobStatusAccepted,
		Actors: []auth.Role{auth.RoleTailor},
		Deltas: map[api.JobStatus][]CounterDelta{
			anySource: {
				{Field: store.CounterWaitingList, Delta: -1},
				{Field: store.CounterCurrentOrders, Delta: +1},
			},
		},
	},
	api.ActionStart: {
		From:   []api.JobStatus{api.JobStatusAccepted},
		To:     api.JobStatusInProgress,
		Actors: []auth.Role{auth.RoleTailor},
	},
	api.ActionFinish: {
		From:   []api.JobStatus{api.JobStatusInProgress},
		To:     api.JobStatusFinishedByTailor,
		Actors: []auth.Role{auth.RoleTailor},
		Deltas: map[api.JobStatus][]CounterDelta{
			anySource: {
				{Field: store.CounterCurrentOrders, Delta: -1},
			},
		},
	},
	api.ActionConfirm: {
		From:   []api.JobStatus{api.JobStatusFinishedByTailor, api.JobStatusAwaitingUserConfirmation},
		To:     api.JobStatusRiderAssigned,
		Actors: []auth.Role{auth.RoleCustomer},
	},
	// reopen puts the job back on the tailor's plate, so the slot released
	// by finish is re-taken.
	api.ActionReopen: {
		From:   []api.JobStatus{api.JobStatusFinishedByTailor, api.JobStatusAwaitingUserConfirmation},
		To:     api.JobStatusInProgress,
		Actors: []auth.Role{auth.RoleCustomer},
		Deltas: map[api.JobStatus][]CounterDelta{
			anySource: {
				{Field: store.CounterCurrentOrders, Delta: +1},
			},
		},
	},
	api.ActionDeliver: {
		From:   []api.JobStatus{api.JobStatusRiderAssigned},
		To:     api.JobStatusDelivered,
		Actors: []auth.Role{auth.RoleRider, auth.RoleSystem},
	},
	api.ActionClose: {
		From:   []api.JobStatus{api.JobStatusDelivered},
		To:     api.JobStatusClosed,
		Actors: []auth.Role{auth.RoleSystem},
	},
	api.ActionCancel: {
		From:   []api.JobStatus{api.JobStatusRequested, api.JobStatusAccepted},
		To:     api.JobStatusCancelled,
		Actors: []auth.Role{auth.RoleCustomer, auth.RoleTailor},
		Deltas: map[api.JobStatus][]CounterDelta{
			api.JobStatusRequested: {
				{Field: store.CounterWaitingList, Delta: -1},
			},
			api.JobStatusAccepted: {
				{Field: store.CounterCurrentOrders, Delta: -1},
			},
		},
	},
}

// Resolve returns the rule for action. Unknown actions are reported as
// invalid transitions, not validation failures: the action vocabulary is
// part of the state machine.
func Resolve(action api.Action) (Rule, *InvalidTransitionError) {
	rule, ok := transitions[action]
	if !ok {
		return Rule{}, NewUnknownActionError(action)
	}
	return rule, nil
}

func (r Rule) allowsFrom(status api.JobStatus) bool {
	for _, from := range r.From {
		if from == status {
			return true
		}
	}
	return false
}

func (r Rule) allowsActor(role auth.Role) bool {
	for _, actor := range r.Actors {
		if actor == role {
			return true
		}
	}
	return false
}

// DeltasFor returns the counter adjustments for a transition applied from
// the given status.
func (r Rule) DeltasFor(from api.JobStatus) []CounterDelta {
	if deltas, ok := r.Deltas[from]; ok {
		return deltas
	}
	return r.Deltas[anySource]
}
