// Package workflow is the single source of truth for the order status
// lifecycle. Statuses move pending/reviewing -> accepted -> fulfilled, or
// pending/reviewing -> rejected/cancelled. Terminal statuses never transition.
package workflow

import (
	"errors"

	"github.com/mawlid1431/Arts/models"
)

var ErrIllegalTransition = errors.New("illegal order status transition")

// Action is a discrete admin operation on an order. The admin UI exposes these
// instead of a free-form status field so the legal set stays explicit.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionReject        Action = "reject"
	ActionMarkFulfilled Action = "mark_fulfilled"
)

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusAccepted, models.OrderStatusRejected, models.OrderStatusCancelled},
	models.OrderStatusReviewing: {models.OrderStatusAccepted, models.OrderStatusRejected, models.OrderStatusCancelled},
	models.OrderStatusAccepted:  {models.OrderStatusFulfilled},
	// fulfilled, rejected, cancelled: terminal
}

// CanTransition reports whether from -> to is in the legal transition set.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns the new status, or
// ErrIllegalTransition.
func Transition(from, to models.OrderStatus) (models.OrderStatus, error) {
	if !CanTransition(from, to) {
		return from, ErrIllegalTransition
	}
	return to, nil
}

// Terminal reports whether no transition leaves the given status.
func Terminal(s models.OrderStatus) bool {
	return len(transitions[s]) == 0
}

// Actions returns the admin actions available for an order in the given
// status. A fulfilled or rejected order offers none.
func Actions(s models.OrderStatus) []Action {
	var actions []Action
	if CanTransition(s, models.OrderStatusAccepted) {
		actions = append(actions, ActionAccept)
	}
	if CanTransition(s, models.OrderStatusRejected) {
		actions = append(actions, ActionReject)
	}
	if CanTransition(s, models.OrderStatusFulfilled) {
		actions = append(actions, ActionMarkFulfilled)
	}
	return actions
}

// Target maps an action to the status it produces.
func Target(a Action) (models.OrderStatus, bool) {
	switch a {
	case ActionAccept:
		return models.OrderStatusAccepted, true
	case ActionReject:
		return models.OrderStatusRejected, true
	case ActionMarkFulfilled:
		return models.OrderStatusFulfilled, true
	}
	return "", false
}
