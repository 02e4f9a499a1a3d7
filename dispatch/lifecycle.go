package dispatch

import (
	"fmt"

	"github.com/gbl08ma/firedispatch/types"
)

// validTransitions defines the allowed incident status transitions.
// Referral is not listed: it is a separate command available from any non-terminal status
var validTransitions = map[types.Status][]types.Status{
	types.StatusPending:    {types.StatusActive, types.StatusDispatched, types.StatusCompleted, types.StatusCancelled},
	types.StatusActive:     {types.StatusDispatched, types.StatusCompleted, types.StatusCancelled},
	types.StatusDispatched: {types.StatusEnRoute, types.StatusCompleted, types.StatusCancelled},
	types.StatusEnRoute:    {types.StatusOnScene, types.StatusCompleted, types.StatusCancelled},
	types.StatusOnScene:    {types.StatusCompleted, types.StatusCancelled},
	types.StatusCompleted:  {},
	types.StatusCancelled:  {},
	types.StatusReferred:   {},
}

// CanTransition returns whether an incident may move from one status to the other
func CanTransition(from, to types.Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses an incident in the given status may move to
func AllowedTransitions(from types.Status) []types.Status {
	allowed := validTransitions[from]
	result := make([]types.Status, len(allowed))
	copy(result, allowed)
	return result
}

// checkTransition validates moving incident to the target status
func checkTransition(incident *types.Incident, to types.Status) error {
	if incident.Status.IsTerminal() {
		return &Error{
			Kind:   KindAlreadyTerminal,
			Reason: fmt.Sprintf("Incident is already %s", incident.Status),
		}
	}
	if !CanTransition(incident.Status, to) {
		return &Error{
			Kind:   KindInvalidTransition,
			Reason: fmt.Sprintf("Incident cannot go from %s to %s", incident.Status, to),
		}
	}
	// on_scene is only reachable through en_route, but check the timestamp too
	// so that rows edited outside the coordinator cannot skip ahead
	if to == types.StatusOnScene && incident.EnRouteAt.IsZero() {
		return &Error{
			Kind:   KindInvalidTransition,
			Reason: "Incident never went en route",
		}
	}
	return nil
}
