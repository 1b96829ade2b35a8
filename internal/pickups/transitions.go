package pickups

import "github.com/greenloop-app/greenloop-backend/pkg/enums"

// forwardEdges lists the single legal successor for every non-terminal status.
// Cancellation is handled separately: it is reachable from any non-terminal
// state and is never a forward edge.
var forwardEdges = map[enums.PickupStatus]enums.PickupStatus{
	enums.PickupStatusPending:          enums.PickupStatusMatched,
	enums.PickupStatusMatched:          enums.PickupStatusCollectorEnroute,
	enums.PickupStatusCollectorEnroute: enums.PickupStatusArrived,
	enums.PickupStatusArrived:          enums.PickupStatusInspecting,
	enums.PickupStatusInspecting:       enums.PickupStatusCollected,
	enums.PickupStatusCollected:        enums.PickupStatusCompleted,
}

// CanTransition reports whether a single transition from one status to
// another is legal. Stages cannot be skipped and terminal states admit
// nothing, not even re-entry into themselves.
func CanTransition(from, to enums.PickupStatus) bool {
	if to == enums.PickupStatusCancelled {
		return !from.IsTerminal()
	}
	return forwardEdges[from] == to
}

// NextStatus returns the single forward successor of a status, if any.
func NextStatus(from enums.PickupStatus) (enums.PickupStatus, bool) {
	next, ok := forwardEdges[from]
	return next, ok
}
