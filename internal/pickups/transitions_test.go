package pickups

import (
	"testing"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

func TestCanTransitionForwardEdges(t *testing.T) {
	order := []enums.PickupStatus{
		enums.PickupStatusPending,
		enums.PickupStatusMatched,
		enums.PickupStatusCollectorEnroute,
		enums.PickupStatusArrived,
		enums.PickupStatusInspecting,
		enums.PickupStatusCollected,
		enums.PickupStatusCompleted,
	}

	for i, from := range order {
		for j, to := range order {
			legal := CanTransition(from, to)
			if j == i+1 {
				if !legal {
					t.Errorf("%s -> %s should be legal", from, to)
				}
				continue
			}
			if legal {
				t.Errorf("%s -> %s should be illegal", from, to)
			}
		}
	}
}

func TestCanTransitionCancellation(t *testing.T) {
	nonTerminal := []enums.PickupStatus{
		enums.PickupStatusPending,
		enums.PickupStatusMatched,
		enums.PickupStatusCollectorEnroute,
		enums.PickupStatusArrived,
		enums.PickupStatusInspecting,
		enums.PickupStatusCollected,
	}
	for _, from := range nonTerminal {
		if !CanTransition(from, enums.PickupStatusCancelled) {
			t.Errorf("%s -> cancelled should be legal", from)
		}
	}

	for _, from := range []enums.PickupStatus{enums.PickupStatusCompleted, enums.PickupStatusCancelled} {
		if CanTransition(from, enums.PickupStatusCancelled) {
			t.Errorf("terminal %s must not cancel", from)
		}
	}
}

func TestTerminalStatesAdmitNothing(t *testing.T) {
	all := []enums.PickupStatus{
		enums.PickupStatusPending,
		enums.PickupStatusMatched,
		enums.PickupStatusCollectorEnroute,
		enums.PickupStatusArrived,
		enums.PickupStatusInspecting,
		enums.PickupStatusCollected,
		enums.PickupStatusCompleted,
		enums.PickupStatusCancelled,
	}
	for _, terminal := range []enums.PickupStatus{enums.PickupStatusCompleted, enums.PickupStatusCancelled} {
		for _, to := range all {
			if CanTransition(terminal, to) {
				t.Errorf("%s -> %s should be illegal", terminal, to)
			}
		}
	}
}

func TestNextStatus(t *testing.T) {
	next, ok := NextStatus(enums.PickupStatusInspecting)
	if !ok || next != enums.PickupStatusCollected {
		t.Fatalf("inspecting should advance to collected, got %s ok=%v", next, ok)
	}
	if _, ok := NextStatus(enums.PickupStatusCompleted); ok {
		t.Fatalf("completed has no successor")
	}
}
