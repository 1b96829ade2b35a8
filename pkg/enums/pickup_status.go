package enums

import "fmt"

// PickupStatus tracks the lifecycle of a pickup request.
type PickupStatus string

const (
	PickupStatusPending          PickupStatus = "pending"
	PickupStatusMatched          PickupStatus = "matched"
	PickupStatusCollectorEnroute PickupStatus = "collector_enroute"
	PickupStatusArrived          PickupStatus = "arrived"
	PickupStatusInspecting       PickupStatus = "inspecting"
	PickupStatusCollected        PickupStatus = "collected"
	PickupStatusCompleted        PickupStatus = "completed"
	PickupStatusCancelled        PickupStatus = "cancelled"
)

var validPickupStatuses = []PickupStatus{
	PickupStatusPending,
	PickupStatusMatched,
	PickupStatusCollectorEnroute,
	PickupStatusArrived,
	PickupStatusInspecting,
	PickupStatusCollected,
	PickupStatusCompleted,
	PickupStatusCancelled,
}

// String implements fmt.Stringer.
func (s PickupStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PickupStatus.
func (s PickupStatus) IsValid() bool {
	for _, candidate := range validPickupStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s PickupStatus) IsTerminal() bool {
	return s == PickupStatusCompleted || s == PickupStatusCancelled
}

// ParsePickupStatus converts raw input into a PickupStatus.
func ParsePickupStatus(value string) (PickupStatus, error) {
	for _, candidate := range validPickupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup status %q", value)
}
