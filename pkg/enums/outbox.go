package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregatePickupRequest OutboxAggregateType = "pickup_request"
	AggregateProfile       OutboxAggregateType = "profile"
	AggregateNotification  OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregatePickupRequest,
	AggregateProfile,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventPickupCreated       OutboxEventType = "pickup_created"
	EventPickupMatched       OutboxEventType = "pickup_matched"
	EventPickupStatusChanged OutboxEventType = "pickup_status_changed"
	EventPickupCompleted     OutboxEventType = "pickup_completed"
	EventPickupCancelled     OutboxEventType = "pickup_cancelled"
	EventCreditsAwarded      OutboxEventType = "credits_awarded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventPickupCreated,
	EventPickupMatched,
	EventPickupStatusChanged,
	EventPickupCompleted,
	EventPickupCancelled,
	EventCreditsAwarded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
