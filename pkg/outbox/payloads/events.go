package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

// PickupCreatedEvent signals that a donor scheduled a new pickup.
type PickupCreatedEvent struct {
	RequestID         uuid.UUID       `json:"requestId"`
	DonorID           uuid.UUID       `json:"donorId"`
	City              string          `json:"city"`
	TimeSlot          enums.TimeSlot  `json:"timeSlot"`
	PreferredDate     time.Time       `json:"preferredDate"`
	TotalItems        int             `json:"totalItems"`
	EstimatedWeightKg decimal.Decimal `json:"estimatedWeightKg"`
	EstimatedCredits  int             `json:"estimatedCredits"`
}

// PickupMatchedEvent is emitted when a collector claims a pending pickup.
type PickupMatchedEvent struct {
	RequestID   uuid.UUID `json:"requestId"`
	DonorID     uuid.UUID `json:"donorId"`
	CollectorID uuid.UUID `json:"collectorId"`
	MatchedAt   time.Time `json:"matchedAt"`
}

// PickupStatusChangedEvent reports every lifecycle hop of a pickup.
type PickupStatusChangedEvent struct {
	RequestID   uuid.UUID          `json:"requestId"`
	DonorID     uuid.UUID          `json:"donorId"`
	CollectorID *uuid.UUID         `json:"collectorId,omitempty"`
	From        enums.PickupStatus `json:"from"`
	To          enums.PickupStatus `json:"to"`
	ChangedAt   time.Time          `json:"changedAt"`
}

// PickupCompletedEvent surfaces the verified totals when a pickup finishes.
type PickupCompletedEvent struct {
	RequestID      uuid.UUID       `json:"requestId"`
	DonorID        uuid.UUID       `json:"donorId"`
	CollectorID    uuid.UUID       `json:"collectorId"`
	ActualWeightKg decimal.Decimal `json:"actualWeightKg"`
	CreditsAwarded int             `json:"creditsAwarded"`
	CO2SavedKg     decimal.Decimal `json:"co2SavedKg"`
	CompletedAt    time.Time       `json:"completedAt"`
}

// PickupCancelledEvent is emitted whenever a pickup is cancelled pre-completion.
type PickupCancelledEvent struct {
	RequestID   uuid.UUID  `json:"requestId"`
	DonorID     uuid.UUID  `json:"donorId"`
	CollectorID *uuid.UUID `json:"collectorId,omitempty"`
	CancelledAt time.Time  `json:"cancelledAt"`
	Reason      string     `json:"reason,omitempty"`
}

// CreditsAwardedEvent reports a ledger credit together with the new balance.
type CreditsAwardedEvent struct {
	UserID     uuid.UUID                   `json:"userId"`
	RequestID  *uuid.UUID                  `json:"requestId,omitempty"`
	Amount     int                         `json:"amount"`
	Type       enums.CreditTransactionType `json:"type"`
	NewBalance int                         `json:"newBalance"`
	BadgeLevel enums.BadgeLevel            `json:"badgeLevel"`
}
