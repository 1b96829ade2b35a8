package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

// PickupRequest represents one scheduled e-waste collection event.
type PickupRequest struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID     uuid.UUID  `gorm:"column:donor_id;type:uuid;not null;index"`
	CollectorID *uuid.UUID `gorm:"column:collector_id;type:uuid;index"`

	AddressLine1 string  `gorm:"column:address_line1;not null"`
	AddressLine2 *string `gorm:"column:address_line2"`
	City         string  `gorm:"column:city;not null"`
	State        string  `gorm:"column:state;not null"`
	PostalCode   string  `gorm:"column:postal_code;not null"`
	Lat          float64 `gorm:"column:lat;not null"`
	Lng          float64 `gorm:"column:lng;not null"`
	Instructions *string `gorm:"column:instructions"`

	PreferredDate time.Time      `gorm:"column:preferred_date;not null"`
	TimeSlot      enums.TimeSlot `gorm:"column:time_slot;type:time_slot;not null"`

	Status enums.PickupStatus `gorm:"column:status;type:pickup_status;not null;default:'pending'"`

	TotalItems           int              `gorm:"column:total_items;not null"`
	EstimatedWeightKg    decimal.Decimal  `gorm:"column:estimated_weight_kg;type:numeric(10,3);not null"`
	ActualWeightKg       *decimal.Decimal `gorm:"column:actual_weight_kg;type:numeric(10,3)"`
	EstimatedCredits     int              `gorm:"column:estimated_credits;not null"`
	ActualCreditsAwarded *int             `gorm:"column:actual_credits_awarded"`

	MatchedAt   *time.Time `gorm:"column:matched_at"`
	CollectedAt *time.Time `gorm:"column:collected_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`

	Items []PickupItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
