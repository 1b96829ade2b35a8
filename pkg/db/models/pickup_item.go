package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/types"
)

// PickupItem captures one line item within a pickup request.
type PickupItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID uuid.UUID `gorm:"column:request_id;type:uuid;not null;index"`

	Category     string              `gorm:"column:category;not null"`
	CategorySlug string              `gorm:"column:category_slug;not null"`
	Quantity     int                 `gorm:"column:quantity;not null"`
	Condition    enums.ItemCondition `gorm:"column:condition;type:item_condition;not null"`

	UnitWeightKg   decimal.Decimal  `gorm:"column:unit_weight_kg;type:numeric(10,3);not null"`
	TotalWeightKg  decimal.Decimal  `gorm:"column:total_weight_kg;type:numeric(10,3);not null"`
	ActualWeightKg *decimal.Decimal `gorm:"column:actual_weight_kg;type:numeric(10,3)"`

	// Evidence keeps the ranked label/probability list a positive
	// classification was based on, for audit.
	Evidence types.Predictions `gorm:"column:evidence;type:jsonb;serializer:json"`

	CreditsEarned int `gorm:"column:credits_earned;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
