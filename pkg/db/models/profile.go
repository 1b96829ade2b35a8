package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile is the per-user aggregate of recycling statistics. Balance and
// totals are mutated only by the credit ledger; badge level is never stored,
// it is derived from GreenCredits at read time.
type Profile struct {
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	DisplayName string    `gorm:"column:display_name;not null"`
	Phone       *string   `gorm:"column:phone"`
	City        *string   `gorm:"column:city"`
	Region      *string   `gorm:"column:region"`

	GreenCredits       int             `gorm:"column:green_credits;not null;default:0"`
	TotalItemsRecycled int             `gorm:"column:total_items_recycled;not null;default:0"`
	TotalWeightKg      decimal.Decimal `gorm:"column:total_weight_kg;type:numeric(12,3);not null;default:0"`
	CO2SavedKg         decimal.Decimal `gorm:"column:co2_saved_kg;type:numeric(12,3);not null;default:0"`
	StreakDays         int             `gorm:"column:streak_days;not null;default:0"`
	LastCompletedAt    *time.Time      `gorm:"column:last_completed_at"`

	Verified bool `gorm:"column:verified;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
