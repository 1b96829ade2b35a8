package profiles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

// View is the read model returned to callers; BadgeLevel is derived from the
// balance at read time and never stored.
type View struct {
	UserID             uuid.UUID        `json:"userId"`
	DisplayName        string           `json:"displayName"`
	Phone              *string          `json:"phone,omitempty"`
	City               *string          `json:"city,omitempty"`
	Region             *string          `json:"region,omitempty"`
	GreenCredits       int              `json:"greenCredits"`
	TotalItemsRecycled int              `json:"totalItemsRecycled"`
	TotalWeightKg      decimal.Decimal  `json:"totalWeightKg"`
	CO2SavedKg         decimal.Decimal  `json:"co2SavedKg"`
	StreakDays         int              `json:"streakDays"`
	BadgeLevel         enums.BadgeLevel `json:"badgeLevel"`
	Verified           bool             `json:"verified"`
	LastCompletedAt    *time.Time       `json:"lastCompletedAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// NewView derives the read model from the stored aggregate.
func NewView(profile *models.Profile) *View {
	return &View{
		UserID:             profile.UserID,
		DisplayName:        profile.DisplayName,
		Phone:              profile.Phone,
		City:               profile.City,
		Region:             profile.Region,
		GreenCredits:       profile.GreenCredits,
		TotalItemsRecycled: profile.TotalItemsRecycled,
		TotalWeightKg:      profile.TotalWeightKg,
		CO2SavedKg:         profile.CO2SavedKg,
		StreakDays:         profile.StreakDays,
		BadgeLevel:         enums.BadgeForCredits(profile.GreenCredits),
		Verified:           profile.Verified,
		LastCompletedAt:    profile.LastCompletedAt,
		CreatedAt:          profile.CreatedAt,
	}
}

// UpdateInput carries the caller-editable fields.
type UpdateInput struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	City        *string `json:"city" validate:"omitempty,max=120"`
	Region      *string `json:"region" validate:"omitempty,max=120"`
}
