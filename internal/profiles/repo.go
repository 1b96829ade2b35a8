package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
)

// AwardDelta is the set of increments one credit award applies to a profile.
type AwardDelta struct {
	Credits     int
	Items       int
	WeightKg    decimal.Decimal
	CO2Kg       decimal.Decimal
	StreakDays  int
	CompletedAt time.Time
}

// Repository manages persistence for profile aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	FindByIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	ApplyAward(ctx context.Context, userID uuid.UUID, delta AwardDelta) error
	UpdateContact(ctx context.Context, userID uuid.UUID, update ContactUpdate) error
}

// ContactUpdate carries the mutable display fields of a profile.
type ContactUpdate struct {
	DisplayName *string
	Phone       *string
	City        *string
	Region      *string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a profiles repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByIDForUpdate locks the row for the remainder of the caller's
// transaction so concurrent awards serialize on the profile.
func (r *repository) FindByIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ApplyAward(ctx context.Context, userID uuid.UUID, delta AwardDelta) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"green_credits":        gorm.Expr("green_credits + ?", delta.Credits),
			"total_items_recycled": gorm.Expr("total_items_recycled + ?", delta.Items),
			"total_weight_kg":      gorm.Expr("total_weight_kg + ?", delta.WeightKg),
			"co2_saved_kg":         gorm.Expr("co2_saved_kg + ?", delta.CO2Kg),
			"streak_days":          delta.StreakDays,
			"last_completed_at":    delta.CompletedAt,
		}).Error
}

func (r *repository) UpdateContact(ctx context.Context, userID uuid.UUID, update ContactUpdate) error {
	fields := map[string]any{}
	if update.DisplayName != nil {
		fields["display_name"] = *update.DisplayName
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.City != nil {
		fields["city"] = *update.City
	}
	if update.Region != nil {
		fields["region"] = *update.Region
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}
