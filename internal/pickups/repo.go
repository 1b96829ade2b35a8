package pickups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

// Repository manages persistence for pickup requests and their items.
//
// UpdateGuarded is the concurrency primitive for every status transition: the
// UPDATE carries the previously read status in its WHERE clause, so a request
// mutated by a concurrent writer matches zero rows instead of silently
// clobbering the newer state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.PickupRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PickupRequest, error)
	UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.PickupStatus, updates map[string]any) (int64, error)
	UpdateItemActuals(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) ([]models.PickupRequest, error)
	ListByCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) ([]models.PickupRequest, error)
	ListPending(ctx context.Context, params pagination.Params) ([]models.PickupRequest, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PickupRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pickups repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.PickupRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PickupRequest, error) {
	var request models.PickupRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.PickupStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PickupRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateItemActuals(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PickupItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repository) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) ([]models.PickupRequest, error) {
	query := r.db.WithContext(ctx).Where("donor_id = ?", donorID)
	return r.list(query, params)
}

func (r *repository) ListByCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) ([]models.PickupRequest, error) {
	query := r.db.WithContext(ctx).Where("collector_id = ?", collectorID)
	return r.list(query, params)
}

// ListPending returns the open matching queue for collectors, oldest first so
// long-waiting donors surface at the top.
func (r *repository) ListPending(ctx context.Context, params pagination.Params) ([]models.PickupRequest, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.PickupStatusPending).
		Order("created_at ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Preload("Items")

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PickupRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PickupRequest, error) {
	var rows []models.PickupRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.PickupStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) list(query *gorm.DB, params pagination.Params) ([]models.PickupRequest, error) {
	query = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Preload("Items")

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PickupRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
