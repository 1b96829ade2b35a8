package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

const (
	defaultPendingTTL      = 168 * time.Hour
	defaultExpiryBatchSize = 100
)

// PickupExpiryJobParams configure the pending-pickup expiry sweep.
type PickupExpiryJobParams struct {
	Logger    *logger.Logger
	Pickups   pickupExpirer
	TTL       time.Duration
	BatchSize int
}

type pickupExpirer interface {
	ExpirePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// NewPickupExpiryJob builds the cron job that cancels pickups no collector claimed.
func NewPickupExpiryJob(params PickupExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pickups == nil {
		return nil, fmt.Errorf("pickups service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	return &pickupExpiryJob{
		logg:      params.Logger,
		pickups:   params.Pickups,
		ttl:       ttl,
		batchSize: batchSize,
	}, nil
}

type pickupExpiryJob struct {
	logg      *logger.Logger
	pickups   pickupExpirer
	ttl       time.Duration
	batchSize int
}

func (j *pickupExpiryJob) Name() string { return "pickup-expiry" }

func (j *pickupExpiryJob) Run(ctx context.Context) error {
	expired, err := j.pickups.ExpirePending(ctx, j.ttl, j.batchSize)
	if err != nil {
		return fmt.Errorf("pickup expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"ttl":     j.ttl.String(),
		"expired": expired,
	})
	j.logg.Info(logCtx, "pickup expiry sweep complete")
	return nil
}
