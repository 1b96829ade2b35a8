package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox/idempotency"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox/payloads"
)

const pickupNotificationConsumer = "pickup-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and turns pickup lifecycle changes into
// donor-facing notifications. Credit-award notifications are written inside
// the award transaction itself, so those events are skipped here.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a pickup notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if !isPickupLifecycleEvent(eventType) {
		c.logg.Info(logCtx, "skipping event outside pickup lifecycle")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, pickupNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, pickupNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func isPickupLifecycleEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventPickupMatched, enums.EventPickupStatusChanged, enums.EventPickupCancelled:
		return true
	}
	return false
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventPickupMatched:
		var payload payloads.PickupMatchedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse matched payload: %w", err)
		}
		return c.notifyMatched(ctx, payload, logCtx)
	case enums.EventPickupStatusChanged:
		var payload payloads.PickupStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse status payload: %w", err)
		}
		return c.notifyStatusChanged(ctx, payload, logCtx)
	case enums.EventPickupCancelled:
		var payload payloads.PickupCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse cancelled payload: %w", err)
		}
		return c.notifyCancelled(ctx, payload, logCtx)
	}
	return nil
}

func (c *Consumer) notifyMatched(ctx context.Context, payload payloads.PickupMatchedEvent, logCtx context.Context) error {
	if payload.DonorID == uuid.Nil {
		return fmt.Errorf("donor id missing")
	}
	return c.create(ctx, logCtx, payload.DonorID, payload.RequestID,
		"Collector assigned",
		"A collector has been assigned to your pickup and will be in touch soon.")
}

func (c *Consumer) notifyStatusChanged(ctx context.Context, payload payloads.PickupStatusChangedEvent, logCtx context.Context) error {
	if payload.DonorID == uuid.Nil {
		return fmt.Errorf("donor id missing")
	}
	body, ok := statusBody(payload.To)
	if !ok {
		c.logg.Info(logCtx, "status not surfaced to donor")
		return nil
	}
	return c.create(ctx, logCtx, payload.DonorID, payload.RequestID, "Pickup update", body)
}

func (c *Consumer) notifyCancelled(ctx context.Context, payload payloads.PickupCancelledEvent, logCtx context.Context) error {
	if payload.DonorID == uuid.Nil {
		return fmt.Errorf("donor id missing")
	}
	body := "Your pickup was cancelled."
	if payload.Reason != "" {
		body = fmt.Sprintf("Your pickup was cancelled: %s", payload.Reason)
	}
	return c.create(ctx, logCtx, payload.DonorID, payload.RequestID, "Pickup cancelled", body)
}

func statusBody(status enums.PickupStatus) (string, bool) {
	switch status {
	case enums.PickupStatusCollectorEnroute:
		return "Your collector is on the way.", true
	case enums.PickupStatusArrived:
		return "Your collector has arrived.", true
	case enums.PickupStatusInspecting:
		return "Your items are being inspected.", true
	case enums.PickupStatusCollected:
		return "Your items have been collected. Credits will be awarded after verification.", true
	}
	return "", false
}

func (c *Consumer) create(ctx context.Context, logCtx context.Context, userID, requestID uuid.UUID, title, body string) error {
	data, err := json.Marshal(map[string]string{"requestId": requestID.String()})
	if err != nil {
		return err
	}
	notification := &models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypePickupUpdate,
		Title:  title,
		Body:   body,
		Data:   data,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "donor notified of pickup change")
	return nil
}
