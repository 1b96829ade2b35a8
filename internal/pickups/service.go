package pickups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/internal/credits"
	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox/payloads"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

// creditsPerKg converts estimated weight into the credits quoted to donors.
var creditsPerKg = decimal.NewFromInt(20)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// creditAwarder is the slice of the credit ledger the lifecycle needs: the
// award must land in the same transaction as the completion write.
type creditAwarder interface {
	Award(ctx context.Context, tx *gorm.DB, input credits.AwardInput) (*credits.AwardResult, error)
}

// Service drives the pickup request lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Get(ctx context.Context, requestID uuid.UUID) (*View, error)
	AssignCollector(ctx context.Context, requestID, collectorID uuid.UUID) (*View, error)
	AdvanceStatus(ctx context.Context, requestID, actorID uuid.UUID, next enums.PickupStatus) (*View, error)
	Cancel(ctx context.Context, requestID, actorID uuid.UUID, reason string) (*View, error)
	Complete(ctx context.Context, input CompleteInput) (*View, error)
	ListForDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*ListResult, error)
	ListForCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*ListResult, error)
	Queue(ctx context.Context, params pagination.Params) (*ListResult, error)
	ExpirePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	credits creditAwarder
	outbox  outboxEmitter
	logg    *logger.Logger
}

// NewService builds the pickup lifecycle service.
func NewService(repo Repository, tx txRunner, awarder creditAwarder, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pickups repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if awarder == nil {
		return nil, fmt.Errorf("credit awarder required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, credits: awarder, outbox: emitter, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	totalItems := 0
	estimatedWeight := decimal.Zero
	items := make([]models.PickupItem, 0, len(input.Items))
	for _, item := range input.Items {
		lineWeight := item.UnitWeightKg.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totalItems += item.Quantity
		estimatedWeight = estimatedWeight.Add(lineWeight)
		items = append(items, models.PickupItem{
			Category:      item.Category,
			CategorySlug:  item.CategorySlug,
			Quantity:      item.Quantity,
			Condition:     item.Condition,
			UnitWeightKg:  item.UnitWeightKg,
			TotalWeightKg: lineWeight,
			Evidence:      item.Evidence,
		})
	}
	estimatedCredits := int(estimatedWeight.Mul(creditsPerKg).Round(0).IntPart())

	request := &models.PickupRequest{
		DonorID:           input.DonorID,
		AddressLine1:      input.AddressLine1,
		AddressLine2:      input.AddressLine2,
		City:              input.City,
		State:             input.State,
		PostalCode:        input.PostalCode,
		Lat:               input.Lat,
		Lng:               input.Lng,
		Instructions:      input.Instructions,
		PreferredDate:     input.PreferredDate,
		TimeSlot:          input.TimeSlot,
		Status:            enums.PickupStatusPending,
		TotalItems:        totalItems,
		EstimatedWeightKg: estimatedWeight,
		EstimatedCredits:  estimatedCredits,
		Items:             items,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating pickup request")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPickupCreated,
			AggregateType: enums.AggregatePickupRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(input.DonorID, enums.UserRoleDonor),
			Data: payloads.PickupCreatedEvent{
				RequestID:         request.ID,
				DonorID:           request.DonorID,
				City:              request.City,
				TimeSlot:          request.TimeSlot,
				PreferredDate:     request.PreferredDate,
				TotalItems:        request.TotalItems,
				EstimatedWeightKg: request.EstimatedWeightKg,
				EstimatedCredits:  request.EstimatedCredits,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithPickupID(ctx, request.ID.String()), "pickup request created")
	return NewView(request), nil
}

func (s *service) Get(ctx context.Context, requestID uuid.UUID) (*View, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading pickup request")
	}
	return NewView(request), nil
}

func (s *service) AssignCollector(ctx context.Context, requestID, collectorID uuid.UUID) (*View, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if collectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := loadForUpdate(ctx, repo, requestID)
		if err != nil {
			return err
		}
		if request.Status != enums.PickupStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup is no longer available")
		}

		now := time.Now().UTC()
		affected, err := repo.UpdateGuarded(ctx, requestID, enums.PickupStatusPending, map[string]any{
			"collector_id": collectorID,
			"status":       enums.PickupStatusMatched,
			"matched_at":   now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assigning collector")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup was claimed by another collector")
		}

		request.CollectorID = &collectorID
		request.Status = enums.PickupStatusMatched
		request.MatchedAt = &now
		view = NewView(request)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPickupMatched,
			AggregateType: enums.AggregatePickupRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(collectorID, enums.UserRoleCollector),
			Data: payloads.PickupMatchedEvent{
				RequestID:   request.ID,
				DonorID:     request.DonorID,
				CollectorID: collectorID,
				MatchedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithPickupID(ctx, requestID.String()), "pickup matched to collector")
	return view, nil
}

func (s *service) AdvanceStatus(ctx context.Context, requestID, actorID uuid.UUID, next enums.PickupStatus) (*View, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", next))
	}
	if next == enums.PickupStatusCancelled {
		return s.Cancel(ctx, requestID, actorID, "")
	}
	if next == enums.PickupStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion requires verified weight and credits")
	}
	if next == enums.PickupStatusMatched {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matching happens through collector assignment")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := loadForUpdate(ctx, repo, requestID)
		if err != nil {
			return err
		}
		if request.CollectorID == nil || *request.CollectorID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "pickup is not assigned to this collector")
		}
		from := request.Status
		if !CanTransition(from, next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move pickup from %s to %s", from, next))
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": next}
		if next == enums.PickupStatusCollected {
			updates["collected_at"] = now
		}
		affected, err := repo.UpdateGuarded(ctx, requestID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advancing pickup status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup status changed concurrently")
		}

		request.Status = next
		if next == enums.PickupStatusCollected {
			request.CollectedAt = &now
		}
		view = NewView(request)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPickupStatusChanged,
			AggregateType: enums.AggregatePickupRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(actorID, enums.UserRoleCollector),
			Data: payloads.PickupStatusChangedEvent{
				RequestID:   request.ID,
				DonorID:     request.DonorID,
				CollectorID: request.CollectorID,
				From:        from,
				To:          next,
				ChangedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithPickupID(ctx, requestID.String()), map[string]any{
		"status": next.String(),
	}), "pickup status advanced")
	return view, nil
}

func (s *service) Cancel(ctx context.Context, requestID, actorID uuid.UUID, reason string) (*View, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := loadForUpdate(ctx, repo, requestID)
		if err != nil {
			return err
		}
		role := enums.UserRoleDonor
		switch {
		case request.DonorID == actorID:
		case request.CollectorID != nil && *request.CollectorID == actorID:
			role = enums.UserRoleCollector
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "pickup does not belong to this user")
		}

		view, err = s.cancelLocked(ctx, tx, repo, request, actorRef(actorID, role), reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithPickupID(ctx, requestID.String()), "pickup cancelled")
	return view, nil
}

// cancelLocked performs the guarded cancellation write and event emission.
// The caller owns the transaction and has already authorized the actor.
func (s *service) cancelLocked(ctx context.Context, tx *gorm.DB, repo Repository, request *models.PickupRequest, actor *outbox.ActorRef, reason string) (*View, error) {
	from := request.Status
	if from.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel a %s pickup", from))
	}

	now := time.Now().UTC()
	affected, err := repo.UpdateGuarded(ctx, request.ID, from, map[string]any{
		"status":       enums.PickupStatusCancelled,
		"cancelled_at": now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancelling pickup")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pickup status changed concurrently")
	}

	request.Status = enums.PickupStatusCancelled
	request.CancelledAt = &now

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPickupCancelled,
		AggregateType: enums.AggregatePickupRequest,
		AggregateID:   request.ID,
		Actor:         actor,
		Data: payloads.PickupCancelledEvent{
			RequestID:   request.ID,
			DonorID:     request.DonorID,
			CollectorID: request.CollectorID,
			CancelledAt: now,
			Reason:      reason,
		},
	})
	if err != nil {
		return nil, err
	}
	return NewView(request), nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (*View, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.CollectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}
	if input.ActualWeightKg.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actual weight cannot be negative")
	}
	if input.ActualCredits < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actual credits cannot be negative")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if request.CollectorID == nil || *request.CollectorID != input.CollectorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "pickup is not assigned to this collector")
		}
		if request.Status != enums.PickupStatusCollected {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("pickup cannot be completed from %s", request.Status))
		}

		now := time.Now().UTC()
		// The guard doubles as the anti-replay check: a second completion
		// attempt finds status already completed and matches zero rows.
		affected, err := repo.UpdateGuarded(ctx, request.ID, enums.PickupStatusCollected, map[string]any{
			"status":                 enums.PickupStatusCompleted,
			"actual_weight_kg":       input.ActualWeightKg,
			"actual_credits_awarded": input.ActualCredits,
			"completed_at":           now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "completing pickup")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup was already completed or cancelled")
		}

		if err := s.distributeActuals(ctx, repo, request, input.ActualWeightKg, input.ActualCredits); err != nil {
			return err
		}

		award, err := s.credits.Award(ctx, tx, credits.AwardInput{
			RequestID:      request.ID,
			DonorID:        request.DonorID,
			ActualWeightKg: input.ActualWeightKg,
			Credits:        input.ActualCredits,
			TotalItems:     request.TotalItems,
			CompletedAt:    now,
		})
		if err != nil {
			return err
		}

		request.Status = enums.PickupStatusCompleted
		request.ActualWeightKg = &input.ActualWeightKg
		request.ActualCreditsAwarded = &input.ActualCredits
		request.CompletedAt = &now
		view = NewView(request)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPickupCompleted,
			AggregateType: enums.AggregatePickupRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(input.CollectorID, enums.UserRoleCollector),
			Data: payloads.PickupCompletedEvent{
				RequestID:      request.ID,
				DonorID:        request.DonorID,
				CollectorID:    input.CollectorID,
				ActualWeightKg: input.ActualWeightKg,
				CreditsAwarded: input.ActualCredits,
				CO2SavedKg:     award.CO2SavedKg,
				CompletedAt:    now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithPickupID(ctx, input.RequestID.String()), map[string]any{
		"credits": input.ActualCredits,
	}), "pickup completed")
	return view, nil
}

// distributeActuals spreads the verified totals across line items in
// proportion to their estimated weight. The last item absorbs rounding
// remainders so the item sums always equal the request totals.
func (s *service) distributeActuals(ctx context.Context, repo Repository, request *models.PickupRequest, actualWeight decimal.Decimal, actualCredits int) error {
	if len(request.Items) == 0 {
		return nil
	}

	itemCount := decimal.NewFromInt(int64(len(request.Items)))
	weightLeft := actualWeight
	creditsLeft := actualCredits
	for i := range request.Items {
		item := &request.Items[i]

		var share decimal.Decimal
		if request.EstimatedWeightKg.IsPositive() {
			share = item.TotalWeightKg.Div(request.EstimatedWeightKg)
		} else {
			share = decimal.NewFromInt(1).Div(itemCount)
		}

		itemWeight := actualWeight.Mul(share).Round(3)
		itemCredits := int(decimal.NewFromInt(int64(actualCredits)).Mul(share).Round(0).IntPart())
		if i == len(request.Items)-1 {
			itemWeight = weightLeft
			itemCredits = creditsLeft
		}
		weightLeft = weightLeft.Sub(itemWeight)
		creditsLeft -= itemCredits

		if err := repo.UpdateItemActuals(ctx, item.ID, map[string]any{
			"actual_weight_kg": itemWeight,
			"credits_earned":   itemCredits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating pickup item actuals")
		}
		item.ActualWeightKg = &itemWeight
		item.CreditsEarned = itemCredits
	}
	return nil
}

func (s *service) ListForDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	rows, err := s.repo.ListByDonor(ctx, donorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing donor pickups")
	}
	return paginate(rows, params), nil
}

func (s *service) ListForCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if collectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collector id required")
	}
	rows, err := s.repo.ListByCollector(ctx, collectorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing collector pickups")
	}
	return paginate(rows, params), nil
}

func (s *service) Queue(ctx context.Context, params pagination.Params) (*ListResult, error) {
	rows, err := s.repo.ListPending(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing pending pickups")
	}
	return paginate(rows, params), nil
}

// ExpirePending cancels pending requests that no collector claimed within
// the retention window. Each request is cancelled in its own transaction so
// one failure does not stall the rest of the sweep.
func (s *service) ExpirePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	stale, err := s.repo.ListPendingCreatedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing expired pickups")
	}

	expired := 0
	for i := range stale {
		request := stale[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.cancelLocked(ctx, tx, s.repo.WithTx(tx), &request, nil, "pickup request expired")
			return err
		})
		if err != nil {
			s.logg.Error(s.logg.WithPickupID(ctx, request.ID.String()), "expiring pickup failed", err)
			continue
		}
		expired++
	}
	return expired, nil
}

func loadForUpdate(ctx context.Context, repo Repository, requestID uuid.UUID) (*models.PickupRequest, error) {
	request, err := repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading pickup request")
	}
	return request, nil
}

func paginate(rows []models.PickupRequest, params pagination.Params) *ListResult {
	normalized := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Requests: make([]View, 0, len(rows))}
	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		result.NextCursor = &cursor
	}
	for i := range rows {
		result.Requests = append(result.Requests, *NewView(&rows[i]))
	}
	return result
}

func validateCreate(input CreateInput) error {
	if input.DonorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "donor identity missing")
	}
	if input.AddressLine1 == "" || input.City == "" || input.State == "" || input.PostalCode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup address is incomplete")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}
	if input.PreferredDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "preferred date required")
	}
	if !input.TimeSlot.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown time slot %q", input.TimeSlot))
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for i, item := range input.Items {
		if item.Category == "" || item.CategorySlug == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d is missing a category", i))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d quantity must be at least 1", i))
		}
		if !item.Condition.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d has an unknown condition", i))
		}
		if item.UnitWeightKg.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d weight cannot be negative", i))
		}
	}
	return nil
}

func actorRef(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: role.String()}
}
