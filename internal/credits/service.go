package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/internal/notifications"
	"github.com/greenloop-app/greenloop-backend/internal/profiles"
	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox/payloads"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

// co2Factor converts recycled kilograms into kilograms of CO2 avoided. Domain
// constant, not configuration.
var co2Factor = decimal.NewFromFloat(1.5)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the credit ledger. Award is the only write path that touches a
// profile balance anywhere in the system.
type Service interface {
	// Award runs inside the caller's transaction: profile increments, one
	// ledger entry, one donor notification, one outbox event. All or nothing.
	Award(ctx context.Context, tx *gorm.DB, input AwardInput) (*AwardResult, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo              Repository
	profilesRepo      profiles.Repository
	notificationsRepo notifications.Repository
	outbox            outboxEmitter
	logg              *logger.Logger
}

// NewService builds the credit ledger service.
func NewService(repo Repository, profilesRepo profiles.Repository, notificationsRepo notifications.Repository, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("credits repository required")
	}
	if profilesRepo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if notificationsRepo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:              repo,
		profilesRepo:      profilesRepo,
		notificationsRepo: notificationsRepo,
		outbox:            emitter,
		logg:              logg,
	}, nil
}

func (s *service) Award(ctx context.Context, tx *gorm.DB, input AwardInput) (*AwardResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "award requires a transaction")
	}
	if err := validateAward(input); err != nil {
		return nil, err
	}

	completedAt := input.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	profileRepo := s.profilesRepo.WithTx(tx)
	profile, err := profileRepo.FindByIDForUpdate(ctx, input.DonorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading donor profile")
	}

	co2 := input.ActualWeightKg.Mul(co2Factor)
	streak := nextStreak(profile.LastCompletedAt, profile.StreakDays, completedAt)

	delta := profiles.AwardDelta{
		Credits:     input.Credits,
		Items:       input.TotalItems,
		WeightKg:    input.ActualWeightKg,
		CO2Kg:       co2,
		StreakDays:  streak,
		CompletedAt: completedAt,
	}
	if err := profileRepo.ApplyAward(ctx, input.DonorID, delta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "applying award to profile")
	}

	txn := &models.CreditTransaction{
		UserID:      input.DonorID,
		Amount:      input.Credits,
		Type:        enums.CreditTransactionTypePickupCompleted,
		Description: fmt.Sprintf("Credits for completed pickup %s", input.RequestID),
		RequestID:   &input.RequestID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording ledger entry")
	}

	newBalance := profile.GreenCredits + input.Credits
	badge := enums.BadgeForCredits(newBalance)

	if err := s.createAwardNotification(ctx, tx, input, newBalance); err != nil {
		return nil, err
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventCreditsAwarded,
		AggregateType: enums.AggregateProfile,
		AggregateID:   input.DonorID,
		Data: payloads.CreditsAwardedEvent{
			UserID:     input.DonorID,
			RequestID:  &input.RequestID,
			Amount:     input.Credits,
			Type:       enums.CreditTransactionTypePickupCompleted,
			NewBalance: newBalance,
			BadgeLevel: badge,
		},
		OccurredAt: completedAt,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emitting award event")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"request_id":  input.RequestID.String(),
		"amount":      input.Credits,
		"new_balance": newBalance,
		"streak_days": streak,
	})
	s.logg.Info(s.logg.WithUserID(logCtx, input.DonorID.String()), "credits awarded")

	return &AwardResult{
		NewBalance: newBalance,
		BadgeLevel: badge,
		StreakDays: streak,
		CO2SavedKg: co2,
	}, nil
}

func (s *service) createAwardNotification(ctx context.Context, tx *gorm.DB, input AwardInput, newBalance int) error {
	data, err := json.Marshal(map[string]any{
		"requestId":  input.RequestID.String(),
		"amount":     input.Credits,
		"newBalance": newBalance,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding notification payload")
	}
	notification := &models.Notification{
		UserID: input.DonorID,
		Type:   enums.NotificationTypeCreditsAwarded,
		Title:  "Green credits awarded",
		Body: fmt.Sprintf("You earned %d green credits for recycling %s kg of e-waste.",
			input.Credits, input.ActualWeightKg.StringFixed(1)),
		Data: data,
	}
	if err := s.notificationsRepo.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating award notification")
	}
	return nil
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing transactions")
	}

	normalized := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Transactions: make([]TransactionView, 0, len(rows))}
	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		result.NextCursor = &cursor
	}
	for _, row := range rows {
		result.Transactions = append(result.Transactions, newTransactionView(row))
	}
	return result, nil
}

func validateAward(input AwardInput) error {
	if input.RequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.DonorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	if input.ActualWeightKg.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "actual weight cannot be negative")
	}
	if input.Credits < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credits cannot be negative")
	}
	if input.TotalItems < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "total items cannot be negative")
	}
	return nil
}

// nextStreak applies the day-based streak rule: same UTC day keeps the
// current streak, the immediately following day extends it, any gap resets.
func nextStreak(lastCompletedAt *time.Time, current int, completedAt time.Time) int {
	if lastCompletedAt == nil {
		return 1
	}
	lastDay := lastCompletedAt.UTC().Truncate(24 * time.Hour)
	day := completedAt.UTC().Truncate(24 * time.Hour)
	switch day.Sub(lastDay) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}
