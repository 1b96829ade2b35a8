package credits

import (
	"context"
	"errors"
	"testing"
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
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

type stubLedgerRepo struct {
	entries []*models.CreditTransaction
	rows    []models.CreditTransaction
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubLedgerRepo) Create(_ context.Context, txn *models.CreditTransaction) error {
	s.entries = append(s.entries, txn)
	return nil
}

func (s *stubLedgerRepo) ListByUser(context.Context, uuid.UUID, pagination.Params) ([]models.CreditTransaction, error) {
	return s.rows, nil
}

func (s *stubLedgerRepo) SumByUser(context.Context, uuid.UUID) (int64, error) {
	var total int64
	for _, e := range s.entries {
		total += int64(e.Amount)
	}
	return total, nil
}

type stubProfilesRepo struct {
	profiles map[uuid.UUID]*models.Profile
}

func newStubProfilesRepo() *stubProfilesRepo {
	return &stubProfilesRepo{profiles: map[uuid.UUID]*models.Profile{}}
}

func (s *stubProfilesRepo) WithTx(tx *gorm.DB) profiles.Repository { return s }

func (s *stubProfilesRepo) Create(_ context.Context, profile *models.Profile) error {
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *stubProfilesRepo) FindByID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (s *stubProfilesRepo) FindByIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.FindByID(ctx, userID)
}

func (s *stubProfilesRepo) ApplyAward(_ context.Context, userID uuid.UUID, delta profiles.AwardDelta) error {
	profile, ok := s.profiles[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	profile.GreenCredits += delta.Credits
	profile.TotalItemsRecycled += delta.Items
	profile.TotalWeightKg = profile.TotalWeightKg.Add(delta.WeightKg)
	profile.CO2SavedKg = profile.CO2SavedKg.Add(delta.CO2Kg)
	profile.StreakDays = delta.StreakDays
	completedAt := delta.CompletedAt
	profile.LastCompletedAt = &completedAt
	return nil
}

func (s *stubProfilesRepo) UpdateContact(context.Context, uuid.UUID, profiles.ContactUpdate) error {
	return nil
}

type stubNotificationsRepo struct {
	notifications.Repository
	created []*models.Notification
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) notifications.Repository { return s }

func (s *stubNotificationsRepo) Create(_ context.Context, n *models.Notification) error {
	s.created = append(s.created, n)
	return nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type awardFixture struct {
	svc       Service
	ledger    *stubLedgerRepo
	profiles  *stubProfilesRepo
	notifs    *stubNotificationsRepo
	emitter   *stubEmitter
	donorID   uuid.UUID
	requestID uuid.UUID
}

func newAwardFixture(t *testing.T) *awardFixture {
	t.Helper()
	f := &awardFixture{
		ledger:    &stubLedgerRepo{},
		profiles:  newStubProfilesRepo(),
		notifs:    &stubNotificationsRepo{},
		emitter:   &stubEmitter{},
		donorID:   uuid.New(),
		requestID: uuid.New(),
	}
	f.profiles.profiles[f.donorID] = &models.Profile{UserID: f.donorID, DisplayName: "Dana"}

	svc, err := NewService(f.ledger, f.profiles, f.notifs, f.emitter, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *awardFixture) award(t *testing.T, weight string, credits, items int, at time.Time) *AwardResult {
	t.Helper()
	result, err := f.svc.Award(context.Background(), &gorm.DB{}, AwardInput{
		RequestID:      f.requestID,
		DonorID:        f.donorID,
		ActualWeightKg: decimal.RequireFromString(weight),
		Credits:        credits,
		TotalItems:     items,
		CompletedAt:    at,
	})
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	return result
}

func TestAwardTouchesAllFourRecords(t *testing.T) {
	f := newAwardFixture(t)
	completedAt := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	result := f.award(t, "12", 240, 3, completedAt)

	// profile
	profile := f.profiles.profiles[f.donorID]
	if profile.GreenCredits != 240 || profile.TotalItemsRecycled != 3 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if !profile.CO2SavedKg.Equal(decimal.RequireFromString("18")) {
		t.Fatalf("co2 factor 1.5 not applied: %s", profile.CO2SavedKg)
	}

	// ledger entry
	if len(f.ledger.entries) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(f.ledger.entries))
	}
	entry := f.ledger.entries[0]
	if entry.Amount != 240 || entry.Type != enums.CreditTransactionTypePickupCompleted {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.RequestID == nil || *entry.RequestID != f.requestID {
		t.Fatalf("ledger entry must reference the request")
	}

	// notification
	if len(f.notifs.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifs.created))
	}
	if f.notifs.created[0].Type != enums.NotificationTypeCreditsAwarded {
		t.Fatalf("unexpected notification type %s", f.notifs.created[0].Type)
	}
	if f.notifs.created[0].UserID != f.donorID {
		t.Fatalf("notification must address the donor")
	}

	// outbox event
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventCreditsAwarded {
		t.Fatalf("expected one credits_awarded event, got %+v", f.emitter.events)
	}

	if result.NewBalance != 240 || result.BadgeLevel != enums.BadgeLevelBronzeRecycler {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestAwardValidationHasNoSideEffects(t *testing.T) {
	f := newAwardFixture(t)

	_, err := f.svc.Award(context.Background(), &gorm.DB{}, AwardInput{
		RequestID:      f.requestID,
		DonorID:        f.donorID,
		ActualWeightKg: decimal.RequireFromString("-1"),
		Credits:        10,
	})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	_, err = f.svc.Award(context.Background(), &gorm.DB{}, AwardInput{
		RequestID:      f.requestID,
		DonorID:        f.donorID,
		ActualWeightKg: decimal.RequireFromString("1"),
		Credits:        -5,
	})
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	if len(f.ledger.entries) != 0 || len(f.notifs.created) != 0 || len(f.emitter.events) != 0 {
		t.Fatalf("validation failure must not write anything")
	}
	if f.profiles.profiles[f.donorID].GreenCredits != 0 {
		t.Fatalf("profile must be untouched")
	}
}

func TestAwardMissingProfile(t *testing.T) {
	f := newAwardFixture(t)

	_, err := f.svc.Award(context.Background(), &gorm.DB{}, AwardInput{
		RequestID:      uuid.New(),
		DonorID:        uuid.New(),
		ActualWeightKg: decimal.RequireFromString("1"),
		Credits:        20,
	})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAwardRequiresTransaction(t *testing.T) {
	f := newAwardFixture(t)

	_, err := f.svc.Award(context.Background(), nil, AwardInput{
		RequestID:      f.requestID,
		DonorID:        f.donorID,
		ActualWeightKg: decimal.RequireFromString("1"),
		Credits:        20,
	})
	if err == nil {
		t.Fatalf("expected error for missing transaction")
	}
}

func TestAwardStreakProgression(t *testing.T) {
	f := newAwardFixture(t)
	day1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if result := f.award(t, "1", 20, 1, day1); result.StreakDays != 1 {
		t.Fatalf("first completion should start a streak, got %d", result.StreakDays)
	}
	// later the same day: unchanged
	if result := f.award(t, "1", 20, 1, day1.Add(6*time.Hour)); result.StreakDays != 1 {
		t.Fatalf("same-day completion should keep the streak, got %d", result.StreakDays)
	}
	// next day: increments
	if result := f.award(t, "1", 20, 1, day1.Add(24*time.Hour)); result.StreakDays != 2 {
		t.Fatalf("next-day completion should extend the streak, got %d", result.StreakDays)
	}
	// a gap resets
	if result := f.award(t, "1", 20, 1, day1.Add(5*24*time.Hour)); result.StreakDays != 1 {
		t.Fatalf("gap should reset the streak, got %d", result.StreakDays)
	}
}

func TestLedgerReconcilesWithBalance(t *testing.T) {
	f := newAwardFixture(t)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i, credits := range []int{8, 240, 16, 100} {
		f.award(t, "1", credits, 1, at.Add(time.Duration(i)*24*time.Hour))
	}

	sum, err := f.ledger.SumByUser(context.Background(), f.donorID)
	if err != nil {
		t.Fatalf("SumByUser: %v", err)
	}
	balance := f.profiles.profiles[f.donorID].GreenCredits
	if sum != int64(balance) {
		t.Fatalf("ledger sum %d must equal profile balance %d", sum, balance)
	}
}

func TestNextStreakDayBoundaries(t *testing.T) {
	lastLateNight := time.Date(2026, 3, 2, 23, 50, 0, 0, time.UTC)
	earlyNextDay := time.Date(2026, 3, 3, 0, 10, 0, 0, time.UTC)

	if got := nextStreak(&lastLateNight, 3, earlyNextDay); got != 4 {
		t.Fatalf("UTC day boundary should extend the streak, got %d", got)
	}
	if got := nextStreak(nil, 7, earlyNextDay); got != 1 {
		t.Fatalf("no prior completion starts at 1, got %d", got)
	}
}

func TestListTransactionsPagination(t *testing.T) {
	f := newAwardFixture(t)
	now := time.Now().UTC()
	rows := make([]models.CreditTransaction, 0, pagination.DefaultLimit+1)
	for i := 0; i < pagination.DefaultLimit+1; i++ {
		rows = append(rows, models.CreditTransaction{
			ID:        uuid.New(),
			UserID:    f.donorID,
			Amount:    10,
			Type:      enums.CreditTransactionTypePickupCompleted,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	f.ledger.rows = rows

	result, err := f.svc.ListTransactions(context.Background(), f.donorID, pagination.Params{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(result.Transactions) != pagination.DefaultLimit {
		t.Fatalf("expected %d rows, got %d", pagination.DefaultLimit, len(result.Transactions))
	}
	if result.NextCursor == nil {
		t.Fatalf("expected next cursor")
	}
}
