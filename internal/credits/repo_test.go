package credits

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS credit_transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  type TEXT NOT NULL,
  description TEXT NOT NULL,
  request_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedTransaction(t *testing.T, repo Repository, userID uuid.UUID, amount int, createdAt time.Time) models.CreditTransaction {
	t.Helper()
	txn := models.CreditTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        enums.CreditTransactionTypePickupCompleted,
		Description: "Credits for completed pickup",
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), &txn))
	return txn
}

func TestLedgerListByUserOrderingAndCursor(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedTransaction(t, repo, userID, 10*(i+1), base.Add(time.Duration(i)*time.Minute))
	}
	// another user's rows never leak in
	seedTransaction(t, repo, uuid.New(), 999, base)

	rows, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// buffer row included so the caller can detect the next page
	require.Len(t, rows, 3)
	assert.Equal(t, 50, rows[0].Amount, "newest first")
	assert.Equal(t, 40, rows[1].Amount)

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: rows[2].CreatedAt, ID: rows[2].ID})
	next, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.NotEmpty(t, next)
	assert.Equal(t, 20, next[0].Amount)
	for _, row := range next {
		assert.True(t, row.CreatedAt.Before(rows[2].CreatedAt), "cursor page must strictly precede the cursor row")
	}
}

func TestLedgerSumByUser(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	sum, err := repo.SumByUser(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, sum, "empty ledger sums to zero")

	seedTransaction(t, repo, userID, 8, base)
	seedTransaction(t, repo, userID, 240, base.Add(time.Minute))
	seedTransaction(t, repo, uuid.New(), 500, base)

	sum, err = repo.SumByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(248), sum)
}
