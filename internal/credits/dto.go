package credits

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

// AwardInput is the single entry point into the ledger: one completed pickup.
type AwardInput struct {
	RequestID      uuid.UUID
	DonorID        uuid.UUID
	ActualWeightKg decimal.Decimal
	Credits        int
	TotalItems     int
	CompletedAt    time.Time
}

// AwardResult reports the post-award aggregate state.
type AwardResult struct {
	NewBalance int
	BadgeLevel enums.BadgeLevel
	StreakDays int
	CO2SavedKg decimal.Decimal
}

// TransactionView is the serialized ledger entry.
type TransactionView struct {
	ID          uuid.UUID                   `json:"id"`
	Amount      int                         `json:"amount"`
	Type        enums.CreditTransactionType `json:"type"`
	Description string                      `json:"description"`
	RequestID   *uuid.UUID                  `json:"requestId,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// ListResult pairs a transaction page with its next cursor.
type ListResult struct {
	Transactions []TransactionView `json:"transactions"`
	NextCursor   *string           `json:"nextCursor,omitempty"`
}

func newTransactionView(txn models.CreditTransaction) TransactionView {
	return TransactionView{
		ID:          txn.ID,
		Amount:      txn.Amount,
		Type:        txn.Type,
		Description: txn.Description,
		RequestID:   txn.RequestID,
		CreatedAt:   txn.CreatedAt,
	}
}
