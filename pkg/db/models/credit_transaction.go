package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

// CreditTransaction records an immutable balance-affecting event for a user.
type CreditTransaction struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index"`
	Amount      int                         `gorm:"column:amount;not null"`
	Type        enums.CreditTransactionType `gorm:"column:type;type:credit_transaction_type;not null"`
	Description string                      `gorm:"column:description;not null"`
	RequestID   *uuid.UUID                  `gorm:"column:request_id;type:uuid"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
