package enums

import "fmt"

// CreditTransactionType maps to the credit_transaction_type enum in Postgres.
type CreditTransactionType string

const (
	CreditTransactionTypePickupCompleted CreditTransactionType = "pickup_completed"
	CreditTransactionTypeBonus           CreditTransactionType = "bonus"
	CreditTransactionTypeAdjustment      CreditTransactionType = "adjustment"
	CreditTransactionTypeRedemption      CreditTransactionType = "redemption"
)

var validCreditTransactionTypes = []CreditTransactionType{
	CreditTransactionTypePickupCompleted,
	CreditTransactionTypeBonus,
	CreditTransactionTypeAdjustment,
	CreditTransactionTypeRedemption,
}

// IsValid reports whether the value matches the canonical enum.
func (t CreditTransactionType) IsValid() bool {
	for _, candidate := range validCreditTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCreditTransactionType converts raw input into CreditTransactionType.
func ParseCreditTransactionType(value string) (CreditTransactionType, error) {
	for _, candidate := range validCreditTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit transaction type %q", value)
}
