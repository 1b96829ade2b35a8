package enums

import "fmt"

// ItemCondition describes the working state of a donated item.
type ItemCondition string

const (
	ItemConditionWorking          ItemCondition = "working"
	ItemConditionPartiallyWorking ItemCondition = "partially_working"
	ItemConditionNonWorking       ItemCondition = "non_working"
	ItemConditionDamaged          ItemCondition = "damaged"
)

var validItemConditions = []ItemCondition{
	ItemConditionWorking,
	ItemConditionPartiallyWorking,
	ItemConditionNonWorking,
	ItemConditionDamaged,
}

// IsValid reports whether the value is a known ItemCondition.
func (c ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCondition converts raw input into an ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}
