package enums

import "fmt"

// TimeSlot is the preferred collection window on the scheduled date.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"
)

var validTimeSlots = []TimeSlot{
	TimeSlotMorning,
	TimeSlotAfternoon,
	TimeSlotEvening,
}

// IsValid reports whether the value is a known TimeSlot.
func (t TimeSlot) IsValid() bool {
	for _, candidate := range validTimeSlots {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeSlot converts raw input into a TimeSlot.
func ParseTimeSlot(value string) (TimeSlot, error) {
	for _, candidate := range validTimeSlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid time slot %q", value)
}
