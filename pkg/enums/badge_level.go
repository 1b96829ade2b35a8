package enums

import "fmt"

// BadgeLevel is the display tier derived from a profile's cumulative green credits.
// It is never persisted; recompute it from the balance wherever it is rendered.
type BadgeLevel string

const (
	BadgeLevelEcoStarter     BadgeLevel = "eco_starter"
	BadgeLevelBronzeRecycler BadgeLevel = "bronze_recycler"
	BadgeLevelSilverGuardian BadgeLevel = "silver_guardian"
	BadgeLevelGoldChampion   BadgeLevel = "gold_champion"
	BadgeLevelPlanetHero     BadgeLevel = "planet_hero"
)

// badgeThresholds lists tiers in ascending order of the minimum balance required.
var badgeThresholds = []struct {
	min   int
	level BadgeLevel
}{
	{0, BadgeLevelEcoStarter},
	{100, BadgeLevelBronzeRecycler},
	{500, BadgeLevelSilverGuardian},
	{1500, BadgeLevelGoldChampion},
	{5000, BadgeLevelPlanetHero},
}

// BadgeForCredits returns the tier whose range contains the given balance.
func BadgeForCredits(greenCredits int) BadgeLevel {
	level := badgeThresholds[0].level
	for _, tier := range badgeThresholds {
		if greenCredits >= tier.min {
			level = tier.level
		}
	}
	return level
}

// String implements fmt.Stringer.
func (b BadgeLevel) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BadgeLevel.
func (b BadgeLevel) IsValid() bool {
	for _, tier := range badgeThresholds {
		if tier.level == b {
			return true
		}
	}
	return false
}

// ParseBadgeLevel converts raw input into a BadgeLevel.
func ParseBadgeLevel(value string) (BadgeLevel, error) {
	for _, tier := range badgeThresholds {
		if string(tier.level) == value {
			return tier.level, nil
		}
	}
	return "", fmt.Errorf("invalid badge level %q", value)
}
