package classify

import (
	"strings"

	"github.com/greenloop-app/greenloop-backend/pkg/types"
)

// DefaultThreshold is the probability a keyword hit must exceed to count.
const DefaultThreshold = 0.10

const unknownLabel = "Unknown"

// Decision is the outcome of matching a ranked label list against the
// e-waste keyword table.
type Decision struct {
	Label      string            `json:"label"`
	Confidence float64           `json:"confidence"`
	IsEwaste   bool              `json:"isEwaste"`
	Category   *Category         `json:"category,omitempty"`
	Keyword    string            `json:"keyword,omitempty"`
	Evidence   types.Predictions `json:"evidence"`
}

// Match scans predictions in the given order (highest confidence first),
// their normalized label words next, and the keyword table last. The first
// bidirectional substring hit whose prediction clears the threshold wins;
// hits at or below the threshold are skipped, not fatal, so a later
// prediction can still match. Absence of a match is a normal negative
// outcome, never an error.
func Match(predictions types.Predictions, threshold float64) Decision {
	for _, prediction := range predictions {
		for _, word := range normalizeLabel(prediction.Label) {
			for _, entry := range keywordTable {
				if !containsEither(word, entry.key) {
					continue
				}
				if prediction.Probability <= threshold {
					break
				}
				category := entry.category
				return Decision{
					Label:      prediction.Label,
					Confidence: prediction.Probability,
					IsEwaste:   true,
					Category:   &category,
					Keyword:    entry.key,
					Evidence:   predictions,
				}
			}
		}
	}

	decision := Decision{
		Label:    unknownLabel,
		Evidence: predictions,
	}
	if top, ok := predictions.Top(); ok {
		decision.Label = top.Label
		decision.Confidence = top.Probability
	}
	return decision
}

func normalizeLabel(label string) []string {
	normalized := strings.ToLower(label)
	normalized = strings.ReplaceAll(normalized, ",", " ")
	normalized = strings.ReplaceAll(normalized, "_", " ")
	return strings.Fields(normalized)
}

func containsEither(word, key string) bool {
	return strings.Contains(word, key) || strings.Contains(key, word)
}
