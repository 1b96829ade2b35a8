package classify

import (
	"context"
	"fmt"

	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/types"
)

// maxPredictions caps the ranked list a caller may submit; the on-device
// extractor emits at most five labels.
const maxPredictions = 5

// Service exposes the e-waste category decision to the API layer.
type Service interface {
	Classify(ctx context.Context, input ClassifyInput) (Decision, error)
}

// ClassifyInput carries the ranked predictions plus an optional threshold
// override.
type ClassifyInput struct {
	Predictions types.Predictions
	Threshold   *float64
}

type service struct {
	logg *logger.Logger
}

// NewService builds the classification service.
func NewService(logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{logg: logg}, nil
}

func (s *service) Classify(ctx context.Context, input ClassifyInput) (Decision, error) {
	if err := validateInput(input); err != nil {
		return Decision{}, err
	}

	threshold := DefaultThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	decision := Match(input.Predictions, threshold)

	fields := map[string]any{
		"predictions": len(input.Predictions),
		"is_ewaste":   decision.IsEwaste,
		"confidence":  decision.Confidence,
	}
	if decision.Category != nil {
		fields["category"] = decision.Category.Slug
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "classification decision")

	return decision, nil
}

func validateInput(input ClassifyInput) error {
	if len(input.Predictions) > maxPredictions {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d predictions are accepted", maxPredictions))
	}
	for i, prediction := range input.Predictions {
		if prediction.Label == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("prediction %d is missing a label", i))
		}
		if prediction.Probability < 0 || prediction.Probability > 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("prediction %d probability must be within [0,1]", i))
		}
	}
	if input.Threshold != nil && (*input.Threshold < 0 || *input.Threshold >= 1) {
		return pkgerrors.New(pkgerrors.CodeValidation, "threshold must be within [0,1)")
	}
	return nil
}
