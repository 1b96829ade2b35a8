package controllers

import (
	"net/http"

	"github.com/greenloop-app/greenloop-backend/api/responses"
	"github.com/greenloop-app/greenloop-backend/api/validators"
	"github.com/greenloop-app/greenloop-backend/internal/classify"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/types"
)

type classifyRequest struct {
	Predictions []types.Prediction `json:"predictions" validate:"required,min=1,dive"`
	Threshold   *float64           `json:"threshold" validate:"omitempty,gte=0,lt=1"`
}

// ClassifyItem matches on-device predictions against the e-waste catalog.
func ClassifyItem(svc classify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body classifyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := svc.Classify(r.Context(), classify.ClassifyInput{
			Predictions: body.Predictions,
			Threshold:   body.Threshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decision)
	}
}
