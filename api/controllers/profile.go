package controllers

import (
	"net/http"

	"github.com/greenloop-app/greenloop-backend/api/middleware"
	"github.com/greenloop-app/greenloop-backend/api/responses"
	"github.com/greenloop-app/greenloop-backend/api/validators"
	"github.com/greenloop-app/greenloop-backend/internal/profiles"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

// GetProfile returns the caller's recycling profile, creating the
// zero-baseline row on first contact.
func GetProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Ensure(r.Context(), middleware.UserIDFromContext(r.Context()), "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// UpdateProfile changes the caller's contact fields.
func UpdateProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input profiles.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
