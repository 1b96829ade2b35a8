package controllers

import (
	"net/http"

	"github.com/greenloop-app/greenloop-backend/api/middleware"
	"github.com/greenloop-app/greenloop-backend/api/responses"
	"github.com/greenloop-app/greenloop-backend/internal/credits"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

// ListTransactions returns the caller's credit ledger, newest first.
func ListTransactions(svc credits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListTransactions(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
