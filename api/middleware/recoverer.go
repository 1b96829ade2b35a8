package middleware

import (
	"fmt"
	"net/http"

	"github.com/greenloop-app/greenloop-backend/api/responses"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

// Recoverer turns handler panics into logged 500 responses so a single bad
// request cannot take the server down.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "panic", fmt.Sprintf("%v", rec))
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
