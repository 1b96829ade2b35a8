package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an identifier, honoring one supplied by
// the gateway and minting a fresh UUID otherwise. The identifier is echoed in
// the response header and attached to the request's log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
