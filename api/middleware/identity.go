package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenloop-app/greenloop-backend/api/responses"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"
)

// Identity reads the user id and role asserted by the upstream gateway and
// places them on the request context. Requests without a parsable identity
// pass through anonymously; route guards decide whether that is acceptable.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID, err := uuid.Parse(r.Header.Get(userIDHeader)); err == nil && userID != uuid.Nil {
				ctx = WithUserID(ctx, userID)
				if logg != nil {
					ctx = logg.WithUserID(ctx, userID.String())
				}
			}
			if role, err := enums.ParseUserRole(r.Header.Get(userRoleHeader)); err == nil {
				ctx = WithRole(ctx, role)
				if logg != nil {
					ctx = logg.WithUserRole(ctx, role.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests that carry no authenticated user.
func RequireIdentity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == uuid.Nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated requests whose asserted role does not
// match any of the allowed roles. Admin passes every guard.
func RequireRole(logg *logger.Logger, allowed ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == enums.UserRoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, candidate := range allowed {
				if role == candidate {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "role not allowed for this operation"))
		})
	}
}
