package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

func identityTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestIdentityPopulatesContext(t *testing.T) {
	userID := uuid.New()
	var gotUser uuid.UUID
	var gotRole enums.UserRole
	handler := Identity(identityTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", userID.String())
	req.Header.Set("X-User-Role", "collector")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser != userID {
		t.Fatalf("expected user %s got %s", userID, gotUser)
	}
	if gotRole != enums.UserRoleCollector {
		t.Fatalf("expected collector got %q", gotRole)
	}
}

func TestIdentityIgnoresMalformedHeaders(t *testing.T) {
	var gotUser uuid.UUID
	var gotRole enums.UserRole
	handler := Identity(identityTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "not-a-uuid")
	req.Header.Set("X-User-Role", "wizard")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser != uuid.Nil {
		t.Fatalf("expected nil user got %s", gotUser)
	}
	if gotRole != "" {
		t.Fatalf("expected empty role got %q", gotRole)
	}
}

func TestRequireIdentityRejectsAnonymous(t *testing.T) {
	handler := RequireIdentity(identityTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireRoleMatrix(t *testing.T) {
	cases := []struct {
		name   string
		role   enums.UserRole
		expect int
	}{
		{name: "allowed role passes", role: enums.UserRoleCollector, expect: http.StatusOK},
		{name: "admin bypasses guard", role: enums.UserRoleAdmin, expect: http.StatusOK},
		{name: "other role rejected", role: enums.UserRoleDonor, expect: http.StatusForbidden},
		{name: "missing role rejected", role: "", expect: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(identityTestLogger(), enums.UserRoleCollector)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.role != "" {
				req = req.WithContext(WithRole(req.Context(), tc.role))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			if resp.Code != tc.expect {
				t.Fatalf("expected %d got %d", tc.expect, resp.Code)
			}
		})
	}
}
