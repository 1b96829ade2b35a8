package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/api/controllers"
	"github.com/greenloop-app/greenloop-backend/internal/classify"
	"github.com/greenloop-app/greenloop-backend/internal/credits"
	"github.com/greenloop-app/greenloop-backend/internal/notifications"
	"github.com/greenloop-app/greenloop-backend/internal/pickups"
	"github.com/greenloop-app/greenloop-backend/internal/profiles"
	"github.com/greenloop-app/greenloop-backend/pkg/config"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPickupsService struct{}

func (stubPickupsService) Create(ctx context.Context, input pickups.CreateInput) (*pickups.View, error) {
	return &pickups.View{}, nil
}

func (stubPickupsService) Get(ctx context.Context, requestID uuid.UUID) (*pickups.View, error) {
	return &pickups.View{}, nil
}

func (stubPickupsService) AssignCollector(ctx context.Context, requestID, collectorID uuid.UUID) (*pickups.View, error) {
	return &pickups.View{}, nil
}

func (stubPickupsService) AdvanceStatus(ctx context.Context, requestID, actorID uuid.UUID, next enums.PickupStatus) (*pickups.View, error) {
	return &pickups.View{}, nil
}

func (stubPickupsService) Cancel(ctx context.Context, requestID, actorID uuid.UUID, reason string) (*pickups.View, error) {
	return &pickups.View{}, nil
}

func (stubPickupsService) Complete(ctx context.Context, input pickups.CompleteInput) (*pickups.View, error) {
	return &pickups.View{}, nil
}

func (stubPickupsService) ListForDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*pickups.ListResult, error) {
	return &pickups.ListResult{}, nil
}

func (stubPickupsService) ListForCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*pickups.ListResult, error) {
	return &pickups.ListResult{}, nil
}

func (stubPickupsService) Queue(ctx context.Context, params pagination.Params) (*pickups.ListResult, error) {
	return &pickups.ListResult{}, nil
}

func (stubPickupsService) ExpirePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	return 0, nil
}

type stubClassifyService struct{}

func (stubClassifyService) Classify(ctx context.Context, input classify.ClassifyInput) (classify.Decision, error) {
	return classify.Decision{Label: "laptop", IsEwaste: true}, nil
}

type stubProfilesService struct{}

func (stubProfilesService) Ensure(ctx context.Context, userID uuid.UUID, displayName string) (*profiles.View, error) {
	return &profiles.View{UserID: userID}, nil
}

func (stubProfilesService) Get(ctx context.Context, userID uuid.UUID) (*profiles.View, error) {
	return &profiles.View{UserID: userID}, nil
}

func (stubProfilesService) Update(ctx context.Context, userID uuid.UUID, input profiles.UpdateInput) (*profiles.View, error) {
	return &profiles.View{UserID: userID}, nil
}

type stubCreditsService struct{}

func (stubCreditsService) Award(ctx context.Context, tx *gorm.DB, input credits.AwardInput) (*credits.AwardResult, error) {
	return &credits.AwardResult{}, nil
}

func (stubCreditsService) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*credits.ListResult, error) {
	return &credits.ListResult{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config: cfg,
		Logger: logg,
		Pingers: map[string]controllers.Pinger{
			"postgres": stubPinger{},
			"redis":    stubPinger{},
		},
		Pickups:       stubPickupsService{},
		Classify:      stubClassifyService{},
		Profiles:      stubProfilesService{},
		Credits:       stubCreditsService{},
		Notifications: stubNotificationsService{},
	})
}

func identify(req *http.Request, role enums.UserRole) {
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", string(role))
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestPublicPingNeedsNoIdentity(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingIdentity(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity headers got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithIdentity(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	identify(req, enums.UserRoleDonor)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestCreatePickupRequiresDonorRole(t *testing.T) {
	router := newTestRouter(testConfig())

	asCollector := httptest.NewRequest(http.MethodPost, "/api/v1/pickups", nil)
	identify(asCollector, enums.UserRoleCollector)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asCollector)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for collector create got %d", resp.Code)
	}
}

func TestQueueRequiresCollectorRole(t *testing.T) {
	router := newTestRouter(testConfig())

	asDonor := httptest.NewRequest(http.MethodGet, "/api/v1/pickups/queue", nil)
	identify(asDonor, enums.UserRoleDonor)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asDonor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for donor queue got %d", resp.Code)
	}

	asCollector := httptest.NewRequest(http.MethodGet, "/api/v1/pickups/queue", nil)
	identify(asCollector, enums.UserRoleCollector)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asCollector)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for collector queue got %d", resp.Code)
	}
}

func TestAssignRequiresCollectorRole(t *testing.T) {
	router := newTestRouter(testConfig())
	target := "/api/v1/pickups/" + uuid.NewString() + "/assign"

	asDonor := httptest.NewRequest(http.MethodPost, target, nil)
	identify(asDonor, enums.UserRoleDonor)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asDonor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for donor assign got %d", resp.Code)
	}

	asCollector := httptest.NewRequest(http.MethodPost, target, nil)
	identify(asCollector, enums.UserRoleCollector)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asCollector)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for collector assign got %d", resp.Code)
	}
}

func TestAdminBypassesRoleGuards(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pickups/queue", nil)
	identify(req, enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin queue got %d", resp.Code)
	}
}

func TestUnknownRoleFailsRoleGuards(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pickups/queue", nil)
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "superuser")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown role got %d", resp.Code)
	}
}
