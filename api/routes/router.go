package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenloop-app/greenloop-backend/api/controllers"
	"github.com/greenloop-app/greenloop-backend/api/middleware"
	"github.com/greenloop-app/greenloop-backend/internal/classify"
	"github.com/greenloop-app/greenloop-backend/internal/credits"
	"github.com/greenloop-app/greenloop-backend/internal/notifications"
	"github.com/greenloop-app/greenloop-backend/internal/pickups"
	"github.com/greenloop-app/greenloop-backend/internal/profiles"
	"github.com/greenloop-app/greenloop-backend/pkg/config"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs. Readiness pingers are
// keyed by dependency name so /health/ready can report each one.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Pingers       map[string]controllers.Pinger
	Pickups       pickups.Service
	Classify      classify.Service
	Profiles      profiles.Service
	Credits       credits.Service
	Notifications notifications.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.Pingers))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/classify", controllers.ClassifyItem(d.Classify, d.Logger))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity(d.Logger))
		r.Use(middleware.RequireIdentity(d.Logger))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/pickups", func(r chi.Router) {
			r.With(middleware.RequireRole(d.Logger, enums.UserRoleDonor)).
				Post("/", controllers.CreatePickup(d.Pickups, d.Logger))
			r.Get("/", controllers.ListPickups(d.Pickups, d.Logger))
			r.With(middleware.RequireRole(d.Logger, enums.UserRoleCollector)).
				Get("/queue", controllers.PickupQueue(d.Pickups, d.Logger))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetPickup(d.Pickups, d.Logger))
				r.Post("/cancel", controllers.CancelPickup(d.Pickups, d.Logger))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(d.Logger, enums.UserRoleCollector))
					r.Post("/assign", controllers.AssignPickup(d.Pickups, d.Logger))
					r.Post("/status", controllers.AdvancePickupStatus(d.Pickups, d.Logger))
					r.Post("/complete", controllers.CompletePickup(d.Pickups, d.Logger))
				})
			})
		})

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(d.Profiles, d.Logger))
			r.Put("/", controllers.UpdateProfile(d.Profiles, d.Logger))
		})

		r.Get("/v1/transactions", controllers.ListTransactions(d.Credits, d.Logger))

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, d.Logger))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, d.Logger))
			r.Post("/{id}/read", controllers.MarkNotificationRead(d.Notifications, d.Logger))
		})
	})

	return r
}
