package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/greenloop-app/greenloop-backend/api/controllers"
	"github.com/greenloop-app/greenloop-backend/api/routes"
	"github.com/greenloop-app/greenloop-backend/internal/classify"
	"github.com/greenloop-app/greenloop-backend/internal/credits"
	"github.com/greenloop-app/greenloop-backend/internal/notifications"
	"github.com/greenloop-app/greenloop-backend/internal/pickups"
	"github.com/greenloop-app/greenloop-backend/internal/profiles"
	"github.com/greenloop-app/greenloop-backend/pkg/config"
	"github.com/greenloop-app/greenloop-backend/pkg/db"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/migrate"
	"github.com/greenloop-app/greenloop-backend/pkg/outbox"
	"github.com/greenloop-app/greenloop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	profilesRepo := profiles.NewRepository(dbClient.DB())
	profilesService, err := profiles.NewService(profilesRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	creditsService, err := credits.NewService(
		credits.NewRepository(dbClient.DB()),
		profilesRepo,
		notificationsRepo,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create credits service", err)
		os.Exit(1)
	}

	pickupsService, err := pickups.NewService(
		pickups.NewRepository(dbClient.DB()),
		dbClient,
		creditsService,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create pickups service", err)
		os.Exit(1)
	}

	classifyService, err := classify.NewService(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create classify service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Pingers: map[string]controllers.Pinger{
				"postgres": dbClient,
				"redis":    redisClient,
			},
			Pickups:       pickupsService,
			Classify:      classifyService,
			Profiles:      profilesService,
			Credits:       creditsService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
