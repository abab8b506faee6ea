package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/VIERNES-8020/domino-backend/api/controllers"
	"github.com/VIERNES-8020/domino-backend/api/routes"
	"github.com/VIERNES-8020/domino-backend/internal/arxis"
	"github.com/VIERNES-8020/domino-backend/internal/auth"
	"github.com/VIERNES-8020/domino-backend/internal/closures"
	"github.com/VIERNES-8020/domino-backend/internal/dashboard"
	"github.com/VIERNES-8020/domino-backend/internal/media"
	"github.com/VIERNES-8020/domino-backend/internal/notifications"
	"github.com/VIERNES-8020/domino-backend/internal/properties"
	"github.com/VIERNES-8020/domino-backend/internal/users"
	"github.com/VIERNES-8020/domino-backend/pkg/auth/session"
	"github.com/VIERNES-8020/domino-backend/pkg/config"
	"github.com/VIERNES-8020/domino-backend/pkg/db"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/metrics"
	"github.com/VIERNES-8020/domino-backend/pkg/migrate"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox"
	"github.com/VIERNES-8020/domino-backend/pkg/pubsub"
	"github.com/VIERNES-8020/domino-backend/pkg/redis"
	"github.com/VIERNES-8020/domino-backend/pkg/storage/gcs"
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cloud storage client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	propertiesRepo := properties.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.NewRepository(dbClient.DB()), gcsClient, cfg.GCS, cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	propertiesService, err := properties.NewService(propertiesRepo, mediaService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create properties service", err)
		os.Exit(1)
	}

	closuresService, err := closures.NewService(closures.ServiceParams{
		Repo:       closures.NewRepository(dbClient.DB()),
		Properties: propertiesRepo,
		Media:      mediaService,
		Emitter:    outboxService,
		Metrics:    metrics.NewClosureMetrics(prometheus.DefaultRegisterer),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create closures service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), propertiesRepo, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	arxisService, err := arxis.NewService(arxis.NewRepository(dbClient.DB()), mediaService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create arxis service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			Redis:         redisClient,
			Sessions:      sessionManager,
			Readiness:     controllers.ReadinessDeps(dbClient, redisClient, gcsClient, pubsubClient),
			Metrics:       metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			Auth:          authService,
			Users:         usersService,
			Properties:    propertiesService,
			Media:         mediaService,
			Closures:      closuresService,
			Notifications: notificationsService,
			Arxis:         arxisService,
			Dashboard:     dashboardService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
