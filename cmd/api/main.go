package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/flokoutapp/flokout-backend/api/routes"
	"github.com/flokoutapp/flokout-backend/internal/attendance"
	"github.com/flokoutapp/flokout-backend/internal/auth"
	"github.com/flokoutapp/flokout-backend/internal/expenses"
	"github.com/flokoutapp/flokout-backend/internal/flokouts"
	"github.com/flokoutapp/flokout-backend/internal/floks"
	"github.com/flokoutapp/flokout-backend/internal/notifications"
	"github.com/flokoutapp/flokout-backend/internal/rsvps"
	"github.com/flokoutapp/flokout-backend/internal/spots"
	"github.com/flokoutapp/flokout-backend/internal/users"
	"github.com/flokoutapp/flokout-backend/pkg/auth/session"
	"github.com/flokoutapp/flokout-backend/pkg/config"
	"github.com/flokoutapp/flokout-backend/pkg/db"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
	"github.com/flokoutapp/flokout-backend/pkg/metrics"
	"github.com/flokoutapp/flokout-backend/pkg/migrate"
	redisclient "github.com/flokoutapp/flokout-backend/pkg/redis"

	"github.com/google/uuid"
)

const shutdownGrace = 15 * time.Second

// yesCountAdapter lets the flokout service count yes RSVPs straight off the
// repository, which breaks the construction cycle between the flokout and
// RSVP services.
type yesCountAdapter struct {
	repo rsvps.Repository
}

func (a yesCountAdapter) CountYes(ctx context.Context, flokoutID uuid.UUID) (int, error) {
	return a.repo.CountByResponse(ctx, flokoutID, enums.RSVPResponseYes)
}

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redisclient.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	flokRepo := floks.NewRepository(gormDB)
	flokoutRepo := flokouts.NewRepository(gormDB)
	spotRepo := spots.NewRepository(gormDB)
	rsvpRepo := rsvps.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	expenseRepo := expenses.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)

	usersService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	floksService, err := floks.NewService(flokRepo, dbClient, cfg.Invites)
	if err != nil {
		logg.Error(context.Background(), "failed to create floks service", err)
		os.Exit(1)
	}

	flokoutsService, err := flokouts.NewService(flokouts.ServiceParams{
		Repo:    flokoutRepo,
		Members: floksService,
		RSVPs:   yesCountAdapter{repo: rsvpRepo},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create flokouts service", err)
		os.Exit(1)
	}

	rsvpsService, err := rsvps.NewService(rsvps.ServiceParams{
		Repo:     rsvpRepo,
		Flokouts: flokoutsService,
		Members:  floksService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rsvps service", err)
		os.Exit(1)
	}

	spotsService, err := spots.NewService(spotRepo, floksService)
	if err != nil {
		logg.Error(context.Background(), "failed to create spots service", err)
		os.Exit(1)
	}

	attendanceService, err := attendance.NewService(attendance.ServiceParams{
		Repo:     attendanceRepo,
		Flokouts: flokoutsService,
		Members:  floksService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create attendance service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	notifier := notifications.NewNotifier(notificationsService, logg)

	expensesService, err := expenses.NewService(
		expenseRepo,
		dbClient,
		attendanceService,
		flokoutsService,
		floksService,
		usersService,
		notifier,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create expenses service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Registry:    registry,
		HTTPMetrics: httpMetrics,
		Sessions:    sessionManager,

		Auth:          authService,
		Users:         usersService,
		Floks:         floksService,
		Flokouts:      flokoutsService,
		Spots:         spotsService,
		RSVPs:         rsvpsService,
		Attendance:    attendanceService,
		Expenses:      expensesService,
		Notifications: notificationsService,
	})

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
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		closeErr = multierr.Append(closeErr, redisClient.Close())
		closeErr = multierr.Append(closeErr, dbClient.Close())
		if closeErr != nil {
			logg.Error(ctx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
