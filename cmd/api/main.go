package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medibook/config"
	"github.com/jwalitptl/medibook/internal/email"
	appointmentHandler "github.com/jwalitptl/medibook/internal/handler/appointment"
	"github.com/jwalitptl/medibook/internal/handler/health"
	"github.com/jwalitptl/medibook/internal/handler/prometheus"
	"github.com/jwalitptl/medibook/internal/middleware"
	"github.com/jwalitptl/medibook/internal/repository"
	"github.com/jwalitptl/medibook/internal/repository/memory"
	"github.com/jwalitptl/medibook/internal/repository/postgres"
	"github.com/jwalitptl/medibook/internal/router"
	appointmentService "github.com/jwalitptl/medibook/internal/service/appointment"
	eventService "github.com/jwalitptl/medibook/internal/service/event"
	"github.com/jwalitptl/medibook/internal/service/notification"
	"github.com/jwalitptl/medibook/internal/worker"
	"github.com/jwalitptl/medibook/pkg/logger"
	"github.com/jwalitptl/medibook/pkg/messaging"
	"github.com/jwalitptl/medibook/pkg/messaging/redis"
	"github.com/jwalitptl/medibook/pkg/metrics"
	"github.com/jwalitptl/medibook/pkg/timefmt"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = appLog.ZL
	gin.SetMode(gin.ReleaseMode)

	loc, err := timefmt.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduler timezone")
	}

	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(cfg.Monitoring.MetricsPrefix, registry)

	// Initialize storage
	appointmentRepo, closeStorage, err := openStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}
	defer closeStorage()
	appointmentRepo = repository.WithMetrics(appointmentRepo, appMetrics)

	// Initialize message broker, in-process unless Redis is configured
	var broker messaging.Broker = messaging.NewMemoryBroker()
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLog.ZL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	}
	defer broker.Close()

	// Initialize services
	var notifier notification.Service
	if cfg.SMTP.Enabled() {
		notifier = notification.NewService(email.NewSMTPService(cfg.SMTP), notification.Options{
			Logger:  appLog,
			Metrics: appMetrics,
		})
	}

	appointmentSvc := appointmentService.NewService(appointmentRepo, appointmentService.Options{
		Location:       loc,
		SimulationDate: cfg.Scheduler.SimulationDate,
		Doctors:        cfg.Scheduler.Doctors,
		DoctorCacheTTL: cfg.Scheduler.DoctorCacheTTL,
		Logger:         appLog,
		Metrics:        appMetrics,
		Events:         eventService.NewEventService(broker, appLog, appMetrics),
		Notifier:       notifier,
	})

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// Setup router
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Security.AllowedOrigins

	routerConfig := router.RouterConfig{
		CORSConfig:     corsConfig,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(
		appointmentHandler.NewHandler(appointmentSvc),
		health.NewHandler(appointmentRepo),
		prometheus.New(cfg.Monitoring.MetricsPrefix, registry),
		routerConfig,
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	cleanup := worker.NewAppointmentCleanupWorker(appointmentSvc, cfg.Scheduler.CleanupInterval, appLog)
	go cleanup.Start(workerCtx)
	go func() {
		if err := eventService.Watch(workerCtx, broker, appLog, nil); err != nil {
			log.Error().Err(err).Msg("appointment event watcher stopped")
		}
	}()

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Str("today", appointmentSvc.Today()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func openStorage(cfg *config.Config) (repository.AppointmentRepository, func(), error) {
	switch cfg.Storage.Driver {
	case "file":
		repo, err := memory.NewFileAppointmentRepository(cfg.Storage.File)
		return repo, func() {}, err
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewAppointmentRepository(db), func() { db.Close() }, nil
	default:
		return memory.NewAppointmentRepository(), func() {}, nil
	}
}
