package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"timesheet-service/internal/auth"
	"timesheet-service/internal/config"
	"timesheet-service/internal/db"
	"timesheet-service/internal/events"
	"timesheet-service/internal/health"
	"timesheet-service/internal/httputil"
	"timesheet-service/internal/metrics"
	"timesheet-service/internal/middleware"
	"timesheet-service/internal/telemetry"
	"timesheet-service/internal/timesheet"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	grpc      *health.GRPCServer
	db        *bun.DB
	publisher events.Publisher
	telemetry *telemetry.Telemetry
	monitor   *health.Monitor
	logger    *slog.Logger
}

// New connects every dependency named in cfg and builds the HTTP router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing application", "env", cfg.Env, "version", Version)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, cfg.Env, logger)
	if err != nil {
		return nil, err
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := tel.Metrics.Database.RegisterDB(database.DB, tel.Metrics.Meter()); err != nil {
		logger.Warn("failed to register database pool metrics", "error", err)
	}

	publisher, err := events.New(cfg.Events, tel.Metrics, logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	monitor := health.NewMonitor(tel.Metrics, logger)
	monitor.Register("database", database.PingContext)
	if cfg.Events.Driver != config.EventsNone {
		monitor.Register("events", publisher.Ping)
	}
	if err := tel.Metrics.Health.RegisterDependencies(tel.Metrics.Meter(), monitor.Names()); err != nil {
		logger.Warn("failed to register dependency metrics", "error", err)
	}

	app := &App{
		config:    cfg,
		db:        database,
		publisher: publisher,
		telemetry: tel,
		monitor:   monitor,
		logger:    logger,
	}

	router, err := NewRouter(RouterDeps{
		DB:        database,
		Publisher: publisher,
		Metrics:   tel.Metrics,
		Monitor:   monitor,
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		app.closeDependencies(ctx)
		return nil, err
	}
	app.router = router
	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	if cfg.Grpc.Port != "" {
		app.grpc = health.NewGRPCServer(tel.Metrics, logger)
		monitor.AttachGRPC(app.grpc.Health())
	}

	logger.Info("application initialized successfully")
	return app, nil
}

type RouterDeps struct {
	DB        *bun.DB
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Monitor   *health.Monitor
	Config    *config.Config
	Logger    *slog.Logger
}

// NewRouter assembles middleware, probes and the timesheet API.
func NewRouter(deps RouterDeps) (chi.Router, error) {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS(deps.Config.Server.CORSOrigins))

	router.NotFound(httputil.NotFound)
	router.MethodNotAllowed(httputil.MethodNotAllowed)

	// Health endpoints (no auth required)
	health.NewHandler(deps.Monitor).RegisterRoutes(router)

	repo := timesheet.NewRepository(deps.DB, deps.Metrics)
	service := timesheet.NewService(repo, deps.Publisher, deps.Metrics, deps.Logger)
	handler := timesheet.NewHandler(service, deps.Logger)

	if deps.Config.Auth.JWTSecret == "" {
		handler.RegisterRoutes(router)
		return router, nil
	}

	tokens, err := auth.NewTokenManager(deps.Config.Auth.JWTSecret, deps.Config.Auth.Issuer)
	if err != nil {
		return nil, err
	}
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens, deps.Logger))
		handler.RegisterRoutes(r)
	})
	deps.Logger.Info("bearer token auth enabled for timesheet API")

	return router, nil
}

func (a *App) Router() http.Handler {
	return a.router
}

// Run serves HTTP (and gRPC health when configured) until Shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	if a.grpc != nil {
		go func() {
			if err := a.grpc.ListenAndServe(a.config.Grpc.Port); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		a.logger.Info("server starting", "port", a.config.Server.Port)
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	return <-errCh
}

// StartHealthChecks blocks until ctx is cancelled.
func (a *App) StartHealthChecks(ctx context.Context) {
	a.monitor.Start(ctx, health.DefaultInterval)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	if a.grpc != nil {
		a.grpc.Stop(ctx)
	}

	if err := a.closeDependencies(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (a *App) closeDependencies(ctx context.Context) error {
	var errs []error

	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event publisher: %w", err))
	}

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	return errors.Join(errs...)
}
