package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"github.com/robfig/cron/v3"

	"github.com/s22a0058-ai/FYP/internal/config"
	apierrors "github.com/s22a0058-ai/FYP/internal/errors"
	"github.com/s22a0058-ai/FYP/internal/feedback"
	"github.com/s22a0058-ai/FYP/internal/infrastructure"
	customMiddleware "github.com/s22a0058-ai/FYP/internal/middleware"
	"github.com/s22a0058-ai/FYP/internal/services"
	handlers "github.com/s22a0058-ai/FYP/internal/transport/http"
	ws "github.com/s22a0058-ai/FYP/internal/websocket"
	"github.com/s22a0058-ai/FYP/pkg/contracts"
)

// Application is the composition root of the web process: configuration,
// logging, telemetry, services, router, and HTTP server.
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	WebSocketHub    *ws.Hub
	DatasetService  *services.DatasetService
	FeedbackService *services.FeedbackService
	HealthService   *services.HealthService
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	BusinessMetrics *infrastructure.BusinessMetrics

	feedbackStore   feedback.Store
	scheduler       *cron.Cron
	systemCollector *infrastructure.SystemMetricsCollector
	collectorCancel context.CancelFunc
	upgrader        websocket.Upgrader
}

// Options override configuration at startup, typically from command-line
// flags. Zero values mean "use the configured default".
type Options struct {
	ConfigFile string
	Port       int
}

// NewApplication builds the application with all dependencies wired.
func NewApplication(opts Options) (*Application, error) {
	var cfg *config.Config
	var err error
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFrom(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Observability), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	businessMetrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		OTelProviders:   otelProviders,
		BusinessMetrics: businessMetrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		},
	}
	app.upgrader.CheckOrigin = app.checkWebSocketOrigin

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupScheduler()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	a.WebSocketHub = ws.NewHub(a.Logger)

	datasetService, err := services.NewDatasetService(a.Config, a.Logger, a.BusinessMetrics)
	if err != nil {
		return fmt.Errorf("failed to create dataset service: %w", err)
	}
	datasetService.SetPublisher(a.WebSocketHub.Broadcast)
	a.DatasetService = datasetService

	store, err := feedback.NewSQLiteStore(a.Config.Feedback.DBPath, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open feedback store: %w", err)
	}
	a.feedbackStore = store

	feedbackService := services.NewFeedbackService(a.Config, store, a.Logger, a.BusinessMetrics)
	feedbackService.SetPublisher(a.WebSocketHub.Broadcast)
	a.FeedbackService = feedbackService

	a.HealthService = services.NewHealthService(datasetService, feedbackService, a.WebSocketHub, a.Logger)

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
	if err != nil {
		a.Logger.Warn("system metrics collector unavailable", slog.String("error", err.Error()))
	} else {
		a.systemCollector = collector
	}

	return nil
}

// setupScheduler registers the background refresh when a cron spec is
// configured. An invalid spec fails loudly at startup rather than silently
// never refreshing.
func (a *Application) setupScheduler() {
	spec := a.Config.Dataset.RefreshCron
	if spec == "" {
		return
	}

	a.scheduler = cron.New()
	_, err := a.scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultHTTPTimeout)
		defer cancel()

		if _, err := a.DatasetService.Refresh(ctx); err != nil {
			a.Logger.Error("scheduled refresh failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		a.Logger.Error("invalid refresh cron spec, background refresh disabled",
			slog.String("spec", spec),
			slog.String("error", err.Error()))
		a.scheduler = nil
		return
	}

	a.Logger.Info("background refresh scheduled", slog.String("spec", spec))
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that won't interfere with the WebSocket upgrade.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc(config.WebSocketEndpoint, a.handleWebSocket)

	// Prometheus scrape endpoint stays outside the full middleware stack.
	var promHandler http.Handler
	if a.OTelProviders != nil {
		promHandler = a.OTelProviders.PrometheusHTTP
	}
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(promHandler))

	r.Group(func(r chi.Router) {
		if a.OTelProviders != nil {
			otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
			if err != nil {
				a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
			} else {
				r.Use(otelMiddleware.Handler)
			}
		}
		r.Use(customMiddleware.BusinessMetricsMiddleware(a.BusinessMetrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	adminAuth := customMiddleware.NewAdminAuth(a.Config.Feedback.AdminPasswordHash, a.Logger, a.BusinessMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService)
		r.Mount("/health", healthHandler.Routes())
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/version", healthHandler.Version)

		datasetHandler := handlers.NewDatasetHandler(a.DatasetService, adminAuth, a.Logger, errorHandler)
		r.Mount("/dataset", datasetHandler.Routes())

		feedbackHandler := handlers.NewFeedbackHandler(a.FeedbackService, adminAuth, a.Logger, errorHandler)
		validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
		r.With(
			customMiddleware.ContentTypeValidator("application/json"),
			validation.ValidateRequest,
		).Mount("/feedback", feedbackHandler.Routes())
	})
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", customMiddleware.AdminPasswordHeader},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

func (a *Application) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin header.
		return true
	}
	for _, allowed := range a.Config.Security.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	a.Logger.Warn("websocket origin rejected", slog.String("origin", origin))
	return false
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the background services and the HTTP server. A server error
// cancels the supplied context so the caller can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("dataset_source", a.Config.Dataset.Source))

	a.WebSocketHub.Start()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	if a.systemCollector != nil {
		collectorCtx, collectorCancel := context.WithCancel(context.Background())
		a.collectorCancel = collectorCancel
		go a.systemCollector.Start(collectorCtx)
	}

	// Warm the snapshot so the first dashboard request is served from cache.
	go func() {
		warmCtx, warmCancel := context.WithTimeout(context.Background(), config.DefaultHTTPTimeout)
		defer warmCancel()
		if _, err := a.DatasetService.Snapshot(warmCtx); err != nil {
			a.Logger.Warn("snapshot warm-up failed", slog.String("error", err.Error()))
		}
	}()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully shuts the application down.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.collectorCancel != nil {
		a.collectorCancel()
	}
	a.WebSocketHub.Stop()

	if err := a.feedbackStore.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "error closing feedback store", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("error closing log file: %w", err)
	}
	return nil
}

// Run starts the application and blocks until an interrupt arrives.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Error("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := ws.NewClient(a.WebSocketHub, conn, a.Logger)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
