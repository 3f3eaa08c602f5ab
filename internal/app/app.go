package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"retailpulse/internal/cleaning"
	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/ingestion"
	"retailpulse/internal/insights"
	"retailpulse/internal/kpi"
	custommw "retailpulse/internal/middleware"
	"retailpulse/internal/services"
	"retailpulse/internal/store"
	transport "retailpulse/internal/transport/http"
)

// Application wires configuration, infrastructure, services and transport
// together. Construction fails fast; Run blocks until shutdown.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics
	Store   *store.Store
	Router  chi.Router
	Server  *http.Server
}

// New builds the full application from configuration.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds the application from an explicit configuration,
// used by tests to inject temp paths and ports.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	metrics := infrastructure.NewMetrics()

	st, err := store.Open(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	datasetSvc := services.NewDatasetService(
		ingestion.NewLoader(logger),
		cleaning.NewPipeline(cfg.Pipeline, logger),
		kpi.NewCalculator(logger),
		st,
		metrics,
		cfg.Pipeline.SampleRows,
		logger,
	)
	insightSvc := services.NewInsightService(insights.NewGenerator(logger), st, logger)
	healthSvc := services.NewHealthService(st, logger)

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Store:   st,
	}
	app.Router = app.buildRouter(datasetSvc, insightSvc, healthSvc)
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (a *Application) buildRouter(
	datasetSvc *services.DatasetService,
	insightSvc *services.InsightService,
	healthSvc *services.HealthService,
) chi.Router {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	datasetHandler := transport.NewDatasetHandler(
		datasetSvc, insightSvc, exporter.NewExporter(a.Logger),
		errorHandler, a.Config.Server.MaxUploadBytes, a.Logger,
	)
	healthHandler := transport.NewHealthHandler(healthSvc, a.Logger)

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(a.Metrics.Middleware)
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(custommw.StripSlashes)
	r.Use(custommw.Timeout(a.Config.Server.WriteTimeout, a.Logger))

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins:   a.Config.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
			Logger:           a.Logger,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Get("/metrics", a.Metrics.Handler().ServeHTTP)
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/datasets", datasetHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	return r
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("addr", a.Server.Addr),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Logger.Info("shutting down",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()

	if closeErr := a.Store.Close(); closeErr != nil {
		a.Logger.Error("close store", slog.String("error", closeErr.Error()))
	}
	if logErr := infrastructure.CloseLogFile(); logErr != nil {
		a.Logger.Error("close log file", slog.String("error", logErr.Error()))
	}

	return err
}
