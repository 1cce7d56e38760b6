// Package app wires configuration, storage, engines and transport into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"sirius/internal/config"
	"sirius/internal/exporter"
	"sirius/internal/feed"
	"sirius/internal/infrastructure"
	custommiddleware "sirius/internal/middleware"
	"sirius/internal/report"
	"sirius/internal/services"
	"sirius/internal/store"
	handlers "sirius/internal/transport/http"
)

const Version = "1.0.0"

// Application is the dependency container for the server.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Store         *store.Store
	Reports       *report.Registry
	WizardService *services.WizardService
	FeedService   *services.FeedService
	Janitor       *services.Janitor
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication builds the application with all dependencies wired.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("application starting",
		slog.String("name", "Sirius"),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize opentelemetry: %w", err)
	}
	metrics, err := infrastructure.NewWizardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create wizard metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Report engines, all querying through the store.
	reports := report.NewRegistry()
	for _, engine := range []report.Engine{
		report.NewDuplicateSSNReport(db),
		report.NewLegalComplianceReport(db),
		report.NewCorrectionsReport(db),
	} {
		if err := reports.Register(engine); err != nil {
			return nil, fmt.Errorf("failed to register report engine: %w", err)
		}
	}

	// Feed engines writing through the exporter.
	writer := exporter.NewWriter(cfg.Export.Dir, logger)
	feeds := feed.NewRegistry()
	if err := feeds.Register(feed.NewMonthlyRemittanceFeed(db, writer)); err != nil {
		return nil, fmt.Errorf("failed to register feed engine: %w", err)
	}

	// Step registry is static; Validate runs inside BuildRegistry so a
	// wiring typo fails startup instead of surfacing as a nil step later.
	registry, err := services.BuildRegistry(reports)
	if err != nil {
		return nil, err
	}

	runner := services.NewRunner(db, reports, cfg.Wizard.ReportBatchSize, logger)
	runner.SetMetrics(metrics)
	wizardService := services.NewWizardService(db, registry, reports, runner, cfg.Wizard.RunTimeout, logger)
	feedService := services.NewFeedService(feeds, logger)
	janitor := services.NewJanitor(db, cfg.Wizard.PurgeInterval, logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Store:         db,
		Reports:       reports,
		WizardService: wizardService,
		FeedService:   feedService,
		Janitor:       janitor,
		OTelProviders: otelProviders,
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.RequestLogger(a.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(custommiddleware.RateLimit(a.Config.Security.RateLimit))

	wizardHandler := handlers.NewWizardHandler(a.WizardService, a.Logger)
	reportHandler := handlers.NewReportHandler(a.Reports, a.Logger)
	feedHandler := handlers.NewFeedHandler(a.FeedService, a.Logger)
	healthHandler := handlers.NewHealthHandler(Version)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/wizards", wizardHandler.Routes())
		r.Mount("/reports", reportHandler.Routes())
		r.Mount("/feeds", feedHandler.Routes())
		r.Get("/health", healthHandler.Health)
	})
	r.Method(http.MethodGet, "/metrics", a.OTelProviders.PrometheusHTTP)
	return r
}

// Run starts the server and the janitor, blocking until shutdown.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.Janitor.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("shutting down")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("otel shutdown failed", slog.String("error", err.Error()))
		}
		return a.Store.Close()
	})

	return g.Wait()
}
