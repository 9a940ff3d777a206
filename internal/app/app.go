package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"secustats/internal/config"
	"secustats/internal/dataset"
	"secustats/internal/errors"
	"secustats/internal/infrastructure"
	customMiddleware "secustats/internal/middleware"
	"secustats/internal/services"
	handlers "secustats/internal/transport/http"
)

const (
	VERSION = "1.0.0"
	AppName = "SecuStats - Statistiques de la securite publique"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Generate a deterministic build ID based on version and time
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Store         *dataset.Store
	DataService   *services.DataService
	HealthService *services.HealthService
	Metrics       *infrastructure.Metrics
	Logger        *slog.Logger
	WebFS         fs.FS
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(webFS fs.FS) (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("build_id", BuildID))

	paths, err := config.GetPaths(cfg.Dataset.File)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
		WebFS:   webFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the dataset store and the service layer, and
// performs the warm-up load. A missing or unreadable dataset file aborts
// startup: the dashboard has nothing to show without it.
func (a *Application) initializeServices() error {
	opts := dataset.Options{
		Delimiter:        a.Config.Dataset.DelimiterRune(),
		Encoding:         a.Config.Dataset.Encoding,
		MetropolitanOnly: a.Config.Dataset.MetropolitanOnly,
	}

	a.Store = dataset.NewStore(a.Paths.DatasetFile, opts, a.Logger,
		dataset.WithLoadObserver(func(report dataset.LoadReport, err error) {
			a.Metrics.ObserveDatasetLoad(report.Loaded, report.Rejected, err)
		}))

	warmupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ds, err := a.Store.Get(warmupCtx)
	if err != nil {
		if dataset.IsFatal(err) {
			return fmt.Errorf("cannot start without a usable dataset: %w", err)
		}
		return fmt.Errorf("dataset warm-up failed: %w", err)
	}

	report := ds.Report()
	a.Logger.Info("Dataset warm-up complete",
		slog.String("file", a.Paths.DatasetFile),
		slog.Int("loaded", report.Loaded),
		slog.Int("rejected", report.Rejected),
		slog.Int("filtered", report.Filtered))

	a.DataService = services.NewDataServiceWithLogger(a.Store, a.Logger)
	a.HealthService = services.NewHealthService(VERSION, BuildTime, a.Store, a.Logger)

	return nil
}

// setupRouter wires the middleware chain and all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))
	r.Use(customMiddleware.Metrics(a.Metrics))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	// Prometheus metrics endpoint
	r.Handle("/metrics", a.Metrics.Handler())

	// Embedded dashboard frontend
	if a.WebFS != nil {
		a.setupFrontend(r)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		// Health handler
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		// Data handler
		errorHandler := errors.NewErrorHandler(a.Logger, false)
		dataHandler := handlers.NewDataHandler(a.DataService, a.Logger, errorHandler)
		r.Mount("/data", dataHandler.Routes())

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	})
}

// setupFrontend serves the embedded dashboard page and its assets.
func (a *Application) setupFrontend(r chi.Router) {
	fileServer := http.FileServer(http.FS(a.WebFS))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		data, err := fs.ReadFile(a.WebFS, "index.html")
		if err != nil {
			a.Logger.ErrorContext(req.Context(), "frontend index missing",
				slog.String("error", err.Error()))
			http.Error(w, "dashboard assets unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		// Cache immutable assets; the page itself is always revalidated.
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, req)
	})
}

// getCORSConfig builds the CORS configuration from settings.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := a.Config.Security.AllowedOrigins
	// Always allow the server's own origin for the embedded frontend.
	self := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	found := false
	for _, o := range origins {
		if o == self || o == "*" {
			found = true
			break
		}
	}
	if !found {
		origins = append(origins, self)
	}

	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer builds the HTTP server from configuration.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", a.Paths.ExecutableDir),
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("logs_dir", a.Paths.LogsDir),
		slog.String("dataset_file", a.Paths.DatasetFile))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start application
	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	// Wait for interrupt or server failure
	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	// Graceful shutdown
	return a.Stop(context.Background())
}

// DatasetHint returns the operator-facing message shown when the dataset
// file is absent at startup.
func DatasetHint(cfg *config.Config) string {
	file := "serieschrono-datagouv.csv"
	if cfg != nil && cfg.Dataset.File != "" {
		file = cfg.Dataset.File
	}
	return fmt.Sprintf(
		"Dataset file %q not found.\n"+
			"Download the chronological series export from data.gouv.fr\n"+
			"(Statistiques de la delinquance enregistree) and place it at %s.",
		file, filepath.Join("data", file))
}
