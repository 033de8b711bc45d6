// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/perthro/internal/api"
	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/launcher"
	"github.com/starford/perthro/internal/mcpserver"
	"github.com/starford/perthro/internal/opener"
	"github.com/starford/perthro/internal/resolver"
	"github.com/starford/perthro/internal/sse"
	"github.com/starford/perthro/internal/storage"
)

// bootstrap builds the shared service graph from configuration. The
// returned cleanup closes the index.
func bootstrap(cfg *Config, logger *slog.Logger) (*opener.Service, *storage.FS, *index.DB, func(), error) {
	vaultRoot := cfg.Vault.Root()

	store, err := storage.NewFS(vaultRoot)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := opener.NewService(
		resolver.New(store.Root(), db),
		launcher.New(),
		opener.NotifyPrefs{ShowSuccess: cfg.Notify.ShowSuccess, Debug: cfg.Notify.Debug},
		logger,
	)
	return svc, store, db, func() { db.Close() }, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the sidecar HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_root", cfg.Vault.Root()),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, store, db, cleanup, err := bootstrap(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, db, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		index.Watch(gCtx, db, store, store.Root(), logger, func(kind, path string) {
			broker.PublishFileEvent(kind, path)
		})
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio with the given options.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	// stdio transport owns stdout; logs must go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	svc, store, db, cleanup, err := bootstrap(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("MCP server starting on stdio", slog.String("vault_root", cfg.Vault.Root()))
	return mcpserver.New(svc, store, db).ServeStdio()
}

// RunOpen resolves and opens a single reference, then exits. It backs
// the CLI "open" command used for scripting and troubleshooting.
func RunOpen(ctx context.Context, ref string, opts ...Option) (opener.Outcome, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return opener.Outcome{}, fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	svc, _, _, cleanup, err := bootstrap(cfg, logger)
	if err != nil {
		return opener.Outcome{}, err
	}
	defer cleanup()

	return svc.OpenReference(ctx, ref), nil
}
