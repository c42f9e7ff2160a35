// Command tasktracker runs the task tracker as a web app or an interactive shell.
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tasktracker/internal/app"
	"tasktracker/internal/config"
	"tasktracker/internal/handlers"
	"tasktracker/internal/logging"
	"tasktracker/internal/metrics"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var (
	// configPath is the optional YAML config file
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tasktracker",
	Short: "Track tasks from the browser or the terminal",
	Long: `tasktracker keeps a list of tasks with a status, a priority and an optional due date.

Tasks are stored in a local SQLite file. Run 'tasktracker serve' for the web app
or 'tasktracker shell' for the interactive terminal.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
}

// runtime is the configuration and logger shared by every command.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

func (rt *runtime) close() {
	logging.Sync(rt.logger)
}

// serveCmd runs the web presenter
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app",
	Long: `Run the web app on server.port.

Examples:
  # Serve on the configured port
  tasktracker serve

  # Serve on another port
  TASKTRACKER_SERVER_PORT=9000 tasktracker serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	logger := rt.logger

	backend, persistent := app.OpenBackend(rt.cfg.Storage, logger.Named("storage"))
	if persistent {
		logger.Info("storage opened", zap.String("path", rt.cfg.Storage.Path))
	}

	tmpl, err := handlers.ParseTemplates(templatesFS)
	if err != nil {
		backend.Close()
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	m := metrics.New()
	h := handlers.New(tmpl, logger.Named("http"))
	a := app.New(backend, h,
		app.WithLogger(logger),
		app.WithMetrics(m),
		app.WithStorageKey(rt.cfg.Storage.Key),
	)
	defer a.Close()
	h.Attach(a)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(handlers.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Static files
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	r.Handle("/metrics", m.Handler())

	h.Routes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("url", fmt.Sprintf("http://localhost%s", srv.Addr)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
