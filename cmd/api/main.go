package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-recorder/command"
	"github.com/marcelsud/webhook-recorder/config"
	"github.com/marcelsud/webhook-recorder/connector"
	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/internal/http/chi"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/message/file"
	"github.com/marcelsud/webhook-recorder/message/redis"
	"github.com/marcelsud/webhook-recorder/message/sqlite"
	"github.com/marcelsud/webhook-recorder/metrics"
	"github.com/marcelsud/webhook-recorder/routes"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/*
 * main only wires packages together. Imports go one way: down.
 * The binaries import the domain packages, which import the storage packages.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logger := httplog.NewLogger("webhook-recorder", httplog.Options{
		JSON:     cfg.LogJSON,
		LogLevel: cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("webhook recorder stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	loader := routes.NewLoader()
	if err := loader.Load(cfg.RoutesFile); err != nil {
		return fmt.Errorf("loading routes: %w", err)
	}

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening %s persistence: %w", cfg.PersistBackend, err)
	}
	defer repo.Close(context.Background())

	messages := message.NewService(repo, logger)
	messages.Load(ctx, loader.Policies())

	exporter, err := metrics.NewOTelExporter(metrics.NewStoreCollector(messages))
	if err != nil {
		return fmt.Errorf("creating metrics exporter: %w", err)
	}
	defer exporter.Shutdown(context.Background())
	messages.OnPersistFailure = func(path string) {
		exporter.PersistFailed(context.Background(), path)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	commands := command.NewHandler(loader, messages, dispatch.Formatter{Location: loc})

	connectors, err := connector.Build(ctx, loader.Connectors(), commands, logger)
	if err != nil {
		return err
	}
	defer connectors.Close()
	dispatcher := dispatch.NewDispatcher(logger, connectors.Connectors...)

	r := chi.Handlers(ctx, chi.Dependencies{
		Logger:         logger,
		Messages:       messages,
		Routes:         loader,
		Dispatcher:     dispatcher,
		Commands:       commands,
		Metrics:        exporter,
		MetricsHandler: exporter.ServeHTTP(),
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().
		Str("port", cfg.Port).
		Str("persistence", cfg.PersistBackend).
		Strs("connectors", dispatcher.Available()).
		Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-errShutdown
}

func newRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (message.Repository, error) {
	switch cfg.PersistBackend {
	case config.BackendRedis:
		return redis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return sqlite.NewRepository(ctx, cfg.SQLitePath, logger)
	default:
		return file.NewRepository(cfg.PersistPath, logger), nil
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
