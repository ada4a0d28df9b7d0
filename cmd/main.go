package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vsm/qualitycheck/internal/adapters/events"
	"github.com/vsm/qualitycheck/internal/adapters/http/api"
	"github.com/vsm/qualitycheck/internal/adapters/repository"
	"github.com/vsm/qualitycheck/internal/adapters/rulestore"
	app "github.com/vsm/qualitycheck/internal/app"
	"github.com/vsm/qualitycheck/internal/config"
	"github.com/vsm/qualitycheck/internal/platform/awsclient"
	"github.com/vsm/qualitycheck/pkg/logger"
	"github.com/vsm/qualitycheck/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("quality-check: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if len(cfg.MetricsLabels) > 0 {
		metrics.Configure(metrics.WithConstLabels(cfg.MetricsLabels))
	}

	clients, err := awsclient.New(ctx, awsclient.Settings{
		Region:           cfg.AWSRegion,
		Endpoint:         cfg.AWSEndpoint,
		S3Endpoint:       cfg.S3Endpoint,
		DynamoDBEndpoint: cfg.DynamoDBEndpoint,
		EventsEndpoint:   cfg.EventsEndpoint,
	})
	if err != nil {
		return err
	}

	svc, err := newService(cfg, clients.S3, clients.DynamoDB, clients.EventBridge)
	if err != nil {
		return err
	}

	srv := newServer(cfg.Addr, svc)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("duplicateDetection", cfg.ReportsTable != ""),
			logger.Bool("publishing", cfg.EventBusName != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService wires the stage collaborators according to cfg. Duplicate
// detection and publishing stay off when their table or bus is unset.
func newService(cfg *config.Config, s3c rulestore.ObjectGetter, ddb repository.Querier, bus events.EventPutter) (*app.Service, error) {
	loader, err := rulestore.New(s3c, cfg.RulesBucket, cfg.RulesKey)
	if err != nil {
		return nil, err
	}

	opts := []app.Option{app.WithLogger(logger.Named("quality-check"))}
	if cfg.ReportsTable != "" {
		index, err := repository.NewReportIndex(ddb, cfg.ReportsTable,
			repository.WithIndex(cfg.ReportsIndex),
			repository.WithConcurrency(cfg.LookupConcurrency),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithDetector(index))
	}
	if cfg.EventBusName != "" {
		opts = append(opts, app.WithPublisher(events.NewPublisher(bus, cfg.EventBusName,
			events.WithSource(cfg.EventSource),
			events.WithDetailType(cfg.EventDetailType),
		)))
	}
	return app.New(loader, opts...)
}

func newServer(addr string, svc api.Dependencies) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
