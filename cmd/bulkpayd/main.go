package main

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

	"github.com/kodax/bulkpay/internal/admin"
	"github.com/kodax/bulkpay/internal/alert"
	"github.com/kodax/bulkpay/internal/auth"
	"github.com/kodax/bulkpay/internal/config"
	"github.com/kodax/bulkpay/internal/domain/event"
	"github.com/kodax/bulkpay/internal/ledger"
	"github.com/kodax/bulkpay/internal/reconciliation"
	"github.com/kodax/bulkpay/internal/settlement"
	"github.com/kodax/bulkpay/internal/store/postgres"
	redispkg "github.com/kodax/bulkpay/internal/store/redis"
	"github.com/kodax/bulkpay/internal/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const serviceName = "bulkpayd"

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// resolveVerifier maps the configured auth mode to a request-signature
// verifier. Signatures are enforced unless explicitly disabled.
func resolveVerifier(cfg config.AuthConfig, logger *slog.Logger) auth.Verifier {
	if cfg.Mode == "none" {
		logger.Warn("signature verification disabled")
		return auth.NoopVerifier{}
	}
	return auth.Ed25519Verifier{}
}

// resolveAlerter builds the alert fan-out from configured channels. Without
// any channel, drift alerts are dropped on the floor (still logged).
func resolveAlerter(cfg config.AlertConfig, logger *slog.Logger) alert.Alerter {
	var channels []alert.Alerter
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, alert.NewSlackAlerter(cfg.SlackWebhookURL))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, alert.NewWebhookAlerter(cfg.WebhookURL))
	}
	if len(channels) == 0 {
		logger.Info("no alert channels configured")
		return &alert.NoopAlerter{}
	}
	return alert.NewMultiAlerter(cfg.Cooldown, logger, channels...)
}

// resolveEventLog picks the Redis-backed event stream when a URL is
// configured, falling back to the in-process log for dev environments.
func resolveEventLog(cfg config.RedisConfig, logger *slog.Logger) (event.Publisher, func() error, error) {
	if cfg.URL == "" {
		logger.Info("no redis configured, using in-memory event log")
		return redispkg.NewInMemoryStream(), func() error { return nil }, nil
	}

	stream, err := redispkg.NewStream(cfg.URL, cfg.StreamKey)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize redis event stream: %w", err)
	}
	logger.Info("redis event stream enabled", "stream_key", cfg.StreamKey)
	return redispkg.NewGuardedPublisher(stream, logger), stream.Close, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting bulkpayd",
		"api_port", cfg.Server.APIPort,
		"metrics_port", cfg.Server.MetricsPort,
		"redis_enabled", cfg.Redis.URL != "",
		"tracing_enabled", cfg.Tracing.Endpoint != "",
	)

	shutdownTracing, err := tracing.Init(context.Background(), serviceName, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	db, err := postgres.New(postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := db.RunMigrations(cfg.DB.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	publisher, closeEventLog, err := resolveEventLog(cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to initialize event log", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeEventLog(); err != nil {
			logger.Warn("event log close error", "error", err)
		}
	}()

	vaultRepo := postgres.NewVaultRepo(db)
	batchRepo := postgres.NewBatchRepo(db)
	accountRepo := postgres.NewAccountRepo(db)

	ldg := ledger.NewSQLLedger(accountRepo, logger)
	svc := settlement.New(db, vaultRepo, batchRepo, ldg, publisher, logger)

	alerter := resolveAlerter(cfg.Alert, logger)
	reconRepo := postgres.NewReconciliationRepo(db)
	reconciler := reconciliation.NewService(db, reconRepo, alerter, logger)
	reconciler.SetCheckRepository(reconRepo)

	apiServer := admin.NewServer(svc, vaultRepo, batchRepo, logger,
		admin.WithVerifier(resolveVerifier(cfg.Auth, logger)))
	rateLimiter := admin.NewRateLimitMiddleware(logger)
	defer rateLimiter.Stop()

	apiHandler := admin.AuditMiddleware(logger, rateLimiter.Wrap(apiServer.Handler()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHTTPServer(gCtx, "api", cfg.Server.APIPort, apiHandler, logger)
	})

	g.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		return runHTTPServer(gCtx, "metrics", cfg.Server.MetricsPort, mux, logger)
	})

	g.Go(func() error {
		err := reconciler.RunPeriodic(gCtx, cfg.Reconcile.Interval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bulkpayd exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("bulkpayd shut down gracefully")
}

func runHTTPServer(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("server started", "server", name, "port", port)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
