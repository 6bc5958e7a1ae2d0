package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glowbook/internal/config"
	"glowbook/internal/events"
	"glowbook/internal/export"
	"glowbook/internal/logging"
	"glowbook/internal/metrics"
	"glowbook/internal/remote"
	"glowbook/internal/repository"
	"glowbook/internal/scheduler"
	"glowbook/internal/session"
	"glowbook/internal/store"
	syncmgr "glowbook/internal/sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "syncd").Logger()

	metrics.Register()

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, memCache := initSessionCache(ctx, cfg, *baseLogger)

	remoteClient := remote.NewClient(cfg.Remote, *baseLogger)

	bus := events.NewEventBus()
	state := syncmgr.NewStateTracker(bus)
	manager := syncmgr.NewManager(st, remoteClient, state, bus, syncmgr.Options{
		MaxRetries: cfg.Sync.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		BatchSize:  cfg.Sync.BatchSize,
	}, *baseLogger)

	repo := repository.New(st, remoteClient, sessions, manager, bus, *baseLogger)

	var network scheduler.NetworkMonitor = scheduler.StaticMonitor{Online: true}
	if cfg.Sync.RequireNetwork {
		network = scheduler.NewDialMonitor(cfg.Remote.BaseURL, 3*time.Second)
	}
	var power scheduler.PowerMonitor = scheduler.StaticMonitor{}

	sched := scheduler.New(manager, network, power, memCache, scheduler.Config{
		Interval:     cfg.PeriodicInterval(),
		RefreshCache: true,
	}, *baseLogger)
	go sched.Start(ctx)

	if cfg.Monitoring.PrometheusEnabled {
		go serveMetrics(cfg.Monitoring.PrometheusPort, logger)
	}

	if cfg.Exports.Enabled {
		exporter := export.New(st, cfg.Exports.Path, *baseLogger)
		go exporter.Start(ctx)
	}

	// Warm the catalog mirror once at startup; offline start is fine.
	if err := manager.RefreshCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial catalog refresh failed")
	}

	// Sweep bookings created before the last shutdown.
	if report := repo.SyncPendingBookings(ctx); report.Failed > 0 {
		logger.Warn().Int("failed", report.Failed).Int("processed", report.Processed).Msg("startup booking sweep left items unsynced")
	}

	logger.Info().Msg("syncd running")
	<-ctx.Done()
	return nil
}

func initSessionCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*session.FailoverCache, *session.MemoryCache) {
	memCache := session.NewMemoryCache()

	var primary *session.RedisCache
	if cfg.Redis.Address != "" {
		client := session.NewRedisClient(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, session cache starts on memory")
		}
		primary = session.NewRedisCache(client)
	}

	if primary == nil {
		return session.NewFailoverCache(memCache, memCache, logger), memCache
	}
	return session.NewFailoverCache(primary, memCache, logger), memCache
}

func serveMetrics(port int, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics endpoint error")
	}
}
