// Command confrouted runs the configuration router daemon: it loads
// the configuration, registers the declared record-store handlers, and
// serves the router over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/confroute/confroute/internal/cache"
	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
	"github.com/confroute/confroute/internal/router"
	"github.com/confroute/confroute/internal/server"
	"github.com/confroute/confroute/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("confrouted", version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "confrouted:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	observability.SetGlobalLogger(logger)

	logger.Info("starting confrouted",
		observability.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  "confrouted",
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Enabled:      cfg.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", observability.Error(err))
		}
	}()

	partitions, err := cache.NewPartitions(&cfg.Cache, logger)
	if err != nil {
		return fmt.Errorf("initialize cache partitions: %w", err)
	}
	defer func() { _ = partitions.Close() }()

	recordStore, err := store.NewSQLite(&cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("initialize record store: %w", err)
	}
	defer func() { _ = recordStore.Close() }()

	dispatcher := router.NewDispatcher(cache.NewGateway(partitions, logger), logger)
	registerBuiltinHandlers(dispatcher)
	applyManifests(dispatcher, recordStore, cfg.Handlers, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cache.GetCacheMetrics().MustRegister(registry)
	router.GetRouterMetrics().MustRegister(registry)
	store.GetStoreMetrics().MustRegister(registry)

	srv := server.New(&cfg.Server, dispatcher, registry, logger)

	var watcher *config.Watcher
	if configPath != "" {
		watcher, err = config.NewWatcher(configPath, func(next *config.Config) {
			applyManifests(dispatcher, recordStore, next.Handlers, logger)
		}, config.WithWatcherLogger(logger))
		if err != nil {
			return fmt.Errorf("initialize config watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start config watcher: %w", err)
		}
		defer func() { _ = watcher.Stop() }()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("confrouted stopped")
	return nil
}

// loadConfig reads and validates the configuration file, or falls back
// to defaults when no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// registerBuiltinHandlers registers the handlers every daemon exposes.
func registerBuiltinHandlers(d *router.Dispatcher) {
	d.RegisterRead("/System/version", func(ctx context.Context, params map[string]string) (any, error) {
		return version, nil
	}, router.WithCache(false))
}

// applyManifests registers one record-store-backed handler per
// manifest entry. Registration is idempotent by template, so a config
// reload updates existing handlers in place.
func applyManifests(d *router.Dispatcher, s store.Store, manifests []config.HandlerManifest, logger observability.Logger) {
	for _, m := range manifests {
		cacheEnabled := true
		if m.Cache != nil {
			cacheEnabled = *m.Cache
		}

		cfg := router.HandlerConfig{
			CacheEnabled: cacheEnabled,
			Scope:        cache.ParseScope(m.Scope),
			OnRead:       store.FieldReader(s, m.RecordType),
		}
		if m.Writable {
			cfg.OnWrite = store.FieldSetter(s, m.RecordType)
		}

		h := d.Register(m.Template, cfg)
		logger.Info("handler registered from manifest",
			observability.String("template", m.Template),
			observability.String("recordType", m.RecordType),
			observability.Int("id", h.ID()),
			observability.Bool("writable", m.Writable))
	}
}
