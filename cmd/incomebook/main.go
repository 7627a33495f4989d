package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"incomebook/internal/amqp"
	"incomebook/internal/backend"
	"incomebook/internal/cache"
	"incomebook/internal/config"
	"incomebook/internal/export"
	apphttp "incomebook/internal/http"
	"incomebook/internal/ledger"
	"incomebook/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBucket(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	var (
		opts  []ledger.Option
		queue apphttp.ExportQueue
	)
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Entries still work without a broker; queued exports answer 503.
			logger.Warn("AMQP unavailable, continuing without export queue", log.FieldError, err.Error())
		} else {
			defer client.Close()
			opts = append(opts, ledger.WithNotifier(client))
			queue = client
		}
	}
	store := ledger.New(res.Bucket, logger, opts...)

	var exportOpts []export.ExporterOption
	if cfg.ReportCacheSize > 0 {
		reportCache := cache.NewLRUCache[export.Artifact](cfg.ReportCacheSize, cfg.ReportCacheTTL)
		caches := cache.NewManager(logger)
		caches.Register(reportCache)
		caches.StartCleanup(time.Minute)
		defer caches.Stop()
		exportOpts = append(exportOpts, export.WithCache(reportCache))
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:   store,
		Reports: export.NewExporter(store, logger, exportOpts...),
		Queue:   queue,
		Logger:  logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting incomebook server",
			"port", cfg.Port, "backend", cfg.DataBackend, "amqp", queue != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
