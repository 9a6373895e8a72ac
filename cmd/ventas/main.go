package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ventas/assets"
	"ventas/internal/amqp"
	"ventas/internal/backend"
	"ventas/internal/cache"
	"ventas/internal/cli"
	"ventas/internal/config"
	"ventas/internal/dataset"
	apphttp "ventas/internal/http"
	"ventas/internal/log"
	"ventas/internal/services"
	"ventas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLoggerFromEnv()
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg, assets.SampleDataset)
	if err != nil {
		return fmt.Errorf("backend config: %w", err)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	datasets := services.NewDatasetService(result.Source, logger)
	if _, err := datasets.Reload(ctx, log.OpStartup); err != nil {
		// readiness stays red until a later reload succeeds
		logger.Warn("Initial dataset load failed", log.FieldError, err.Error())
	}

	dashboardCache := cache.NewLRUCache[*services.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(dashboardCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	dashboards := services.NewDashboardService(datasets, dashboardCache)
	datasets.OnSwap(func(*dataset.Snapshot) { dashboards.Invalidate() })

	watchPath := ""
	if w, ok := result.Source.(dataset.Watchable); ok && cfg.WatchFile {
		watchPath = w.Path()
	}
	reloader := worker.NewReloadWorker(datasets, watchPath, cfg.ReloadDebounce, logger)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("connect to AMQP: %w", err)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - dataset reloads come from the file watcher only")
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		SearchDebounce: cfg.SearchDebounce,
		ExportRateRPM:  cfg.ExportRateRPM,
		Logger:         logger,
		Cache:          dashboardCache,
	}, dashboards, datasets)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "addr", srv.Addr, log.FieldSource, result.Source.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return reloader.Run(gctx)
	})

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeDatasetImported(gctx, reloader.HandleDatasetImported)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume dataset notifications: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return cli.Shutdown(logger, cfg.ShutdownTimeout,
			cli.ShutdownStep{Name: "http", Fn: srv.Shutdown},
		)
	})

	return g.Wait()
}
