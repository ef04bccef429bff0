package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget/internal/cache"
	"budget/internal/chart"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	donuts := cache.NewLRUCache[chart.Donut](cfg.ChartCacheSize, cfg.ChartCacheTTL)
	caches := cache.NewManager()
	caches.Register(donuts)

	expenses := services.NewExpenseService(repo, caches)
	dashboard := services.NewDashboardService(repo, donuts, caches, chart.NewFormatter(), cfg.ChartMinAngleDeg)

	srv := apphttp.NewServer(":"+cfg.Port, expenses, dashboard, repo, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting budget server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"db_path", cfg.SQLiteDBPath,
			log.FieldMinAngle, cfg.ChartMinAngleDeg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			repo.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	_ = cli.GracefulShutdown(ctx, logger, srv, 30*time.Second, func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	})
}
