package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ordercraft/shiprate/internal/server"
	"github.com/ordercraft/shiprate/internal/telemetry"
	"github.com/ordercraft/shiprate/pkg/rating"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shiprate",
	Short:   "Shiprate - carrier shipping rate computation service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rate HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	registry := initCarrierRegistry(cfg, logger, tracer)
	finder, err := registry.Get(cfg.RateCarrier)
	if err != nil {
		return fmt.Errorf("resolving rate carrier: %w", err)
	}

	metrics := telemetry.NewMetrics()

	store, err := initCacheStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing cache store: %w", err)
	}
	cache := rating.NewRateCache(store, logger)
	cache.Observe(metrics)

	engine := rating.NewEngine(cfg.EngineConfig(), finder, cache, logger, tracer)

	logger.Info("Starting shiprate",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("carrier", cfg.RateCarrier),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	srv := server.New(server.Config{Port: cfg.Port}, engine, logger, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
