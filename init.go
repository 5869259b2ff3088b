package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordercraft/shiprate/internal/config"
	"github.com/ordercraft/shiprate/internal/telemetry"
	"github.com/ordercraft/shiprate/pkg/rating"
	"github.com/ordercraft/shiprate/pkg/rating/dynamostore"
	"github.com/ordercraft/shiprate/pkg/rating/memstore"
	"github.com/ordercraft/shiprate/pkg/rating/usps"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *rating.Registry {
	registry := rating.NewRegistry()

	if cfg.USPSEnabled {
		registry.Register(usps.New(usps.Config{
			UserID:  cfg.USPSUserID,
			BaseURL: cfg.USPSBaseURL,
			UseMock: cfg.USPSUseMock,
		}, logger, tracer))
	}

	return registry
}

func initCacheStore(ctx context.Context, cfg *config.Config) (rating.Store, error) {
	switch cfg.CacheBackend {
	case "memory", "":
		if cfg.CacheTTL > 0 {
			return memstore.NewWithTTL(cfg.CacheTTL), nil
		}
		return memstore.New(), nil

	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		return dynamostore.New(dynamodb.NewFromConfig(awsCfg), dynamostore.Config{
			Table: cfg.DynamoTable,
			TTL:   cfg.CacheTTL,
		}), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
