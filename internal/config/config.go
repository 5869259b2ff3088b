package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/ordercraft/shiprate/pkg/rating"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Rating
	RateCarrier        string             `envconfig:"RATE_CARRIER" default:"usps"`
	RateService        string             `envconfig:"RATE_SERVICE" default:"USPS Ground Advantage"`
	HandlingFeeCents   int64              `envconfig:"HANDLING_FEE_CENTS" default:"0"`
	UnitMultiplier     float64            `envconfig:"UNIT_MULTIPLIER" default:"1"`
	DefaultWeight      float64            `envconfig:"DEFAULT_WEIGHT" default:"0"`
	WeightUnits        string             `envconfig:"WEIGHT_UNITS" default:"imperial"`
	MaxWeight          float64            `envconfig:"MAX_WEIGHT" default:"0"`
	MaxWeightByCountry map[string]float64 `envconfig:"MAX_WEIGHT_BY_COUNTRY"`
	Locale             string             `envconfig:"LOCALE" default:"en"`

	// Origin
	OriginCountry string `envconfig:"ORIGIN_COUNTRY" default:"US"`
	OriginState   string `envconfig:"ORIGIN_STATE"`
	OriginCity    string `envconfig:"ORIGIN_CITY"`
	OriginZIP     string `envconfig:"ORIGIN_ZIP"`

	// USPS
	USPSUserID  string `envconfig:"USPS_USER_ID"`
	USPSBaseURL string `envconfig:"USPS_BASE_URL" default:"https://secure.shippingapis.com/ShippingAPI.dll"`
	USPSEnabled bool   `envconfig:"USPS_ENABLED" default:"true"`
	USPSUseMock bool   `envconfig:"USPS_USE_MOCK" default:"false"`

	// Cache
	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"0"`
	DynamoTable  string        `envconfig:"DYNAMO_TABLE" default:"shiprate-cache"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shiprate"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// EngineConfig converts the service configuration into the immutable
// engine configuration.
func (c *Config) EngineConfig() rating.Config {
	units := rating.UnitsImperial
	if c.WeightUnits == "metric" {
		units = rating.UnitsMetric
	}

	return rating.Config{
		Carrier:          c.RateCarrier,
		Service:          c.RateService,
		HandlingFeeCents: c.HandlingFeeCents,
		Weights: rating.WeightConfig{
			UnitMultiplier: c.UnitMultiplier,
			DefaultWeight:  c.DefaultWeight,
		},
		Units: units,
		Origin: rating.Location{
			CountryCode: c.OriginCountry,
			StateCode:   c.OriginState,
			City:        c.OriginCity,
			PostalCode:  c.OriginZIP,
		},
		MaxWeight:          c.MaxWeight,
		MaxWeightByCountry: c.MaxWeightByCountry,
		Locale:             c.Locale,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("rate.carrier", c.RateCarrier),
		attribute.String("cache.backend", c.CacheBackend),
		attribute.Bool("usps.enabled", c.USPSEnabled),
	}
}
