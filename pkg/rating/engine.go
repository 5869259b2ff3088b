package rating

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// minorUnitScale converts carrier minor-unit prices (cents) to major units.
const minorUnitScale = 100

// Config is the immutable configuration for an Engine.
type Config struct {
	// Carrier is the carrier identity used for lookups and cache keys.
	Carrier string

	// Service is the carrier service whose price or delivery estimate the
	// engine reports (e.g. "Priority Mail").
	Service string

	// HandlingFeeCents is a flat surcharge added to the carrier's price,
	// in minor units.
	HandlingFeeCents int64

	// Weights controls line-item weight derivation.
	Weights WeightConfig

	// Units is the weight unit system packages are expressed in.
	Units UnitSystem

	// Origin is the ship-from location.
	Origin Location

	// MaxWeight caps per-package weight; 0 means unbounded.
	MaxWeight float64

	// MaxWeightByCountry overrides MaxWeight per destination country code.
	MaxWeightByCountry map[string]float64

	// Locale is used for cache keys when the order carries none.
	Locale string
}

// Engine orchestrates weight packing, package building, cache-key
// derivation, the memoizing rate cache, and response extraction into the
// two public rate operations.
type Engine struct {
	cfg    Config
	finder RateFinder
	cache  *RateCache
	logger *otelzap.Logger
	tracer trace.Tracer
}

// NewEngine creates a rate compute engine.
func NewEngine(cfg Config, finder RateFinder, cache *RateCache, logger *otelzap.Logger, tracer trace.Tracer) *Engine {
	return &Engine{
		cfg:    cfg,
		finder: finder,
		cache:  cache,
		logger: logger,
		tracer: tracer,
	}
}

// ComputePrice computes the shipping price for an order source in major
// currency units: the configured service's carrier price plus the handling
// fee, rescaled from minor units. ok is false when no rate is available for
// the destination, which is a normal empty result rather than an error.
func (e *Engine) ComputePrice(ctx context.Context, src OrderSource) (price float64, ok bool, err error) {
	ctx, end := e.startSpan(ctx, "rating.ComputePrice")
	defer end()

	quote, found, err := e.quoteFor(ctx, src)
	if err != nil || !found {
		return 0, false, err
	}

	cents, ok := ExtractPrices(quote)[e.cfg.Service]
	if !ok {
		e.logger.Ctx(ctx).Info("No rate for configured service",
			zap.String("carrier", e.cfg.Carrier),
			zap.String("service", e.cfg.Service),
		)
		return 0, false, nil
	}
	return float64(cents+e.cfg.HandlingFeeCents) / minorUnitScale, true, nil
}

// ComputeDeliveryDate computes the estimated delivery date for an order
// source using the configured service. No fee or unit conversion applies.
func (e *Engine) ComputeDeliveryDate(ctx context.Context, src OrderSource) (date time.Time, ok bool, err error) {
	ctx, end := e.startSpan(ctx, "rating.ComputeDeliveryDate")
	defer end()

	quote, found, err := e.quoteFor(ctx, src)
	if err != nil || !found {
		return time.Time{}, false, err
	}

	date, ok = ExtractDeliveryDates(quote)[e.cfg.Service]
	return date, ok, nil
}

// quoteFor runs the shared pipeline up to the carrier quote: resolve the
// order, pack weights, build packages, derive the key, and fetch-or-compute
// through the cache. found is false when the order yields zero packages.
func (e *Engine) quoteFor(ctx context.Context, src OrderSource) (*RateQuote, bool, error) {
	order, err := ResolveOrder(src)
	if err != nil {
		return nil, false, err
	}

	dest := order.ShipAddress
	maxWeight := e.maxWeightFor(dest)

	weights, err := ItemWeights(order.LineItems, maxWeight, e.cfg.Weights)
	if err != nil {
		return nil, false, err
	}

	packages := BuildPackages(weights, maxWeight, e.cfg.Units)
	if len(packages) == 0 {
		return nil, false, nil
	}

	locale := order.Locale
	if locale == "" {
		locale = e.cfg.Locale
	}
	key := QuoteKey(e.cfg.Carrier, order, locale)

	quote, err := e.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*RateQuote, error) {
		q, err := e.finder.FindRates(ctx, e.cfg.Origin, dest, packages)
		if err != nil {
			return nil, e.classify(err)
		}
		return q, nil
	})
	if err != nil {
		return nil, false, err
	}
	if quote == nil {
		return nil, false, nil
	}
	return quote, true, nil
}

// classify normalizes any carrier failure into a *CarrierError so the
// cache memoizes a single error kind. Carrier clients usually classify
// their own failures; this is the fallback for raw transport errors.
func (e *Engine) classify(err error) error {
	var carrierErr *CarrierError
	if errors.As(err, &carrierErr) {
		return err
	}
	return NewCarrierError(e.cfg.Carrier, "CARRIER_ERROR", err.Error()).WithCause(err)
}

func (e *Engine) maxWeightFor(dest Location) float64 {
	if w, ok := e.cfg.MaxWeightByCountry[dest.CountryCode]; ok {
		return w
	}
	return e.cfg.MaxWeight
}

func (e *Engine) startSpan(ctx context.Context, name string) (context.Context, func()) {
	if e.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := e.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}
