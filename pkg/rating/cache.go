package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Store is the minimal contract required from an external key-value cache
// backend. Implementations must be safe for concurrent use across distinct
// keys. The engine imposes no TTL; eviction is the store's concern.
type Store interface {
	// Get retrieves a stored value. Returns (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// CacheObserver receives cache hit/miss notifications, typically to feed
// metrics.
type CacheObserver interface {
	Hit()
	Miss()
}

// RateCache provides fetch-or-compute semantics over a Store, memoizing
// carrier failures alongside successes. A memoized *CarrierError is
// re-surfaced on every subsequent lookup with the same key without
// re-attempting the network call, acting as a circuit breaker until the
// entry is invalidated externally.
//
// Store I/O failures never fail a compute: a failed read degrades to a
// miss and a failed write leaves the computed outcome uncached.
type RateCache struct {
	store    Store
	logger   *otelzap.Logger
	observer CacheObserver
}

// NewRateCache creates a rate cache backed by the given store.
func NewRateCache(store Store, logger *otelzap.Logger) *RateCache {
	return &RateCache{store: store, logger: logger}
}

// Observe registers an observer for cache hit/miss events.
func (c *RateCache) Observe(o CacheObserver) {
	c.observer = o
}

// cacheRecord is the stored form of a lookup outcome: exactly one of Quote
// or Error is set.
type cacheRecord struct {
	Quote *RateQuote    `json:"quote,omitempty"`
	Error *CarrierError `json:"error,omitempty"`
}

// GetOrCompute returns the outcome stored under key, or invokes compute on
// a miss and stores whatever it produces. Classified carrier failures are
// stored and returned as errors; unclassified failures (context
// cancellation, store plumbing) are returned without being memoized.
func (c *RateCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*RateQuote, error)) (*RateQuote, error) {
	if raw, ok := c.lookup(ctx, key); ok {
		quote, err := decodeRecord(raw)
		if err == nil || !errors.Is(err, errCorruptEntry) {
			c.hit()
			return quote, err
		}
		c.logger.Ctx(ctx).Warn("Corrupt cache entry, recomputing",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	c.miss()

	quote, err := compute(ctx)
	if err != nil {
		var carrierErr *CarrierError
		if errors.As(err, &carrierErr) {
			c.put(ctx, key, cacheRecord{Error: carrierErr})
		}
		return nil, err
	}

	c.put(ctx, key, cacheRecord{Quote: quote})
	return quote, nil
}

func (c *RateCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Ctx(ctx).Warn("Cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return raw, ok
}

func (c *RateCache) put(ctx context.Context, key string, rec cacheRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		c.logger.Ctx(ctx).Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		c.logger.Ctx(ctx).Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

var errCorruptEntry = errors.New("corrupt cache entry")

func decodeRecord(raw []byte) (*RateQuote, error) {
	var rec cacheRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptEntry, err)
	}
	if rec.Error != nil {
		return nil, rec.Error
	}
	if rec.Quote == nil {
		return nil, fmt.Errorf("%w: record has neither quote nor error", errCorruptEntry)
	}
	return rec.Quote, nil
}

func (c *RateCache) hit() {
	if c.observer != nil {
		c.observer.Hit()
	}
}

func (c *RateCache) miss() {
	if c.observer != nil {
		c.observer.Miss()
	}
}
