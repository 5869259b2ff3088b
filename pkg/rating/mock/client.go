// Package mock provides a mock rate finder for testing.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ordercraft/shiprate/pkg/rating"
)

// Client is a mock carrier for testing. The zero behavior returns two
// canned services; Rates, Err, and OnFindRates override it.
type Client struct {
	name  string
	calls atomic.Int64

	// Rates replaces the default canned rates when non-nil.
	Rates []rating.ServiceRate

	// Err, when set, fails every lookup.
	Err error

	// OnFindRates, when set, handles lookups entirely.
	OnFindRates func(ctx context.Context, origin, destination rating.Location, packages []rating.Package) (*rating.RateQuote, error)
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Calls returns how many lookups this carrier has served.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// FindRates returns mock rates.
func (c *Client) FindRates(ctx context.Context, origin, destination rating.Location, packages []rating.Package) (*rating.RateQuote, error) {
	c.calls.Add(1)

	if c.OnFindRates != nil {
		return c.OnFindRates(ctx, origin, destination, packages)
	}
	if c.Err != nil {
		return nil, c.Err
	}

	rates := c.Rates
	if rates == nil {
		now := time.Now()
		rates = []rating.ServiceRate{
			{
				ServiceName:  fmt.Sprintf("%s Standard", c.name),
				TotalCents:   1582,
				DeliveryDate: now.Add(5 * 24 * time.Hour),
			},
			{
				ServiceName:  fmt.Sprintf("%s Express", c.name),
				TotalCents:   2995,
				DeliveryDate: now.Add(2 * 24 * time.Hour),
			},
		}
	}

	return &rating.RateQuote{
		QuoteID: fmt.Sprintf("%s-quote-%d", c.name, time.Now().UnixNano()),
		Carrier: c.name,
		Rates:   rates,
	}, nil
}
