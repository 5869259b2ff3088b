package rating

import (
	"context"
)

// RateFinder is the boundary to an external carrier rate service. The
// lookup is a network call with a bounded timeout; implementations classify
// their raw failures into *CarrierError where they can.
type RateFinder interface {
	// Name returns the carrier identifier (e.g. "usps", "mock").
	Name() string

	// FindRates returns per-service rates for shipping the given packages
	// from origin to destination.
	FindRates(ctx context.Context, origin, destination Location, packages []Package) (*RateQuote, error)
}
