package usps

import (
	"context"
	"fmt"
)

// APIClient defines the interface for USPS Web Tools API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// GetRates fetches shipping rates from the USPS rate API
	GetRates(ctx context.Context, req *RatesRequest) (*RatesResponse, error)
}

// ============================================================================
// API Request/Response Types (match USPS RateV4/IntlRateV2 structure)
// ============================================================================

// RatesRequest represents a USPS rate quote request.
type RatesRequest struct {
	OriginZIP   string
	Destination Destination
	Packages    []PackageSpec
}

// Destination represents the shipping destination.
type Destination struct {
	Domestic      *DomesticDestination
	International *InternationalDestination
}

// DomesticDestination for US addresses.
type DomesticDestination struct {
	ZIP string
}

// InternationalDestination for non-US addresses.
type InternationalDestination struct {
	Country string
}

// PackageSpec represents one package's weight in USPS terms.
type PackageSpec struct {
	Pounds int
	Ounces float64
}

// RatesResponse represents the USPS rate quote response.
type RatesResponse struct {
	QuoteID string
	Rates   []Rate
}

// Rate represents a single mail service option. ServiceName arrives as
// USPS sends it: HTML-entity-encoded and possibly Latin-1.
type Rate struct {
	ServiceName  string
	RateDollars  float64
	DeliveryDate string // yyyy-mm-dd, empty when USPS gives no commitment
}

// APIError is the structured error USPS nests under
// RateV4Response>Package>Error (or at the document root).
type APIError struct {
	Number      string `xml:"Number"`
	Source      string `xml:"Source"`
	Description string `xml:"Description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("usps api error %s: %s", e.Number, e.Description)
}
