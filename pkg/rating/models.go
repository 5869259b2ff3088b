package rating

import (
	"time"
)

// UnitSystem represents the weight unit system packages are expressed in.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"   // kilograms
	UnitsImperial UnitSystem = "imperial" // ounces
)

// Location identifies one end of a shipment.
type Location struct {
	CountryCode string // ISO 3166-1 alpha-2, e.g. "US", "CA"
	StateCode   string // e.g. "CA", "ON"
	StateName   string // fallback when no code is available
	City        string
	PostalCode  string
}

// StateOrRegion returns the state code, falling back to the region name.
func (l Location) StateOrRegion() string {
	if l.StateCode != "" {
		return l.StateCode
	}
	return l.StateName
}

// LineItem is one purchasable line of an order.
type LineItem struct {
	VariantID string
	Quantity  int
	Weight    float64 // single-unit weight as recorded on the variant
}

// Order is the unit of rate computation.
type Order struct {
	ID          string
	LineItems   []LineItem
	ShipAddress Location
	Locale      string
}

// Package is a shippable parcel with an aggregate weight. Packages are
// rebuilt on every compute call and never persisted.
type Package struct {
	Weight float64
	Units  UnitSystem
}

// ServiceRate is one carrier service's offer between an origin and a
// destination.
type ServiceRate struct {
	ServiceName  string    `json:"service_name"`
	TotalCents   int64     `json:"total_cents"`
	DeliveryDate time.Time `json:"delivery_date"`
}

// RateQuote is a carrier's multi-service rate response.
type RateQuote struct {
	QuoteID string        `json:"quote_id"`
	Carrier string        `json:"carrier"`
	Rates   []ServiceRate `json:"rates"`
}

// ============================================================================
// Order sources
// ============================================================================

// OrderSource is anything rates can be computed for: a bare order, a single
// shipment, or a list of shipments belonging to one order. The engine
// resolves the underlying order once at its entry point.
type OrderSource interface {
	rateOrder() *Order
}

// Shipment is a planned shipment carrying a reference to its order.
type Shipment struct {
	ID    string
	Order *Order
}

// ShipmentList is a batch of shipments for a single order.
type ShipmentList []*Shipment

func (o *Order) rateOrder() *Order { return o }

func (s *Shipment) rateOrder() *Order {
	if s == nil {
		return nil
	}
	return s.Order
}

func (l ShipmentList) rateOrder() *Order {
	for _, s := range l {
		if s != nil && s.Order != nil {
			return s.Order
		}
	}
	return nil
}

// ResolveOrder extracts the order from an OrderSource.
func ResolveOrder(src OrderSource) (*Order, error) {
	if src == nil {
		return nil, ErrNoOrder
	}
	o := src.rateOrder()
	if o == nil {
		return nil, ErrNoOrder
	}
	return o, nil
}
