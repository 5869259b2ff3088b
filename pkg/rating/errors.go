package rating

import (
	"errors"
	"fmt"
)

// CarrierError represents a classified failure from a carrier rate lookup.
// CarrierErrors are memoized by the rate cache: once a key has failed, the
// same error is re-surfaced on every lookup until the cache entry is
// invalidated externally.
type CarrierError struct {
	Carrier string `json:"carrier"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierError.
func (e *CarrierError) Is(target error) bool {
	t, ok := target.(*CarrierError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(carrier, code, message string) *CarrierError {
	return &CarrierError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// OverweightError indicates a single line-item unit is too heavy for the
// destination's per-package weight cap. No valid package can hold the unit,
// so this is a fatal order/configuration problem and is never cached.
type OverweightError struct {
	VariantID  string
	UnitWeight float64
	MaxWeight  float64
}

// Error implements the error interface.
func (e *OverweightError) Error() string {
	return fmt.Sprintf("variant %s: single unit weight %g exceeds package cap %g",
		e.VariantID, e.UnitWeight, e.MaxWeight)
}

// Sentinel errors.
var (
	// ErrNoOrder indicates the order source did not resolve to an order.
	ErrNoOrder = errors.New("no order to rate")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)
