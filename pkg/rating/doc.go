// Package rating computes shipping costs and delivery estimates for orders.
//
// The pipeline splits an order's line items into carrier-rateable packages
// under a per-destination weight cap, fetches rates from a carrier through a
// memoizing cache keyed on the order's shipping-relevant attributes, and
// extracts the configured service's price or delivery date from the carrier's
// multi-service response. Carrier failures are cached alongside successes so
// repeated identical requests fail fast instead of re-hitting a failing or
// rate-limited carrier.
package rating
