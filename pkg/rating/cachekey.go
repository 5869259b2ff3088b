package rating

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
)

// QuoteKey derives the deterministic cache key for an order's rate lookup.
// The key joins every rate-relevant attribute: carrier identity, order
// identity, destination fields, a digest of the line-item composition, and
// the active locale. Two computations with identical keys are treated as
// requesting an identical quote, including an identical failure.
//
// Order identity is part of the key, so two orders with identical contents
// and destinations still get independent cache entries.
func QuoteKey(carrier string, order *Order, locale string) string {
	dest := order.ShipAddress
	parts := []string{
		carrier,
		order.ID,
		dest.CountryCode,
		dest.StateOrRegion(),
		dest.City,
		dest.PostalCode,
		contentDigest(order.LineItems),
		locale,
	}
	return stripSpace(strings.Join(parts, ":"))
}

// contentDigest hashes the ordered (variant, quantity) pairs of the line
// items. Line items are digested in their natural order, not re-sorted, so
// identical orders always digest identically. Collision resistance only
// matters for avoiding accidental cross-order collisions, not security.
func contentDigest(items []LineItem) string {
	pairs := make([]string, len(items))
	for i, item := range items {
		pairs[i] = item.VariantID + "=" + strconv.Itoa(item.Quantity)
	}
	sum := sha256.Sum256([]byte(strings.Join(pairs, "/")))
	return hex.EncodeToString(sum[:8])
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
