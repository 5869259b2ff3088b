package rating

import (
	"html"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ExtractPrices normalizes a carrier quote into a map from decoded service
// name to price in minor units. A quote with zero services produces an
// empty map; callers treat an absent service as "no rate available",
// never as an error.
func ExtractPrices(quote *RateQuote) map[string]int64 {
	prices := make(map[string]int64, len(quote.Rates))
	for _, r := range quote.Rates {
		prices[DecodeServiceName(r.ServiceName)] = r.TotalCents
	}
	return prices
}

// ExtractDeliveryDates normalizes a carrier quote into a map from decoded
// service name to estimated delivery date. Services without an estimate
// are omitted.
func ExtractDeliveryDates(quote *RateQuote) map[string]time.Time {
	dates := make(map[string]time.Time, len(quote.Rates))
	for _, r := range quote.Rates {
		if r.DeliveryDate.IsZero() {
			continue
		}
		dates[DecodeServiceName(r.ServiceName)] = r.DeliveryDate
	}
	return dates
}

// DecodeServiceName canonicalizes a carrier-native service name: byte
// sequences that are not valid UTF-8 are decoded as Latin-1, then HTML
// entities are unescaped. USPS in particular ships names like
// "Priority Mail&#8482;".
func DecodeServiceName(name string) string {
	if !utf8.ValidString(name) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().String(name); err == nil {
			name = decoded
		}
	}
	return html.UnescapeString(name)
}
