package rating_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordercraft/shiprate/pkg/rating"
)

func TestExtractPrices(t *testing.T) {
	quote := &rating.RateQuote{
		Carrier: "usps",
		Rates: []rating.ServiceRate{
			{ServiceName: "Ground", TotalCents: 500},
			{ServiceName: "Express", TotalCents: 1500},
		},
	}

	prices := rating.ExtractPrices(quote)

	assert.Equal(t, map[string]int64{"Ground": 500, "Express": 1500}, prices)
}

func TestExtractPrices_EmptyQuote(t *testing.T) {
	prices := rating.ExtractPrices(&rating.RateQuote{Carrier: "usps"})
	assert.Empty(t, prices)
}

func TestExtractPrices_DecodesEntityEncodedNames(t *testing.T) {
	quote := &rating.RateQuote{
		Rates: []rating.ServiceRate{
			{ServiceName: "Priority Mail&#8482;", TotalCents: 1290},
			{ServiceName: "Priority Mail Express&amp;reg;", TotalCents: 2895},
		},
	}

	prices := rating.ExtractPrices(quote)

	assert.Contains(t, prices, "Priority Mail™")
	// Double-encoded entities decode one level per pass.
	assert.Contains(t, prices, "Priority Mail Express&reg;")
}

func TestExtractDeliveryDates(t *testing.T) {
	ground := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	quote := &rating.RateQuote{
		Rates: []rating.ServiceRate{
			{ServiceName: "Ground", TotalCents: 500, DeliveryDate: ground},
			{ServiceName: "Express", TotalCents: 1500}, // no estimate
		},
	}

	dates := rating.ExtractDeliveryDates(quote)

	require.Len(t, dates, 1)
	assert.Equal(t, ground, dates["Ground"])
}

func TestDecodeServiceName_Entities(t *testing.T) {
	assert.Equal(t, "Priority Mail™", rating.DecodeServiceName("Priority Mail&#8482;"))
	assert.Equal(t, "a<b>&c", rating.DecodeServiceName("a&lt;b&gt;&amp;c"))
	assert.Equal(t, "plain", rating.DecodeServiceName("plain"))
}

func TestDecodeServiceName_Latin1(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1 and invalid as a standalone UTF-8 byte.
	raw := "Exp\xe9dition"
	assert.Equal(t, "Expédition", rating.DecodeServiceName(raw))
}
