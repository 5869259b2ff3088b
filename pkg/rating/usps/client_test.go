package usps_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/ordercraft/shiprate/pkg/rating"
	"github.com/ordercraft/shiprate/pkg/rating/usps"
)

func newTestClient(mockClient *usps.MockAPIClient) *usps.Client {
	logger := otelzap.New(zap.NewNop())
	return usps.NewWithAPIClient(
		usps.Config{UserID: "test-user"},
		mockClient,
		logger,
		nil,
	)
}

func TestClient_FindRates_Success(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()
	client := newTestClient(mockAPI)

	origin := rating.Location{CountryCode: "US", PostalCode: "94107"}
	dest := rating.Location{CountryCode: "US", City: "New York", PostalCode: "10001"}
	packages := []rating.Package{{Weight: 20, Units: rating.UnitsImperial}}

	ctx := context.Background()
	quote, err := client.FindRates(ctx, origin, dest, packages)

	require.NoError(t, err)
	assert.NotEmpty(t, quote.QuoteID)
	assert.Equal(t, "usps", quote.Carrier)
	assert.Len(t, quote.Rates, 3) // Mock returns 3 services
}

func TestClient_FindRates_ConvertsDollarsToCents(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()
	mockAPI.OnGetRates = func(ctx context.Context, req *usps.RatesRequest) (*usps.RatesResponse, error) {
		return &usps.RatesResponse{
			QuoteID: "usps-quote-test",
			Rates: []usps.Rate{
				{ServiceName: "USPS Ground Advantage", RateDollars: 7.50, DeliveryDate: "2026-09-03"},
			},
		}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	quote, err := client.FindRates(ctx, rating.Location{PostalCode: "94107"}, rating.Location{PostalCode: "10001"}, nil)

	require.NoError(t, err)
	require.Len(t, quote.Rates, 1)
	assert.Equal(t, int64(750), quote.Rates[0].TotalCents)
	assert.Equal(t, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC), quote.Rates[0].DeliveryDate)
}

func TestClient_FindRates_DomesticDestination(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()

	var captured *usps.RatesRequest
	mockAPI.OnGetRates = func(ctx context.Context, req *usps.RatesRequest) (*usps.RatesResponse, error) {
		captured = req
		return &usps.RatesResponse{}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.FindRates(ctx,
		rating.Location{CountryCode: "US", PostalCode: "94107"},
		rating.Location{CountryCode: "US", PostalCode: "10001"},
		nil,
	)

	require.NoError(t, err)
	require.NotNil(t, captured.Destination.Domestic)
	assert.Equal(t, "10001", captured.Destination.Domestic.ZIP)
	assert.Nil(t, captured.Destination.International)
}

func TestClient_FindRates_InternationalDestination(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()

	var captured *usps.RatesRequest
	mockAPI.OnGetRates = func(ctx context.Context, req *usps.RatesRequest) (*usps.RatesResponse, error) {
		captured = req
		return &usps.RatesResponse{}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.FindRates(ctx,
		rating.Location{CountryCode: "US", PostalCode: "94107"},
		rating.Location{CountryCode: "CA", City: "Toronto", PostalCode: "M5V1A1"},
		nil,
	)

	require.NoError(t, err)
	require.NotNil(t, captured.Destination.International)
	assert.Equal(t, "CA", captured.Destination.International.Country)
	assert.Nil(t, captured.Destination.Domestic)
}

func TestClient_FindRates_PackageWeightSplit(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()

	var captured *usps.RatesRequest
	mockAPI.OnGetRates = func(ctx context.Context, req *usps.RatesRequest) (*usps.RatesResponse, error) {
		captured = req
		return &usps.RatesResponse{}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.FindRates(ctx, rating.Location{}, rating.Location{}, []rating.Package{
		{Weight: 35, Units: rating.UnitsImperial}, // 35 oz = 2 lb 3 oz
	})

	require.NoError(t, err)
	require.Len(t, captured.Packages, 1)
	assert.Equal(t, 2, captured.Packages[0].Pounds)
	assert.InDelta(t, 3.0, captured.Packages[0].Ounces, 1e-9)
}

func TestClient_FindRates_MetricWeightConversion(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()

	var captured *usps.RatesRequest
	mockAPI.OnGetRates = func(ctx context.Context, req *usps.RatesRequest) (*usps.RatesResponse, error) {
		captured = req
		return &usps.RatesResponse{}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.FindRates(ctx, rating.Location{}, rating.Location{}, []rating.Package{
		{Weight: 1, Units: rating.UnitsMetric}, // 1 kg ≈ 35.27 oz
	})

	require.NoError(t, err)
	require.Len(t, captured.Packages, 1)
	assert.Equal(t, 2, captured.Packages[0].Pounds)
	assert.InDelta(t, 3.27, captured.Packages[0].Ounces, 0.01)
}

func TestClient_FindRates_APIErrorClassified(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()
	mockAPI.OnGetRates = func(ctx context.Context, req *usps.RatesRequest) (*usps.RatesResponse, error) {
		return nil, &usps.APIError{
			Number:      "-2147218040",
			Source:      "RateEngine",
			Description: "Invalid Destination ZIP Code",
		}
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.FindRates(ctx, rating.Location{}, rating.Location{PostalCode: "00000"}, nil)

	var carrierErr *rating.CarrierError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, "usps", carrierErr.Carrier)
	assert.Equal(t, "-2147218040", carrierErr.Code)
	assert.Equal(t, "Invalid Destination ZIP Code", carrierErr.Message)
}

func TestClient_FindRates_SimulatedError(t *testing.T) {
	mockAPI := usps.NewMockAPIClient()
	mockAPI.SimulateErrors = true

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.FindRates(ctx, rating.Location{}, rating.Location{}, nil)

	var carrierErr *rating.CarrierError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, "MOCK_ERROR", carrierErr.Code)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(usps.NewMockAPIClient())
	assert.Equal(t, "usps", client.Name())
}
