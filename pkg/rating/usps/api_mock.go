package usps

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetRates func(ctx context.Context, req *RatesRequest) (*RatesResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetRates returns mock shipping rates.
func (m *MockAPIClient) GetRates(ctx context.Context, req *RatesRequest) (*RatesResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Number: "MOCK_ERROR", Description: "Simulated API error"}
	}

	if m.OnGetRates != nil {
		return m.OnGetRates(ctx, req)
	}

	// Service names arrive entity-encoded, as the real API sends them.
	return &RatesResponse{
		QuoteID: "usps-quote-" + uuid.New().String()[:8],
		Rates: []Rate{
			{
				ServiceName:  "USPS Ground Advantage",
				RateDollars:  7.50,
				DeliveryDate: time.Now().AddDate(0, 0, 5).Format("2006-01-02"),
			},
			{
				ServiceName:  "Priority Mail&#8482;",
				RateDollars:  12.90,
				DeliveryDate: time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
			},
			{
				ServiceName:  "Priority Mail Express&#8482;",
				RateDollars:  28.95,
				DeliveryDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
			},
		},
	}, nil
}
