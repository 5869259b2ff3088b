// Package usps provides integration with the USPS Web Tools rate API.
package usps

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ordercraft/shiprate/pkg/rating"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "usps"

// ouncesPerKilogram converts metric package weights to USPS ounces.
const ouncesPerKilogram = 35.2739619

// Config holds USPS configuration.
type Config struct {
	UserID  string
	BaseURL string
	UseMock bool
}

// Client is the USPS rate finder.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new USPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			UserID:  cfg.UserID,
			Timeout: 30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new USPS client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// FindRates returns per-service USPS rates for the given packages.
func (c *Client) FindRates(ctx context.Context, origin, destination rating.Location, packages []rating.Package) (*rating.RateQuote, error) {
	c.logger.Ctx(ctx).Info("Getting USPS rates",
		zap.String("origin_zip", origin.PostalCode),
		zap.String("destination_country", destination.CountryCode),
		zap.String("destination_zip", destination.PostalCode),
		zap.Int("package_count", len(packages)),
	)

	apiReq := &RatesRequest{OriginZIP: origin.PostalCode}

	if destination.CountryCode == "" || destination.CountryCode == "US" {
		apiReq.Destination.Domestic = &DomesticDestination{
			ZIP: destination.PostalCode,
		}
	} else {
		apiReq.Destination.International = &InternationalDestination{
			Country: destination.CountryCode,
		}
	}

	for _, pkg := range packages {
		apiReq.Packages = append(apiReq.Packages, packageToAPI(pkg))
	}

	apiResp, err := c.apiClient.GetRates(ctx, apiReq)
	if err != nil {
		c.logger.Ctx(ctx).Error("USPS API error", zap.Error(err))
		return nil, classify(err)
	}

	return ratesResponseToQuote(apiResp), nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

// packageToAPI splits a package weight into USPS pounds and ounces.
func packageToAPI(pkg rating.Package) PackageSpec {
	ounces := pkg.Weight
	if pkg.Units == rating.UnitsMetric {
		ounces = pkg.Weight * ouncesPerKilogram
	}

	pounds := int(ounces) / 16
	return PackageSpec{
		Pounds: pounds,
		Ounces: ounces - float64(pounds*16),
	}
}

func ratesResponseToQuote(resp *RatesResponse) *rating.RateQuote {
	quote := &rating.RateQuote{
		QuoteID: resp.QuoteID,
		Carrier: carrierName,
	}
	for _, r := range resp.Rates {
		rate := rating.ServiceRate{
			ServiceName: r.ServiceName,
			TotalCents:  int64(math.Round(r.RateDollars * 100)),
		}
		if r.DeliveryDate != "" {
			if t, err := time.Parse("2006-01-02", r.DeliveryDate); err == nil {
				rate.DeliveryDate = t
			}
		}
		quote.Rates = append(quote.Rates, rate)
	}
	return quote
}

// classify normalizes USPS failures into rating.CarrierError, preferring
// the structured description USPS nests in its error payloads.
func classify(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return rating.NewCarrierError(carrierName, apiErr.Number, apiErr.Description).WithCause(err)
	}
	return rating.NewCarrierError(carrierName, "API_ERROR", err.Error()).WithCause(err)
}
