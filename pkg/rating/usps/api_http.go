package usps

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// HTTPAPIClient is the production implementation of APIClient using the
// USPS Web Tools HTTP/XML API.
type HTTPAPIClient struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		userID:  cfg.UserID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ============================================================================
// XML Request/Response structures for the USPS Web Tools API
// ============================================================================

type rateV4Request struct {
	XMLName  xml.Name     `xml:"RateV4Request"`
	UserID   string       `xml:"USERID,attr"`
	Revision string       `xml:"Revision"`
	Packages []xmlPackage `xml:"Package"`
}

type xmlPackage struct {
	ID             string  `xml:"ID,attr"`
	Service        string  `xml:"Service"`
	ZipOrigination string  `xml:"ZipOrigination,omitempty"`
	ZipDestination string  `xml:"ZipDestination,omitempty"`
	Pounds         int     `xml:"Pounds"`
	Ounces         float64 `xml:"Ounces"`
	Container      string  `xml:"Container"`
	Machinable     string  `xml:"Machinable"`
}

type intlRateV2Request struct {
	XMLName  xml.Name         `xml:"IntlRateV2Request"`
	UserID   string           `xml:"USERID,attr"`
	Revision string           `xml:"Revision"`
	Packages []xmlIntlPackage `xml:"Package"`
}

type xmlIntlPackage struct {
	ID           string  `xml:"ID,attr"`
	Pounds       int     `xml:"Pounds"`
	Ounces       float64 `xml:"Ounces"`
	Machinable   string  `xml:"Machinable"`
	MailType     string  `xml:"MailType"`
	ValueOfGoods string  `xml:"ValueOfContents"`
	Country      string  `xml:"Country"`
}

type rateV4Response struct {
	XMLName  xml.Name            `xml:"RateV4Response"`
	Packages []rateV4ResponsePkg `xml:"Package"`
}

type rateV4ResponsePkg struct {
	Error    *APIError    `xml:"Error"`
	Postages []xmlPostage `xml:"Postage"`
}

type xmlPostage struct {
	MailService    string `xml:"MailService"`
	Rate           string `xml:"Rate"`
	CommitmentDate string `xml:"CommitmentDate"`
}

type intlRateV2Response struct {
	XMLName  xml.Name          `xml:"IntlRateV2Response"`
	Packages []intlResponsePkg `xml:"Package"`
}

type intlResponsePkg struct {
	Error    *APIError    `xml:"Error"`
	Services []xmlService `xml:"Service"`
}

type xmlService struct {
	SvcDescription string `xml:"SvcDescription"`
	Postage        string `xml:"Postage"`
	GuaranteeAvail string `xml:"GuaranteeAvailability"`
}

// xmlError is the document-level error USPS returns for malformed or
// unauthorized requests.
type xmlError struct {
	XMLName     xml.Name `xml:"Error"`
	Number      string   `xml:"Number"`
	Source      string   `xml:"Source"`
	Description string   `xml:"Description"`
}

// GetRates implements APIClient.
func (c *HTTPAPIClient) GetRates(ctx context.Context, req *RatesRequest) (*RatesResponse, error) {
	if req.Destination.International != nil {
		return c.getInternationalRates(ctx, req)
	}
	return c.getDomesticRates(ctx, req)
}

func (c *HTTPAPIClient) getDomesticRates(ctx context.Context, req *RatesRequest) (*RatesResponse, error) {
	destZIP := ""
	if req.Destination.Domestic != nil {
		destZIP = req.Destination.Domestic.ZIP
	}

	apiReq := rateV4Request{
		UserID:   c.userID,
		Revision: "2",
	}
	for i, pkg := range req.Packages {
		apiReq.Packages = append(apiReq.Packages, xmlPackage{
			ID:             strconv.Itoa(i),
			Service:        "ALL",
			ZipOrigination: req.OriginZIP,
			ZipDestination: destZIP,
			Pounds:         pkg.Pounds,
			Ounces:         pkg.Ounces,
			Container:      "VARIABLE",
			Machinable:     "TRUE",
		})
	}

	body, err := c.call(ctx, "RateV4", apiReq)
	if err != nil {
		return nil, err
	}

	var apiResp rateV4Response
	if err := xml.Unmarshal(body, &apiResp); err != nil {
		return nil, c.parseError(body, err)
	}

	resp := &RatesResponse{QuoteID: "usps-quote-" + uuid.New().String()[:8]}
	for _, pkg := range apiResp.Packages {
		if pkg.Error != nil {
			return nil, pkg.Error
		}
		for _, p := range pkg.Postages {
			dollars, err := strconv.ParseFloat(p.Rate, 64)
			if err != nil {
				continue
			}
			resp.Rates = append(resp.Rates, Rate{
				ServiceName:  p.MailService,
				RateDollars:  dollars,
				DeliveryDate: p.CommitmentDate,
			})
		}
	}
	return resp, nil
}

func (c *HTTPAPIClient) getInternationalRates(ctx context.Context, req *RatesRequest) (*RatesResponse, error) {
	apiReq := intlRateV2Request{
		UserID:   c.userID,
		Revision: "2",
	}
	for i, pkg := range req.Packages {
		apiReq.Packages = append(apiReq.Packages, xmlIntlPackage{
			ID:           strconv.Itoa(i),
			Pounds:       pkg.Pounds,
			Ounces:       pkg.Ounces,
			Machinable:   "TRUE",
			MailType:     "ALL",
			ValueOfGoods: "0",
			Country:      req.Destination.International.Country,
		})
	}

	body, err := c.call(ctx, "IntlRateV2", apiReq)
	if err != nil {
		return nil, err
	}

	var apiResp intlRateV2Response
	if err := xml.Unmarshal(body, &apiResp); err != nil {
		return nil, c.parseError(body, err)
	}

	resp := &RatesResponse{QuoteID: "usps-quote-" + uuid.New().String()[:8]}
	for _, pkg := range apiResp.Packages {
		if pkg.Error != nil {
			return nil, pkg.Error
		}
		for _, svc := range pkg.Services {
			dollars, err := strconv.ParseFloat(svc.Postage, 64)
			if err != nil {
				continue
			}
			resp.Rates = append(resp.Rates, Rate{
				ServiceName: svc.SvcDescription,
				RateDollars: dollars,
			})
		}
	}
	return resp, nil
}

// call sends one Web Tools request. The API takes the XML payload as a
// query parameter rather than a request body.
func (c *HTTPAPIClient) call(ctx context.Context, api string, payload any) ([]byte, error) {
	raw, err := xml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", api, err)
	}

	q := url.Values{}
	q.Set("API", api)
	q.Set("XML", string(raw))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling usps %s: %w", api, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading usps %s response: %w", api, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Number:      strconv.Itoa(resp.StatusCode),
			Description: string(body),
		}
	}
	return body, nil
}

// parseError tries the document-level <Error> shape before giving up on an
// unparseable response.
func (c *HTTPAPIClient) parseError(body []byte, unmarshalErr error) error {
	var e xmlError
	if err := xml.Unmarshal(body, &e); err == nil && e.Description != "" {
		return &APIError{
			Number:      e.Number,
			Source:      e.Source,
			Description: e.Description,
		}
	}
	return fmt.Errorf("decoding usps response: %w", unmarshalErr)
}
