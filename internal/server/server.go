package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/ordercraft/shiprate/internal/telemetry"
	"github.com/ordercraft/shiprate/pkg/rating"
)

// Server is the HTTP server for the rate service.
type Server struct {
	port    int
	engine  *rating.Engine
	logger  *otelzap.Logger
	metrics *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, engine *rating.Engine, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:    cfg.Port,
		engine:  engine,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/v1/rates/price", s.handlePrice)
	r.Post("/v1/rates/delivery-date", s.handleDeliveryDate)
	return r
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ============================================================================
// Rate endpoints
// ============================================================================

// OrderRequest is the wire form of an order submitted for rating.
type OrderRequest struct {
	OrderID   string            `json:"order_id"`
	Locale    string            `json:"locale,omitempty"`
	ShipTo    AddressPayload    `json:"ship_to"`
	LineItems []LineItemPayload `json:"line_items"`
}

// AddressPayload is the wire form of a ship-to address.
type AddressPayload struct {
	CountryCode string `json:"country_code"`
	StateCode   string `json:"state_code,omitempty"`
	StateName   string `json:"state_name,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// LineItemPayload is the wire form of one order line.
type LineItemPayload struct {
	VariantID string  `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight"`
}

// PriceResponse is the response for /v1/rates/price.
type PriceResponse struct {
	Available bool    `json:"available"`
	Price     float64 `json:"price,omitempty"`
}

// DeliveryDateResponse is the response for /v1/rates/delivery-date.
type DeliveryDateResponse struct {
	Available    bool   `json:"available"`
	DeliveryDate string `json:"delivery_date,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	order, ok := s.decodeOrder(w, r)
	if !ok {
		s.metrics.RecordRequest("price", "bad_request", time.Since(start).Seconds())
		return
	}

	price, available, err := s.engine.ComputePrice(r.Context(), order)
	if err != nil {
		s.writeError(w, r, err)
		s.metrics.RecordRequest("price", "error", time.Since(start).Seconds())
		return
	}

	writeJSON(w, http.StatusOK, PriceResponse{Available: available, Price: price})
	s.metrics.RecordRequest("price", "ok", time.Since(start).Seconds())
}

func (s *Server) handleDeliveryDate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	order, ok := s.decodeOrder(w, r)
	if !ok {
		s.metrics.RecordRequest("delivery_date", "bad_request", time.Since(start).Seconds())
		return
	}

	date, available, err := s.engine.ComputeDeliveryDate(r.Context(), order)
	if err != nil {
		s.writeError(w, r, err)
		s.metrics.RecordRequest("delivery_date", "error", time.Since(start).Seconds())
		return
	}

	resp := DeliveryDateResponse{Available: available}
	if available {
		resp.DeliveryDate = date.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, resp)
	s.metrics.RecordRequest("delivery_date", "ok", time.Since(start).Seconds())
}

func (s *Server) decodeOrder(w http.ResponseWriter, r *http.Request) (*rating.Order, bool) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return nil, false
	}

	order := &rating.Order{
		ID:     req.OrderID,
		Locale: req.Locale,
		ShipAddress: rating.Location{
			CountryCode: req.ShipTo.CountryCode,
			StateCode:   req.ShipTo.StateCode,
			StateName:   req.ShipTo.StateName,
			City:        req.ShipTo.City,
			PostalCode:  req.ShipTo.PostalCode,
		},
	}
	for _, li := range req.LineItems {
		order.LineItems = append(order.LineItems, rating.LineItem{
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Weight:    li.Weight,
		})
	}
	return order, true
}

// writeError maps engine failures to HTTP statuses: overweight units are a
// client problem, carrier failures an upstream one.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var overweight *rating.OverweightError
	var carrierErr *rating.CarrierError

	switch {
	case errors.As(err, &overweight):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: overweight.Error()})
	case errors.As(err, &carrierErr):
		s.metrics.RecordCarrierError(carrierErr.Carrier, carrierErr.Code)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: carrierErr.Error()})
	case errors.Is(err, rating.ErrNoOrder):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Ctx(r.Context()).Error("Rate computation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Ctx(r.Context()).Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
