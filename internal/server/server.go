package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/pargo/internal/checkout"
	"github.com/tournevent/pargo/internal/hooks"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// TrackFinder looks up stored tracking numbers.
type TrackFinder interface {
	FindTrackByNumber(ctx context.Context, number string) (*sales.ShipmentTrack, error)
}

// Server is the HTTP server for the Pargo bridge.
type Server struct {
	port     int
	pointURL string
	registry *shipper.Registry
	checkout *checkout.Service
	hooks    *hooks.Hooks
	tracks   TrackFinder
	gatherer prometheus.Gatherer
	logger   *otelzap.Logger
}

// Config holds server configuration.
type Config struct {
	Port int
	// PointURL is the pickup-point map embedded in the checkout widget.
	PointURL string
}

// Deps are the services the handlers call.
type Deps struct {
	Registry *shipper.Registry
	Checkout *checkout.Service
	Hooks    *hooks.Hooks
	Tracks   TrackFinder
	// Gatherer serves /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// New creates a new server instance.
func New(cfg Config, deps Deps, logger *otelzap.Logger) *Server {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		port:     cfg.Port,
		pointURL: cfg.PointURL,
		registry: deps.Registry,
		checkout: deps.Checkout,
		hooks:    deps.Hooks,
		tracks:   deps.Tracks,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the routes of the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Checkout
	mux.HandleFunc("GET /checkout/rates", s.handleRates)
	mux.HandleFunc("POST /checkout/sessions", s.handleStartSession)
	mux.HandleFunc("PUT /checkout/sessions/{session}/pickup-point", s.handlePickupPoint)
	mux.HandleFunc("GET /checkout/pickup-widget", s.handleWidget)
	mux.HandleFunc("POST /checkout/shipping-method", s.handleShippingMethod)

	// Orders
	mux.HandleFunc("POST /orders/{id}/saved", s.handleOrderSaved)
	mux.HandleFunc("GET /tracking/{number}", s.handleTracking)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
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

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSessionNotFound), errors.Is(err, sales.ErrNotFound),
		errors.Is(err, shipper.ErrCarrierNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shipper.ErrInvalidTrackingNumber):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Ctx(r.Context()).Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
