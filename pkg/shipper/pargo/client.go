// Package pargo provides integration with the Pargo pickup-point API.
package pargo

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// TrackingTitle tags the shipment track that holds the Pargo waybill.
	TrackingTitle = "Pargo"

	// Country is the only country Pargo delivers to.
	Country = "ZA"

	methodTitle = "Collect from local shop when it suits you best"
	currency    = "ZAR"
)

// Config holds Pargo configuration.
type Config struct {
	Active      bool
	CarrierCode string
	Method      string
	Title       string
	Name        string // method label in admin method lists
	Price       decimal.Decimal

	APIURL             string
	APIID              string
	APIToken           string
	InsecureSkipVerify bool
	UseMock            bool // When true, uses mock API client

	TrackURL string
}

// Client is the Pargo carrier client.
// It implements the shipper.Carrier interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Pargo client.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:            cfg.APIURL,
			APIID:              cfg.APIID,
			APIToken:           cfg.APIToken,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Pargo client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer("pargo")
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier code.
func (c *Client) Name() string {
	return c.config.CarrierCode
}

// ShippingMethod returns the carrier/method code orders carry when the
// shopper picks Pargo.
func (c *Client) ShippingMethod() string {
	return c.config.CarrierCode + "_" + c.config.Method
}

// AllowedMethods maps the carrier code onto the configured method name.
func (c *Client) AllowedMethods() map[string]string {
	return map[string]string{c.config.CarrierCode: c.config.Name}
}

// CollectRates returns the flat Pargo rate.
func (c *Client) CollectRates(ctx context.Context, req *shipper.RateRequest) (*shipper.RateResponse, error) {
	if !c.config.Active {
		return nil, shipper.ErrCarrierDisabled
	}

	return &shipper.RateResponse{
		Carrier: c.config.CarrierCode,
		Rates: []shipper.RateOption{
			{
				Carrier:      c.config.CarrierCode,
				CarrierTitle: c.config.Title,
				Method:       c.config.Method,
				MethodTitle:  methodTitle,
				Price:        shipper.Money{Amount: c.config.Price, Currency: currency},
				Cost:         shipper.Money{Amount: decimal.Zero, Currency: currency},
			},
		},
	}, nil
}

// TrackingInfo links a waybill to Pargo's public track-and-trace page.
func (c *Client) TrackingInfo(ctx context.Context, number string) (*shipper.TrackingInfo, error) {
	if number == "" {
		return nil, shipper.ErrInvalidTrackingNumber
	}
	return &shipper.TrackingInfo{
		Carrier:      c.config.CarrierCode,
		CarrierTitle: c.config.Title,
		Number:       number,
		URL:          c.config.TrackURL + url.QueryEscape(number),
	}, nil
}

// SubmitOrder posts an order to Pargo. Transport and protocol failures are
// returned as *TransportError / *ProtocolError; a response without a
// waybill is returned as-is for the caller to inspect.
func (c *Client) SubmitOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	ctx, span := c.tracer.Start(ctx, "pargo.SubmitOrder",
		trace.WithAttributes(
			attribute.String("pargo.point_code", req.Delivery.PargoPointCode),
			attribute.String("pargo.reference", req.TransportData.ShippersReference),
		),
	)
	defer span.End()

	c.logger.Ctx(ctx).Info("Submitting Pargo order",
		zap.String("reference", req.TransportData.ShippersReference),
		zap.String("pargo_point", req.Delivery.PargoPointCode),
	)

	resp, err := c.apiClient.Send(ctx, "orders", http.MethodPost, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Ctx(ctx).Error("Pargo API error", zap.Error(err))
		serr := shipper.NewShipperError(c.Name(), "API_ERROR", "submitting order "+req.TransportData.ShippersReference).WithCause(err)
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			serr = serr.WithStatusCode(transportErr.StatusCode)
		}
		return nil, serr
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return newOrderResponse(resp), nil
}
