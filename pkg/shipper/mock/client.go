// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tournevent/pargo/pkg/shipper"
)

// Client is a mock carrier for testing.
type Client struct {
	name  string
	price decimal.Decimal
	fail  bool
}

// New creates a new mock carrier quoting a fixed 50.00 ZAR rate.
func New(name string) *Client {
	return &Client{name: name, price: decimal.NewFromInt(50)}
}

// NewFailing creates a mock carrier whose rate collection always fails.
func NewFailing(name string) *Client {
	return &Client{name: name, fail: true}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// CollectRates returns a single mock rate.
func (c *Client) CollectRates(ctx context.Context, req *shipper.RateRequest) (*shipper.RateResponse, error) {
	if c.fail {
		return nil, errors.New("mock carrier unavailable")
	}
	return &shipper.RateResponse{
		Carrier: c.name,
		Rates: []shipper.RateOption{
			{
				Carrier:      c.name,
				CarrierTitle: fmt.Sprintf("%s Courier", c.name),
				Method:       "standard",
				MethodTitle:  "Door to door",
				Price:        shipper.Money{Amount: c.price, Currency: "ZAR"},
				Cost:         shipper.Money{Amount: decimal.Zero, Currency: "ZAR"},
			},
		},
	}, nil
}

// TrackingInfo returns a mock tracking link.
func (c *Client) TrackingInfo(ctx context.Context, number string) (*shipper.TrackingInfo, error) {
	if number == "" {
		return nil, shipper.ErrInvalidTrackingNumber
	}
	return &shipper.TrackingInfo{
		Carrier:      c.name,
		CarrierTitle: fmt.Sprintf("%s Courier", c.name),
		Number:       number,
		URL:          fmt.Sprintf("https://track.%s.mock/%s", c.name, number),
	}, nil
}
