// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// Carrier is the narrow view of a shipping carrier the checkout needs:
// quoting rates for the shipping-method step and resolving tracking links
// for recorded waybills.
type Carrier interface {
	// Name returns the carrier code (e.g., "gomedia_pargo").
	Name() string

	// CollectRates returns the rates this carrier offers for a quote.
	CollectRates(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// TrackingInfo resolves a tracking number into a customer-facing link.
	TrackingInfo(ctx context.Context, number string) (*TrackingInfo, error)
}
