package shipper

import (
	"github.com/shopspring/decimal"
)

// Address represents a shipping address.
type Address struct {
	FirstName   string
	LastName    string
	Company     string
	Street      []string
	City        string
	Region      string
	PostalCode  string
	CountryCode string // ISO 3166-1 alpha-2, e.g., "ZA"
	Phone       string
	Email       string
}

// PickupPoint is a collection location chosen by the shopper on the
// pickup-point map. Field names follow the map widget's payload.
type PickupPoint struct {
	Code       string `json:"pargoPointCode" validate:"required"`
	StoreName  string `json:"storeName" validate:"required"`
	Address1   string `json:"address1" validate:"required"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalcode,omitempty"`
	Phone      string `json:"phoneNumber,omitempty"`
}

// Money represents a monetary amount.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// RateOption represents a shipping rate option from a carrier.
type RateOption struct {
	Carrier      string
	CarrierTitle string
	Method       string
	MethodTitle  string
	Price        Money
	Cost         Money
}

// Code returns the carrier/method code stored on orders that pick this rate.
func (r RateOption) Code() string {
	return r.Carrier + "_" + r.Method
}

// TrackingInfo is a resolved tracking link for a waybill.
type TrackingInfo struct {
	Carrier      string
	CarrierTitle string
	Number       string
	URL          string
}

// ============================================================================
// Request/Response Types
// ============================================================================

// RateRequest is the request for collecting shipping rates.
type RateRequest struct {
	Destination Address
	ItemCount   int
	Subtotal    Money
}

// RateResponse is the response from collecting shipping rates.
type RateResponse struct {
	Carrier string
	Rates   []RateOption
}
