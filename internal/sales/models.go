package sales

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Address types stored on quote and order addresses.
const (
	AddressTypeShipping = "shipping"
	AddressTypeBilling  = "billing"
)

// Order is a placed order.
type Order struct {
	ID             uint   `gorm:"primaryKey"`
	IncrementID    string `gorm:"size:32;uniqueIndex;not null"`
	Status         string `gorm:"size:32;index"`
	ShippingMethod string `gorm:"size:128"`
	IsInProcess    bool

	CustomerFirstName string `gorm:"size:255"`
	CustomerLastName  string `gorm:"size:255"`
	CustomerEmail     string `gorm:"size:255"`

	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
	Addresses     []OrderAddress  `gorm:"constraint:OnDelete:CASCADE"`
	Shipments     []Shipment      `gorm:"constraint:OnDelete:CASCADE"`
	StatusHistory []StatusHistory `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShippingAddress returns the order's shipping address, or nil.
func (o *Order) ShippingAddress() *OrderAddress {
	for i := range o.Addresses {
		if o.Addresses[i].AddressType == AddressTypeShipping {
			return &o.Addresses[i]
		}
	}
	return nil
}

// FirstShipment returns the oldest shipment of the order, or nil.
func (o *Order) FirstShipment() *Shipment {
	if len(o.Shipments) == 0 {
		return nil
	}
	return &o.Shipments[0]
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"index;not null"`
	SKU         string          `gorm:"size:64"`
	Name        string          `gorm:"size:255"`
	Price       decimal.Decimal `gorm:"type:decimal(12,4)"`
	QtyOrdered  int
	QtyShipped  int
	QtyRefunded int
	QtyCanceled int
}

// QtyToShip is the quantity still to be shipped.
func (i OrderItem) QtyToShip() int {
	qty := i.QtyOrdered - i.QtyShipped - i.QtyRefunded - i.QtyCanceled
	if qty < 0 {
		return 0
	}
	return qty
}

// Address holds the fields shared by quote and order addresses. Street
// holds one line per row, newline separated.
type Address struct {
	AddressType string `gorm:"size:16;not null"`
	FirstName   string `gorm:"size:255"`
	LastName    string `gorm:"size:512"`
	Company     string `gorm:"size:255"`
	Street      string `gorm:"size:1024"`
	City        string `gorm:"size:255"`
	Region      string `gorm:"size:255"`
	Postcode    string `gorm:"size:32"`
	CountryID   string `gorm:"size:2"`
	Telephone   string `gorm:"size:64"`
	Email       string `gorm:"size:255"`
	PupID       string `gorm:"column:pup_id;size:255"`
}

// StreetLine returns the n-th street line, starting at 1.
func (a Address) StreetLine(n int) string {
	lines := strings.Split(a.Street, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// QuoteAddress is an address of a checkout in progress.
type QuoteAddress struct {
	ID             uint   `gorm:"primaryKey"`
	QuoteID        string `gorm:"size:64;index;not null"`
	Address        `gorm:"embedded"`
	ShippingMethod string `gorm:"size:128"`

	UpdatedAt time.Time
}

// OrderAddress is an address of a placed order.
type OrderAddress struct {
	ID      uint `gorm:"primaryKey"`
	OrderID uint `gorm:"index;not null"`
	Address `gorm:"embedded"`
}

// Shipment groups the items sent out for an order.
type Shipment struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	Comment   string          `gorm:"type:text"`
	Items     []ShipmentItem  `gorm:"constraint:OnDelete:CASCADE"`
	Tracks    []ShipmentTrack `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// ShipmentItem is the quantity of one order line in a shipment.
type ShipmentItem struct {
	ID          uint `gorm:"primaryKey"`
	ShipmentID  uint `gorm:"index;not null"`
	OrderItemID uint `gorm:"not null"`
	Qty         int
}

// ShipmentTrack is a carrier tracking number attached to a shipment.
type ShipmentTrack struct {
	ID          uint   `gorm:"primaryKey"`
	ShipmentID  uint   `gorm:"index;not null"`
	OrderID     uint   `gorm:"index;not null"`
	CarrierCode string `gorm:"size:64"`
	Title       string `gorm:"size:255;index"`
	TrackNumber string `gorm:"size:255;index"`
	CreatedAt   time.Time
}

// StatusHistory is an order comment.
type StatusHistory struct {
	ID                 uint   `gorm:"primaryKey"`
	OrderID            uint   `gorm:"index;not null"`
	Comment            string `gorm:"type:text"`
	Status             string `gorm:"size:32"`
	IsCustomerNotified bool
	IsVisibleOnFront   bool
	CreatedAt          time.Time
}

// TableName keeps the history table name singular like the other order tables.
func (StatusHistory) TableName() string { return "order_status_history" }
