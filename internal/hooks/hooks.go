// Package hooks connects platform lifecycle events to the handlers that
// react to them. Handlers are registered explicitly and run in order of
// registration; the first error stops dispatch.
package hooks

import (
	"context"
	"sync"

	"github.com/tournevent/pargo/internal/ordersync"
	"github.com/tournevent/pargo/pkg/shipper"
)

// ShippingMethodConfirmed is raised when the shopper confirms the
// shipping-method step of checkout.
type ShippingMethodConfirmed struct {
	SessionID string
	QuoteID   string
	Method    string
	// PickupPoint is the map selection held by the session, if any.
	PickupPoint *shipper.PickupPoint
}

// OrderSaved is raised after an order is persisted.
type OrderSaved struct {
	OrderID uint
	Guard   *ordersync.Guard
}

// ShippingMethodConfirmedFunc handles ShippingMethodConfirmed.
type ShippingMethodConfirmedFunc func(ctx context.Context, ev ShippingMethodConfirmed) error

// OrderSavedFunc handles OrderSaved.
type OrderSavedFunc func(ctx context.Context, ev OrderSaved) error

// Hooks holds the registered handlers.
type Hooks struct {
	mu                      sync.RWMutex
	shippingMethodConfirmed []ShippingMethodConfirmedFunc
	orderSaved              []OrderSavedFunc
}

// New creates an empty set of hooks.
func New() *Hooks {
	return &Hooks{}
}

// OnShippingMethodConfirmed registers fn.
func (h *Hooks) OnShippingMethodConfirmed(fn ShippingMethodConfirmedFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shippingMethodConfirmed = append(h.shippingMethodConfirmed, fn)
}

// OnOrderSaved registers fn.
func (h *Hooks) OnOrderSaved(fn OrderSavedFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.orderSaved = append(h.orderSaved, fn)
}

// FireShippingMethodConfirmed runs the ShippingMethodConfirmed handlers.
func (h *Hooks) FireShippingMethodConfirmed(ctx context.Context, ev ShippingMethodConfirmed) error {
	h.mu.RLock()
	handlers := append([]ShippingMethodConfirmedFunc(nil), h.shippingMethodConfirmed...)
	h.mu.RUnlock()

	for _, fn := range handlers {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// FireOrderSaved runs the OrderSaved handlers. A nil Guard is replaced by
// a fresh one so every handler sees the same cycle.
func (h *Hooks) FireOrderSaved(ctx context.Context, ev OrderSaved) error {
	if ev.Guard == nil {
		ev.Guard = ordersync.NewGuard()
	}

	h.mu.RLock()
	handlers := append([]OrderSavedFunc(nil), h.orderSaved...)
	h.mu.RUnlock()

	for _, fn := range handlers {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
