package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/pargo/internal/hooks"
	"github.com/tournevent/pargo/internal/ordersync"
	"github.com/tournevent/pargo/pkg/shipper"
)

func TestHooks_ShippingMethodConfirmed_Order(t *testing.T) {
	h := hooks.New()
	var calls []string

	h.OnShippingMethodConfirmed(func(ctx context.Context, ev hooks.ShippingMethodConfirmed) error {
		calls = append(calls, "first:"+ev.PickupPoint.Code)
		return nil
	})
	h.OnShippingMethodConfirmed(func(ctx context.Context, ev hooks.ShippingMethodConfirmed) error {
		calls = append(calls, "second:"+ev.Method)
		return nil
	})

	err := h.FireShippingMethodConfirmed(context.Background(), hooks.ShippingMethodConfirmed{
		Method:      "gomedia_pargo_standard",
		PickupPoint: &shipper.PickupPoint{Code: "pup1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:pup1", "second:gomedia_pargo_standard"}, calls)
}

func TestHooks_FirstErrorStopsDispatch(t *testing.T) {
	h := hooks.New()
	boom := errors.New("boom")
	secondCalled := false

	h.OnOrderSaved(func(ctx context.Context, ev hooks.OrderSaved) error { return boom })
	h.OnOrderSaved(func(ctx context.Context, ev hooks.OrderSaved) error {
		secondCalled = true
		return nil
	})

	err := h.FireOrderSaved(context.Background(), hooks.OrderSaved{OrderID: 1})
	assert.ErrorIs(t, err, boom)
	assert.False(t, secondCalled)
}

func TestHooks_OrderSaved_SharesGuard(t *testing.T) {
	h := hooks.New()
	var entered []bool

	for i := 0; i < 2; i++ {
		h.OnOrderSaved(func(ctx context.Context, ev hooks.OrderSaved) error {
			entered = append(entered, ev.Guard.Enter())
			return nil
		})
	}

	require.NoError(t, h.FireOrderSaved(context.Background(), hooks.OrderSaved{OrderID: 7}))
	assert.Equal(t, []bool{true, false}, entered)

	guard := ordersync.NewGuard()
	entered = nil
	require.NoError(t, h.FireOrderSaved(context.Background(), hooks.OrderSaved{OrderID: 7, Guard: guard}))
	assert.Equal(t, 2, guard.Attempts())
}

func TestHooks_NoHandlers(t *testing.T) {
	h := hooks.New()
	assert.NoError(t, h.FireShippingMethodConfirmed(context.Background(), hooks.ShippingMethodConfirmed{}))
	assert.NoError(t, h.FireOrderSaved(context.Background(), hooks.OrderSaved{}))
}
