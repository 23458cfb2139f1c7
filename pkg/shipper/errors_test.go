package shipper_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/pargo/pkg/shipper"
)

func TestShipperError_Error(t *testing.T) {
	err := shipper.NewShipperError("gomedia_pargo", "NO_WAYBILL", "Response has no waybill")
	assert.Equal(t, "gomedia_pargo error (NO_WAYBILL): Response has no waybill", err.Error())
}

func TestShipperError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := shipper.NewShipperError("gomedia_pargo", "API_ERROR", "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestShipperError_Unwrap(t *testing.T) {
	err := shipper.NewShipperError("gomedia_pargo", "TRANSPORT", "bad framing").WithCause(shipper.ErrTransport)
	assert.True(t, errors.Is(err, shipper.ErrTransport))
}

func TestShipperError_Is(t *testing.T) {
	err1 := shipper.NewShipperError("gomedia_pargo", "NO_WAYBILL", "first")
	err2 := shipper.NewShipperError("other", "NO_WAYBILL", "second")
	err3 := shipper.NewShipperError("gomedia_pargo", "DIFFERENT", "third")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestShipperError_WithStatusCode(t *testing.T) {
	err := shipper.NewShipperError("gomedia_pargo", "AUTH_ERROR", "Unauthorized").WithStatusCode(401)
	assert.Equal(t, 401, err.StatusCode)
}

func TestSentinelErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("collect rates: %w", shipper.ErrCarrierDisabled)
	assert.True(t, errors.Is(wrapped, shipper.ErrCarrierDisabled))
	assert.False(t, errors.Is(wrapped, shipper.ErrProtocol))
}
