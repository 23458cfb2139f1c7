package shipper

import (
	"errors"
	"fmt"
)

// ShipperError represents an error from a shipping carrier.
type ShipperError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ShipperError.
func (e *ShipperError) Is(target error) bool {
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewShipperError creates a new ShipperError.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// Sentinel errors for common shipping scenarios.
var (
	// ErrTransport indicates the carrier response could not be read as an
	// HTTP response (connection failure, truncated or malformed framing).
	ErrTransport = errors.New("carrier transport failure")

	// ErrProtocol indicates the carrier answered with a body that is not a
	// usable JSON document.
	ErrProtocol = errors.New("carrier protocol failure")

	// ErrCarrierDisabled indicates the carrier is switched off in configuration.
	ErrCarrierDisabled = errors.New("carrier disabled")

	// ErrMissingPickupPoint indicates a pickup-point method was chosen
	// without selecting a pickup point.
	ErrMissingPickupPoint = errors.New("pickup point not selected")

	// ErrInvalidTrackingNumber indicates an empty or malformed tracking number.
	ErrInvalidTrackingNumber = errors.New("invalid tracking number")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)
