package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/tournevent/pargo/internal/hooks"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/internal/telemetry"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// MissingPickupPointMessage is shown when Pargo is chosen without a point.
const MissingPickupPointMessage = "Please choose a Pargo pickup point from the map."

// ValidationError is a checkout step rejection shown inline to the shopper.
type ValidationError struct {
	Message string
	// HTML is the rendered message banner.
	HTML string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches shipper.ErrMissingPickupPoint for the missing-selection case.
func (e *ValidationError) Is(target error) bool {
	return target == shipper.ErrMissingPickupPoint && e.Message == MissingPickupPointMessage
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, HTML: ShowMessage("error", message)}
}

// Quotes is the quote storage the checkout needs.
type Quotes interface {
	AddressSaver
	QuoteShippingAddress(ctx context.Context, quoteID string) (*sales.QuoteAddress, error)
	SetQuoteShippingMethod(ctx context.Context, quoteID, method string) error
}

// Service runs the Pargo parts of the checkout.
type Service struct {
	quotes      Quotes
	sessions    SessionStore
	hooks       *hooks.Hooks
	pargoMethod string
	logger      *otelzap.Logger
	metrics     *telemetry.Metrics
}

// NewService creates a checkout service. pargoMethod is the combined
// carrier/method code of the Pargo rate.
func NewService(quotes Quotes, sessions SessionStore, h *hooks.Hooks, pargoMethod string, logger *otelzap.Logger, metrics *telemetry.Metrics) *Service {
	return &Service{
		quotes:      quotes,
		sessions:    sessions,
		hooks:       h,
		pargoMethod: pargoMethod,
		logger:      logger,
		metrics:     metrics,
	}
}

// StartSession creates a session for a quote.
func (s *Service) StartSession(ctx context.Context, quoteID string) (*Session, error) {
	if quoteID == "" {
		return nil, newValidationError("quote_id is required")
	}
	session := NewSession(quoteID)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// Session loads a session.
func (s *Service) Session(ctx context.Context, id string) (*Session, error) {
	return s.sessions.Get(ctx, id)
}

// SelectPickupPoint stores the point chosen on the map in the session.
func (s *Service) SelectPickupPoint(ctx context.Context, sessionID string, point shipper.PickupPoint) (*Session, error) {
	if err := ValidatePickupPoint(point); err != nil {
		return nil, newValidationError(err.Error())
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.SetShipping(ShippingKey, point)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	s.logger.Ctx(ctx).Info("Pickup point selected",
		zap.String("session", sessionID),
		zap.String("pargo_point", point.Code),
	)
	return session, nil
}

// ConfirmShippingMethod saves the shopper's shipping method. Choosing Pargo
// without a pickup point in the session is rejected with a
// *ValidationError. A point sent along with the request replaces the
// session's selection first.
func (s *Service) ConfirmShippingMethod(ctx context.Context, sessionID, method string, point *shipper.PickupPoint) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if point != nil && ValidatePickupPoint(*point) == nil {
		session.SetShipping(ShippingKey, *point)
		if err := s.sessions.Save(ctx, session); err != nil {
			return fmt.Errorf("saving session %s: %w", sessionID, err)
		}
	}

	ev := hooks.ShippingMethodConfirmed{
		SessionID: session.ID,
		QuoteID:   session.QuoteID,
		Method:    method,
	}

	if method == s.pargoMethod {
		selected, ok := session.GetShipping(ShippingKey)
		if !ok {
			s.metrics.RecordCheckoutReject()
			s.logger.Ctx(ctx).Info("Pargo chosen without a pickup point", zap.String("session", sessionID))
			return newValidationError(MissingPickupPointMessage)
		}
		ev.PickupPoint = &selected
	}

	if err := s.quotes.SetQuoteShippingMethod(ctx, session.QuoteID, method); err != nil {
		return fmt.Errorf("confirming shipping method: %w", err)
	}

	return s.hooks.FireShippingMethodConfirmed(ctx, ev)
}

// ApplySelection is the ShippingMethodConfirmed handler that moves the
// quote's shipping address to the selected pickup point.
func (s *Service) ApplySelection(ctx context.Context, ev hooks.ShippingMethodConfirmed) error {
	if ev.Method != s.pargoMethod || ev.PickupPoint == nil {
		return nil
	}

	addr, err := s.quotes.QuoteShippingAddress(ctx, ev.QuoteID)
	if errors.Is(err, sales.ErrNotFound) {
		addr = &sales.QuoteAddress{QuoteID: ev.QuoteID, Address: sales.Address{AddressType: sales.AddressTypeShipping}}
	} else if err != nil {
		return err
	}

	applied, err := ApplyPickupPoint(ctx, s.quotes, addr, *ev.PickupPoint)
	if err != nil {
		return err
	}
	if applied {
		s.logger.Ctx(ctx).Info("Shipping address moved to pickup point",
			zap.String("quote", ev.QuoteID),
			zap.String("pargo_point", ev.PickupPoint.Code),
		)
	}
	return nil
}
