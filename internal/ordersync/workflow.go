// Package ordersync sends orders shipped to a Pargo pickup point to the
// Pargo API and records the outcome on the order.
package ordersync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/internal/telemetry"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/tournevent/pargo/pkg/shipper/pargo"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// State is the outcome of one sync cycle.
type State string

const (
	// StateGuarded: the cycle was already entered; nothing was done.
	StateGuarded State = "GUARDED"
	// StateNotApplicable: the order does not ship with Pargo, or the carrier is off.
	StateNotApplicable State = "NOT_APPLICABLE"
	// StateAwaitingPickupPoint: the shipping address has no pickup point.
	StateAwaitingPickupPoint State = "AWAITING_PICKUP_POINT"
	// StateAlreadySynced: the shipment already has a Pargo track.
	StateAlreadySynced State = "ALREADY_SYNCED"
	// StatePendingSync: eligible, but the dispatch conditions are not met yet.
	StatePendingSync State = "PENDING_SYNC"
	// StateSynced: Pargo issued a waybill and the track was saved.
	StateSynced State = "SYNCED"
	// StateSyncFailed: the send failed; the order can be retried on a later save.
	StateSyncFailed State = "SYNC_FAILED"
)

const shipmentCreatedComment = "Automatically created shipment"

// Result describes what a cycle did.
type Result struct {
	State   State
	Waybill string
	// Comment is the order comment recorded by the cycle, if any.
	Comment string
}

// Config holds the settings the workflow reads.
type Config struct {
	Active bool
	// ShippingMethod is the carrier/method code orders carry for Pargo.
	ShippingMethod string
	CarrierCode    string
	// OrderStatus triggers the send in automatic mode.
	OrderStatus string
	// SendOnStatus selects automatic mode.
	SendOnStatus  bool
	WarehouseCode string
	// TrackURL links the waybill when Pargo returns no label.
	TrackURL string
}

// Store is the order storage the workflow needs.
type Store interface {
	Order(ctx context.Context, id uint) (*sales.Order, error)
	CreateShipment(ctx context.Context, order *sales.Order, comment string) (*sales.Shipment, error)
	FindTrack(ctx context.Context, shipmentID uint, title string) (*sales.ShipmentTrack, error)
	AddTrack(ctx context.Context, order *sales.Order, shipment *sales.Shipment, track *sales.ShipmentTrack) error
	AddStatusHistory(ctx context.Context, order *sales.Order, entry *sales.StatusHistory) error
}

// OrderSubmitter posts orders to Pargo.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req *pargo.OrderRequest) (*pargo.OrderResponse, error)
}

// Workflow runs sync cycles.
type Workflow struct {
	cfg     Config
	store   Store
	api     OrderSubmitter
	logger  *otelzap.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

// NewWorkflow creates a workflow.
func NewWorkflow(cfg Config, store Store, api OrderSubmitter, logger *otelzap.Logger, tracer trace.Tracer, metrics *telemetry.Metrics) *Workflow {
	return &Workflow{
		cfg:     cfg,
		store:   store,
		api:     api,
		logger:  logger,
		tracer:  telemetry.Tracer(tracer, "ordersync"),
		metrics: metrics,
	}
}

// Process runs one sync cycle for an order. Pargo failures are recorded
// as an order comment and never returned; only storage errors are.
func (w *Workflow) Process(ctx context.Context, guard *Guard, orderID uint) (Result, error) {
	ctx, span := w.tracer.Start(ctx, "ordersync.Process",
		trace.WithAttributes(attribute.Int64("order.id", int64(orderID))),
	)
	defer span.End()

	res, err := w.process(ctx, guard, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.logger.Ctx(ctx).Error("Order sync failed", zap.Uint("order_id", orderID), zap.Error(err))
		return res, err
	}

	span.SetAttributes(attribute.String("ordersync.state", string(res.State)))
	w.metrics.RecordSync(string(res.State))
	w.logger.Ctx(ctx).Info("Order sync finished",
		zap.Uint("order_id", orderID),
		zap.String("state", string(res.State)),
		zap.String("waybill", res.Waybill),
	)
	return res, nil
}

func (w *Workflow) process(ctx context.Context, guard *Guard, orderID uint) (Result, error) {
	if !guard.Enter() {
		return Result{State: StateGuarded}, nil
	}
	if !w.cfg.Active {
		return Result{State: StateNotApplicable}, nil
	}

	order, err := w.store.Order(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if order.ShippingMethod != w.cfg.ShippingMethod {
		return Result{State: StateNotApplicable}, nil
	}

	addr := order.ShippingAddress()
	if addr == nil || addr.PupID == "" {
		return Result{State: StateAwaitingPickupPoint}, nil
	}

	shipment := order.FirstShipment()
	if shipment != nil {
		_, err := w.store.FindTrack(ctx, shipment.ID, pargo.TrackingTitle)
		switch {
		case err == nil:
			return Result{State: StateAlreadySynced}, nil
		case !errors.Is(err, sales.ErrNotFound):
			return Result{}, err
		}
	}

	if w.cfg.SendOnStatus {
		if order.Status != w.cfg.OrderStatus {
			return Result{State: StatePendingSync}, nil
		}
		if shipment == nil {
			shipment, err = w.store.CreateShipment(ctx, order, shipmentCreatedComment)
			if err != nil {
				w.logger.Ctx(ctx).Warn("Could not create shipment", zap.String("order", order.IncrementID), zap.Error(err))
				comment, cerr := w.addComment(ctx, order, "Shipment could not be added "+err.Error())
				if cerr != nil {
					return Result{}, cerr
				}
				return Result{State: StateSyncFailed, Comment: comment}, nil
			}
		}
	} else if shipment == nil {
		// manual mode only sends once a shipment has been created by hand
		return Result{State: StatePendingSync}, nil
	}

	return w.send(ctx, order, shipment, addr.PupID)
}

func (w *Workflow) send(ctx context.Context, order *sales.Order, shipment *sales.Shipment, pupID string) (Result, error) {
	req := BuildOrderRequest(order, pupID, w.cfg.WarehouseCode)
	ctx = pargo.WithRequestID(ctx, uuid.NewString())

	start := time.Now()
	resp, err := w.api.SubmitOrder(ctx, req)
	w.recordRequest(resp, err, time.Since(start))

	var waybill *pargo.WaybillData
	if err == nil {
		var appErr error
		waybill, appErr = resp.Waybill()
		if appErr != nil {
			w.metrics.RecordError("application")
			w.logger.Ctx(ctx).Warn("Pargo returned no waybill", zap.String("order", order.IncrementID), zap.Error(appErr))
		}
	}

	if waybill == nil {
		comment, cerr := w.addComment(ctx, order, failureMessage(resp, err))
		if cerr != nil {
			return Result{}, cerr
		}
		return Result{State: StateSyncFailed, Comment: comment}, nil
	}

	track := &sales.ShipmentTrack{
		CarrierCode: w.cfg.CarrierCode,
		Title:       pargo.TrackingTitle,
		TrackNumber: waybill.WaybillNumber,
	}
	if err := w.store.AddTrack(ctx, order, shipment, track); err != nil {
		return Result{}, err
	}

	link := waybill.LabelReferenceBarcode
	if link == "" {
		link = w.cfg.TrackURL + url.QueryEscape(waybill.WaybillNumber)
	}
	comment, err := w.addComment(ctx, order, successMessage(waybill, link))
	if err != nil {
		return Result{}, err
	}
	return Result{State: StateSynced, Waybill: waybill.WaybillNumber, Comment: comment}, nil
}

func (w *Workflow) addComment(ctx context.Context, order *sales.Order, message string) (string, error) {
	comment := Comment(message)
	entry := &sales.StatusHistory{
		Comment:            comment,
		IsCustomerNotified: false,
		IsVisibleOnFront:   false,
	}
	if err := w.store.AddStatusHistory(ctx, order, entry); err != nil {
		return "", fmt.Errorf("recording pargo comment: %w", err)
	}
	return comment, nil
}

func (w *Workflow) recordRequest(resp *pargo.OrderResponse, err error, elapsed time.Duration) {
	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	w.metrics.RecordRequest("orders", "POST", status, elapsed.Seconds())

	switch {
	case err == nil:
	case errors.Is(err, shipper.ErrTransport):
		w.metrics.RecordError("transport")
	case errors.Is(err, shipper.ErrProtocol):
		w.metrics.RecordError("protocol")
	default:
		w.metrics.RecordError("unknown")
	}
}
