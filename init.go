package main

import (
	"context"

	"github.com/tournevent/pargo/internal/checkout"
	"github.com/tournevent/pargo/internal/config"
	"github.com/tournevent/pargo/internal/hooks"
	"github.com/tournevent/pargo/internal/ordersync"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/internal/telemetry"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/tournevent/pargo/pkg/shipper/pargo"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *otelzap.Logger
	db       *gorm.DB
	repo     *sales.Repository
	registry *shipper.Registry
	carrier  *pargo.Client
	hooks    *hooks.Hooks
	checkout *checkout.Service
	workflow *ordersync.Workflow
	closers  []func(context.Context) error
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel, cfg.ServiceName)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
}

func initSessionStore(cfg *config.Config, logger *otelzap.Logger) (checkout.SessionStore, func(context.Context) error) {
	if cfg.RedisAddr == "" {
		logger.Info("Keeping checkout sessions in memory")
		return checkout.NewMemorySessionStore(cfg.SessionTTL), func(context.Context) error { return nil }
	}
	store := checkout.NewRedisSessionStore(cfg.RedisAddr, cfg.SessionTTL)
	return store, func(context.Context) error { return store.Close() }
}

func initPargo(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *pargo.Client {
	if cfg.Pargo.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for the Pargo API")
	}
	return pargo.New(pargo.Config{
		Active:             cfg.Pargo.Active,
		CarrierCode:        cfg.Pargo.CarrierCode,
		Method:             cfg.Pargo.Method,
		Title:              cfg.Pargo.Title,
		Name:               cfg.Pargo.Name,
		Price:              cfg.Pargo.Price,
		APIURL:             cfg.Pargo.APIURL,
		APIID:              cfg.Pargo.APIID,
		APIToken:           cfg.Pargo.APIToken,
		InsecureSkipVerify: cfg.Pargo.InsecureSkipVerify,
		UseMock:            cfg.Pargo.UseMock,
		TrackURL:           cfg.Pargo.TrackURL,
	}, logger, telemetry.Tracer(tracer, "pargo"))
}

// registerHooks maps the platform events onto their handlers.
func registerHooks(h *hooks.Hooks, svc *checkout.Service, wf *ordersync.Workflow) {
	h.OnShippingMethodConfirmed(svc.ApplySelection)
	h.OnOrderSaved(func(ctx context.Context, ev hooks.OrderSaved) error {
		_, err := wf.Process(ctx, ev.Guard, ev.OrderID)
		return err
	})
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func(context.Context) error { return logger.Sync() })

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		a.closers = append(a.closers, tracerShutdown)
	}

	a.db, err = sales.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.DatabaseTracing)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.closers = append(a.closers, func(context.Context) error { return sales.Close(a.db) })
	a.repo = sales.NewRepository(a.db)

	metrics := telemetry.NewMetrics(nil)
	client := initPargo(cfg, logger, tracer)

	a.registry = shipper.NewRegistry()
	a.registry.Register(client)
	a.carrier = client

	sessions, closeSessions := initSessionStore(cfg, logger)
	a.closers = append(a.closers, closeSessions)

	a.hooks = hooks.New()
	a.checkout = checkout.NewService(a.repo, sessions, a.hooks, cfg.Pargo.ShippingMethod(), logger, metrics)
	a.workflow = ordersync.NewWorkflow(ordersync.Config{
		Active:         cfg.Pargo.Active,
		ShippingMethod: cfg.Pargo.ShippingMethod(),
		CarrierCode:    cfg.Pargo.CarrierCode,
		OrderStatus:    cfg.Pargo.OrderStatus,
		SendOnStatus:   cfg.Pargo.SendOnStatus,
		WarehouseCode:  cfg.Pargo.WarehouseCode,
		TrackURL:       cfg.Pargo.TrackURL,
	}, a.repo, client, logger, tracer, metrics)
	registerHooks(a.hooks, a.checkout, a.workflow)

	return a, nil
}

// fail releases what newApp acquired so far and returns err.
func (a *app) fail(ctx context.Context, err error) (*app, error) {
	a.Close(ctx)
	return nil, err
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Debug("Close failed", zap.Error(err))
		}
	}
}
