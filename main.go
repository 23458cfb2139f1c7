package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/pargo/internal/ordersync"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/internal/server"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "pargo",
	Short:   "Pargo Bridge - pickup-point delivery for the shop checkout",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE:  runMigrate,
}

var syncOrderCmd = &cobra.Command{
	Use:   "sync-order <order-id>",
	Short: "Run one Pargo sync cycle for an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncOrder,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, syncOrderCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	app.logger.Info("Starting Pargo Bridge",
		zap.Int("port", app.cfg.Port),
		zap.String("version", app.cfg.Version),
		zap.Bool("send_on_status", app.cfg.Pargo.SendOnStatus),
		zap.Any("pargo_methods", app.carrier.AllowedMethods()),
	)

	srv := server.New(server.Config{Port: app.cfg.Port, PointURL: app.cfg.Pargo.PointURL}, server.Deps{
		Registry: app.registry,
		Checkout: app.checkout,
		Hooks:    app.hooks,
		Tracks:   app.repo,
	}, app.logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := sales.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, false)
	if err != nil {
		return err
	}
	defer sales.Close(db)

	if err := sales.Migrate(db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
	return nil
}

func runSyncOrder(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", args[0], err)
	}

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	res, err := app.workflow.Process(ctx, ordersync.NewGuard(), uint(id))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "order %d: %s\n", id, res.State)
	if res.Waybill != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "waybill: %s\n", res.Waybill)
	}
	return nil
}
