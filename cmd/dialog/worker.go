package main

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/dialog/config"
	"github.com/xraph/dialog/engine"
)

// workerCmd connects to a hub and serves the demo workflows.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Connect to a hub and serve workflows under a namespace",
	Long: `Worker dials the hub's DWP endpoint, authenticates with the shared
secret, and answers workflow requests for its namespace. It reconnects with
backoff when the connection drops.

Examples:
  dialog worker --namespace user-service --secret s3cret
  dialog worker --hub-url ws://hub:8080/dwp --format msgpack`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		eng, err := engine.Build(cfg,
			engine.WithLogger(logger),
			engine.WithCatalog(demoCatalog()),
		)
		if err != nil {
			return err
		}
		defer eng.Stop(cmd.Context()) //nolint:errcheck // best-effort teardown

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("worker starting",
			slog.String("hub_url", cfg.HubURL),
			slog.String("namespace", cfg.Namespace),
			slog.Any("workflows", eng.Catalog().Names()),
		)
		return eng.Agent().Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	f := workerCmd.Flags()
	f.String("hub-url", "ws://localhost:8080/dwp", "Hub DWP endpoint")
	f.String("secret", "", "Shared secret presented to the hub")
	f.String("namespace", "default", "Namespace this worker serves")
	f.String("format", "json", "Wire format after auth: json or msgpack")
	f.Duration("heartbeat-interval", 15*time.Second, "Interval between pings to the hub")
	f.Duration("reconnect-max-delay", 30*time.Second, "Upper bound on the reconnect backoff")
}
