package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/dialog/api"
	audithook "github.com/xraph/dialog/audit_hook"
	"github.com/xraph/dialog/config"
	"github.com/xraph/dialog/engine"
)

var serveDemo bool

// hubCmd runs the hub: the operator HTTP API plus the DWP endpoint.
var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "Serve the operator API and accept worker connections",
	Long: `Hub serves the operator-facing HTTP API and accepts DWP worker
connections on /dwp. Workflows are routed to the worker that owns the
namespace in their id.

Examples:
  dialog hub
  dialog hub --http-addr :9090 --secret s3cret
  dialog hub --demo --namespace demo`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		opts := []engine.Option{
			engine.WithLogger(logger),
			engine.WithExtension(audithook.New(audithook.SlogRecorder(logger))),
		}
		if serveDemo {
			opts = append(opts, engine.WithCatalog(demoCatalog()))
		}
		eng, err := engine.Build(cfg, opts...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := eng.Start(ctx); err != nil {
			return err
		}

		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.New(eng).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("hub listening",
				slog.String("addr", cfg.HTTPAddr),
				slog.String("dwp_path", api.DWPPath),
			)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("hub shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			// Hijacked DWP sockets are not tracked by Shutdown; close them first.
			stopErr := eng.Stop(shutdownCtx)
			return errors.Join(stopErr, server.Shutdown(shutdownCtx))
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(hubCmd)
	f := hubCmd.Flags()
	f.String("http-addr", ":8080", "Listen address for the HTTP API and DWP endpoint")
	f.String("secret", "", "Shared secret workers must present (empty accepts any worker)")
	f.String("namespace", "default", "Namespace of the in-process demo workflows")
	f.Duration("list-timeout", time.Second, "Per-connection timeout when listing workflow types")
	f.Float64("start-rate-limit", 0, "Workflow starts per second allowed per namespace (0 disables)")
	f.Int("start-rate-burst", 1, "Burst for --start-rate-limit")
	f.BoolVar(&serveDemo, "demo", false, "Serve the demo workflows from the hub process")
}
