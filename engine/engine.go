package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/backoff"
	"github.com/xraph/dialog/dwp"
	"github.com/xraph/dialog/ext"
	"github.com/xraph/dialog/hub"
	mw "github.com/xraph/dialog/middleware"
	"github.com/xraph/dialog/observability"
	"github.com/xraph/dialog/worker"
	"github.com/xraph/dialog/workflow"
)

const instrumentationName = "github.com/xraph/dialog"

// Engine owns the hub, the DWP server, and the in-process workflow
// registry of one dialog process.
type Engine struct {
	cfg        dialog.Config
	extensions *ext.Registry
	catalog    *workflow.Catalog
	registry   *workflow.Registry
	local      *worker.Local
	hub        *hub.Hub
	server     *dwp.Server
	auth       dwp.Authenticator
	exts       []ext.Extension
	mws        []mw.Middleware
	logger     *slog.Logger

	localConnID string

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by every subsystem.
func WithLogger(l *slog.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// WithCatalog sets the workflow definitions served by this process.
func WithCatalog(c *workflow.Catalog) Option {
	return func(eng *Engine) { eng.catalog = c }
}

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.exts = append(eng.exts, e) }
}

// WithMiddleware appends middleware after the default chain.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m) }
}

// WithAuthenticator overrides the worker authenticator. By default a
// shared-secret authenticator is built from Config.Secret, or a noop one
// when no secret is set.
func WithAuthenticator(a dwp.Authenticator) Option {
	return func(eng *Engine) { eng.auth = a }
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// Both the metrics middleware and the observability extension use it.
// If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// Build wires an engine from cfg.
func Build(cfg dialog.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng := &Engine{
		cfg:     cfg,
		catalog: workflow.NewCatalog(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.extensions = ext.NewRegistry(eng.logger)

	// Register the observability metrics extension.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		obsExt = observability.NewMetricsExtensionWithMeter(eng.meterProvider.Meter(instrumentationName + "/observability"))
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)
	for _, e := range eng.exts {
		eng.extensions.Register(e)
	}

	// Build tracing and metrics middleware (custom provider or global).
	var tracingMw, metricsMw mw.Middleware
	var tracer trace.Tracer
	if eng.tracerProvider != nil {
		tracer = eng.tracerProvider.Tracer(instrumentationName)
		tracingMw = mw.TracingWithTracer(tracer)
	} else {
		tracingMw = mw.Tracing()
	}
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(instrumentationName))
	} else {
		metricsMw = mw.Metrics()
	}

	// Default middleware stack: recover → tracing → metrics → logging.
	chain := make([]mw.Middleware, 0, 4+len(eng.mws))
	chain = append(chain,
		mw.Recover(eng.logger),
		tracingMw,
		metricsMw,
		mw.Logging(eng.logger),
	)
	chain = append(chain, eng.mws...)

	eng.registry = workflow.NewRegistry(eng.catalog,
		workflow.WithLogger(eng.logger),
		workflow.WithEmitter(eng.extensions),
		workflow.WithMiddleware(mw.Chain(chain...)),
	)
	eng.local = worker.NewLocal(eng.registry)

	hubOpts := []hub.Option{
		hub.WithLogger(eng.logger),
		hub.WithEmitter(eng.extensions),
		hub.WithListTimeout(cfg.ListTimeout),
	}
	if cfg.StartRateLimit > 0 {
		hubOpts = append(hubOpts, hub.WithStartLimit(rate.Limit(cfg.StartRateLimit), cfg.StartRateBurst))
	}
	if tracer != nil {
		hubOpts = append(hubOpts, hub.WithTracer(tracer))
	}
	eng.hub = hub.New(hubOpts...)

	if eng.auth == nil {
		if cfg.Secret != "" {
			eng.auth = dwp.NewSharedSecretAuthenticator(cfg.Secret)
		} else {
			eng.logger.Warn("no shared secret configured; the DWP endpoint accepts any worker")
			eng.auth = &dwp.NoopAuthenticator{}
		}
	}
	eng.server = dwp.NewServer(eng.hub,
		dwp.WithAuth(eng.auth),
		dwp.WithCodec(dwp.GetCodec(cfg.Format)),
		dwp.WithLogger(eng.logger),
		dwp.WithListTimeout(cfg.ListTimeout),
		dwp.WithIdleTimeout(3*cfg.HeartbeatInterval),
	)

	return eng, nil
}

// Start attaches the in-process workflows, if any, to the hub under
// Config.Namespace.
func (eng *Engine) Start(ctx context.Context) error {
	if eng.localConnID != "" || len(eng.catalog.Names()) == 0 {
		return nil
	}
	eng.localConnID = eng.hub.AddConnection(ctx, eng.cfg.Namespace, eng.local)
	eng.logger.Info("local workflows attached",
		slog.String("namespace", eng.cfg.Namespace),
		slog.Int("types", len(eng.catalog.Names())),
	)
	return nil
}

// Agent returns a DWP agent that serves the in-process workflows to the
// hub at Config.HubURL.
func (eng *Engine) Agent() *dwp.Agent {
	return dwp.NewAgent(eng.cfg.HubURL, eng.local,
		dwp.WithAgentLogger(eng.logger),
		dwp.WithToken(eng.cfg.Secret),
		dwp.WithNamespace(eng.cfg.Namespace),
		dwp.WithFormat(eng.cfg.Format),
		dwp.WithHeartbeatInterval(eng.cfg.HeartbeatInterval),
		dwp.WithReconnectBackoff(backoff.NewExponentialWithJitter(backoff.DefaultInitialDelay, eng.cfg.ReconnectMaxDelay)),
	)
}

// Stop drops worker connections, cancels running procedures, and
// notifies extensions.
func (eng *Engine) Stop(ctx context.Context) error {
	if eng.localConnID != "" {
		if err := eng.hub.RemoveConnection(ctx, eng.localConnID); err != nil {
			eng.logger.Warn("failed to detach local workflows", slog.String("error", err.Error()))
		}
		eng.localConnID = ""
	}

	err := eng.server.Close()
	eng.registry.Close()
	eng.extensions.EmitShutdown(ctx)
	if err != nil {
		return fmt.Errorf("dialog: stop DWP server: %w", err)
	}
	return nil
}

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Catalog returns the in-process workflow definitions.
func (eng *Engine) Catalog() *workflow.Catalog { return eng.catalog }

// Registry returns the in-process workflow registry.
func (eng *Engine) Registry() *workflow.Registry { return eng.registry }

// Hub returns the hub.
func (eng *Engine) Hub() *hub.Hub { return eng.hub }

// DWP returns the worker protocol server. Mount it on the HTTP mux.
func (eng *Engine) DWP() *dwp.Server { return eng.server }

// Logger returns the engine logger.
func (eng *Engine) Logger() *slog.Logger { return eng.logger }

// TracerProvider returns the configured tracer provider, or nil when the
// global one is in use.
func (eng *Engine) TracerProvider() trace.TracerProvider { return eng.tracerProvider }

// Config returns the configuration the engine was built with.
func (eng *Engine) Config() dialog.Config { return eng.cfg }

// Register adds a typed workflow definition to the engine's catalog. Call
// it before Start.
func Register[T any](eng *Engine, def *workflow.Definition[T]) {
	workflow.Register(eng.catalog, def)
}
