package hub

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Emitter receives worker connection lifecycle events. *ext.Registry
// satisfies it.
type Emitter interface {
	EmitWorkerConnected(ctx context.Context, connID, namespace string)
	EmitWorkerDisconnected(ctx context.Context, connID, namespace string, orphaned int)
}

type noopEmitter struct{}

func (noopEmitter) EmitWorkerConnected(context.Context, string, string)         {}
func (noopEmitter) EmitWorkerDisconnected(context.Context, string, string, int) {}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithEmitter sets the receiver of worker lifecycle events.
func WithEmitter(e Emitter) Option {
	return func(h *Hub) { h.emitter = e }
}

// WithListTimeout bounds how long ListWorkflowTypes waits for a single
// connection. Default 1s.
func WithListTimeout(d time.Duration) Option {
	return func(h *Hub) { h.listTimeout = d }
}

// WithStartLimit limits workflow starts per namespace to r per second with
// the given burst. Starts over the limit fail with dialog.ErrRateLimited.
func WithStartLimit(r rate.Limit, burst int) Option {
	return func(h *Hub) {
		h.startLimit = r
		h.startBurst = burst
	}
}

// WithTracer sets the tracer used for routing spans.
func WithTracer(t trace.Tracer) Option {
	return func(h *Hub) { h.tracer = t }
}
