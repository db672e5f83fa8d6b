package dwp

import (
	"log/slog"
	"time"

	"github.com/xraph/dialog/backoff"
)

// Option configures a DWP Server.
type Option func(*Server)

// WithAuth sets the authenticator for the DWP server.
// If not set, NoopAuthenticator is used (development mode).
func WithAuth(auth Authenticator) Option {
	return func(s *Server) { s.auth = auth }
}

// WithCodec sets the default codec for the DWP server.
// Workers can override via the auth frame's format field.
func WithCodec(codec Codec) Option {
	return func(s *Server) { s.defaultCodec = codec }
}

// WithLogger sets the logger for the DWP server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithListTimeout bounds how long a remote worker may take to list its
// workflow types. Default 1s.
func WithListTimeout(d time.Duration) Option {
	return func(s *Server) { s.listTimeout = d }
}

// WithIdleTimeout drops a worker that sends no frame (heartbeats included)
// for d. Default 45s.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithAgentLogger sets the logger for the agent.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = logger }
}

// WithToken sets the credential presented to the hub.
func WithToken(token string) AgentOption {
	return func(a *Agent) { a.token = token }
}

// WithNamespace sets the namespace the agent registers under.
func WithNamespace(namespace string) AgentOption {
	return func(a *Agent) { a.namespace = namespace }
}

// WithFormat selects the wire format ("json" or "msgpack").
func WithFormat(format string) AgentOption {
	return func(a *Agent) { a.format = format }
}

// WithHeartbeatInterval sets how often the agent pings the hub.
// Default 15s.
func WithHeartbeatInterval(d time.Duration) AgentOption {
	return func(a *Agent) { a.heartbeat = d }
}

// WithReconnectBackoff sets the redial strategy.
// Default backoff.DefaultStrategy().
func WithReconnectBackoff(s backoff.Strategy) AgentOption {
	return func(a *Agent) { a.backoff = s }
}
