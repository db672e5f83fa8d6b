package dwp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gobwas/ws"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/worker"
)

// authTimeout bounds the handshake.
const authTimeout = 10 * time.Second

// Acceptor receives authenticated worker connections. *hub.Hub satisfies it.
type Acceptor interface {
	AddConnection(ctx context.Context, namespace string, conn worker.Conn) string
	RemoveConnection(ctx context.Context, connID string) error
}

// Server is the hub side of DWP. It upgrades worker HTTP requests to
// WebSockets, authenticates them, registers each as a RemoteWorker with the
// Acceptor, and serves the socket until it closes.
type Server struct {
	acceptor     Acceptor
	auth         Authenticator
	defaultCodec Codec
	conns        *ConnectionManager
	logger       *slog.Logger
	listTimeout  time.Duration
	idleTimeout  time.Duration
}

// NewServer creates a new DWP server.
func NewServer(acceptor Acceptor, opts ...Option) *Server {
	s := &Server{
		acceptor:     acceptor,
		defaultCodec: &JSONCodec{},
		conns:        NewConnectionManager(),
		logger:       slog.Default(),
		listTimeout:  time.Second,
		idleTimeout:  45 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auth == nil {
		s.auth = &NoopAuthenticator{}
	}
	return s
}

// Connections returns the connection manager.
func (s *Server) Connections() *ConnectionManager { return s.conns }

// Close drops every worker connection.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.conns.All() {
		if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ServeHTTP implements http.Handler. It blocks for the connection lifetime.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		s.logger.Warn("DWP upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	if err := s.serve(context.WithoutCancel(r.Context()), conn); err != nil {
		s.logger.Info("DWP connection closed", slog.String("reason", err.Error()))
	}
}

// serve runs the handshake and frame loop on an upgraded connection.
func (s *Server) serve(ctx context.Context, conn net.Conn) error {
	// Auth frames are always JSON (before codec negotiation).
	handshake := newWire(conn, ws.StateServerSide, &JSONCodec{})

	authFrame, err := handshake.readJSON(authTimeout)
	if err != nil {
		//nolint:errcheck // best-effort error response before disconnect
		handshake.writeJSON(NewErrorFrame("", ErrCodeBadRequest, "invalid auth frame"))
		return fmt.Errorf("dwp: read auth frame: %w", err)
	}
	if authFrame.Method != MethodAuth {
		//nolint:errcheck // best-effort error response before disconnect
		handshake.writeJSON(NewErrorFrame(authFrame.ID, ErrCodeBadRequest, "first frame must be auth"))
		return fmt.Errorf("dwp: expected auth frame, got %q", authFrame.Method)
	}

	var authReq AuthRequest
	if len(authFrame.Data) > 0 {
		if err := json.Unmarshal(authFrame.Data, &authReq); err != nil {
			//nolint:errcheck // best-effort error response before disconnect
			handshake.writeJSON(NewErrorFrame(authFrame.ID, ErrCodeBadRequest, "invalid auth data"))
			return err
		}
	}

	token := authReq.Token
	if token == "" {
		token = authFrame.Token
	}
	identity, authErr := s.auth.Authenticate(ctx, token)
	if authErr != nil {
		//nolint:errcheck // best-effort error response before disconnect
		handshake.writeJSON(NewErrorFrameFromError(authFrame.ID, fmt.Errorf("%w: authentication failed", dialog.ErrUnauthorized)))
		return fmt.Errorf("dwp: auth failed: %w", authErr)
	}

	namespace := authReq.Namespace
	if namespace == "" {
		namespace = id.DefaultNamespace
	}
	if !identity.Allows(namespace) {
		f := NewErrorFrame(authFrame.ID, ErrCodeForbidden, "namespace not allowed: "+namespace)
		f.Error.Reason = "unauthorized"
		//nolint:errcheck // best-effort error response before disconnect
		handshake.writeJSON(f)
		return fmt.Errorf("dwp: %s may not serve namespace %q: %w", identity.Subject, namespace, dialog.ErrUnauthorized)
	}

	// Negotiate codec.
	codec := s.defaultCodec
	if authReq.Format != "" {
		codec = GetCodec(authReq.Format)
	}

	resp, respErr := NewResponseFrame(authFrame.ID, AuthResponse{
		Format:    codec.Name(),
		Namespace: namespace,
	})
	if respErr != nil {
		return fmt.Errorf("dwp: marshal auth response: %w", respErr)
	}
	if err := handshake.writeJSON(resp); err != nil {
		return err
	}

	w := newWire(conn, ws.StateServerSide, codec)
	remote := newRemoteWorker(w, namespace, s.listTimeout, s.logger)
	connID := s.acceptor.AddConnection(ctx, namespace, remote)
	dwpConn := NewConnection(connID, namespace, identity, codec, w)
	s.conns.Add(dwpConn)

	s.logger.Info("DWP worker authenticated",
		slog.String("conn_id", connID),
		slog.String("subject", identity.Subject),
		slog.String("namespace", namespace),
		slog.String("codec", codec.Name()),
	)

	loopErr := s.readLoop(w, remote, dwpConn)

	remote.close(loopErr)
	s.conns.Remove(connID)
	if err := s.acceptor.RemoveConnection(ctx, connID); err != nil {
		s.logger.Warn("DWP remove connection failed",
			slog.String("conn_id", connID),
			slog.String("error", err.Error()),
		)
	}
	return loopErr
}

// readLoop routes incoming frames until the socket fails or goes idle.
func (s *Server) readLoop(w *wire, remote *RemoteWorker, conn *Connection) error {
	for {
		data, err := w.readRaw(s.idleTimeout)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return fmt.Errorf("dwp: worker %s idle for %s", conn.ID, s.idleTimeout)
			}
			return err
		}

		conn.Touch()

		frame, decErr := w.codec.Decode(data)
		if decErr != nil {
			errFrame := NewErrorFrame("", ErrCodeBadRequest, "invalid frame: "+decErr.Error())
			if writeErr := w.write(errFrame); writeErr != nil {
				s.logger.Warn("failed to write error frame", slog.String("error", writeErr.Error()))
			}
			continue
		}

		switch frame.Type {
		case FramePing:
			if writeErr := w.write(NewPongFrame(frame)); writeErr != nil {
				s.logger.Warn("failed to write pong frame", slog.String("error", writeErr.Error()))
			}
		case FrameResponse, FrameErr:
			if !remote.resolve(frame) {
				s.logger.Debug("dropping uncorrelated frame",
					slog.String("conn_id", conn.ID),
					slog.String("correl_id", frame.CorrelID),
				)
			}
		case FrameRequest:
			errFrame := NewErrorFrame(frame.ID, ErrCodeMethodNotFound, "hub does not serve method: "+frame.Method)
			if writeErr := w.write(errFrame); writeErr != nil {
				s.logger.Warn("failed to write error frame", slog.String("error", writeErr.Error()))
			}
		}
	}
}
