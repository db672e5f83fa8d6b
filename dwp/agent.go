package dwp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gobwas/ws"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/backoff"
	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/worker"
)

// Agent is the worker side of DWP. It dials the hub, authenticates under a
// namespace, answers hub requests through a Handler, pings the hub on a
// fixed interval, and redials with backoff when the socket drops.
type Agent struct {
	url       string
	token     string
	namespace string
	format    string
	heartbeat time.Duration
	backoff   backoff.Strategy
	handler   *Handler
	logger    *slog.Logger
	dialer    ws.Dialer
}

// NewAgent creates an agent that serves conn to the hub at url.
func NewAgent(url string, conn worker.Conn, opts ...AgentOption) *Agent {
	a := &Agent{
		url:       url,
		namespace: id.DefaultNamespace,
		format:    CodecNameJSON,
		heartbeat: 15 * time.Second,
		backoff:   backoff.DefaultStrategy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.handler = NewHandler(conn, a.logger)
	return a
}

// Run connects and serves until ctx is cancelled. It returns nil on
// cancellation and an error wrapping dialog.ErrUnauthorized if the hub
// rejects the credentials.
func (a *Agent) Run(ctx context.Context) error {
	for {
		var w *wire
		err := backoff.Retry(ctx, a.backoff, 0, func(ctx context.Context) error {
			dialed, err := a.dial(ctx)
			if errors.Is(err, dialog.ErrUnauthorized) {
				return backoff.Permanent(err)
			}
			if err != nil {
				a.logger.Warn("hub dial failed",
					slog.String("url", a.url),
					slog.String("error", err.Error()),
				)
				return err
			}
			w = dialed
			return nil
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		a.logger.Info("connected to hub",
			slog.String("url", a.url),
			slog.String("namespace", a.namespace),
			slog.String("codec", w.codec.Name()),
		)

		serveErr := a.serve(ctx, w)
		if ctx.Err() != nil {
			return nil
		}
		a.logger.Warn("hub connection lost, reconnecting", slog.String("error", serveErr.Error()))
		if backoff.Wait(ctx, a.backoff.Delay(1)) != nil {
			return nil
		}
	}
}

// dial opens a socket and completes the auth handshake.
func (a *Agent) dial(ctx context.Context) (*wire, error) {
	conn, _, _, err := a.dialer.Dial(ctx, a.url)
	if err != nil {
		return nil, fmt.Errorf("dwp: dial %s: %w", a.url, err)
	}
	w := newWire(conn, ws.StateClientSide, &JSONCodec{})

	authFrame, err := NewRequestFrame(MethodAuth, AuthRequest{
		Token:     a.token,
		Namespace: a.namespace,
		Format:    a.format,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := w.writeJSON(authFrame); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dwp: auth write: %w", err)
	}

	resp, err := w.readJSON(authTimeout)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dwp: auth read: %w", err)
	}
	if resp.Type == FrameErr {
		conn.Close()
		return nil, ErrorFromDetail(resp.Error)
	}

	var authResp AuthResponse
	if err := json.Unmarshal(resp.Data, &authResp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dwp: auth parse: %w", err)
	}
	w.codec = GetCodec(authResp.Format)
	return w, nil
}

// serve answers hub requests until the socket fails or ctx is cancelled.
func (a *Agent) serve(ctx context.Context, w *wire) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer w.Close()

	// Unblock the read loop on shutdown.
	go func() {
		<-ctx.Done()
		w.Close()
	}()
	go a.heartbeatLoop(ctx, w)

	for {
		// Three missed pongs mean the hub is gone.
		frame, err := w.read(3 * a.heartbeat)
		if err != nil {
			return err
		}

		switch frame.Type {
		case FrameRequest:
			// Continue blocks until the procedure asks its next question,
			// so each request runs on its own goroutine.
			go func() {
				resp := a.handler.Handle(ctx, frame)
				if writeErr := w.write(resp); writeErr != nil {
					a.logger.Warn("failed to write response frame",
						slog.String("method", frame.Method),
						slog.String("error", writeErr.Error()),
					)
				}
			}()
		case FramePong:
		case FrameErr:
			if frame.Error != nil {
				a.logger.Warn("hub reported error", slog.String("message", frame.Error.Message))
			}
		}
	}
}

func (a *Agent) heartbeatLoop(ctx context.Context, w *wire) {
	ticker := time.NewTicker(a.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.write(NewPingFrame()); err != nil {
				a.logger.Warn("hub heartbeat failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
