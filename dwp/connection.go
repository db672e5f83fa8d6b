package dwp

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Connection represents an authenticated worker session on the hub.
type Connection struct {
	// ID is the hub connection id.
	ID string

	// Namespace is the namespace the worker registered under.
	Namespace string

	// Identity is the authenticated identity for this connection.
	Identity *Identity

	// Codec is the negotiated wire format.
	Codec Codec

	// ConnectedAt records when the connection was established.
	ConnectedAt time.Time

	// LastActivity tracks the most recent frame received.
	LastActivity atomic.Value // time.Time

	closer io.Closer
}

// NewConnection creates a connection record.
func NewConnection(id, namespace string, identity *Identity, codec Codec, closer io.Closer) *Connection {
	c := &Connection{
		ID:          id,
		Namespace:   namespace,
		Identity:    identity,
		Codec:       codec,
		ConnectedAt: time.Now().UTC(),
		closer:      closer,
	}
	c.LastActivity.Store(time.Now().UTC())
	return c
}

// Touch updates the last activity timestamp.
func (c *Connection) Touch() {
	c.LastActivity.Store(time.Now().UTC())
}

// Idle returns how long ago the last frame arrived.
func (c *Connection) Idle() time.Duration {
	last, _ := c.LastActivity.Load().(time.Time) //nolint:errcheck // always stores time.Time
	return time.Since(last)
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// ConnectionManager tracks active worker sessions.
type ConnectionManager struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

// NewConnectionManager creates an empty connection manager.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		conns: make(map[string]*Connection),
	}
}

// Add registers a new connection.
func (cm *ConnectionManager) Add(conn *Connection) {
	cm.mu.Lock()
	cm.conns[conn.ID] = conn
	cm.mu.Unlock()
}

// Remove unregisters a connection.
func (cm *ConnectionManager) Remove(connID string) {
	cm.mu.Lock()
	delete(cm.conns, connID)
	cm.mu.Unlock()
}

// Get returns a connection by ID.
func (cm *ConnectionManager) Get(connID string) (*Connection, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, ok := cm.conns[connID]
	return c, ok
}

// Count returns the number of active connections.
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.conns)
}

// All returns a snapshot of all connections.
func (cm *ConnectionManager) All() []*Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	out := make([]*Connection, 0, len(cm.conns))
	for _, c := range cm.conns {
		out = append(out, c)
	}
	return out
}
