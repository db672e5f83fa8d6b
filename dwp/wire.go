package dwp

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// wire frames one WebSocket connection with a negotiated codec. Reads must
// come from a single goroutine; writes are serialized.
type wire struct {
	conn  net.Conn
	side  ws.State
	codec Codec
	wmu   sync.Mutex
}

func newWire(conn net.Conn, side ws.State, codec Codec) *wire {
	return &wire{conn: conn, side: side, codec: codec}
}

// write encodes f with the negotiated codec.
func (w *wire) write(f *Frame) error {
	data, err := w.codec.Encode(f)
	if err != nil {
		return err
	}
	w.wmu.Lock()
	defer w.wmu.Unlock()
	return wsutil.WriteMessage(w.conn, w.side, w.codec.OpCode(), data)
}

// writeJSON encodes f as JSON regardless of codec. Auth frames use it.
func (w *wire) writeJSON(f *Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	w.wmu.Lock()
	defer w.wmu.Unlock()
	return wsutil.WriteMessage(w.conn, w.side, ws.OpText, data)
}

// read returns the next data frame. A zero timeout disables the deadline.
func (w *wire) read(timeout time.Duration) (*Frame, error) {
	data, err := w.readRaw(timeout)
	if err != nil {
		return nil, err
	}
	return w.codec.Decode(data)
}

// readJSON reads the next frame as JSON regardless of codec.
func (w *wire) readJSON(timeout time.Duration) (*Frame, error) {
	data, err := w.readRaw(timeout)
	if err != nil {
		return nil, err
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (w *wire) readRaw(timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := w.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	data, _, err := wsutil.ReadData(w.conn, w.side)
	return data, err
}

func (w *wire) Close() error { return w.conn.Close() }
