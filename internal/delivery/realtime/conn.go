package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// CloseReplaced is sent to a connection evicted by a newer login.
	CloseReplaced = 4000
	// CloseAuthFailed is sent when the handshake token is missing or invalid.
	CloseAuthFailed = 4001
)

// Conn is one authenticated socket. Its id is a UUIDv7, so ids of later
// connections sort after earlier ones. Writes go through the send queue and a
// single writer goroutine; control frames may be written from anywhere.
type Conn struct {
	id     string
	userID string
	ws     *websocket.Conn
	send   chan []byte

	alive     atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(userID string, ws *websocket.Conn, buffer int) *Conn {
	c := &Conn{
		id:     uuid.Must(uuid.NewV7()).String(),
		userID: userID,
		ws:     ws,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

func (c *Conn) UserID() string {
	return c.userID
}

// supersededBy reports whether the connection with id connID was opened
// after c.
func (c *Conn) supersededBy(connID string) bool {
	return c.id < connID
}

// enqueue queues data without blocking. It reports false if the connection
// is closed or its queue is full.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Conn) ping(timeout time.Duration) error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout))
}

// closeWith sends a close frame with code and reason, then tears down.
func (c *Conn) closeWith(code int, reason string, timeout time.Duration) {
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(timeout))
	c.terminate()
}

// terminate drops the socket without a close handshake.
func (c *Conn) terminate() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
