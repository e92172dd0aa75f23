package fabric

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	pingPeriod  = 30 * time.Second
	pongWait    = 60 * time.Second
	maxFrameLen = 1 << 20 // 1MB payload cap
)

// Connection wraps a websocket and coordinates outbound writes via a
// buffered channel. It implements Subscriber: fabric deliveries are queued
// on a second buffered channel and drained by the connection's own handler
// goroutine, so a single connection processes events strictly sequentially
// while many connections run in parallel.
type Connection struct {
	UserID string
	Token  string // raw handshake token, kept for downstream protocol needs

	id     string
	ws     *websocket.Conn
	send   chan []byte
	events chan Envelope
	once   sync.Once
	closed chan struct{}

	// Set inside once before closed is closed; the write loop reads them
	// after observing closed, so no further synchronization is needed.
	closeCode   int
	closeReason string
}

// NewConnection constructs a Connection for the given user. UserID is empty
// for anonymous connections; Token carries the raw handshake token verbatim.
func NewConnection(userID, token string, ws *websocket.Conn) *Connection {
	return &Connection{
		UserID: userID,
		Token:  token,
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan []byte, 128),
		events: make(chan Envelope, 64),
		closed: make(chan struct{}),
	}
}

// ID returns the connection's unique identifier within the fabric.
func (c *Connection) ID() string { return c.id }

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Deliver enqueues a fabric envelope for the connection's handler goroutine.
// If the client is slow and the buffer is full, the connection is closed to
// keep backpressure bounded.
func (c *Connection) Deliver(env Envelope) {
	select {
	case <-c.closed:
	case c.events <- env:
	default:
		c.Close(websocket.CloseGoingAway, "event buffer full")
	}
}

// Events exposes the queued fabric deliveries for the handler goroutine.
func (c *Connection) Events() <-chan Envelope { return c.events }

// Done is closed when the connection is torn down.
func (c *Connection) Done() <-chan struct{} { return c.closed }

// Send enqueues payload for delivery. If the client is slow and the buffer
// is full, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close asks the write loop to tear the connection down. Frames already
// queued via Send are flushed before the close frame goes out, so a final
// diagnostic enqueued just before Close still reaches the client. The send
// channel stays open; late Send calls are rejected or harmlessly buffered.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.closed)
	})
}

// ReadFrames pumps inbound text frames into the returned channel from a
// dedicated goroutine, closing it when the socket errors or closes. This
// lets the connection's handler goroutine select over client frames and
// fabric deliveries, keeping per-connection processing sequential.
func (c *Connection) ReadFrames() <-chan []byte {
	frames := make(chan []byte)
	c.ws.SetReadLimit(maxFrameLen)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(frames)
		for {
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				return
			}
			select {
			case frames <- data:
			case <-c.closed:
				return
			}
		}
	}()
	return frames
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.ws.Close()

	for {
		select {
		case <-c.closed:
			c.flushAndCloseFrame()
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

// flushAndCloseFrame drains the send buffer, then writes the close frame
// recorded by Close.
func (c *Connection) flushAndCloseFrame() {
	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		default:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(c.closeCode, c.closeReason), time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
