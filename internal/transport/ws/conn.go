// Package ws is the Transport Adapter (spec.md §2): a gorilla/websocket
// connection wrapped to satisfy router.Connection, with read/write pump
// goroutines grounded on the teacher's game/websocket.go and
// game/player_actor.go.
package ws

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second

	outboundQueueSize = 64
)

var errOutboundQueueFull = errors.New("websocket outbound queue full")

// Conn adapts a *websocket.Conn to router.Connection (Send/Close), and
// drives two pumps: WritePump serializes every outbound frame plus
// keepalive pings onto the single socket, ReadPump feeds inbound text
// frames to a caller-supplied handler, rate-limited per spec.md §10 /
// SPEC_FULL.md §11 against a misbehaving client hammering commands.
type Conn struct {
	socket  *websocket.Conn
	outbox  chan []byte
	limiter *rate.Limiter
	close   chan struct{}
	closed  bool
}

// New wraps an already-upgraded socket. The pong handler resets the read
// deadline on every keepalive, matching the teacher's
// NewWebsocketConnection.
func New(socket *websocket.Conn) *Conn {
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return &Conn{
		socket: socket,
		outbox: make(chan []byte, outboundQueueSize),
		// one command per 50ms sustained, bursts of 10 - generous enough
		// for legitimate claim-word spam during a fast round, tight enough
		// to bound a misbehaving client (SPEC_FULL.md §11).
		limiter: rate.NewLimiter(20, 10),
		close:   make(chan struct{}),
	}
}

// Send implements router.Connection. It never blocks: a full outbox means
// the client isn't draining fast enough, so the frame is dropped and the
// connection is reported unhealthy to the caller, which disconnects it.
func (c *Conn) Send(data []byte) error {
	select {
	case c.outbox <- data:
		return nil
	case <-c.close:
		return errOutboundQueueFull
	default:
		return errOutboundQueueFull
	}
}

// Close implements router.Connection, safe to call more than once.
func (c *Conn) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.close)
	c.socket.Close()
}

// WritePump owns every write to the socket: outbound frames and
// keepalive pings never interleave from two goroutines, matching the
// teacher's single-writer WritePump discipline.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case data := <-c.outbox:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.close:
			return
		}
	}
}

// ReadPump blocks reading text frames until the socket errors or closes,
// calling onFrame for each one that passes the rate limiter. A frame
// arriving too fast is dropped silently rather than disconnecting the
// session - a burst of commands is a client being eager, not a reason to
// kick them (spec.md §7 isolates a misbehaving session, it doesn't
// terminate it for flooding alone). onClose runs exactly once, whatever
// the reason the loop ended.
func (c *Conn) ReadPump(onFrame func(frame string), onClose func()) {
	defer onClose()
	defer c.Close()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		onFrame(string(data))
	}
}
