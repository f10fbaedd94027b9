// Package ws carries a live session over a websocket: client commands in,
// snapshots out.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Upgrader accepts any origin; the game is served same-host.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client pumps one websocket connection for one session runner.
type Client struct {
	conn   *websocket.Conn
	runner *services.SessionRunner
	send   chan []byte
	closed chan struct{}
	log    *logger.Logger
}

// NewClient returns a client that can buffer updates before it is attached.
func NewClient(log *logger.Logger) *Client {
	return &Client{
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
		log:    log.WithPrefix("ws"),
	}
}

// Attach binds the connection and runner and starts both pumps.
func (c *Client) Attach(conn *websocket.Conn, runner *services.SessionRunner) {
	c.conn = conn
	c.runner = runner
	go c.writePump()
	go c.readPump()
}

// Push is the runner's sink. A slow client misses frames rather than
// stalling the session.
func (c *Client) Push(up services.Update) {
	typ := MessageTypeSnapshot
	payload := SnapshotPayload{Snapshot: up.Snapshot, Error: errorPayload(up.Err)}
	if !c.enqueue(Message{Type: typ, Payload: payload}) {
		c.log.Debug("send buffer full, dropped %s", typ)
	}
}

func (c *Client) enqueue(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("failed to marshal %s: %v", msg.Type, err)
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(err error) {
	c.enqueue(Message{Type: MessageTypeError, Payload: errorPayload(err)})
}

func (c *Client) readPump() {
	defer func() {
		close(c.closed)
		c.runner.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read error: %v", err)
			}
			return
		}

		cmd, ping, err := Decode(data)
		if err != nil {
			c.sendError(err)
			continue
		}
		if ping {
			c.enqueue(Message{Type: MessageTypePong})
			continue
		}
		if err := c.runner.Send(cmd); err != nil {
			c.log.Warn("command %s dropped: %v", cmd.Type, err)
			c.sendError(errors.NewBusyError("session is not keeping up", err))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("websocket write failed: %v", err)
				return
			}

		case <-c.closed:
			return

		case <-c.runner.Done():
			c.drain()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain flushes what the runner pushed before it stopped.
func (c *Client) drain() {
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
