package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/config"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// Client is one websocket connection. Identity and SessionID are zero
// until the auth frame is accepted; Bind must not be called before then.
//
// Send is never closed: writers race with hub eviction, so teardown is
// signalled through done instead. The write pump and SendMessage both
// select on done.
type Client struct {
	ID        string
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	Identity  *domain.Identity
	SessionID string
	config    config.WebSocketConfig

	done      chan struct{}
	mu        sync.RWMutex
	closeOnce sync.Once
	onClose   func()
	onPong    func()
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	bufSize := cfg.SendBufferSize
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Client{
		ID:     id,
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, bufSize),
		done:   make(chan struct{}),
		config: cfg,
	}
}

// Authenticate attaches the verified identity and session to the client.
func (c *Client) Authenticate(identity domain.Identity, sessionID string) {
	c.mu.Lock()
	c.Identity = &identity
	c.SessionID = sessionID
	c.mu.Unlock()
}

// UserID returns the bound user id, or empty before authentication.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Identity == nil {
		return ""
	}
	return c.Identity.UserID
}

// OnClose registers a teardown hook, invoked exactly once when the
// connection dies regardless of which pump notices first.
func (c *Client) OnClose(fn func()) {
	c.onClose = fn
}

// OnPong registers a hook invoked on every pong. Pongs count as
// liveness just like explicit heartbeat frames.
func (c *Client) OnPong(fn func()) {
	c.onPong = fn
}

// Closed reports whether the connection has been torn down.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// close tears the connection down from a pump and tells the hub to drop
// it from the registry.
func (c *Client) close() {
	c.Hub.Unregister(c)
	c.shutdown()
}

// shutdown releases the connection without touching the hub, so the hub
// loop itself may call it. Idempotent.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			c.Conn.Close()
		}
		if c.onClose != nil {
			c.onClose()
		}
	})
}

// ReadPump reads frames until the connection dies, invoking handler for
// each one. Pong responses refresh the read deadline.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer c.close()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		if c.onPong != nil {
			c.onPong()
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Debug().Err(err).Str("client_id", c.ID).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

// WritePump drains Send and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a payload on this connection without blocking.
// Safe to call from any goroutine at any point in the connection
// lifecycle; messages for a torn-down or full connection are dropped.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case c.Send <- data:
	default:
	}
	return nil
}
