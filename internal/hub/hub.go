package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/config"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// Hub owns every live websocket client on this instance. Clients are
// indexed twice: by client id for lifecycle, and by user id for
// fan-out, since one user may hold several concurrent connections.
type Hub struct {
	clients     map[string]*Client            // clientID -> client
	userClients map[string]map[string]*Client // userID -> clientID -> client
	register    chan *Client
	unregister  chan *Client
	broadcast   chan *UserMessage
	mu          sync.RWMutex
}

// UserMessage targets every live connection of the named users.
type UserMessage struct {
	UserIDs []string
	Message []byte
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	bufSize := cfg.SendBufferSize
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Hub{
		clients:     make(map[string]*Client),
		userClients: make(map[string]map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *UserMessage, bufSize),
	}
}

// Run processes registration and fan-out until ctx is cancelled.
// Messages queued for the same user pass through the single broadcast
// channel, so enqueue order is delivery order.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str("client_id", client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				if userID := client.UserID(); userID != "" {
					if ucs, ok := h.userClients[userID]; ok {
						delete(ucs, client.ID)
						if len(ucs) == 0 {
							delete(h.userClients, userID)
						}
					}
				}
				delete(h.clients, client.ID)
			}
			h.mu.Unlock()
			// Never close client.Send here: the read pump and the auth
			// timer still hold it. Signal teardown through done instead.
			client.shutdown()
			l := log.L()
			l.Debug().Str("client_id", client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, userID := range msg.UserIDs {
				for _, client := range h.userClients[userID] {
					select {
					case client.Send <- msg.Message:
					default:
						// Slow consumer; drop the connection rather
						// than block delivery to everyone else.
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Bind indexes an authenticated client under its user id. Fan-out only
// reaches bound clients; an unauthenticated connection receives nothing.
func (h *Hub) Bind(client *Client) {
	userID := client.UserID()
	if userID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.userClients[userID]; !ok {
		h.userClients[userID] = make(map[string]*Client)
	}
	h.userClients[userID][client.ID] = client
	l := log.L()
	l.Info().Str("client_id", client.ID).Str(log.FieldUserID, userID).Msg("client bound to user")
}

// NotifyUsers queues a payload for every live connection of the given
// users. Delivery is best-effort, at most once per connection; users
// with no live connection are skipped.
func (h *Hub) NotifyUsers(userIDs []string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &UserMessage{
		UserIDs: userIDs,
		Message: data,
	}
	return nil
}

// ConnectionCount returns the number of live connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
