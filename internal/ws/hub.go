package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

const queueSize = 256

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open connection of an authenticated user.
type Client struct {
	Conn   Conn
	UserID string
}

type envelope struct {
	userIDs map[string]struct{} // nil means everyone
	data    []byte
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, queueSize),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Debug().Str("user_id", client.UserID).Msg("ws client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.outbound:
			h.mutex.Lock()
			for client := range h.clients {
				if msg.userIDs != nil {
					if _, ok := msg.userIDs[client.UserID]; !ok {
						continue
					}
				}
				if err := client.Conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					client.Conn.Close()
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Conn.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Join(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Conn.Close()
	}
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg []byte) {
	h.enqueue(envelope{data: msg})
}

// SendToUsers queues msg for the connections of the given users only.
func (h *Hub) SendToUsers(userIDs []string, msg []byte) {
	if len(userIDs) == 0 {
		return
	}
	set := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		set[id] = struct{}{}
	}
	h.enqueue(envelope{userIDs: set, data: msg})
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// enqueue never blocks the caller; a full queue drops the message.
func (h *Hub) enqueue(e envelope) {
	select {
	case h.outbound <- e:
	default:
		log.Warn().Int("queue", queueSize).Msg("ws queue full, message dropped")
	}
}
