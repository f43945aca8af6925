/*
Package api
File: hub.go
Description:
    The WebSocket Hub fans game state out to every connected client and feeds
    their intents (clicks and purchases) back into the game.

    Architecture:
    - Hub: One per server. Owns the client registry; only Run touches it.
    - Client: One browser or terminal connection, identified by a UUID.
    - ServeWs: Upgrades a GET request to a WebSocket and starts the pumps.
*/

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is the JSON envelope for everything the server sends.
type Message struct {
	Type    string `json:"type"`    // Event type (e.g. "state", "upgrade_purchased")
	Payload any    `json:"payload"` // Event data
	Sender  string `json:"sender"`  // "system" or the originating client id
}

// Inbound is the envelope as read from a client; the payload is decoded per type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Sender  string          `json:"sender"`
}

// SystemSender marks messages that originate from the server.
const SystemSender = "system"

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// IntentHandler receives every well-formed message a client sends.
type IntentHandler func(c *Client, msg Inbound)

// Client is a single connected player.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte // Buffered outbound frames; closed by the hub
}

type direct struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast carries pre-encoded frames for every client.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	direct     chan direct

	handler IntentHandler
	count   atomic.Int64
	done    chan struct{}
}

// NewHub creates a hub that dispatches client messages to handler.
// Run must be started before clients connect.
func NewHub(handler IntentHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan direct, 64),
		handler:    handler,
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// closing every client's send channel so their connections wind down.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			h.drop(client)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			log.Printf("WS: client %s connected (%d online)", client.ID, len(h.clients))
			if data, err := encode(Message{Type: "welcome", Payload: map[string]string{"id": client.ID}, Sender: SystemSender}); err == nil {
				h.deliver(client, data)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Printf("WS: client %s disconnected (%d online)", client.ID, len(h.clients))
			}

		case d := <-h.direct:
			if h.clients[d.client] {
				h.deliver(d.client, d.data)
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		}
	}
}

// deliver queues a frame without blocking; a client whose buffer is full is assumed hung.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("WS: client %s is not keeping up, dropping", c.ID)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish encodes a message and broadcasts it to every client.
// It never blocks once the hub has stopped.
func (h *Hub) Publish(msgType string, payload any) {
	data, err := encode(Message{Type: msgType, Payload: payload, Sender: SystemSender})
	if err != nil {
		log.Printf("WS: encode %s: %v", msgType, err)
		return
	}
	select {
	case h.Broadcast <- data:
	case <-h.done:
	}
}

// Reply sends a message to a single client.
func (h *Hub) Reply(c *Client, msgType string, payload any) {
	data, err := encode(Message{Type: msgType, Payload: payload, Sender: SystemSender})
	if err != nil {
		log.Printf("WS: encode %s: %v", msgType, err)
		return
	}
	select {
	case h.direct <- direct{client: c, data: data}:
	case <-h.done:
	}
}

func encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// upgrader accepts connections from any origin; the REST side is equally open via CORS.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and registers the new client with the hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WS: upgrade error:", err)
		return
	}

	client := &Client{ID: uuid.NewString(), hub: hub, conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump decodes client messages and hands them to the hub's handler.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS: read error from %s: %v", c.ID, err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			log.Printf("WS: malformed message from %s: %s", c.ID, data)
			continue
		}
		msg.Sender = c.ID
		if c.hub.handler != nil {
			c.hub.handler(c, msg)
		}
	}
}

// writePump writes queued frames until the hub closes the send channel.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
