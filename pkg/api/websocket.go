package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // below pongWait so the peer never times out
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// SetUpgraderCheckOrigin replaces the origin check used for upgrades. The
// server installs its CORS origin set here.
func SetUpgraderCheckOrigin(fn func(*http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// Client is one websocket connection. The hub writes to send; the write
// pump drains it onto the connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// mu guards send against writes after closeSend
	mu     sync.Mutex
	closed bool
}

// NewClient creates a client for conn attached to hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufferSize)}
}

// readPump reads client frames until the connection fails, then detaches
// the client from the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
		c.handleMessage(frame)
	}
}

// handleMessage answers a client frame. Chart events only flow from the
// server, so the one request a client can make is an application ping.
func (c *Client) handleMessage(frame []byte) {
	var msg WSMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.queue(errorMessage("invalid_json", "Failed to parse message"))
		return
	}
	if msg.Type == EventTypePing {
		c.queue(&WSMessage{Type: EventTypePong, Timestamp: timestamp()})
		return
	}
	log.Printf("[ws] unknown message type: %s", msg.Type)
	c.queue(errorMessage("unknown_type", "Unsupported message type: "+msg.Type))
}

func (c *Client) queue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.offer(data)
}

// offer hands data to the write pump without blocking. It reports false
// when the send buffer is full.
func (c *Client) offer(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump writes queued messages, one JSON document per frame, and pings
// the peer on an interval. It sends a close frame once send is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WebSocketHandler upgrades GET /ws and attaches the connection to a hub.
type WebSocketHandler struct {
	hub *Hub
}

// NewWebSocketHandler creates a handler feeding hub.
func NewWebSocketHandler(hub *Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeHTTP implements http.Handler.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed id=%s: %v", RequestIDFrom(r.Context()), err)
		return
	}

	client := NewClient(h.hub, conn)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// RegisterRoutes mounts the websocket endpoint at /ws.
func (h *WebSocketHandler) RegisterRoutes(router *Router) {
	router.GET("/ws", h.ServeHTTP)
}
