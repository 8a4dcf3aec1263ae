package api

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/r3d91ll/tempchart/pkg/pipeline"
)

// outbound is one encoded message on its way to every client. Retained
// messages are replayed to clients that connect later.
type outbound struct {
	data   []byte
	retain bool
}

// Hub tracks connected clients and fans chart events out to them. It
// implements pipeline.Notifier. The last chart_completed or chart_failed
// event is replayed to each new client, so a page opened after a run still
// learns its outcome.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	// mu guards clients and retained
	mu       sync.RWMutex
	retained []byte

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub; call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop. All client bookkeeping happens on its goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				c.closeSend()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if h.retained != nil {
				c.offer(h.retained)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client connected (total: %d)", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				c.closeSend()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client disconnected (total: %d)", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			if msg.retain {
				h.retained = msg.data
			}
			for c := range h.clients {
				if !c.offer(msg.data) {
					// a client this far behind is dropped
					c.closeSend()
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and ends Run. It is safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Retained returns the event replayed to new clients, or nil.
func (h *Hub) Retained() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.retained
}

// Broadcast queues msg for every client. It never blocks: when the queue is
// full the message is dropped and logged.
func (h *Hub) Broadcast(msg *WSMessage) error {
	return h.enqueue(msg, false)
}

func (h *Hub) enqueue(msg *WSMessage, retain bool) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{data: data, retain: retain}:
	default:
		log.Printf("[ws] broadcast queue full, dropping %s", msg.Type)
	}
	return nil
}

// Notify broadcasts a pipeline event as a chart_* message. Terminal events
// are retained for replay.
func (h *Hub) Notify(ev pipeline.Event) {
	msg := &WSMessage{
		Type:      string(ev.Kind),
		Data:      NewChartEventData(ev.Result),
		Timestamp: timestamp(),
	}
	if err := h.enqueue(msg, ev.Kind != pipeline.EventStarted); err != nil {
		log.Printf("[ws] failed to encode %s: %v", ev.Kind, err)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
