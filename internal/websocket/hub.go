package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"smartbin-backend/internal/models"
)

// Hub maintains the set of connected dashboard clients and fans events out
// to all of them. Events are fire-and-forget; a slow client gets dropped.
type Hub struct {
	clients map[string]*Client

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// Event is the envelope pushed to dashboards.
type Event struct {
	Type      string      `json:"type"` // "bin_updated" or "alert_created"
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Dashboard connected (%s), %d total", client.ID, h.clientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("🔴 [WEBSOCKET] Dashboard disconnected (%s), %d remaining", client.ID, h.clientCount())

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, id)
					log.Printf("⚠️ Client buffer full, disconnecting: %s", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastEvent(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal %s event: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		log.Printf("⚠️ Broadcast buffer full, dropping %s event", eventType)
	}
}

// BroadcastBinUpdated pushes a bin's new state to every dashboard.
func (h *Hub) BroadcastBinUpdated(bin models.Bin) {
	h.broadcastEvent("bin_updated", bin)
}

// BroadcastAlertCreated pushes a freshly created alert to every dashboard.
func (h *Hub) BroadcastAlertCreated(alert models.Alert) {
	h.broadcastEvent("alert_created", alert)
}
