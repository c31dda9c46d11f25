package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents one connected display screen
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	ScreenID string
}

// Hub maintains live screen connections and fans events out to them
type Hub struct {
	Screens    map[string]map[*Client]bool // screenID -> connections
	Broadcast  chan *Event
	Register   chan *Client
	Unregister chan *Client
	Mu         sync.RWMutex
}

// Event is one relay message pushed to screens. An empty ScreenID
// addresses every connected screen.
type Event struct {
	Type      string    `json:"type"`
	ScreenID  string    `json:"screenId,omitempty"`
	GroupID   string    `json:"groupId,omitempty"`
	Session   string    `json:"session,omitempty"`
	Path      string    `json:"path,omitempty"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EVT_IMAGE_READY    = "image.ready"
	EVT_COLLAGE_READY  = "collage.ready"
	EVT_SCREEN_JOINED  = "screen.joined"
	EVT_SCREEN_LEFT    = "screen.left"
	EVT_SWEEP_COMPLETE = "sweep.complete"
)

// NewHub creates a new relay hub
func NewHub() *Hub {
	return &Hub{
		Screens:    make(map[string]map[*Client]bool),
		Broadcast:  make(chan *Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's event processing loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Mu.Lock()
			if h.Screens[client.ScreenID] == nil {
				h.Screens[client.ScreenID] = make(map[*Client]bool)
			}
			h.Screens[client.ScreenID][client] = true
			h.Mu.Unlock()

		case client := <-h.Unregister:
			h.Mu.Lock()
			if clients, ok := h.Screens[client.ScreenID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.Screens, client.ScreenID)
					}
				}
			}
			h.Mu.Unlock()

		case event := <-h.Broadcast:
			for _, client := range h.targets(event) {
				select {
				case client.Send <- mustMarshal(event):
				default:
					close(client.Send)
					h.Mu.Lock()
					delete(h.Screens[client.ScreenID], client)
					h.Mu.Unlock()
				}
			}
		}
	}
}

// targets resolves an event to the clients it addresses.
func (h *Hub) targets(event *Event) []*Client {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	var out []*Client
	if event.ScreenID != "" {
		for client := range h.Screens[event.ScreenID] {
			out = append(out, client)
		}
		return out
	}
	for _, clients := range h.Screens {
		for client := range clients {
			out = append(out, client)
		}
	}
	return out
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
