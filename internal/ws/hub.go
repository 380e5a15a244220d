package ws

import (
	"log"
	"sync"

	"github.com/AlanDeLonga/chatroom/internal/events"
)

// Hub tracks active clients and fans events out to them. All fan-out
// flows through the single Run loop, which is what gives broadcasts a
// stable order: events enqueued first are delivered first, to every
// client.
type Hub struct {
	// Connected clients by session id
	clients map[string]*Client

	// Outbound events awaiting fan-out
	broadcast chan outbound

	// Register requests from new connections
	register chan *Client

	// Unregister requests from dying connections
	unregister chan *Client

	mu sync.RWMutex
}

type outbound struct {
	event   string
	payload any
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()

			log.Printf("Client %s connected (total: %d)", client.id, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("Client %s disconnected (remaining: %d)", client.id, len(h.clients))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := events.Marshal(msg.event, msg.payload)
			if err != nil {
				log.Printf("Dropping unmarshalable %s broadcast: %v", msg.event, err)
				continue
			}

			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// A client that can't drain its buffer
					// must not stall the room.
					close(client.send)
					delete(h.clients, id)
					log.Printf("Client %s dropped (send buffer full)", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastAll queues an event for delivery to every connected client,
// the originator included. Fire-and-forget.
func (h *Hub) BroadcastAll(event string, payload any) {
	h.broadcast <- outbound{event: event, payload: payload}
}

// Unicast delivers an event to one client, bypassing the broadcast
// queue. Used for history replay, which must land on the newcomer's
// channel ahead of any broadcast enqueued after it.
func (h *Hub) Unicast(id string, event string, payload any) {
	data, err := events.Marshal(event, payload)
	if err != nil {
		log.Printf("Dropping unmarshalable %s unicast: %v", event, err)
		return
	}

	// Hold the read lock across the send: send channels are only
	// closed under the write lock, so this cannot race a close.
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[id]
	if !ok {
		log.Printf("Unicast %s to unknown client %s dropped", event, id)
		return
	}

	select {
	case client.send <- data:
	default:
		log.Printf("Unicast %s to client %s dropped (send buffer full)", event, id)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
