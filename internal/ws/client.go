package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AlanDeLonga/chatroom/internal/events"
	"github.com/AlanDeLonga/chatroom/internal/ratelimit"
	"github.com/AlanDeLonga/chatroom/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client pumps one websocket connection. Reads are dispatched to the
// connection's Session; writes drain the send channel the Hub fills.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	id      string
	session *session.Session
	limiter *ratelimit.Limiter
}

// ServeWs upgrades an HTTP request, assigns the connection its session
// id, and starts the pumps. The client learns its id from the
// "connected" event, which is queued before registration so nothing
// can precede it.
func ServeWs(hub *Hub, manager *session.Manager, eventRate float64, eventBurst int, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	id := uuid.NewString()
	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		id:      id,
		session: manager.Connect(id),
		limiter: ratelimit.NewLimiter(eventRate, eventBurst),
	}

	if data, err := events.Marshal(events.Connected, events.ConnectedPayload{ID: id}); err == nil {
		client.send <- data
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.session.Disconnect()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error from %s: %v", c.id, err)
			}
			break
		}

		if !c.limiter.Allow() {
			log.Printf("Client %s exceeded event rate, frame dropped", c.id)
			continue
		}

		c.dispatch(raw)
	}
}

// dispatch routes one inbound frame to the session. Malformed frames
// and frames arriving in the wrong lifecycle state are logged and
// dropped; channel errors never reach the client.
func (c *Client) dispatch(raw []byte) {
	var env events.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Malformed frame from %s: %v", c.id, err)
		return
	}

	switch env.Event {
	case events.NewUser:
		var payload events.NewUserPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			log.Printf("Malformed newUser from %s: %v", c.id, err)
			return
		}
		// The transport-assigned id is authoritative; payload.ID
		// is only the client echoing it back.
		if err := c.session.Join(context.Background(), payload.Name); err != nil {
			log.Printf("Join rejected for %s: %v", c.id, err)
		}

	case events.NameChange:
		var payload events.NameChangePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			log.Printf("Malformed nameChange from %s: %v", c.id, err)
			return
		}
		if err := c.session.Rename(payload.Name, payload.OldName); err != nil {
			log.Printf("Rename rejected for %s: %v", c.id, err)
		}

	default:
		log.Printf("Unknown event %q from %s", env.Event, c.id)
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
