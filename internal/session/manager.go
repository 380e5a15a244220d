// Package session mediates between client events and the shared
// roster, message history, and broadcaster. One Manager serves the
// whole process; one Session is created per live connection.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AlanDeLonga/chatroom/internal/events"
	"github.com/AlanDeLonga/chatroom/internal/history"
	"github.com/AlanDeLonga/chatroom/internal/roster"
)

// ErrInvalidMessage is returned for messages that are empty or
// whitespace-only after trimming. Nothing is stored or broadcast.
var ErrInvalidMessage = errors.New("message is invalid")

// Broadcaster fans events out to connected clients. Delivery is
// fire-and-forget; a slow or broken client is the transport's problem.
type Broadcaster interface {
	// BroadcastAll delivers to every connected client, the
	// originator included.
	BroadcastAll(event string, payload any)

	// Unicast delivers to a single client. Used only for history
	// replay on join.
	Unicast(id string, event string, payload any)
}

// Manager owns the shared chat state and hands out per-connection
// Sessions.
type Manager struct {
	roster *roster.Roster
	store  history.Store
	bc     Broadcaster
	replay int

	// publish serializes roster mutation + broadcast enqueue so
	// fan-out order always matches mutation order. History I/O is
	// never performed while holding it.
	publish sync.Mutex

	totalMessages uint64
	started       time.Time
}

func NewManager(r *roster.Roster, store history.Store, bc Broadcaster, replay int) *Manager {
	if replay <= 0 {
		replay = history.DefaultReplay
	}
	return &Manager{
		roster:  r,
		store:   store,
		bc:      bc,
		replay:  replay,
		started: time.Now(),
	}
}

// Connect creates the Session for a freshly accepted connection. No
// broadcast happens yet; the client announces itself via Join.
func (m *Manager) Connect(id string) *Session {
	return &Session{
		manager: m,
		id:      id,
		state:   StateConnecting,
	}
}

// PostMessage validates, stores, and broadcasts an outgoing chat
// message. It deliberately requires no session: the HTTP side-channel
// carries the sender name in the request, mirroring the original
// protocol, so posting without having joined is allowed.
func (m *Manager) PostMessage(ctx context.Context, name, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidMessage
	}

	// A store outage must not silence the room: log and keep going,
	// the message just won't appear in replays.
	if err := m.store.Append(ctx, name, text); err != nil {
		log.Printf("History append failed, broadcasting anyway: %v", err)
	}

	m.bc.BroadcastAll(events.IncomingMessage, events.IncomingMessagePayload{
		Name:    name,
		Message: text,
	})

	atomic.AddUint64(&m.totalMessages, 1)
	return nil
}

// Participants returns the current roster in join order.
func (m *Manager) Participants() []roster.Participant {
	return m.roster.Snapshot()
}

// Stats is a point-in-time view for the stats endpoint.
type Stats struct {
	Participants  int    `json:"participants"`
	TotalMessages uint64 `json:"total_messages"`
	Uptime        string `json:"uptime"`
}

func (m *Manager) Stats() Stats {
	return Stats{
		Participants:  m.roster.Count(),
		TotalMessages: atomic.LoadUint64(&m.totalMessages),
		Uptime:        time.Since(m.started).Round(time.Second).String(),
	}
}
