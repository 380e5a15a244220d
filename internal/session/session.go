package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/AlanDeLonga/chatroom/internal/events"
	"github.com/AlanDeLonga/chatroom/internal/roster"
)

// State of one connection's lifecycle. Disconnected is terminal; a new
// physical connection always starts over at Connecting.
type State int

const (
	StateConnecting State = iota
	StateJoined
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateDisconnected:
		return "disconnected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is the per-connection mediator. Its mutex serializes the
// connection's own lifecycle; shared state is serialized by the
// Manager and the Roster.
type Session struct {
	manager *Manager
	id      string

	mu    sync.Mutex
	state State
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Join registers the client in the roster, replays recent history to
// it alone, and announces the new connection to everyone. A duplicate
// session id aborts before anything is sent.
func (s *Session) Join(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting {
		return fmt.Errorf("join in state %s", s.state)
	}

	m := s.manager

	// Fetch the replay batch before taking the publish lock; the
	// store may block on network I/O.
	replay, err := m.store.RecentOldestFirst(ctx, m.replay)
	if err != nil {
		log.Printf("History replay unavailable for %s: %v", s.id, err)
		replay = nil
	}

	m.publish.Lock()
	snapshot, err := m.roster.Join(s.id, name)
	if err != nil {
		m.publish.Unlock()
		return err
	}

	// Replay lands on the client's channel ahead of the roster
	// announcement below, so the newcomer renders history first.
	for _, msg := range replay {
		m.bc.Unicast(s.id, events.IncomingMessage, events.IncomingMessagePayload{
			Name:    msg.Name,
			Message: msg.Data,
		})
	}

	m.bc.BroadcastAll(events.NewConnection, events.NewConnectionPayload{
		Participants: snapshot,
		NewUser:      name,
	})
	m.publish.Unlock()

	s.state = StateJoined
	return nil
}

// Rename updates the display name and announces the change. The old
// name in the announcement comes from the roster, not from whatever
// the client claimed. A rename for a session the roster does not know
// is dropped without an announcement.
func (s *Session) Rename(newName, claimedOldName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateJoined {
		return fmt.Errorf("rename in state %s", s.state)
	}

	m := s.manager

	m.publish.Lock()
	oldName, _, err := m.roster.Rename(s.id, newName)
	if err != nil {
		m.publish.Unlock()
		if errors.Is(err, roster.ErrUnknownSession) {
			log.Printf("Rename for unknown session %s dropped", s.id)
			return nil
		}
		return err
	}

	if claimedOldName != "" && claimedOldName != oldName {
		log.Printf("Client %s claimed old name %q, roster says %q", s.id, claimedOldName, oldName)
	}

	m.bc.BroadcastAll(events.NameChanged, events.NameChangedPayload{
		ID:      s.id,
		Name:    newName,
		OldName: oldName,
	})
	m.publish.Unlock()

	return nil
}

// Disconnect removes the client from the roster and announces the
// departure. Safe to call from any state and idempotent: a disconnect
// racing a mid-flight join still produces at most one leave and one
// announcement. A session that never completed Join leaves silently.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return
	}
	s.state = StateDisconnected

	m := s.manager

	m.publish.Lock()
	removed, found, snapshot := m.roster.Leave(s.id)
	if found {
		m.bc.BroadcastAll(events.UserDisconnected, events.UserDisconnectedPayload{
			ID:           s.id,
			Username:     removed.Name,
			Participants: snapshot,
		})
	}
	m.publish.Unlock()

	if !found {
		log.Printf("Session %s disconnected before joining, nothing to announce", s.id)
	}
}
