package roster

import (
	"errors"
	"sync"
)

var (
	// ErrDuplicateSession is returned by Join when the session id is
	// already present. The transport assigns unique ids per connection,
	// so this indicates a transport bug rather than a user mistake.
	ErrDuplicateSession = errors.New("session id already joined")

	// ErrUnknownSession is returned by Rename when the session id is
	// not in the roster.
	ErrUnknownSession = errors.New("session id not found")
)

// A connected chat participant. The id is assigned by the transport at
// connect time and never changes; the name changes on rename.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Roster is the single source of truth for who is currently connected.
// It lives in memory only: a process restart empties it while clients
// may still hold transport-level connections, which is why Leave treats
// an unknown id as a phantom rather than an error.
type Roster struct {
	mu           sync.Mutex
	participants []Participant
}

func New() *Roster {
	return &Roster{
		participants: make([]Participant, 0),
	}
}

// Adds a participant and returns the post-insert list for broadcast.
// The name may be empty; clients announce a name later via rename.
func (r *Roster) Join(id, name string) ([]Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.participants {
		if p.ID == id {
			return nil, ErrDuplicateSession
		}
	}

	r.participants = append(r.participants, Participant{ID: id, Name: name})
	return r.snapshotLocked(), nil
}

// Updates a participant's name in place and returns the prior name
// together with the unchanged membership list.
func (r *Roster) Rename(id, newName string) (string, []Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			oldName := r.participants[i].Name
			r.participants[i].Name = newName
			return oldName, r.snapshotLocked(), nil
		}
	}
	return "", nil, ErrUnknownSession
}

// Removes a participant and returns the removed entry plus the
// post-removal list. found is false when the id was never in the
// roster (a phantom disconnect, e.g. after a server restart); callers
// use that to suppress the leave announcement.
func (r *Roster) Leave(id string) (removed Participant, found bool, snapshot []Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.participants {
		if p.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return p, true, r.snapshotLocked()
		}
	}
	return Participant{}, false, r.snapshotLocked()
}

// Snapshot returns a copy of the participant list in join order.
func (r *Roster) Snapshot() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Roster) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

func (r *Roster) snapshotLocked() []Participant {
	snapshot := make([]Participant, len(r.participants))
	copy(snapshot, r.participants)
	return snapshot
}
