package history

import (
	"context"
	"errors"
)

const (
	// DefaultKey is the list key holding recent messages.
	DefaultKey = "messages"

	// DefaultCap is how many messages the log retains.
	DefaultCap = 20

	// DefaultReplay is how many messages are replayed to a newcomer.
	DefaultReplay = 10
)

// ErrStoreUnavailable wraps any backend failure. Callers treat append
// failures as non-fatal (the live broadcast still happens) and read
// failures as an empty history.
var ErrStoreUnavailable = errors.New("message store unavailable")

// StoredMessage is one entry in the recent-message log. Name is the
// sender's display name at send time; later renames do not rewrite it.
type StoredMessage struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Store is a bounded, ordered log of recent messages. Entries are kept
// newest-first up to the cap; Append trims as part of the same call.
type Store interface {
	// Append pushes a message to the head of the log and trims the
	// log to the configured cap.
	Append(ctx context.Context, name, data string) error

	// RecentOldestFirst returns up to n of the most recent messages
	// in chronological order, oldest of the batch first, so a replay
	// renders top to bottom.
	RecentOldestFirst(ctx context.Context, n int) ([]StoredMessage, error)

	// Trim re-enforces the cap. Append already trims; this exists for
	// the background janitor to repair the log if an external writer
	// grew it.
	Trim(ctx context.Context) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
