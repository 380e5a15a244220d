package history

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store with the same head-first list
// semantics as the Redis backend. It backs tests and deployments that
// run without Redis; history then survives only as long as the process.
type MemoryStore struct {
	mu       sync.Mutex
	messages []StoredMessage // index 0 is the newest entry
	cap      int
}

func NewMemoryStore(cap int) *MemoryStore {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &MemoryStore{cap: cap}
}

func (s *MemoryStore) Append(_ context.Context, name, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append([]StoredMessage{{Name: name, Data: data}}, s.messages...)
	if len(s.messages) > s.cap {
		s.messages = s.messages[:s.cap]
	}
	return nil
}

func (s *MemoryStore) RecentOldestFirst(_ context.Context, n int) ([]StoredMessage, error) {
	if n <= 0 {
		n = DefaultReplay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.messages) {
		n = len(s.messages)
	}

	result := make([]StoredMessage, n)
	for i := 0; i < n; i++ {
		result[i] = s.messages[n-1-i]
	}
	return result, nil
}

func (s *MemoryStore) Trim(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) > s.cap {
		s.messages = s.messages[:s.cap]
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
