package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreAppendCap(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		if err := store.Append(ctx, "sender", fmt.Sprintf("message-%d", i)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	// Only the last 20 survive, oldest 5 evicted, relative order kept
	messages, err := store.RecentOldestFirst(ctx, 20)
	if err != nil {
		t.Fatalf("RecentOldestFirst failed: %v", err)
	}
	if len(messages) != 20 {
		t.Fatalf("Expected 20 retained messages, got %d", len(messages))
	}
	for i, msg := range messages {
		want := fmt.Sprintf("message-%d", i+6)
		if msg.Data != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, msg.Data)
		}
	}
}

func TestMemoryStoreReplayOrder(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		store.Append(ctx, "sender", fmt.Sprintf("message-%d", i))
	}

	messages, err := store.RecentOldestFirst(ctx, 10)
	if err != nil {
		t.Fatalf("RecentOldestFirst failed: %v", err)
	}
	if len(messages) != 10 {
		t.Fatalf("Expected 10 messages, got %d", len(messages))
	}
	if messages[0].Data != "message-3" {
		t.Errorf("Expected oldest of batch 'message-3' first, got %q", messages[0].Data)
	}
	if messages[9].Data != "message-12" {
		t.Errorf("Expected newest 'message-12' last, got %q", messages[9].Data)
	}
}

func TestMemoryStoreReplayFewerThanRequested(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	store.Append(ctx, "alice", "hello")
	store.Append(ctx, "bob", "hi")

	messages, err := store.RecentOldestFirst(ctx, 10)
	if err != nil {
		t.Fatalf("RecentOldestFirst failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Name != "alice" || messages[1].Name != "bob" {
		t.Errorf("Unexpected order: %+v", messages)
	}
}

func TestMemoryStoreEmpty(t *testing.T) {
	store := NewMemoryStore(20)

	messages, err := store.RecentOldestFirst(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentOldestFirst on empty store failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("Expected empty replay, got %d messages", len(messages))
	}
}

func TestMemoryStoreNamesAreSnapshots(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	store.Append(ctx, "Bob", "first")
	store.Append(ctx, "Robert", "second")

	messages, _ := store.RecentOldestFirst(ctx, 10)
	if messages[0].Name != "Bob" {
		t.Errorf("Stored name must not change retroactively, got %q", messages[0].Name)
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(ctx, "sender", fmt.Sprintf("message-%d", i))
		}(i)
	}
	wg.Wait()

	messages, err := store.RecentOldestFirst(ctx, 20)
	if err != nil {
		t.Fatalf("RecentOldestFirst failed: %v", err)
	}
	if len(messages) != 20 {
		t.Errorf("Cap violated under concurrent appends: %d entries", len(messages))
	}
}

func TestJanitorTrims(t *testing.T) {
	store := NewMemoryStore(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Append(ctx, "sender", fmt.Sprintf("message-%d", i))
	}
	// Grow the list behind the store's back, as an external writer would
	store.mu.Lock()
	store.messages = append(store.messages, StoredMessage{Name: "x", Data: "overflow"})
	store.mu.Unlock()

	janitor := NewJanitor(store, 10*time.Millisecond)
	janitor.Start()
	time.Sleep(50 * time.Millisecond)
	janitor.Stop()

	messages, _ := store.RecentOldestFirst(ctx, 100)
	if len(messages) != 5 {
		t.Errorf("Expected janitor to restore cap of 5, got %d entries", len(messages))
	}
}
