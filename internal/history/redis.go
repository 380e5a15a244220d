package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the message log in a Redis list, newest entry at
// the head. Layout: LPUSH on append, LTRIM 0 cap-1 to enforce the cap,
// LRANGE 0 n-1 plus a reverse for chronological replay.
type RedisStore struct {
	client *redis.Client
	key    string
	cap    int64
}

func NewRedisStore(client *redis.Client, key string, cap int) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	if cap <= 0 {
		cap = DefaultCap
	}
	return &RedisStore{
		client: client,
		key:    key,
		cap:    int64(cap),
	}
}

func (s *RedisStore) Append(ctx context.Context, name, data string) error {
	payload, err := json.Marshal(StoredMessage{Name: name, Data: data})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := s.client.LPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("%w: lpush: %v", ErrStoreUnavailable, err)
	}
	if err := s.client.LTrim(ctx, s.key, 0, s.cap-1).Err(); err != nil {
		return fmt.Errorf("%w: ltrim: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) RecentOldestFirst(ctx context.Context, n int) ([]StoredMessage, error) {
	if n <= 0 {
		n = DefaultReplay
	}

	raw, err := s.client.LRange(ctx, s.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: lrange: %v", ErrStoreUnavailable, err)
	}

	// The list head is the newest message; walk backwards so the
	// oldest of the batch comes first.
	messages := make([]StoredMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg StoredMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			log.Printf("Skipping corrupt history entry: %v", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisStore) Trim(ctx context.Context) error {
	if err := s.client.LTrim(ctx, s.key, 0, s.cap-1).Err(); err != nil {
		return fmt.Errorf("%w: ltrim: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}
	return nil
}
