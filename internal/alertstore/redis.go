package alertstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// RedisStore reads alerts from a Redis list where each element is one raw
// alert line, oldest first (RPUSH order).
//
// Redis drops a list once it is empty, so Append and Reset also set a marker
// key (<key>:created). A list that is gone while the marker exists reads as
// an empty store, the same as an empty alert file.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL, key string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisStoreFromClient(client, key), nil
}

// NewRedisStoreFromClient wraps an existing connection.
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Name returns the list key.
func (s *RedisStore) Name() string {
	return s.key
}

func (s *RedisStore) markerKey() string {
	return s.key + ":created"
}

// ReadAlerts implements Reader. When neither the list nor its marker exist
// the result is ErrNotFound, mirroring a missing alert file.
func (s *RedisStore) ReadAlerts(ctx context.Context) ([]models.Alert, error) {
	pipe := s.client.Pipeline()
	exists := pipe.Exists(ctx, s.key, s.markerKey())
	lines := pipe.LRange(ctx, s.key, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read alert list: %w", err)
	}

	if exists.Val() == 0 {
		return nil, fmt.Errorf("%s: %w", s.key, ErrNotFound)
	}

	alerts := make([]models.Alert, 0, len(lines.Val()))
	for i, line := range lines.Val() {
		alert, ok, err := decodeLine([]byte(line))
		if err != nil {
			return nil, &MalformedError{Source: s.key, Line: i + 1, Err: err}
		}
		if ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// Append pushes raw alert lines onto the list. Used by the seeder.
func (s *RedisStore) Append(ctx context.Context, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	values := make([]interface{}, len(lines))
	for i, l := range lines {
		values[i] = l
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, values...)
		pipe.Set(ctx, s.markerKey(), time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push alerts: %w", err)
	}
	return nil
}

// Reset empties the list. The store keeps reading as empty, not missing.
func (s *RedisStore) Reset(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.Set(ctx, s.markerKey(), time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset alert list: %w", err)
	}
	return nil
}

// Ping checks the connection for /readyz.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
