package datasets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisDataset reads examples stored as JSON entries of a Redis list. The
// list length is snapshotted at construction, so Len stays fixed even if the
// list grows afterwards; entries are fetched with LINDEX on demand.
type RedisDataset struct {
	client *redis.Client
	key    string
	n      int
}

// redisExample is the stored JSON shape of one example.
type redisExample struct {
	Input  []float32 `json:"input"`
	Target []float32 `json:"target"`
	Task   int       `json:"task"`
}

// NewRedisDataset snapshots the length of the list at key. A missing key is
// a valid empty dataset.
func NewRedisDataset(ctx context.Context, client *redis.Client, key string) (*RedisDataset, error) {
	if client == nil {
		return nil, fmt.Errorf("nil redis client: %w", ErrInvalidConfig)
	}
	if key == "" {
		return nil, fmt.Errorf("empty redis key: %w", ErrInvalidConfig)
	}

	n, err := client.LLen(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read length of %s: %w", key, err)
	}
	return &RedisDataset{client: client, key: key, n: int(n)}, nil
}

// Len returns the list length captured at construction.
func (d *RedisDataset) Len() int { return d.n }

// Example fetches and decodes entry i.
func (d *RedisDataset) Example(i int) (Example, error) {
	return d.ExampleContext(context.Background(), i)
}

// ExampleContext is Example with an explicit context for the Redis call. If
// the list shrank underneath the snapshot, the missing entry reports
// ErrIndexOutOfRange.
func (d *RedisDataset) ExampleContext(ctx context.Context, i int) (Example, error) {
	if err := checkIndex(i, d.n); err != nil {
		return Example{}, err
	}

	raw, err := d.client.LIndex(ctx, d.key, int64(i)).Result()
	if errors.Is(err, redis.Nil) {
		return Example{}, fmt.Errorf("entry %d missing from %s: %w", i, d.key, ErrIndexOutOfRange)
	}
	if err != nil {
		return Example{}, fmt.Errorf("failed to read entry %d from %s: %w", i, d.key, err)
	}

	var stored redisExample
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Example{}, fmt.Errorf("failed to decode entry %d: %w", i, err)
	}
	return Example{Input: stored.Input, Target: stored.Target, Task: stored.Task}, nil
}

// PushExamples appends examples to the list at key as JSON entries, in the
// shape RedisDataset reads back.
func PushExamples(ctx context.Context, client *redis.Client, key string, examples ...Example) error {
	if client == nil {
		return fmt.Errorf("nil redis client: %w", ErrInvalidConfig)
	}
	if key == "" {
		return fmt.Errorf("empty redis key: %w", ErrInvalidConfig)
	}

	for _, ex := range examples {
		data, err := json.Marshal(redisExample{Input: ex.Input, Target: ex.Target, Task: ex.Task})
		if err != nil {
			return fmt.Errorf("failed to encode example: %w", err)
		}
		if err := client.RPush(ctx, key, data).Err(); err != nil {
			return fmt.Errorf("failed to push to %s: %w", key, err)
		}
	}
	return nil
}
