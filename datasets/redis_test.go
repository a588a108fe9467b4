package datasets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisTestClient connects to a local Redis, skipping the test when none is
// reachable.
func redisTestClient(t *testing.T) *redis.Client {
	t.Helper()
	cli := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable; skipping integration test: %v", err)
	}
	return cli
}

// redisTestKey returns a list key unlikely to collide across test runs.
func redisTestKey() string {
	return fmt.Sprintf("avalanche:test:%d", time.Now().UnixNano())
}

func TestRedisDataset_PushAndRead(t *testing.T) {
	cli := redisTestClient(t)
	ctx := context.Background()
	key := redisTestKey()
	defer cli.Del(ctx, key)

	examples := []Example{
		{Input: []float32{1, 2}, Target: []float32{10}, Task: 0},
		{Input: []float32{3, 4}, Target: []float32{11}, Task: 1},
		{Input: []float32{5, 6}, Target: []float32{12}, Task: 2},
	}
	require.NoError(t, PushExamples(ctx, cli, key, examples...))

	ds, err := NewRedisDataset(ctx, cli, key)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	ex, err := ds.Example(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, ex.Input)
	assert.Equal(t, []float32{11}, ex.Target)
	assert.Equal(t, 1, ex.Task)

	_, err = ds.Example(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRedisDataset_MissingKeyIsEmpty(t *testing.T) {
	cli := redisTestClient(t)
	ctx := context.Background()

	ds, err := NewRedisDataset(ctx, cli, redisTestKey())
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())

	_, err = ds.Example(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

// TestRedisDataset_LengthSnapshot verifies the length captured at
// construction neither grows with the list nor survives its deletion.
func TestRedisDataset_LengthSnapshot(t *testing.T) {
	cli := redisTestClient(t)
	ctx := context.Background()
	key := redisTestKey()
	defer cli.Del(ctx, key)

	require.NoError(t, PushExamples(ctx, cli, key,
		Example{Input: []float32{1}, Target: []float32{10}},
		Example{Input: []float32{2}, Target: []float32{20}},
	))

	ds, err := NewRedisDataset(ctx, cli, key)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	// A later push does not change the snapshot.
	require.NoError(t, PushExamples(ctx, cli, key, Example{Input: []float32{3}, Target: []float32{30}}))
	assert.Equal(t, 2, ds.Len())
	_, err = ds.Example(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// Deleting the list makes reads inside the snapshot fail as index errors.
	require.NoError(t, cli.Del(ctx, key).Err())
	_, err = ds.Example(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRedisDataset_InvalidConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedisDataset(ctx, nil, "some:key")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	// The empty-key check fires before any server contact.
	cli := redis.NewClient(&redis.Options{})
	_, err = NewRedisDataset(ctx, cli, "")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.ErrorIs(t, PushExamples(ctx, nil, "some:key"), ErrInvalidConfig)
	assert.ErrorIs(t, PushExamples(ctx, cli, ""), ErrInvalidConfig)
}
