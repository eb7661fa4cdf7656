package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLocker_AlwaysAcquires(t *testing.T) {
	var l Locker = NoopLocker{}

	release, err := l.Acquire(context.Background(), "dunning", time.Minute)
	require.NoError(t, err)
	release()

	_, err = l.Acquire(context.Background(), "dunning", time.Minute)
	assert.NoError(t, err)
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx := context.Background()
	l := NewRedisLocker(rdb, "test:lock:")

	release, err := l.Acquire(ctx, "sweep", 10*time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "sweep", 10*time.Second)
	assert.True(t, errors.Is(err, ErrNotAcquired))

	release()

	release, err = l.Acquire(ctx, "sweep", 10*time.Second)
	require.NoError(t, err)
	release()
}
