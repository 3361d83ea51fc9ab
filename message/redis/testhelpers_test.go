//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/webhook-recorder/message/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

/* Test Helpers for Redis Integration Tests
 * Following the pattern from: https://eltonminetto.dev/post/2024-02-15-using-test-helpers/
 */

// RedisContainer holds the Redis testcontainer and connection details
type RedisContainer struct {
	Container *testcontainersredis.RedisContainer
	Addr      string
}

// SetupRedisContainer creates and starts a Redis testcontainer
func SetupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	redisContainer, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start Redis container")

	addr, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	// Remove redis:// prefix if present
	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}

	// Wait for Redis to be ready
	time.Sleep(1 * time.Second)

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return &RedisContainer{Container: redisContainer, Addr: addr}, cleanup
}

// CreateTestRepository creates a Redis repository connected to the test container
func CreateTestRepository(t *testing.T, addr string) *redis.Repository {
	t.Helper()

	repo, err := redis.NewRepository(addr, "", 0, zerolog.Nop())
	require.NoError(t, err, "failed to create Redis repository")

	return repo
}

// SetRaw writes a value directly, bypassing the repository
func SetRaw(t *testing.T, addr, key, value string) {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), key, value, 0).Err())
}
