package mem

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container tests are skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForListeningPort("6379/tcp").
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisResetTokens(t *testing.T) {
	client := setupRedis(t)
	store := NewRedisResetTokens(client)
	ctx := context.Background()

	t.Run("consume is single use", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "token-1", "a@b.com", time.Minute))

		email, err := store.Consume(ctx, "token-1")
		require.NoError(t, err)
		require.Equal(t, "a@b.com", email)

		email, err = store.Consume(ctx, "token-1")
		require.NoError(t, err)
		require.Empty(t, email)
	})

	t.Run("unknown token is empty", func(t *testing.T) {
		email, err := store.Consume(ctx, "never-issued")
		require.NoError(t, err)
		require.Empty(t, email)
	})

	t.Run("tokens expire", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "short-lived", "a@b.com", 100*time.Millisecond))
		time.Sleep(300 * time.Millisecond)

		email, err := store.Consume(ctx, "short-lived")
		require.NoError(t, err)
		require.Empty(t, email)
	})

	t.Run("raw token is not a key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "raw-token", "a@b.com", time.Minute))

		n, err := client.Exists(ctx, redisKeyPrefix+"raw-token").Result()
		require.NoError(t, err)
		require.Zero(t, n)

		n, err = client.Exists(ctx, redisKeyPrefix+tokenKey("raw-token")).Result()
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	})

	t.Run("concurrent consumers redeem once", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "contested", "a@b.com", time.Minute))

		results := make(chan string, 8)
		for i := 0; i < 8; i++ {
			go func() {
				email, err := store.Consume(ctx, "contested")
				if err != nil {
					email = "error: " + err.Error()
				}
				results <- email
			}()
		}

		var redeemed int
		for i := 0; i < 8; i++ {
			switch email := <-results; email {
			case "a@b.com":
				redeemed++
			case "":
			default:
				t.Fatalf("unexpected consume result %q", email)
			}
		}
		require.Equal(t, 1, redeemed)
	})
}
