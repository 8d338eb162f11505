package favorites

import (
	"context"
	"os"
	"testing"

	"fridge2food/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, storage Storage, key string) {
	ctx := context.Background()

	_, err := storage.Get(ctx, key)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	require.NoError(t, storage.Set(ctx, key, `[{"id":"a"}]`))
	val, err := storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, val)

	require.NoError(t, storage.Set(ctx, key, `[]`))
	val, err = storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, val)

	assert.NoError(t, storage.Ping(ctx))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage(), "fridge2food-favorites:mem")
}

func TestGormStorage_SQLite(t *testing.T) {
	storage, err := NewStorage(config.FavoritesConfig{
		Backend:    config.BackendSQLite,
		SQLitePath: ":memory:",
	}, nil)
	require.NoError(t, err)
	defer storage.Close()

	exerciseStorage(t, storage, "fridge2food-favorites:sql")
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	key := "fridge2food-favorites:test-" + t.Name()
	defer client.Del(context.Background(), key)

	storage, err := NewStorage(config.FavoritesConfig{Backend: config.BackendRedis}, client)
	require.NoError(t, err)
	exerciseStorage(t, storage, key)
}

func TestNewStorage_Errors(t *testing.T) {
	_, err := NewStorage(config.FavoritesConfig{Backend: config.BackendRedis}, nil)
	assert.Error(t, err)

	_, err = NewStorage(config.FavoritesConfig{Backend: "localstorage"}, nil)
	assert.Error(t, err)
}
