package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/ultra_import/internal/config"
	"github.com/GTDGit/ultra_import/internal/utils"
)

func setupTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(&config.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewRedisClient_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := NewRedisClient(&config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}

func TestRedisExportLock_AcquireAndRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewRedisExportLock(client, 10*time.Minute)
	ctx := context.Background()

	unlock, err := lock.Lock(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(ExportLockKey))
	assert.Equal(t, 10*time.Minute, mr.TTL(ExportLockKey))

	_, err = lock.Lock(ctx)
	assert.ErrorIs(t, err, utils.ErrExportInProgress)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists(ExportLockKey))

	unlock, err = lock.Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestRedisExportLock_ReleaseDoesNotStealForeignLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewRedisExportLock(client, time.Minute)
	ctx := context.Background()

	unlock, err := lock.Lock(ctx)
	require.NoError(t, err)

	// lock expired and another process took it over
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set(ExportLockKey, "other-owner"))

	assert.ErrorIs(t, unlock(ctx), ErrLockNotHeld)
	got, err := mr.Get(ExportLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}

func TestRedisExportLock_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewRedisExportLock(client, time.Minute)
	mr.Close()

	_, err := lock.Lock(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrExportInProgress)
}

func TestLocalExportLock(t *testing.T) {
	lock := NewLocalExportLock()
	ctx := context.Background()

	unlock, err := lock.Lock(ctx)
	require.NoError(t, err)

	_, err = lock.Lock(ctx)
	assert.ErrorIs(t, err, utils.ErrExportInProgress)

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), ErrLockNotHeld)

	unlock, err = lock.Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}
