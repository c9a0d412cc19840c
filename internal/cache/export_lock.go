package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/ultra_import/internal/utils"
)

// ExportLockKey is the Redis key guarding catalog exports.
const ExportLockKey = "ultra:export:lock"

// ErrLockNotHeld is returned when releasing a lock that expired or was taken over.
var ErrLockNotHeld = errors.New("export lock not held")

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisExportLock is a distributed lock shared by every process exporting
// to the same Redis.
type RedisExportLock struct {
	redis *RedisClient
	key   string
	ttl   time.Duration
}

// NewRedisExportLock constructs a RedisExportLock on ExportLockKey.
func NewRedisExportLock(client *RedisClient, ttl time.Duration) *RedisExportLock {
	return &RedisExportLock{redis: client, key: ExportLockKey, ttl: ttl}
}

// Lock acquires the lock or returns utils.ErrExportInProgress.
func (l *RedisExportLock) Lock(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.ErrExportInProgress
	}

	log.Debug().Str("key", l.key).Msg("Acquired export lock")

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.redis.client, []string{l.key}, token).Int64()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLockNotHeld
		}
		log.Debug().Str("key", l.key).Msg("Released export lock")
		return nil
	}, nil
}

// LocalExportLock serializes exports within one process.
type LocalExportLock struct {
	mu   sync.Mutex
	held bool
}

// NewLocalExportLock constructs a LocalExportLock.
func NewLocalExportLock() *LocalExportLock {
	return &LocalExportLock{}
}

// Lock acquires the lock or returns utils.ErrExportInProgress.
func (l *LocalExportLock) Lock(context.Context) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, utils.ErrExportInProgress
	}
	l.held = true

	var once sync.Once
	return func(context.Context) error {
		err := ErrLockNotHeld
		once.Do(func() {
			l.mu.Lock()
			l.held = false
			l.mu.Unlock()
			err = nil
		})
		return err
	}, nil
}
