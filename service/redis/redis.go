package redis

import (
	"errors"
	"time"

	"github.com/deedchain/goapi/base/ctx"
)

const (
	// Forever is used as the expire argument when the key should not expire
	Forever = time.Duration(-1)
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis key not found")
)

// Service provides interface for accessing redis
type Service interface {
	// Get returns the value of key, or ErrNotFound if the key does not exist
	Get(context ctx.Ctx, key string) (val []byte, err error)

	// Set sets key to val with the given expire. Use Forever to skip expiration.
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error

	// Del removes keys. Keys that do not exist are ignored.
	Del(context ctx.Ctx, keys ...string) error

	// Exists reports whether key exists
	Exists(context ctx.Ctx, key string) (bool, error)

	// TTL returns the remaining time to live of key.
	// Returns Forever if the key has no expire, ErrNotFound if the key does not exist.
	TTL(context ctx.Ctx, key string) (time.Duration, error)

	// Incrby increments the number stored at key by diff and returns the new value.
	// Missing keys are treated as 0.
	Incrby(context ctx.Ctx, key string, diff int64) (int64, error)
}
