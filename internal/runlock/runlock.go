// Package runlock keeps two runs of the same profile from overlapping, across
// processes, with a Redis key per profile.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when the profile already has a run in progress.
var ErrLocked = errors.New("a run is already in progress for this profile")

const keyPrefix = "apply:run-lock:"

// release deletes the key only while it still holds our token, so an expired
// lock taken over by another run is left alone.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Locker hands out per-profile locks. TTL bounds how long a crashed holder
// blocks the profile.
type Locker struct {
	rdb client
	ttl time.Duration
}

// New returns a Locker whose locks expire after ttl.
func New(rdb client, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, ttl: ttl}
}

// Key returns the Redis key guarding profileID.
func Key(profileID string) string { return keyPrefix + profileID }

// Acquire takes the lock for profileID. The returned func releases it and is
// safe to call more than once.
func (l *Locker) Acquire(ctx context.Context, profileID string) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, Key(profileID), token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("runlock.Acquire: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		if err := release.Run(ctx, l.rdb, []string{Key(profileID)}, token).Err(); err != nil {
			return fmt.Errorf("runlock.Release: %w", err)
		}
		return nil
	}, nil
}
