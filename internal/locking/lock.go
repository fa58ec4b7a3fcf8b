// Package locking serializes invoice generation runs. Overlapping "generate
// all" requests would otherwise race the number allocator's read-increment
// sequence across processes.
package locking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// ErrLockHeld is returned when another generation run holds the lock.
var ErrLockHeld = errors.New("generation lock held")

type Locker struct {
	client *redis.Client
	script *redis.Script

	mu   sync.Mutex
	held map[string]string // local fallback when no redis is configured
}

// NewLocker builds a Locker. A nil client degrades to an in-process mutex,
// which is enough for a single-instance deployment.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		held:   make(map[string]string),
	}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()

	if l.client == nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, taken := l.held[key]; taken {
			return "", false, nil
		}
		l.held[key] = token
		return token, true, nil
	}

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}

	if l.client == nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == token {
			delete(l.held, key)
		}
		return nil
	}

	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}
