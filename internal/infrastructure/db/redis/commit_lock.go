package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the key only when it still holds the caller's token,
// so an expired holder never frees a lock someone else took over.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CommitLock serialises commits of the same selection across instances.
// Key format: commit:<selection_id>
type CommitLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCommitLock creates a CommitLock wrapping the given Redis client. The TTL
// bounds how long a crashed holder blocks retries.
func NewCommitLock(client *redis.Client, ttl time.Duration) *CommitLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &CommitLock{client: client, ttl: ttl}
}

// Acquire takes the lock for selectionID. acquired is false when another
// commit holds it.
func (l *CommitLock) Acquire(ctx context.Context, selectionID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(selectionID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire commit lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (l *CommitLock) Release(ctx context.Context, selectionID, token string) error {
	err := releaseScript.Run(ctx, l.client, []string{l.key(selectionID)}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release commit lock: %w", err)
	}
	return nil
}

func (l *CommitLock) key(selectionID string) string {
	return fmt.Sprintf("commit:%s", selectionID)
}
