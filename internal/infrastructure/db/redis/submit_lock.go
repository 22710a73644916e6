package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSubmitLockTTL = time.Minute

// releaseScript deletes the lock only while it still carries the caller's
// token, so an expired holder cannot free a lock taken over by another.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmitLock guards a delivery against concurrent location submissions.
// Key format: confirm:submit:<delivery_id>, value: the holder's token.
type SubmitLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmitLock creates a SubmitLock. The TTL must outlive the geolocation
// timeout plus the photo upload; non-positive values fall back to a minute.
func NewSubmitLock(client *redis.Client, ttl time.Duration) *SubmitLock {
	if ttl <= 0 {
		ttl = defaultSubmitLockTTL
	}
	return &SubmitLock{client: client, ttl: ttl}
}

// Acquire reports whether this caller now owns the submission for deliveryID.
func (l *SubmitLock) Acquire(ctx context.Context, deliveryID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(deliveryID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("submit lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock so the customer may retry after a failure. It is a
// no-op once the lock expired or changed hands.
func (l *SubmitLock) Release(ctx context.Context, deliveryID, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(deliveryID)}, token).Err(); err != nil {
		return fmt.Errorf("submit unlock: %w", err)
	}
	return nil
}

func (l *SubmitLock) key(deliveryID string) string {
	return fmt.Sprintf("confirm:submit:%s", deliveryID)
}
