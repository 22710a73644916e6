package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

const defaultSessionTTL = 30 * time.Minute

// SessionStore keeps confirmation sessions as msgpack blobs with a sliding TTL.
// Key format: confirm:session:<session_id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Save writes s and refreshes its expiry. The selected photo is not stored.
func (st *SessionStore) Save(ctx context.Context, s *domain.ConfirmationSession) error {
	b, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return st.client.Set(ctx, st.key(s.ID), b, st.ttl).Err()
}

func (st *SessionStore) Get(ctx context.Context, id string) (*domain.ConfirmationSession, error) {
	b, err := st.client.Get(ctx, st.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s domain.ConfirmationSession
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (st *SessionStore) key(id string) string {
	return "confirm:session:" + id
}
