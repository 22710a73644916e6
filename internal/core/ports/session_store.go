package ports

import (
	"context"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// SessionStore keeps confirmation sessions between customer requests.
type SessionStore interface {
	Save(ctx context.Context, s *domain.ConfirmationSession) error
	// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*domain.ConfirmationSession, error)
}

// SubmitLock rejects concurrent submissions for the same delivery.
type SubmitLock interface {
	// Acquire reports false when another submission holds the lock. The
	// returned token identifies this holder and must be passed to Release.
	Acquire(ctx context.Context, deliveryID string) (token string, ok bool, err error)
	// Release frees the lock only while token still owns it.
	Release(ctx context.Context, deliveryID, token string) error
}
