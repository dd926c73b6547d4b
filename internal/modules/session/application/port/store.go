package port

import (
	"context"
	"errors"
	"time"

	"infiniteLeafWeb/internal/modules/session/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions. Implementations return copies, never shared pointers.
type Store interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteIdle removes sessions last seen before cutoff and reports how many went.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
}
