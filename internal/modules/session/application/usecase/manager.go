package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"infiniteLeafWeb/internal/modules/session/application/port"
	"infiniteLeafWeb/internal/modules/session/domain"
)

// Manager owns session lifecycle rules (lazy creation, idle expiry, rotation)
// on top of any Store.
type Manager struct {
	store port.Store
	idle  time.Duration
	now   func() time.Time
	newID func() string
}

func NewManager(store port.Store, idle time.Duration) *Manager {
	if idle <= 0 {
		idle = domain.DefaultIdleTimeout
	}
	return &Manager{store: store, idle: idle, now: time.Now, newID: uuid.NewString}
}

// WithClock swaps the time source, used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Manager) Now() time.Time { return m.now() }

func (m *Manager) IdleTimeout() time.Duration { return m.idle }

// Start resumes the session identified by id or creates a fresh one when it is
// missing or idle-expired. The boolean reports whether a new session was created.
func (m *Manager) Start(ctx context.Context, id string) (*domain.Session, bool, error) {
	now := m.now()
	id = strings.TrimSpace(id)
	if id != "" {
		s, err := m.store.Load(ctx, id)
		switch {
		case err == nil && !s.Expired(now, m.idle):
			s.Touch(now)
			return s, false, nil
		case err == nil:
			slog.Debug("session expired", slog.String("sessionId", id), slog.Time("lastSeen", s.LastSeen))
			if err := m.store.Delete(ctx, id); err != nil {
				slog.Warn("session delete failed", slog.String("sessionId", id), slog.Any("error", err))
			}
		case !errors.Is(err, port.ErrSessionNotFound):
			return nil, false, fmt.Errorf("load session: %w", err)
		}
	}
	return domain.New(m.newID(), now), true, nil
}

func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Rotate issues a new id for s and drops the old record, used after login.
func (m *Manager) Rotate(ctx context.Context, s *domain.Session) error {
	old := s.ID
	s.ID = m.newID()
	if err := m.store.Delete(ctx, old); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

// Destroy removes the session entirely.
func (m *Manager) Destroy(ctx context.Context, s *domain.Session) error {
	s.SignOut()
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Sweep deletes every idle-expired session.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	return m.store.DeleteIdle(ctx, m.now().Add(-m.idle))
}

// RunJanitor sweeps on every tick until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := m.Sweep(ctx)
			if err != nil {
				slog.Warn("session sweep failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				slog.Debug("session sweep", slog.Int("removed", removed))
			}
		}
	}
}
