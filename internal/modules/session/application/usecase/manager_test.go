package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteLeafWeb/internal/modules/session/application/port"
	"infiniteLeafWeb/internal/modules/session/infrastructure"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := infrastructure.NewMemoryStore()
	clk := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	mgr := NewManager(store, 30*time.Minute).WithClock(clk.Now)

	s, created, err := mgr.Start(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, s.ID)
	require.NoError(t, mgr.Save(ctx, s))

	clk.now = clk.now.Add(10 * time.Minute)
	resumed, created, err := mgr.Start(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s.ID, resumed.ID)
	assert.True(t, resumed.LastSeen.Equal(clk.now))
	require.NoError(t, mgr.Save(ctx, resumed))

	clk.now = clk.now.Add(31 * time.Minute)
	fresh, created, err := mgr.Start(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, s.ID, fresh.ID)
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, port.ErrSessionNotFound)
}

func TestManagerRotateAndDestroy(t *testing.T) {
	ctx := context.Background()
	store := infrastructure.NewMemoryStore()
	mgr := NewManager(store, 0)
	assert.Equal(t, 30*time.Minute, mgr.IdleTimeout())

	s, _, err := mgr.Start(ctx, "unknown-id")
	require.NoError(t, err)
	require.NoError(t, mgr.Save(ctx, s))
	old := s.ID

	require.NoError(t, mgr.Rotate(ctx, s))
	assert.NotEqual(t, old, s.ID)
	require.NoError(t, mgr.Save(ctx, s))
	assert.Equal(t, 1, store.Len())

	s.SignIn("tok", "admin", time.Time{})
	require.NoError(t, mgr.Destroy(ctx, s))
	assert.False(t, s.Authenticated)
	assert.Equal(t, 0, store.Len())
}

func TestManagerSweep(t *testing.T) {
	ctx := context.Background()
	store := infrastructure.NewMemoryStore()
	clk := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	mgr := NewManager(store, time.Minute).WithClock(clk.Now)

	s, _, _ := mgr.Start(ctx, "")
	require.NoError(t, mgr.Save(ctx, s))
	clk.now = clk.now.Add(2 * time.Minute)

	removed, err := mgr.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
