package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteLeafWeb/internal/modules/session/application/port"
	"infiniteLeafWeb/internal/modules/session/domain"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func storesUnderTest(t *testing.T) map[string]port.Store {
	t.Helper()
	sqlite, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]port.Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := domain.New("abc", base)
			s.SignIn("tok", "admin", base.Add(time.Hour))
			require.NoError(t, s.Put("booking", map[string]int{"step": 2}))
			require.NoError(t, store.Save(ctx, s))

			// mutations after save must not leak into the store
			s.Username = "changed"

			loaded, err := store.Load(ctx, "abc")
			require.NoError(t, err)
			assert.True(t, loaded.Authenticated)
			assert.Equal(t, "tok", loaded.Token)
			assert.Equal(t, "admin", loaded.Username)
			assert.True(t, loaded.TokenExpiresAt.Equal(base.Add(time.Hour)))
			assert.True(t, loaded.LastSeen.Equal(base))

			var booking map[string]int
			ok, err := loaded.Get("booking", &booking)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 2, booking["step"])

			loaded.SignOut()
			require.NoError(t, store.Save(ctx, loaded))
			again, err := store.Load(ctx, "abc")
			require.NoError(t, err)
			assert.False(t, again.Authenticated)
			assert.Empty(t, again.Data)

			require.NoError(t, store.Delete(ctx, "abc"))
			_, err = store.Load(ctx, "abc")
			assert.ErrorIs(t, err, port.ErrSessionNotFound)
		})
	}
}

func TestStoreDeleteIdle(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, domain.New("old", base)))
			require.NoError(t, store.Save(ctx, domain.New("new", base.Add(40*time.Minute))))

			removed, err := store.DeleteIdle(ctx, base.Add(10*time.Minute))
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			_, err = store.Load(ctx, "old")
			assert.ErrorIs(t, err, port.ErrSessionNotFound)
			_, err = store.Load(ctx, "new")
			assert.NoError(t, err)
		})
	}
}
