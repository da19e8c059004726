package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/session"
)

// Interface compliance (compile-time assertion)
var _ session.Store = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_LoadAbsent(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Load(context.Background(), "missing_analyst")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := session.DeriveKey("demo-123", "analyst")

	state := session.State{
		UserID:  "u-1",
		History: []core.Message{core.NewUserMessage("hi"), core.NewAgentMessage("hello")},
		Engine:  map[string]any{"turns": float64(2)},
	}
	require.NoError(t, store.Save(ctx, key, state))

	loaded, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u-1", loaded.UserID)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, core.RoleAgent, loaded.History[1].Role)
	assert.Equal(t, "hello", loaded.History[1].Text())
	assert.Equal(t, float64(2), loaded.Engine["turns"])
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := session.DeriveKey("demo-123", "writer")

	require.NoError(t, store.Save(ctx, key, session.State{
		History: []core.Message{core.NewUserMessage("first")},
	}))
	require.NoError(t, store.Save(ctx, key, session.State{
		History: []core.Message{core.NewUserMessage("first"), core.NewAgentMessage("second")},
	}))

	loaded, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, loaded.History, 2)
}
