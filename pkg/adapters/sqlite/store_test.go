package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/adapters/sqlite"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

func open(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStore_Contract(t *testing.T) {
	store, _ := open(t)
	ports.RunStateStoreContract(t, store)
}

func TestStore_ListByForm(t *testing.T) {
	store, _ := open(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", domain.NewState("b", "signup", 2)))
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a", "signup", 2)))
	require.NoError(t, store.Save(ctx, "c", domain.NewState("c", "survey", 4)))

	ids, err := store.ListByForm(ctx, "signup")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)
}

func TestStore_Reopen(t *testing.T) {
	store, path := open(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "kept", domain.NewState("kept", "signup", 3)))
	require.NoError(t, store.Close())

	again, err := sqlite.Open(path)
	require.NoError(t, err, "migrations must be idempotent")
	defer again.Close()

	loaded, err := again.Load(ctx, "kept")
	require.NoError(t, err)
	assert.Len(t, loaded.Validated, 3)
}
