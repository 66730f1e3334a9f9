package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/persistence/middleware"
	"github.com/aretw0/progressforms/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	original := domain.NewState("s1", "signup", 3)
	original.CurrentIndex = 2
	original.Metadata["email"] = "ada@example.com"
	require.NoError(t, secure.Save(ctx, "s1", original))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, stored.Metadata, "email")
	assert.Contains(t, stored.Metadata, middleware.EnvelopeKey)
	assert.Equal(t, "signup", stored.FormID)
	assert.Zero(t, stored.CurrentIndex)
	assert.Empty(t, stored.Validated)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", loaded.Metadata["email"])
	assert.Equal(t, 2, loaded.CurrentIndex)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	state := domain.NewState("rot", "signup", 2)
	state.Metadata["data"] = "old"
	require.NoError(t, oldStore.Save(ctx, "rot", state))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "old", loaded.Metadata["data"])

	loaded.Metadata["data"] = "new"
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "old key alone cannot read data re-encrypted with the new key")
}

func TestEncryptionMiddleware_Errors(t *testing.T) {
	t.Run("Invalid Key", func(t *testing.T) {
		_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
		assert.Error(t, err)
	})

	t.Run("Plain Snapshot", func(t *testing.T) {
		underlying := memory.NewStore()
		require.NoError(t, underlying.Save(context.Background(), "plain", domain.NewState("plain", "f", 1)))
		secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
		_, err := secure.Load(context.Background(), "plain")
		assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
	})

	t.Run("Parse Key", func(t *testing.T) {
		key := generateKey(t)
		got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
		require.NoError(t, err)
		assert.Equal(t, key, got)

		_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
		assert.Error(t, err)
		_, err = middleware.ParseKey("%%%")
		assert.Error(t, err)
	})
}
