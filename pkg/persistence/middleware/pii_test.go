package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)email", "^phone$"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	state := domain.NewState("s", "signup", 1)
	state.Metadata["user_email"] = "ada@example.com"
	state.Metadata["phone"] = "555"
	state.Metadata["locale"] = "en"
	require.NoError(t, store.Save(ctx, "s", state))

	stored, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Metadata["user_email"])
	assert.Equal(t, middleware.Mask, stored.Metadata["phone"])
	assert.Equal(t, "en", stored.Metadata["locale"])

	assert.Equal(t, "ada@example.com", state.Metadata["user_email"], "caller snapshot must be untouched")
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"secret"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, pii, enc)
	state := domain.NewState("s", "f", 1)
	state.Metadata["secret"] = "x"
	require.NoError(t, store.Save(context.Background(), "s", state))

	loaded, err := store.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Metadata["secret"], "masking runs before encryption")
}
