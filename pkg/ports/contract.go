package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "signup", 3)
		prev := 0
		state.CurrentIndex = 1
		state.PreviousIndex = &prev
		state.Validated[0] = true
		state.Indicators = []domain.IndicatorState{domain.IndicatorCompleted, domain.IndicatorActive, domain.IndicatorPending}
		state.Metadata["locale"] = "en"

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "signup", loaded.FormID)
		assert.Equal(t, 1, loaded.CurrentIndex)
		p, ok := loaded.Previous()
		assert.True(t, ok)
		assert.Equal(t, 0, p)
		assert.Equal(t, []bool{true, false, false}, loaded.Validated)
		assert.Equal(t, state.Indicators, loaded.Indicators)
		assert.Equal(t, "en", loaded.Metadata["locale"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state := domain.NewState(sessionID, "signup", 2)
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 0, loaded.CurrentIndex)
		_, ok := loaded.Previous()
		assert.False(t, ok)
		assert.Len(t, loaded.Indicators, 2)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "signup", 1))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "signup", 1))
		_ = store.Save(ctx, id2, domain.NewState(id2, "signup", 1))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
