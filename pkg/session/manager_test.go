package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/session"
)

// SlowStore simulates IO latency so unsynchronized read-modify-write cycles would lose updates.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func TestManager_Create(t *testing.T) {
	n := 0
	mgr := session.NewManager(memory.NewStore(), session.WithIDGenerator(func() string {
		n++
		return "sess-" + string(rune('0'+n))
	}))
	ctx := context.Background()

	state, err := mgr.Create(ctx, "signup", 3, map[string]string{"locale": "pt"})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", state.SessionID)
	assert.Equal(t, []domain.IndicatorState{domain.IndicatorActive, domain.IndicatorPending, domain.IndicatorPending}, state.Indicators)

	loaded, err := mgr.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "pt", loaded.Metadata["locale"])

	_, err = mgr.Create(ctx, "signup", 0, nil)
	assert.ErrorIs(t, err, domain.ErrNoPanels)

	t.Run("Default IDs Are UUIDs", func(t *testing.T) {
		state, err := session.NewManager(memory.NewStore()).Create(ctx, "signup", 1, nil)
		require.NoError(t, err)
		assert.Len(t, state.SessionID, 36)
	})
}

func TestManager_UpdateSerializes(t *testing.T) {
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"
	_, err := mgr.LoadOrCreate(ctx, id, "counter", 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, id, func(ctx context.Context, s *domain.State) (*domain.State, error) {
				s.Metadata["count"] += "x"
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.Metadata["count"], 20, "no update may be lost")
}

func TestManager_UpdatePublishesDiffs(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	state, err := mgr.Create(ctx, "signup", 2, nil)
	require.NoError(t, err)
	id := state.SessionID

	diffs, cancel := mgr.Subscribe(id)
	defer cancel()

	_, err = mgr.Update(ctx, id, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		prev := 0
		s.CurrentIndex = 1
		s.PreviousIndex = &prev
		s.Validated[0] = true
		s.Indicators = []domain.IndicatorState{domain.IndicatorCompleted, domain.IndicatorActive}
		return s, nil
	})
	require.NoError(t, err)

	select {
	case d := <-diffs:
		require.NotNil(t, d.CurrentIndex)
		assert.Equal(t, 1, *d.CurrentIndex)
		assert.Equal(t, []int{0}, d.Validated)
		assert.Equal(t, domain.IndicatorCompleted, d.Indicators[0])
	case <-time.After(time.Second):
		t.Fatal("no diff published")
	}

	t.Run("Unchanged Update Publishes Nothing", func(t *testing.T) {
		_, err := mgr.Update(ctx, id, func(ctx context.Context, s *domain.State) (*domain.State, error) {
			return nil, nil
		})
		require.NoError(t, err)
		select {
		case d := <-diffs:
			t.Fatalf("unexpected diff %+v", d)
		default:
		}
	})

	t.Run("Failed Update Is Not Saved", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := mgr.Update(ctx, id, func(ctx context.Context, s *domain.State) (*domain.State, error) {
			s.CurrentIndex = 0
			return s, boom
		})
		assert.ErrorIs(t, err, boom)
		loaded, err := mgr.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.CurrentIndex)
	})

	t.Run("Delete Closes Subscriptions", func(t *testing.T) {
		require.NoError(t, mgr.Delete(ctx, id))
		_, open := <-diffs
		assert.False(t, open)
	})

	t.Run("Update Missing Session", func(t *testing.T) {
		_, err := mgr.Update(ctx, "ghost", func(ctx context.Context, s *domain.State) (*domain.State, error) {
			return s, nil
		})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

type countingLocker struct {
	mu    sync.Mutex
	locks int
	ttl   time.Duration
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locks++
	l.ttl = ttl
	l.mu.Unlock()
	return func(context.Context) error { return errors.New("expired") }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := mgr.LoadOrCreate(ctx, "s", "f", 1)
	require.NoError(t, err, "a failed unlock is logged, not returned")
	_, err = mgr.Load(ctx, "s")
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 5*time.Second, locker.ttl)
}
