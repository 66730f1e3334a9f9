package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/aretw0/progressforms/internal/logging"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// UpdateFunc receives the stored snapshot and returns the one to persist.
// Returning nil keeps the stored snapshot unchanged.
type UpdateFunc func(ctx context.Context, state *domain.State) (*domain.State, error)

// Manager orchestrates session access, ensuring safe concurrent operations.
// Per-session locks are reference counted and dropped when unused.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	newID   func() string

	inFlight *atomic.Int64
	hub      *hub
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator for new session IDs.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		inFlight: atomic.NewInt64(0),
		hub:      newHub(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create stores a fresh snapshot for a form of n panels under a generated ID.
func (m *Manager) Create(ctx context.Context, formID string, n int, metadata map[string]string) (*domain.State, error) {
	if n <= 0 {
		return nil, domain.ErrNoPanels
	}
	sessionID := m.newID()
	state := domain.NewState(sessionID, formID, n)
	for k, v := range metadata {
		state.Metadata[k] = v
	}

	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.logger.Debug("session created", "session_id", sessionID, "form_id", formID)
	return state, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrCreate loads sessionID or, when absent, stores a fresh snapshot under that ID.
func (m *Manager) LoadOrCreate(ctx context.Context, sessionID, formID string, n int) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if n <= 0 {
			return domain.ErrNoPanels
		}
		state = domain.NewState(sessionID, formID, n)
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Update runs a read-modify-write cycle on one session under its lock and
// publishes the resulting diff to subscribers.
func (m *Manager) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*domain.State, error) {
	var (
		before, after *domain.State
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		before, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		after, err = fn(ctx, before.Snapshot())
		if err != nil {
			return err
		}
		if after == nil {
			after = before
			return nil
		}
		after.SessionID = sessionID
		return m.store.Save(ctx, sessionID, after)
	})
	if err != nil {
		return nil, err
	}

	if diff := domain.Diff(before, after); diff != nil {
		m.hub.publish(sessionID, diff)
	}
	return after, nil
}

// Delete removes the session from the store and closes its subscriptions.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
	if err == nil {
		m.hub.close(sessionID)
	}
	return err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Active reports how many operations currently hold a session lock.
func (m *Manager) Active() int64 {
	return m.inFlight.Load()
}

// Subscribe streams the diffs of sessionID until cancel is called or the
// session is deleted. Slow subscribers miss diffs rather than block updates.
func (m *Manager) Subscribe(sessionID string) (<-chan *domain.StateDiff, func()) {
	return m.hub.subscribe(sessionID)
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	m.inFlight.Inc()
	defer func() {
		m.inFlight.Dec()
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
