package cli

import (
	"fmt"

	"github.com/aretw0/progressforms/internal/config"
	"github.com/aretw0/progressforms/pkg/adapters/file"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/adapters/redis"
	"github.com/aretw0/progressforms/pkg/adapters/sqlite"
	"github.com/aretw0/progressforms/pkg/persistence/middleware"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/session"
)

// Backend is an opened session store with the locker that matches it.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
}

// OpenStore builds the configured store, wrapped with metadata masking and
// encryption when configured. Close hooks are registered on the environment.
func (e *Env) OpenStore() (*Backend, error) {
	b, err := openBackend(e.Config.Store, e)
	if err != nil {
		return nil, err
	}

	mws, err := storeMiddleware(e.Config.Store)
	if err != nil {
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mws...)

	e.Logger.Debug("session store opened", "backend", e.Config.Store.Backend, "middleware", len(mws))
	return b, nil
}

// SessionManager opens the store and wraps it in a session manager.
func (e *Env) SessionManager() (*session.Manager, error) {
	b, err := e.OpenStore()
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithLogger(e.Logger),
		session.WithLockTTL(e.Config.Session.LockTTL),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...), nil
}

func openBackend(cfg config.StoreConfig, e *Env) (*Backend, error) {
	switch cfg.Backend {
	case "memory":
		return &Backend{Store: memory.NewStore()}, nil
	case "file":
		return &Backend{Store: file.NewStore(cfg.Dir)}, nil
	case "redis":
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, "", 0, opts...)
		e.OnClose(store.Close)
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), cfg.Redis.Prefix),
		}, nil
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		e.OnClose(store.Close)
		return &Backend{Store: store}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskMetadata) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.MaskMetadata)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key: %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}
