// Package cli holds the wiring shared by the progressforms commands: configuration,
// logging, the session store, definition loading and the run modes.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/progressforms/internal/config"
	"github.com/aretw0/progressforms/internal/logging"
	"github.com/aretw0/progressforms/internal/messages"
)

// Env is the per-invocation environment of a command.
type Env struct {
	Config  config.Config
	Logger  *slog.Logger
	Catalog *messages.Catalog

	closers []func() error
}

// Setup loads configuration from path (empty searches the default locations),
// applies a non-empty logLevel override and builds the logger.
func Setup(path, logLevel string) (*Env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, closeLog, err := logging.NewWithOptions(logging.Options{
		Level:   logging.ParseLevel(cfg.Log.Level),
		File:    cfg.Log.File,
		Journal: cfg.Log.Journal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	catalog, err := messages.New()
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &Env{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog,
		closers: []func() error{closeLog},
	}, nil
}

// Localizer prints messages in the configured locale.
func (e *Env) Localizer() *messages.Localizer {
	return e.Catalog.Localizer(e.Catalog.Match(e.Config.Locale).String())
}

// OnClose registers fn to run on Close, in reverse order.
func (e *Env) OnClose(fn func() error) {
	e.closers = append(e.closers, fn)
}

// Close releases everything opened through the environment.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
