package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/pkg/adapters/file"
	"github.com/aretw0/progressforms/pkg/adapters/loam"
	"github.com/aretw0/progressforms/pkg/adapters/process"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/observability"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/registry"
)

// Definition is a loaded form together with the loader that produced it.
type Definition struct {
	Path   string
	Form   *domain.Form
	Loader ports.FormLoader
}

// OpenLoader picks the loader for path: a directory is read as a Loam
// repository, a file by its extension.
func OpenLoader(path string) (ports.FormLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("definition not found: %w", err)
	}
	if info.IsDir() {
		return loam.Open(path)
	}
	return file.NewLoader(path)
}

// LoadDefinition reads the form at path.
func (e *Env) LoadDefinition(ctx context.Context, path string) (*Definition, error) {
	loader, err := OpenLoader(path)
	if err != nil {
		return nil, err
	}
	form, err := loader.LoadForm(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	e.Logger.Debug("definition loaded", "path", path, "form", form.ID, "panels", len(form.Panels))
	return &Definition{Path: path, Form: form, Loader: loader}, nil
}

// Watch signals definition changes when the loader supports it.
func (d *Definition) Watch(ctx context.Context) (<-chan struct{}, bool, error) {
	w, ok := d.Loader.(ports.Watchable)
	if !ok {
		return nil, false, nil
	}
	ch, err := w.Watch(ctx)
	return ch, err == nil, err
}

// Registry returns the builtin validators plus the external commands
// allow-listed in the configured validators file.
func (e *Env) Registry() (*registry.Registry, error) {
	reg := registry.Builtin()
	path := e.Config.Validators
	if path == "" {
		return reg, nil
	}
	validators, err := process.LoadValidators(path)
	if err != nil {
		return nil, err
	}
	if len(validators) == 0 {
		return reg, nil
	}
	process.NewRunner(
		process.WithRegistry(validators),
		process.WithBaseDir(filepath.Dir(path)),
		process.WithLogger(e.Logger),
	).Install(reg)
	e.Logger.Debug("external validators installed", "count", len(validators))
	return reg, nil
}

// NavigatorOptions configures navigators built by the commands.
func (e *Env) NavigatorOptions() ([]progressforms.Option, error) {
	reg, err := e.Registry()
	if err != nil {
		return nil, err
	}
	return []progressforms.Option{
		progressforms.WithLogger(e.Logger),
		progressforms.WithRegistry(reg),
		progressforms.WithCallbacks(observability.LogCallbacks(e.Logger)),
	}, nil
}
