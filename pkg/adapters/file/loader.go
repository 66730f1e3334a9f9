// Package file reads form definitions from YAML, JSON or TOML files and keeps
// navigator snapshots as JSON files.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Format is a definition file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported definition format %q", filepath.Ext(path))
}

// Loader implements ports.FormLoader over a definition file.
// The file is read on every call so edits are picked up.
type Loader struct {
	Path   string
	format Format
	// PollInterval drives Watch. Zero means one second.
	PollInterval time.Duration
}

// NewLoader creates a Loader for path. The format follows the extension.
func NewLoader(path string) (*Loader, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return &Loader{Path: path, format: format}, nil
}

// LoadForm reads and decodes the definition. Settings absent from the file keep
// their defaults; the form ID defaults to the file name.
func (l *Loader) LoadForm(ctx context.Context) (*domain.Form, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition %s: %w", l.Path, err)
	}
	form, err := Decode(data, l.format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	if form.ID == "" {
		base := filepath.Base(l.Path)
		form.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return form, nil
}

// Decode parses a definition document.
func Decode(data []byte, format Format) (*domain.Form, error) {
	form := domain.Form{Settings: domain.DefaultSettings()}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &form)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&form)
	case FormatTOML:
		_, err = toml.Decode(string(data), &form)
	default:
		err = fmt.Errorf("unsupported definition format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s definition: %w", format, err)
	}

	for i := range form.Panels {
		form.Panels[i].Index = i
		form.Panels[i].PreviouslyValidated = false
	}
	return &form, nil
}

// Watch signals whenever the definition file's modification time changes.
// The channel closes when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	info, err := os.Stat(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat definition %s: %w", l.Path, err)
	}
	interval := l.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		last := info.ModTime()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(l.Path)
				if err != nil || info.ModTime().Equal(last) {
					continue
				}
				last = info.ModTime()
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}
