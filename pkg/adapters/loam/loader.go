// Package loam loads a form from a directory of documents: one markdown (or
// JSON/YAML) file per panel, whose body becomes the panel description.
package loam

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Loader adapts a Loam repository to ports.FormLoader.
type Loader struct {
	Repo *loam.TypedRepository[PanelMetadata]
	// FormID names the form when no form document sets one.
	FormID string
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[PanelMetadata], formID string) *Loader {
	return &Loader{Repo: repo, FormID: formID}
}

// Open initializes a read-only, strict Loam repository at dir and wraps it.
// The form ID defaults to the directory name.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PanelMetadata](repo), filepath.Base(absPath)), nil
}

type orderedPanel struct {
	order int
	path  string
	panel domain.Panel
}

// LoadForm lists the repository and assembles the form.
func (l *Loader) LoadForm(ctx context.Context) (*domain.Form, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	form := &domain.Form{ID: l.FormID, Settings: domain.DefaultSettings()}
	seen := make(map[string]string)
	var panels []orderedPanel

	for _, doc := range docs {
		meta := doc.Data

		if meta.Kind == KindForm {
			if meta.ID != "" {
				form.ID = meta.ID
			}
			form.Title = meta.Title
			if len(meta.Settings) > 0 {
				if err := mapstructure.WeakDecode(meta.Settings, &form.Settings); err != nil {
					return nil, fmt.Errorf("invalid settings in %s: %w", doc.ID, err)
				}
			}
			continue
		}

		rawID := meta.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: panel '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		panel, err := decodePanel(id, meta, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("invalid panel %s: %w", doc.ID, err)
		}
		order, err := decodeOrder(meta.Order)
		if err != nil {
			return nil, fmt.Errorf("invalid order in %s: %w", doc.ID, err)
		}
		panels = append(panels, orderedPanel{order: order, path: id, panel: panel})
	}

	sort.SliceStable(panels, func(i, j int) bool {
		if panels[i].order != panels[j].order {
			return panels[i].order < panels[j].order
		}
		return panels[i].path < panels[j].path
	})

	form.Panels = make([]domain.Panel, len(panels))
	for i, p := range panels {
		p.panel.Index = i
		form.Panels[i] = p.panel
	}
	return form, nil
}

func decodePanel(id string, meta PanelMetadata, content string) (domain.Panel, error) {
	panel := domain.Panel{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
	}
	if panel.Description == "" {
		panel.Description = strings.TrimSpace(content)
	}

	for i, raw := range meta.Fields {
		var f domain.Field
		switch v := raw.(type) {
		case string:
			f.Name = v
		default:
			if err := mapstructure.WeakDecode(v, &f); err != nil {
				return panel, fmt.Errorf("field %d: %w", i, err)
			}
		}
		panel.Fields = append(panel.Fields, f)
	}
	for i, raw := range meta.Groups {
		var g domain.Group
		if err := mapstructure.WeakDecode(raw, &g); err != nil {
			return panel, fmt.Errorf("group %d: %w", i, err)
		}
		panel.Groups = append(panel.Groups, g)
	}

	switch v := meta.Check.(type) {
	case nil:
	case string:
		panel.Check = &domain.Check{Script: v}
	default:
		var c domain.Check
		if err := mapstructure.WeakDecode(v, &c); err != nil {
			return panel, fmt.Errorf("check: %w", err)
		}
		panel.Check = &c
	}
	return panel, nil
}

func decodeOrder(raw any) (int, error) {
	if raw == nil {
		return math.MaxInt, nil
	}
	var n int
	if err := mapstructure.WeakDecode(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}
