// Package script compiles the Starlark checks declared on panels into validators.
//
// A check is a single Starlark expression evaluated with:
//
//	values          dict of field name to current value (panel fields and group members)
//	visible(name)   whether the field is visible
//	checked(name)   whether a group member is satisfied
//	empty(name)     whether the field value is empty
//
// The result decides the outcome: None or True pass, False blames the check's
// declared field, and a string blames the field of that name.
//
// Example:
//
//	check:
//	  script: values["password"] == values["confirm"]
//	  blame: password
package script

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
)

// Compiler turns panel checks into ports.Validator functions.
type Compiler struct {
	logger  *slog.Logger
	options *syntax.FileOptions
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger that receives evaluation errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		options: &syntax.FileOptions{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileError reports a check that does not parse.
type CompileError struct {
	PanelID string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("panel %s: invalid check: %v", e.PanelID, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compile returns the validator for the panel's check, or nil when it has none.
func (c *Compiler) Compile(panel domain.Panel) (ports.Validator, error) {
	if panel.Check == nil || strings.TrimSpace(panel.Check.Script) == "" {
		return nil, nil
	}

	name := fmt.Sprintf("%s.check", panel.ID)
	expr, err := c.options.ParseExpr(name, panel.Check.Script, 0)
	if err != nil {
		return nil, &CompileError{PanelID: panel.ID, Err: err}
	}

	blame := panel.Check.Blame
	if blame == "" {
		blame = defaultBlame(panel)
	}

	return func(p domain.Panel, in ports.FieldInspector) *domain.FieldRef {
		thread := &starlark.Thread{Name: name}
		result, err := starlark.EvalExprOptions(c.options, thread, expr, environment(p, in))
		if err != nil {
			c.logger.Warn("check failed to evaluate", "panel_id", p.ID, "err", err)
			ref := p.Ref(blame)
			return &ref
		}
		return outcome(p, blame, result, c.logger)
	}, nil
}

// CompileForm compiles every panel check of form, keyed by panel index.
func (c *Compiler) CompileForm(form *domain.Form) (map[int]ports.Validator, error) {
	out := make(map[int]ports.Validator)
	for i, p := range form.Panels {
		p.Index = i
		v, err := c.Compile(p)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[i] = v
		}
	}
	return out, nil
}

func outcome(p domain.Panel, blame string, result starlark.Value, logger *slog.Logger) *domain.FieldRef {
	switch v := result.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		if v {
			return nil
		}
		ref := p.Ref(blame)
		return &ref
	case starlark.String:
		ref := p.Ref(string(v))
		return &ref
	}
	logger.Warn("check returned unsupported value", "panel_id", p.ID, "type", result.Type())
	ref := p.Ref(blame)
	return &ref
}

func defaultBlame(p domain.Panel) string {
	if len(p.Fields) > 0 {
		return p.Fields[0].Name
	}
	for _, g := range p.Groups {
		if len(g.Members) > 0 {
			return g.Members[0]
		}
	}
	return p.ID
}

func environment(p domain.Panel, in ports.FieldInspector) starlark.StringDict {
	refs := make(map[string]domain.FieldRef)
	values := starlark.NewDict(len(p.Fields))
	for _, f := range p.Fields {
		ref := p.Ref(f.Name)
		refs[f.Name] = ref
		_ = values.SetKey(starlark.String(f.Name), toStarlarkValue(in.CurrentValue(ref)))
	}
	for _, g := range p.Groups {
		for _, m := range g.Members {
			ref := domain.FieldRef{PanelID: p.ID, Name: m, Group: g.Name}
			refs[m] = ref
			_ = values.SetKey(starlark.String(m), toStarlarkValue(in.CurrentValue(ref)))
		}
	}
	values.Freeze()

	lookup := func(name string) domain.FieldRef {
		if ref, ok := refs[name]; ok {
			return ref
		}
		return p.Ref(name)
	}

	return starlark.StringDict{
		"values": values,
		"visible": nameBuiltin("visible", func(name string) bool {
			return in.IsVisible(lookup(name))
		}),
		"checked": nameBuiltin("checked", func(name string) bool {
			return in.IsSatisfied(lookup(name))
		}),
		"empty": nameBuiltin("empty", func(name string) bool {
			return isEmpty(in.CurrentValue(lookup(name)))
		}),
	}
}

func nameBuiltin(fn string, f func(name string) bool) *starlark.Builtin {
	return starlark.NewBuiltin(fn, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		return starlark.Bool(f(name)), nil
	})
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return !x
	}
	return false
}
