// Package process runs allow-listed external commands as panel validators.
//
// A definition references one with `check: {use: <name>}` once the runner is
// installed into a registry. Field values reach the command as environment
// variables, never as arguments, so user input cannot inject flags.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/progressforms/internal/logging"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/ports"
	"github.com/aretw0/progressforms/pkg/registry"
)

// DefaultTimeout bounds one validator execution.
const DefaultTimeout = 5 * time.Second

// EnvPrefix prefixes the variables passed to validator commands.
const EnvPrefix = "PROGRESSFORMS_"

var unsafeKey = regexp.MustCompile(`[^A-Z0-9_]`)

// Runner holds the allow-list of external validators.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
	timeout  time.Duration
	logger   *slog.Logger
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(validators map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, v := range validators {
			r.registry[name] = RegisteredProcess{Command: v.Command, Args: v.Args, Env: v.Environment}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each execution.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger for execution failures.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
		timeout:  DefaultTimeout,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Install registers every allow-listed command as a named validator.
func (r *Runner) Install(reg *registry.Registry) {
	for name := range r.registry {
		reg.Register(name, r.factory(name))
	}
}

func (r *Runner) factory(name string) registry.Factory {
	return func(panel domain.Panel, check domain.Check) (ports.Validator, error) {
		if len(panel.Fields) == 0 && check.Blame == "" {
			return nil, fmt.Errorf("external validator %s needs a field to blame", name)
		}
		return func(p domain.Panel, in ports.FieldInspector) *domain.FieldRef {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			defer cancel()
			return r.Validate(ctx, name, p, check, in)
		}, nil
	}
}

// Result is the outcome of one execution.
type Result struct {
	Passed bool
	Blame  string
	Output string
}

// Execute runs the named command for a panel and reports whether it passed.
// A non-zero exit fails the panel. The command may name the field to blame
// on its first stdout line, or as {"blame": "<field>"}.
func (r *Runner) Execute(ctx context.Context, name string, panel domain.Panel, check domain.Check, in ports.FieldInspector) (Result, error) {
	proc, ok := r.registry[name]
	if !ok {
		return Result{}, fmt.Errorf("process validator not registered: %s", name)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(proc, panel, check, in)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := strings.TrimSpace(stdout.String())
	if err != nil {
		if _, exited := err.(*exec.ExitError); !exited || ctx.Err() != nil {
			return Result{}, fmt.Errorf("execution failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
		}
		return Result{Passed: false, Blame: blameFrom(output), Output: output}, nil
	}
	return Result{Passed: true, Output: output}, nil
}

// Validate adapts Execute to the validator contract. Execution errors fail closed.
func (r *Runner) Validate(ctx context.Context, name string, panel domain.Panel, check domain.Check, in ports.FieldInspector) *domain.FieldRef {
	res, err := r.Execute(ctx, name, panel, check, in)
	if err != nil {
		r.logger.Error("external validator failed", "validator", name, "panel", panel.ID, "err", err)
	} else if res.Passed {
		return nil
	}

	blame := check.Blame
	if _, ok := panel.Field(res.Blame); ok {
		blame = res.Blame
	}
	if blame == "" {
		blame = panel.Fields[0].Name
	}
	ref := panel.Ref(blame)
	return &ref
}

func environment(proc RegisteredProcess, panel domain.Panel, check domain.Check, in ports.FieldInspector) []string {
	env := []string{EnvPrefix + "PANEL=" + panel.ID}
	for k, v := range proc.Env {
		env = append(env, k+"="+v)
	}
	for k, v := range check.Args {
		env = append(env, EnvPrefix+"ARG_"+envKey(k)+"="+v)
	}
	for _, f := range panel.Fields {
		ref := panel.Ref(f.Name)
		if !in.IsVisible(ref) {
			continue
		}
		env = append(env, EnvPrefix+"FIELD_"+envKey(f.Name)+"="+stringify(in.CurrentValue(ref)))
	}
	return env
}

func envKey(k string) string {
	return unsafeKey.ReplaceAllString(strings.ToUpper(k), "_")
}

func stringify(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

func blameFrom(output string) string {
	if strings.HasPrefix(output, "{") {
		var payload struct {
			Blame string `json:"blame"`
		}
		if err := json.Unmarshal([]byte(output), &payload); err == nil {
			return payload.Blame
		}
	}
	line, _, _ := strings.Cut(output, "\n")
	return strings.TrimSpace(line)
}
