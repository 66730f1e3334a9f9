package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/aretw0/progressforms/pkg/domain"
)

// TextHandler implements the line-based terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// Interactive shows the prompt and the command help. It defaults to
	// whether the input is a terminal.
	Interactive bool

	sanitizer *Sanitizer
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(on bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Interactive = on
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:      bufio.NewReader(r),
		Writer:      w,
		Interactive: isTerminal(r),
		sanitizer:   NewSanitizer(0),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) useSanitizer(s *Sanitizer) {
	h.sanitizer = s
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour context cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Render prints the panel header, description, fields and any blocked-step message.
func (h *TextHandler) Render(ctx context.Context, v View) error {
	if v.Transition != nil && v.Transition.Kind == domain.TransitionBlocked {
		fmt.Fprintf(h.Writer, "! %s\n", v.Message)
		if v.Detail != "" {
			fmt.Fprintf(h.Writer, "  %s\n", v.Detail)
		}
	}
	if v.Transition != nil && !v.Transition.Moved() && v.Transition.Kind != domain.TransitionBlocked {
		return nil
	}

	fmt.Fprintf(h.Writer, "\n%s  %s\n", indicatorLine(v.Indicators), v.Progress)
	fmt.Fprintf(h.Writer, "== %s ==\n", v.Panel.Label())
	if v.Panel.Description != "" {
		desc := v.Panel.Description
		if h.Renderer != nil {
			if rendered, err := h.Renderer(desc); err == nil {
				desc = rendered
			}
		}
		fmt.Fprintln(h.Writer, strings.TrimSpace(desc))
	}
	for _, f := range v.Panel.Fields {
		mark := " "
		if f.Required {
			mark = "*"
		}
		label := f.Name
		if f.Label != "" {
			label = fmt.Sprintf("%s (%s)", f.Label, f.Name)
		}
		fmt.Fprintf(h.Writer, " %s %s: %s\n", mark, label, formatValue(v.Values[f.Name]))
	}
	for _, g := range v.Panel.Groups {
		fmt.Fprintf(h.Writer, "   [%s] pick %d of: %s\n", g.Name, g.Required(), checkedList(g.Members, v.Values))
	}
	if h.Interactive {
		fmt.Fprintln(h.Writer, "(next | back | goto <n|id> | set <field> <value> | check <member> | quit)")
	}
	return nil
}

// Input reads and parses the next command. Blank lines and parse errors are
// reported and the prompt repeats.
func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		default:
			if h.Interactive {
				fmt.Fprint(h.Writer, "> ")
			}
		}

		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return Command{}, io.EOF
			}
			if res.err != nil {
				return Command{}, res.err
			}
			clean, err := h.sanitizer.Line(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			cmd, err := ParseCommand(clean)
			if errors.Is(err, ErrEmptyCommand) {
				continue
			}
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v\n", err)
				continue
			}
			return cmd, nil
		}
	}
}

// SystemOutput prints a meta-message with a prefix.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}

func indicatorLine(states []domain.IndicatorState) string {
	var b strings.Builder
	for _, s := range states {
		switch s {
		case domain.IndicatorCompleted:
			b.WriteString("[x]")
		case domain.IndicatorActive:
			b.WriteString("[>]")
		default:
			b.WriteString("[ ]")
		}
	}
	return b.String()
}

func formatValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func checkedList(members []string, values map[string]any) string {
	out := make([]string, len(members))
	for i, m := range members {
		if b, ok := values[m].(bool); ok && b {
			out[i] = "[x] " + m
		} else {
			out[i] = "[ ] " + m
		}
	}
	return strings.Join(out, ", ")
}
