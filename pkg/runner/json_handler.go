package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// JSONHandler implements the IOHandler interface for NDJSON communication.
// Every render is one JSON object per line; every input line is a Command,
// either as an object or as a JSON string in the text syntax.
type JSONHandler struct {
	Reader *bufio.Reader
	Writer io.Writer

	mu        sync.Mutex
	encoder   *json.Encoder
	sanitizer *Sanitizer
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:    bufio.NewReader(r),
		Writer:    w,
		encoder:   json.NewEncoder(w),
		sanitizer: NewSanitizer(0),
	}
}

func (h *JSONHandler) useSanitizer(s *Sanitizer) {
	h.sanitizer = s
}

type envelope struct {
	Type    string `json:"type"`
	View    *View  `json:"view,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *JSONHandler) emit(e envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(e)
}

func (h *JSONHandler) Render(ctx context.Context, v View) error {
	return h.emit(envelope{Type: "view", View: &v})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(envelope{Type: "system", Message: msg})
}

func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}
		line, err := h.Reader.ReadString('\n')
		if err != nil && (line == "" || err != io.EOF) {
			return Command{}, err
		}
		text := strings.TrimSpace(line)
		if text == "" {
			if err == io.EOF {
				return Command{}, io.EOF
			}
			continue
		}

		cmd, perr := h.decodeCommand(text)
		if perr != nil {
			if serr := h.SystemOutput(ctx, perr.Error()); serr != nil {
				return Command{}, serr
			}
			if err == io.EOF {
				return Command{}, io.EOF
			}
			continue
		}
		return cmd, nil
	}
}

func (h *JSONHandler) decodeCommand(text string) (Command, error) {
	clean, err := h.sanitizer.Line(text)
	if err != nil {
		return Command{}, err
	}
	var s string
	if json.Unmarshal([]byte(clean), &s) == nil {
		return ParseCommand(s)
	}
	var cmd Command
	if err := json.Unmarshal([]byte(clean), &cmd); err != nil {
		return Command{}, fmt.Errorf("invalid command: %w", err)
	}
	if cmd.Op == "" {
		return Command{}, fmt.Errorf("invalid command: missing op")
	}
	return cmd, nil
}
