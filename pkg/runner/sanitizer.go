package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/progressforms/pkg/domain"
)

// DefaultMaxInputSize bounds one command line or field value, in bytes.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	ErrNotANumber    = errors.New("input is not a number")
)

// InputError reports a rejected command line or field value.
type InputError struct {
	// Field is the field the value was meant for, empty for a command line.
	Field string
	Size  int
	Limit int
	Err   error
}

func (e *InputError) Error() string {
	target := "input"
	if e.Field != "" {
		target = "value of " + e.Field
	}
	if errors.Is(e.Err, ErrInputTooLarge) {
		return fmt.Sprintf("%s: %v (size=%d limit=%d)", target, e.Err, e.Size, e.Limit)
	}
	return fmt.Sprintf("%s: %v", target, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Sanitizer cleans text typed by a user before it reaches the field inspector.
type Sanitizer struct {
	maxSize int
}

// NewSanitizer returns a sanitizer accepting at most maxSize bytes per input.
// A non-positive size selects DefaultMaxInputSize.
func NewSanitizer(maxSize int) *Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}
	return &Sanitizer{maxSize: maxSize}
}

// MaxSize returns the byte limit.
func (s *Sanitizer) MaxSize() int {
	return s.maxSize
}

// Line cleans one command line. Tabs survive, every other control character is dropped.
func (s *Sanitizer) Line(input string) (string, error) {
	if err := s.check("", input); err != nil {
		return "", err
	}
	return strip(input, false), nil
}

// Value cleans the value of field according to its kind. Line breaks survive
// only in text areas, number fields must parse, and single-line kinds are trimmed.
func (s *Sanitizer) Value(field domain.Field, input string) (string, error) {
	if err := s.check(field.Name, input); err != nil {
		return "", err
	}
	switch field.Kind {
	case domain.FieldTextArea:
		return strip(input, true), nil
	case domain.FieldPassword:
		return strip(input, false), nil
	case domain.FieldNumber:
		v := strings.TrimSpace(strip(input, false))
		if v == "" {
			return "", nil
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", &InputError{Field: field.Name, Size: len(input), Limit: s.maxSize, Err: ErrNotANumber}
		}
		return v, nil
	}
	return strings.TrimSpace(strip(input, false)), nil
}

func (s *Sanitizer) check(field, input string) error {
	if len(input) > s.maxSize {
		return &InputError{Field: field, Size: len(input), Limit: s.maxSize, Err: ErrInputTooLarge}
	}
	if !utf8.ValidString(input) {
		return &InputError{Field: field, Size: len(input), Limit: s.maxSize, Err: ErrInvalidUTF8}
	}
	return nil
}

// strip drops control characters except tab, and newlines when multiline is set.
// CRLF collapses to LF.
func strip(input string, multiline bool) string {
	keep := func(r rune) bool {
		return !unicode.IsControl(r) || r == '\t' || (multiline && r == '\n')
	}
	if multiline {
		input = strings.ReplaceAll(input, "\r\n", "\n")
	}
	if strings.IndexFunc(input, func(r rune) bool { return !keep(r) }) < 0 {
		return input
	}
	return strings.Map(func(r rune) rune {
		if keep(r) {
			return r
		}
		return -1
	}, input)
}
