package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/pkg/domain"
)

func TestSanitizer_Line(t *testing.T) {
	s := NewSanitizer(0)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text passes through", "set email ana@example.com", "set email ana@example.com"},
		{"tabs survive", "set\tname\tAna", "set\tname\tAna"},
		{"line breaks removed", "next\r\n", "next"},
		{"escape sequences lose ESC", "set name \x1b[31mred\x1b[0m", "set name [31mred[0m"},
		{"null byte removed", "a\x00b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Line(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizer_Value(t *testing.T) {
	s := NewSanitizer(0)
	tests := []struct {
		name  string
		field domain.Field
		input string
		want  string
	}{
		{"text is trimmed to one line", domain.Field{Name: "name"}, "  Ana\nMaria ", "AnaMaria"},
		{"email is trimmed", domain.Field{Name: "email", Kind: domain.FieldEmail}, " ana@example.com\t", "ana@example.com"},
		{"textarea keeps line breaks", domain.Field{Name: "bio", Kind: domain.FieldTextArea}, "one\r\ntwo\x07", "one\ntwo"},
		{"password keeps spaces", domain.Field{Name: "pw", Kind: domain.FieldPassword}, " s3cret ", " s3cret "},
		{"number is trimmed", domain.Field{Name: "age", Kind: domain.FieldNumber}, " 42 ", "42"},
		{"empty number clears", domain.Field{Name: "age", Kind: domain.FieldNumber}, "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Value(tt.field, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("number must parse", func(t *testing.T) {
		_, err := s.Value(domain.Field{Name: "age", Kind: domain.FieldNumber}, "forty")
		assert.ErrorIs(t, err, ErrNotANumber)
		var ierr *InputError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, "age", ierr.Field)
	})
}

func TestSanitizer_Limits(t *testing.T) {
	s := NewSanitizer(10)
	assert.Equal(t, 10, s.MaxSize())

	_, err := s.Line("1234567890")
	assert.NoError(t, err)

	_, err = s.Value(domain.Field{Name: "bio"}, "12345678901")
	assert.ErrorIs(t, err, ErrInputTooLarge)
	var ierr *InputError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "bio", ierr.Field)
	assert.Equal(t, 11, ierr.Size)
	assert.Equal(t, 10, ierr.Limit)
	assert.Contains(t, err.Error(), "value of bio")

	assert.Equal(t, DefaultMaxInputSize, NewSanitizer(-1).MaxSize())
	_, err = NewSanitizer(0).Line(strings.Repeat("a", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	t.Run("invalid utf8", func(t *testing.T) {
		_, err := s.Line("\xbd\xb2\x3d")
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})
}
