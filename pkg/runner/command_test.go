package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"next", Command{Op: OpNext}},
		{"N", Command{Op: OpNext}},
		{"prev", Command{Op: OpBack}},
		{"goto 3", Command{Op: OpGoto, Target: "3"}},
		{"jump payment", Command{Op: OpGoto, Target: "payment"}},
		{"set name Ana  Maria", Command{Op: OpSet, Target: "name", Value: "Ana  Maria"}},
		{"check newsletter", Command{Op: OpCheck, Target: "newsletter"}},
		{"exit", Command{Op: OpQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := ParseCommand("   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = ParseCommand("goto")
	assert.ErrorContains(t, err, "usage: goto")

	_, err = ParseCommand("set name")
	assert.ErrorContains(t, err, "usage: set")

	_, err = ParseCommand("dance")
	assert.ErrorContains(t, err, "unknown command")
}

func TestCommand_Index(t *testing.T) {
	idx, ok := Command{Target: "2"}.index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = Command{Target: "shipping"}.index()
	assert.False(t, ok)
}
