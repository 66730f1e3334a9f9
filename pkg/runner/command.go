package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op names a runner command.
type Op string

const (
	OpNext    Op = "next"
	OpBack    Op = "back"
	OpGoto    Op = "goto"
	OpClick   Op = "click"
	OpSet     Op = "set"
	OpUnset   Op = "unset"
	OpCheck   Op = "check"
	OpUncheck Op = "uncheck"
	OpHide    Op = "hide"
	OpShow    Op = "show"
	OpStatus  Op = "status"
	OpQuit    Op = "quit"
)

var aliases = map[string]Op{
	"n":        OpNext,
	"b":        OpBack,
	"prev":     OpBack,
	"previous": OpBack,
	"g":        OpGoto,
	"jump":     OpGoto,
	"exit":     OpQuit,
	"q":        OpQuit,
}

// ErrEmptyCommand is returned for blank input lines.
var ErrEmptyCommand = errors.New("empty command")

// Command is one user instruction. Target is a panel ID, index or field name
// depending on Op. Value is only used by set.
type Command struct {
	Op     Op     `json:"op"`
	Target string `json:"target,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// ParseCommand reads the text form of a command, e.g. "set email ana@example.com".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	word := strings.ToLower(fields[0])
	op := Op(word)
	if alias, ok := aliases[word]; ok {
		op = alias
	}
	cmd := Command{Op: op}

	switch op {
	case OpNext, OpBack, OpStatus, OpQuit:
		return cmd, nil
	case OpGoto, OpClick, OpUnset, OpCheck, OpUncheck, OpHide, OpShow:
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: %s <%s>", op, targetName(op))
		}
		cmd.Target = fields[1]
		return cmd, nil
	case OpSet:
		if len(fields) < 3 {
			return Command{}, fmt.Errorf("usage: set <field> <value>")
		}
		cmd.Target = fields[1]
		rest := strings.TrimSpace(line)
		rest = strings.TrimSpace(rest[len(fields[0]):])
		cmd.Value = strings.TrimSpace(rest[len(fields[1]):])
		return cmd, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", fields[0])
}

func targetName(op Op) string {
	switch op {
	case OpGoto:
		return "index|panel"
	case OpClick:
		return "index"
	}
	return "field"
}

// index interprets Target as a 1-based panel number, the way panels are shown to users.
func (c Command) index() (int, bool) {
	n, err := strconv.Atoi(c.Target)
	if err != nil {
		return 0, false
	}
	return n - 1, true
}
