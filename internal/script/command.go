package script

import (
	"strconv"
	"strings"
)

// Command is one generated protocol line. Arg is zero for commands without an argument.
type Command struct {
	Op  Opcode
	Arg int
}

// HasArg reports whether the command's template takes an argument.
func (c Command) HasArg() bool {
	t, ok := Lookup(c.Op)
	return ok && t.HasArg
}

// Label returns the decorative description of the command.
func (c Command) Label() string {
	t, ok := Lookup(c.Op)
	if !ok {
		return ""
	}
	return t.Label
}

// String renders the command as a script line, e.g. "N 3 // pushN".
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteByte(byte(c.Op))
	if c.HasArg() {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(c.Arg))
	}
	if label := c.Label(); label != "" {
		sb.WriteString(" // ")
		sb.WriteString(label)
	}
	return sb.String()
}
