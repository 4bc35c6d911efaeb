package script

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// ErrSyntax marks a line that does not follow the command-script format.
var ErrSyntax = errors.New("invalid script line")

// LineKind distinguishes the init header from ordinary commands.
type LineKind uint8

const (
	// LineCommand is an opcode line, optionally with a count.
	LineCommand LineKind = iota + 1
	// LineInit is the "i <capacity> <record size>" header.
	LineInit
)

// Line is one decoded script line.
type Line struct {
	Kind     LineKind
	Geometry Geometry // set for LineInit
	Command  Command  // set for LineCommand
	Comment  string   // text after "//", trimmed
}

// ParseLine decodes a single line. Anything after "//" is a comment.
func ParseLine(line string) (Line, error) {
	body, comment, _ := strings.Cut(line, "//")
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return Line{}, fmt.Errorf("%w: empty command", ErrSyntax)
	}
	if len(fields[0]) != 1 {
		return Line{}, fmt.Errorf("%w: opcode %q is not a single character", ErrSyntax, fields[0])
	}
	op := Opcode(fields[0][0])
	out := Line{Comment: strings.TrimSpace(comment)}

	if op == OpInit {
		if len(fields) != 3 {
			return Line{}, fmt.Errorf("%w: init takes 2 arguments, got %d", ErrSyntax, len(fields)-1)
		}
		capacity, err := parseCount(fields[1])
		if err != nil {
			return Line{}, fmt.Errorf("init capacity: %w", err)
		}
		recordSize, err := parseCount(fields[2])
		if err != nil {
			return Line{}, fmt.Errorf("init record size: %w", err)
		}
		out.Kind = LineInit
		out.Geometry = Geometry{CapacityBytes: capacity, RecordSizeBytes: recordSize}
		return out, nil
	}

	t, ok := Lookup(op)
	if !ok {
		return Line{}, fmt.Errorf("%w: unknown opcode %q", ErrSyntax, fields[0])
	}
	want := 1
	if t.HasArg {
		want = 2
	}
	if len(fields) != want {
		return Line{}, fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrSyntax, t.Label, want-1, len(fields)-1)
	}
	out.Kind = LineCommand
	out.Command = Command{Op: op}
	if t.HasArg {
		n, err := parseCount(fields[1])
		if err != nil {
			return Line{}, fmt.Errorf("%s argument: %w", t.Label, err)
		}
		out.Command.Arg = n
	}
	return out, nil
}

// ParseSession decodes a whole script. The first line must be the init header
// and no later line may be one.
func ParseSession(text string) (*Session, error) {
	lines := strings.Split(text, "\n")
	head, err := ParseLine(lines[0])
	if err != nil {
		return nil, fmt.Errorf("line 1: %w", err)
	}
	if head.Kind != LineInit {
		return nil, fmt.Errorf("line 1: %w: expected init line, got %q", ErrSyntax, lines[0])
	}
	cmds := make([]Command, 0, len(lines)-1)
	for i, raw := range lines[1:] {
		l, err := ParseLine(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		if l.Kind != LineCommand {
			return nil, fmt.Errorf("line %d: %w: repeated init line", i+2, ErrSyntax)
		}
		cmds = append(cmds, l.Command)
	}
	s := newSession(head.Geometry, cmds)
	// keep the caller's bytes so comments and spacing survive a replay
	s.text = text
	return s, nil
}

func parseCount(field string) (int, error) {
	v, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrSyntax, field)
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: count must be positive", ErrSyntax)
	}
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q overflows int: %w", ErrSyntax, field, err)
	}
	return n, nil
}
