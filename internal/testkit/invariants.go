package testkit

import (
	"fmt"
	"strings"

	"ringfuzz/internal/script"
)

// CheckSessionInvariants runs the structural checks every generated script must pass:
// 1) the first line is an init header for geometry g
// 2) exactly length command lines follow, with no blank lines
// 3) every command line parses and every argument lies in [1, g.NumRecords()]
func CheckSessionInvariants(text string, g script.Geometry, length int) error {
	lines := strings.Split(text, "\n")
	if len(lines) != length+1 {
		return fmt.Errorf("got %d lines, want %d", len(lines), length+1)
	}

	// 1) header
	head, err := script.ParseLine(lines[0])
	if err != nil {
		return fmt.Errorf("line 1: %w", err)
	}
	if head.Kind != script.LineInit {
		return fmt.Errorf("line 1: not an init line: %q", lines[0])
	}
	if head.Geometry != g {
		return fmt.Errorf("line 1: geometry %+v, want %+v", head.Geometry, g)
	}

	// 2) and 3) body
	maxArg := g.NumRecords()
	for i, raw := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("line %d: blank line", lineNo)
		}
		l, err := script.ParseLine(raw)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if l.Kind != script.LineCommand {
			return fmt.Errorf("line %d: unexpected init line", lineNo)
		}
		if l.Command.HasArg() && (l.Command.Arg < 1 || l.Command.Arg > maxArg) {
			return fmt.Errorf("line %d: argument %d outside [1, %d]", lineNo, l.Command.Arg, maxArg)
		}
		if l.Comment != l.Command.Label() {
			return fmt.Errorf("line %d: comment %q, want %q", lineNo, l.Comment, l.Command.Label())
		}
	}
	return nil
}
