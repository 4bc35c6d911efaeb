package script

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		in   string
		want Line
	}{
		{"i 8 2", Line{Kind: LineInit, Geometry: Geometry{8, 2}}},
		{"i 8 2 // init", Line{Kind: LineInit, Geometry: Geometry{8, 2}, Comment: "init"}},
		{"L // flush", Line{Kind: LineCommand, Command: Command{Op: OpFlush}, Comment: "flush"}},
		{"N 3 // pushN ", Line{Kind: LineCommand, Command: Command{Op: OpPushN, Arg: 3}, Comment: "pushN"}},
		{"E 1", Line{Kind: LineCommand, Command: Command{Op: OpPeek, Arg: 1}}},
		{"  r   4  ", Line{Kind: LineCommand, Command: Command{Op: OpRemoveN, Arg: 4}}},
		{"I 2 //pop LIFO n", Line{Kind: LineCommand, Command: Command{Op: OpPopLIFON, Arg: 2}, Comment: "pop LIFO n"}},
	}
	for _, tc := range cases {
		got, err := ParseLine(tc.in)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLine(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseLineErrors(t *testing.T) {
	cases := []string{
		"",
		"// only a comment",
		"x 1",
		"push",
		"N",
		"N 0",
		"N -1",
		"N abc",
		"u 3",
		"i 8",
		"i 8 2 1",
		"N 99999999999999999999999",
		"N 18446744073709551615", // fits uint64, not int
	}
	for _, in := range cases {
		if _, err := ParseLine(in); !errors.Is(err, ErrSyntax) {
			t.Fatalf("ParseLine(%q) error = %v, want ErrSyntax", in, err)
		}
	}
}

func TestParseLineRoundTripsVocabulary(t *testing.T) {
	for _, tmpl := range vocabulary {
		c := Command{Op: tmpl.Op}
		if tmpl.HasArg {
			c.Arg = 7
		}
		l, err := ParseLine(c.String())
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", c.String(), err)
		}
		if l.Command != c || l.Comment != tmpl.Label {
			t.Fatalf("ParseLine(%q) = %+v", c.String(), l)
		}
	}
}

func TestParseSessionErrors(t *testing.T) {
	cases := []string{
		"",
		"L // flush",
		"i 8 2\nL\ni 8 2",
		"i 8 2\n\nL",
		"i 8 2\nQ",
	}
	for _, in := range cases {
		if _, err := ParseSession(in); err == nil {
			t.Fatalf("ParseSession(%q) succeeded, want error", in)
		}
	}
}

func TestParseSessionKeepsText(t *testing.T) {
	const in = "i 8 2\nN   3 // custom note\nL"
	s, err := ParseSession(in)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if s.Text() != in {
		t.Fatalf("Text() = %q, want %q", s.Text(), in)
	}
	if cmds := s.Commands(); len(cmds) != 2 || cmds[0] != (Command{Op: OpPushN, Arg: 3}) {
		t.Fatalf("Commands() = %+v", cmds)
	}
}
