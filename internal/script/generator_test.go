package script

import (
	"errors"
	"math"
	"testing"
)

const sampleDraws = 10000

func TestGenerateArgumentsWithinBounds(t *testing.T) {
	gen := NewGenerator(NewSeededSource(1))
	const numRecords = 4
	counts := make(map[int]int)
	for i := 0; i < sampleDraws; i++ {
		c, err := gen.Generate(numRecords)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !c.HasArg() {
			if c.Arg != 0 {
				t.Fatalf("%q has no argument but Arg = %d", c.Op, c.Arg)
			}
			continue
		}
		if c.Arg < 1 || c.Arg > numRecords {
			t.Fatalf("argument %d outside [1, %d]", c.Arg, numRecords)
		}
		counts[c.Arg]++
	}
	if counts[1] == 0 || counts[numRecords] == 0 {
		t.Fatalf("boundary values not reached: %v", counts)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	want := float64(total) / numRecords
	for v := 1; v <= numRecords; v++ {
		if dev := math.Abs(float64(counts[v])-want) / want; dev > 0.1 {
			t.Fatalf("argument %d drawn %d times, want about %.0f", v, counts[v], want)
		}
	}
}

func TestGenerateCoversVocabulary(t *testing.T) {
	gen := NewGenerator(NewSeededSource(7))
	seen := make(map[Opcode]int)
	for i := 0; i < sampleDraws; i++ {
		c, err := gen.Generate(4)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen[c.Op]++
	}
	if len(seen) != len(vocabulary) {
		t.Fatalf("saw %d opcodes, want %d: %v", len(seen), len(vocabulary), seen)
	}
	want := float64(sampleDraws) / float64(len(vocabulary))
	for _, tmpl := range vocabulary {
		got := seen[tmpl.Op]
		if dev := math.Abs(float64(got)-want) / want; dev > 0.15 {
			t.Fatalf("opcode %q drawn %d times, want about %.0f", tmpl.Op, got, want)
		}
	}
	if _, ok := seen[OpInit]; ok {
		t.Fatalf("init opcode must not be generated")
	}
}

func TestGenerateSingleRecord(t *testing.T) {
	gen := NewGenerator(NewSeededSource(3))
	for i := 0; i < 500; i++ {
		c, err := gen.Generate(1)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if c.HasArg() && c.Arg != 1 {
			t.Fatalf("Arg = %d, want 1", c.Arg)
		}
	}
}

func TestGenerateRejectsZeroRecords(t *testing.T) {
	gen := NewGenerator(NewSeededSource(3))
	for _, n := range []int{0, -1} {
		if _, err := gen.Generate(n); !errors.Is(err, ErrNoRecords) {
			t.Fatalf("Generate(%d) error = %v, want ErrNoRecords", n, err)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(NewSeededSource(12345))
	b := NewGenerator(NewSeededSource(12345))
	for i := 0; i < 200; i++ {
		ca, _ := a.Generate(16)
		cb, _ := b.Generate(16)
		if ca != cb {
			t.Fatalf("draw %d: %v != %v", i, ca, cb)
		}
	}
}

func TestGenerateFromBytes(t *testing.T) {
	// byte 2 picks pushN, byte 5 picks argument 1 + 5%4 = 2
	gen := NewGenerator(NewByteSource([]byte{2, 5}))
	c, err := gen.Generate(4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c != (Command{Op: OpPushN, Arg: 2}) {
		t.Fatalf("got %#v", c)
	}
	// exhausted source keeps producing the first template
	c, err = gen.Generate(4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Op != OpFlush {
		t.Fatalf("exhausted source: got %q, want %q", c.Op, OpFlush)
	}
}

func TestCommandString(t *testing.T) {
	cases := []struct {
		cmd  Command
		want string
	}{
		{Command{Op: OpFlush}, "L // flush"},
		{Command{Op: OpPush}, "u // push"},
		{Command{Op: OpPushN, Arg: 3}, "N 3 // pushN"},
		{Command{Op: OpPeek, Arg: 1}, "E 1 // peek"},
		{Command{Op: OpPopFIFO}, "o // pop FIFO"},
		{Command{Op: OpPopFIFON, Arg: 4}, "f 4 // pop FIFO n"},
		{Command{Op: OpRemoveN, Arg: 2}, "r 2 // remove n"},
		{Command{Op: OpPopLIFO}, "l // pop LIFO"},
		{Command{Op: OpPopLIFON, Arg: 2}, "I 2 // pop LIFO n"},
	}
	for _, tc := range cases {
		if got := tc.cmd.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestVocabularyIsCopy(t *testing.T) {
	v := Vocabulary()
	if len(v) != 9 {
		t.Fatalf("len(Vocabulary()) = %d, want 9", len(v))
	}
	v[0].Label = "changed"
	if vocabulary[0].Label == "changed" {
		t.Fatalf("Vocabulary must return a copy")
	}
}
