package script

import "fmt"

// Opcode is the single-byte operation code understood by the target's parser.
type Opcode byte

const (
	// OpInit configures the buffer geometry. It only appears as the first line of a session.
	OpInit Opcode = 'i'

	OpFlush    Opcode = 'L' // flush/reset to empty
	OpPush     Opcode = 'u' // push one record
	OpPushN    Opcode = 'N' // push n records
	OpPeek     Opcode = 'E' // peek at n records
	OpPopFIFO  Opcode = 'o' // pop one record from the oldest end
	OpPopFIFON Opcode = 'f' // pop n records from the oldest end
	OpRemoveN  Opcode = 'r' // remove n records
	OpPopLIFO  Opcode = 'l' // pop one record from the newest end
	OpPopLIFON Opcode = 'I' // pop n records from the newest end
)

// Template describes one entry of the command vocabulary.
type Template struct {
	Op Opcode
	// HasArg reports whether the command carries a single count argument.
	HasArg bool
	// Label is rendered as a trailing comment; the target ignores it.
	Label string
}

// vocabulary is the closed set of commands drawn by the generator. Order is
// part of the seeded output, so new entries go at the end.
var vocabulary = [...]Template{
	{Op: OpFlush, Label: "flush"},
	{Op: OpPush, Label: "push"},
	{Op: OpPushN, HasArg: true, Label: "pushN"},
	{Op: OpPeek, HasArg: true, Label: "peek"},
	{Op: OpPopFIFO, Label: "pop FIFO"},
	{Op: OpPopFIFON, HasArg: true, Label: "pop FIFO n"},
	{Op: OpRemoveN, HasArg: true, Label: "remove n"},
	{Op: OpPopLIFO, Label: "pop LIFO"},
	{Op: OpPopLIFON, HasArg: true, Label: "pop LIFO n"},
}

// Vocabulary returns a copy of the command templates in draw order.
func Vocabulary() []Template {
	out := make([]Template, len(vocabulary))
	copy(out, vocabulary[:])
	return out
}

// Lookup returns the template for op.
func Lookup(op Opcode) (Template, bool) {
	for _, t := range vocabulary {
		if t.Op == op {
			return t, true
		}
	}
	return Template{}, false
}

// String returns the opcode as its one-character wire form.
func (op Opcode) String() string {
	return string(rune(op))
}

// GoString makes opcodes readable in test failures.
func (op Opcode) GoString() string {
	return fmt.Sprintf("script.Opcode(%q)", rune(op))
}
