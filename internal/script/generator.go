package script

import "fmt"

// Generator produces random commands from the vocabulary.
type Generator struct {
	src RandomSource
}

// NewGenerator returns a generator drawing from src.
func NewGenerator(src RandomSource) *Generator {
	return &Generator{src: src}
}

// Generate picks a template uniformly and, when it takes an argument, an
// argument uniformly from [1, numRecords].
func (g *Generator) Generate(numRecords int) (Command, error) {
	if numRecords < 1 {
		return Command{}, fmt.Errorf("%w: generator bound %d", ErrNoRecords, numRecords)
	}
	t := vocabulary[g.src.IntN(len(vocabulary))]
	cmd := Command{Op: t.Op}
	if t.HasArg {
		cmd.Arg = 1 + g.src.IntN(numRecords)
	}
	return cmd, nil
}
