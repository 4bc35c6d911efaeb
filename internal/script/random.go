package script

import "math/rand/v2"

// RandomSource abstracts the source of randomness used by the generator.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// NewSeededSource returns a deterministic PCG source. The same seed yields the
// same stream of sessions.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ByteSource draws values from a byte slice. Once the data is exhausted every
// draw returns 0, so generation always terminates.
type ByteSource struct {
	data []byte
	pos  int
}

// NewByteSource wraps data without copying it.
func NewByteSource(data []byte) *ByteSource {
	return &ByteSource{data: data}
}

// IntN consumes one byte per draw.
func (s *ByteSource) IntN(n int) int {
	if n <= 0 || s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

// Remaining reports how many bytes are left.
func (s *ByteSource) Remaining() int {
	return len(s.data) - s.pos
}
