package script

import (
	"errors"
	"fmt"
)

// ErrNoRecords is returned when a geometry or generator bound yields no whole record.
var ErrNoRecords = errors.New("geometry holds no records")

// Geometry is the buffer shape announced by the init line.
type Geometry struct {
	CapacityBytes   int
	RecordSizeBytes int
}

// NewGeometry validates the pair and returns it.
func NewGeometry(capacity, recordSize int) (Geometry, error) {
	g := Geometry{CapacityBytes: capacity, RecordSizeBytes: recordSize}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate checks that both sizes are positive and at least one record fits.
func (g Geometry) Validate() error {
	if g.CapacityBytes <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", g.CapacityBytes)
	}
	if g.RecordSizeBytes <= 0 {
		return fmt.Errorf("record size must be positive, got %d", g.RecordSizeBytes)
	}
	if g.NumRecords() < 1 {
		return fmt.Errorf("%w: capacity %d < record size %d", ErrNoRecords, g.CapacityBytes, g.RecordSizeBytes)
	}
	return nil
}

// NumRecords is the number of whole records that fit; a partial trailing record is dropped.
func (g Geometry) NumRecords() int {
	if g.RecordSizeBytes <= 0 {
		return 0
	}
	return g.CapacityBytes / g.RecordSizeBytes
}

// InitLine renders the session header, e.g. "i 8 2".
func (g Geometry) InitLine() string {
	return fmt.Sprintf("%c %d %d", OpInit, g.CapacityBytes, g.RecordSizeBytes)
}
