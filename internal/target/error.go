package target

import "fmt"

// Error is a harness or environment failure: the target could not be found,
// started or fed. It is never a target defect.
type Error struct {
	Op   string // "resolve", "start", "write stdin", "wait"
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("target %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("target %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
