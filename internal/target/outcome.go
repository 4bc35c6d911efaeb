package target

import (
	"fmt"
	"time"
)

// Status classifies how a target run ended.
type Status uint8

const (
	// StatusOK means the target processed the whole script and exited 0.
	StatusOK Status = iota + 1
	// StatusExit means a non-zero exit code.
	StatusExit
	// StatusSignal means the target was terminated by a signal or fault.
	StatusSignal
	// StatusTimeout means the run exceeded the timeout and was killed.
	StatusTimeout
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusExit:
		return "exit"
	case StatusSignal:
		return "signal"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one target run.
type Outcome struct {
	Status   Status
	ExitCode int    // set for StatusExit
	Signal   string // set for StatusSignal, e.g. "segmentation fault (core dumped)"
	Timeout  time.Duration
	Duration time.Duration

	// Captured output, only when the runner keeps it.
	Stdout    []byte
	Stderr    []byte
	Truncated bool
}

// Failed reports whether the outcome is a target defect.
func (o Outcome) Failed() bool {
	return o.Status != StatusOK
}

// String describes the outcome for logs and reports.
func (o Outcome) String() string {
	switch o.Status {
	case StatusOK:
		return "ok"
	case StatusExit:
		return fmt.Sprintf("exit status %d", o.ExitCode)
	case StatusSignal:
		return "signal: " + o.Signal
	case StatusTimeout:
		return fmt.Sprintf("timed out after %s", o.Timeout)
	default:
		return "unknown outcome"
	}
}
