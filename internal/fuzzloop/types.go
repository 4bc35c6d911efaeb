// Package fuzzloop drives the generate, run, classify cycle until the target
// fails or a stop condition fires.
package fuzzloop

import (
	"context"
	"time"

	"ringfuzz/internal/script"
	"ringfuzz/internal/target"
)

// Runner executes one session against a fresh target process.
type Runner interface {
	Run(ctx context.Context, input []byte) (target.Outcome, error)
}

// State is the loop's state machine position.
type State uint8

const (
	// StateRunning means the loop keeps iterating.
	StateRunning State = iota
	// StateHalted is terminal.
	StateHalted
)

// String returns the string representation of State.
func (s State) String() string {
	if s == StateHalted {
		return "halted"
	}
	return "running"
}

// HaltReason records why the loop left the running state without an error.
type HaltReason uint8

const (
	// HaltDefect means the target failed; Result carries the session.
	HaltDefect HaltReason = iota + 1
	// HaltStopped means a stop condition fired or the context was cancelled.
	HaltStopped
)

// String returns the string representation of HaltReason.
func (r HaltReason) String() string {
	switch r {
	case HaltDefect:
		return "defect"
	case HaltStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Result is what a halted loop reports.
type Result struct {
	Reason     HaltReason
	StopCause  string // set for HaltStopped
	Iterations uint64 // sessions executed, including the failing one
	Elapsed    time.Duration

	// Set for HaltDefect.
	Session *script.Session
	Outcome target.Outcome
}

// Found reports whether the result is a defect.
func (r Result) Found() bool {
	return r.Reason == HaltDefect
}

// Stage is the position of one iteration.
type Stage string

const (
	// StageBuild is script generation.
	StageBuild Stage = "build"
	// StageRun is the target process.
	StageRun Stage = "run"
	// StageHalt is the final event of a campaign.
	StageHalt Stage = "halt"
)

// Event reports loop progress.
type Event struct {
	Stage     Stage
	Iteration uint64
	Outcome   target.Outcome // set once StageRun completes
	Done      bool           // StageRun finished
	Reason    HaltReason     // set for StageHalt
	Err       error          // set for StageHalt on harness errors
	Elapsed   time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent blocks until the channel accepts evt. A nil channel drops it.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
