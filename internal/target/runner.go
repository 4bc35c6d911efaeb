// Package target launches the buffer-under-test and classifies how it exits.
package target

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"ringfuzz/internal/trace"
)

const (
	// DefaultCaptureLimit caps each captured stream.
	DefaultCaptureLimit = 64 << 10 // 64 KiB
	// DefaultWaitDelay bounds the wait for pipes held open by the target's
	// own children after it exits or is killed.
	DefaultWaitDelay = time.Second
)

// Options configures a Runner.
type Options struct {
	// Path to the target executable, already resolved.
	Path string
	// Timeout bounds a single run. Zero disables it.
	Timeout time.Duration
	// WaitDelay bounds the wait for I/O after the child is killed or exits
	// (DefaultWaitDelay when zero).
	WaitDelay time.Duration
	// CaptureOutput keeps stdout/stderr instead of discarding them.
	CaptureOutput bool
	// CaptureLimit caps each captured stream (DefaultCaptureLimit when zero).
	CaptureLimit int
}

// Runner executes one script per fresh target process.
type Runner struct {
	opts Options
}

// New validates the target path and returns a runner.
func New(opts Options) (*Runner, error) {
	path, err := checkExecutable(opts.Path)
	if err != nil {
		return nil, err
	}
	opts.Path = path
	if opts.CaptureLimit <= 0 {
		opts.CaptureLimit = DefaultCaptureLimit
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = DefaultWaitDelay
	}
	return &Runner{opts: opts}, nil
}

// Path returns the absolute path of the target.
func (r *Runner) Path() string {
	return r.opts.Path
}

// Run feeds input to a fresh target on stdin and waits for it to exit.
//
// A non-nil error is a harness problem (*Error) or the parent context's
// error; target defects, including timeouts, are reported through the Outcome.
func (r *Runner) Run(ctx context.Context, input []byte) (Outcome, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeProcess, "target", trace.CurrentSpan(ctx))

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
	}
	defer cancel()

	// #nosec G204 -- the target path comes from the operator's configuration
	cmd := exec.CommandContext(runCtx, r.opts.Path)
	cmd.Stdin = bytes.NewReader(input)
	cmd.WaitDelay = r.opts.WaitDelay

	var stdout, stderr *cappedBuffer
	if r.opts.CaptureOutput {
		stdout = newCappedBuffer(r.opts.CaptureLimit)
		stderr = newCappedBuffer(r.opts.CaptureLimit)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	start := time.Now()
	err := cmd.Run()
	dur := time.Since(start)

	if ctx.Err() != nil {
		span.End("cancelled")
		return Outcome{}, ctx.Err()
	}

	ps := cmd.ProcessState
	if ps == nil {
		span.End("start failed")
		return Outcome{}, &Error{Op: "start", Path: r.opts.Path, Err: err}
	}

	out := Outcome{Duration: dur}
	if stdout != nil {
		out.Stdout = stdout.Bytes()
		out.Stderr = stderr.Bytes()
		out.Truncated = stdout.truncated || stderr.truncated
	}

	timedOut := r.opts.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded)
	switch {
	case timedOut && !ps.Success():
		out.Status = StatusTimeout
		out.Timeout = r.opts.Timeout
	case ps.Success():
		if err != nil && !errors.Is(err, exec.ErrWaitDelay) {
			span.End("stdin failed")
			return Outcome{}, &Error{Op: "write stdin", Path: r.opts.Path, Err: err}
		}
		out.Status = StatusOK
	case ps.ExitCode() == -1:
		out.Status = StatusSignal
		out.Signal = strings.TrimPrefix(ps.String(), "signal: ")
	default:
		out.Status = StatusExit
		out.ExitCode = ps.ExitCode()
	}

	span.WithExtra("pid", pidString(ps.Pid())).WithExtra("ms", millis(dur))
	span.End(out.String())
	return out, nil
}
