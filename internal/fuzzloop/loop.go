package fuzzloop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ringfuzz/internal/observ"
	"ringfuzz/internal/script"
	"ringfuzz/internal/trace"
)

// Timer phase names.
const (
	PhaseBuild = "build"
	PhaseRun   = "run"
)

// Options configures a Loop.
type Options struct {
	Builder *script.Builder
	Runner  Runner
	Stop    StopCondition // Never when nil
	Sink    ProgressSink  // optional
	Timer   *observ.Timer // optional
}

// Loop is a single-goroutine fuzz campaign. Iterations never overlap.
type Loop struct {
	opts  Options
	state State
}

// New checks the options and returns a loop in the running state.
func New(opts Options) (*Loop, error) {
	if opts.Builder == nil {
		return nil, errors.New("fuzzloop: nil builder")
	}
	if opts.Runner == nil {
		return nil, errors.New("fuzzloop: nil runner")
	}
	if opts.Stop == nil {
		opts.Stop = Never
	}
	return &Loop{opts: opts, state: StateRunning}, nil
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

// Run iterates until the target fails, a stop condition fires, the context
// is cancelled, or a harness error occurs. A halted loop cannot run again.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	if l.state == StateHalted {
		return Result{}, errors.New("fuzzloop: loop already halted")
	}
	defer func() { l.state = StateHalted }()

	tr := trace.FromContext(ctx)
	beat := trace.HeartbeatFrom(ctx)
	campaign := trace.Begin(tr, trace.ScopeCampaign, "campaign", 0)
	ctx = trace.WithSpan(ctx, campaign)
	start := time.Now()

	var done uint64
	halt := func(res Result, err error) (Result, error) {
		res.Iterations = done
		res.Elapsed = time.Since(start)
		l.emit(Event{Stage: StageHalt, Iteration: done, Reason: res.Reason, Err: err, Elapsed: res.Elapsed})
		detail := res.Reason.String()
		if err != nil {
			detail = "error: " + err.Error()
		}
		campaign.WithExtra("iterations", strconv.FormatUint(done, 10)).End(detail)
		return res, err
	}

	for {
		if ctx.Err() != nil {
			return halt(Result{Reason: HaltStopped, StopCause: "interrupted"}, nil)
		}
		if stop, why := l.opts.Stop.Stop(done, time.Since(start)); stop {
			return halt(Result{Reason: HaltStopped, StopCause: why}, nil)
		}

		iter := done + 1
		beat.Mark(iter)
		sessionSpan := trace.Begin(tr, trace.ScopeSession, "session", campaign.ID())
		sessionSpan.WithExtra("n", strconv.FormatUint(iter, 10))
		sctx := trace.WithSpan(ctx, sessionSpan)

		l.emit(Event{Stage: StageBuild, Iteration: iter})
		mark := l.opts.Timer.Begin(PhaseBuild)
		session, err := l.opts.Builder.Build()
		l.opts.Timer.End(mark)
		if err != nil {
			sessionSpan.End("build failed")
			return halt(Result{}, fmt.Errorf("iteration %d: build session: %w", iter, err))
		}
		if tr.Level().ShouldEmit(trace.ScopeCommand) {
			for _, cmd := range session.Commands() {
				trace.Point(tr, trace.ScopeCommand, "command", cmd.String(), sessionSpan.ID())
			}
		}

		l.emit(Event{Stage: StageRun, Iteration: iter})
		mark = l.opts.Timer.Begin(PhaseRun)
		out, err := l.opts.Runner.Run(sctx, session.Bytes())
		l.opts.Timer.End(mark)
		if err != nil {
			sessionSpan.End("run failed")
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return halt(Result{Reason: HaltStopped, StopCause: "interrupted"}, nil)
			}
			return halt(Result{}, fmt.Errorf("iteration %d: run target: %w", iter, err))
		}
		done = iter
		l.emit(Event{Stage: StageRun, Iteration: iter, Outcome: out, Done: true, Elapsed: out.Duration})
		sessionSpan.End(out.String())

		if out.Failed() {
			return halt(Result{Reason: HaltDefect, Session: session, Outcome: out}, nil)
		}
	}
}

func (l *Loop) emit(ev Event) {
	if l.opts.Sink != nil {
		l.opts.Sink.OnEvent(ev)
	}
}
