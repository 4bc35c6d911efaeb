// Package trace provides the tracing subsystem for ringfuzz campaigns.
//
// The trace package records campaign progress, per-session outcomes and
// target process lifecycles to help diagnose slow or stuck targets and
// harness failures. Trace output never goes to stdout, which is reserved
// for the reproduction script.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	ringfuzz fuzz --trace=- --trace-level=detail
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer, dumped after a harness error
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Campaign start and halt only
//   - LevelPhase: Plus one event pair per session
//   - LevelDetail: Plus target process spawn and exit
//   - LevelDebug: Everything including every generated command
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeCampaign: One fuzzing campaign (a single CLI invocation)
//   - ScopeSession: One generated session
//   - ScopeProcess: One target process
//   - ScopeCommand: One generated command line
//
// # Context Propagation
//
// Tracers are propagated through the fuzz loop via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeSession, "session", parentID)
//	defer span.End("")
package trace
