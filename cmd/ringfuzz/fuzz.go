package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"ringfuzz/internal/config"
	"ringfuzz/internal/fuzzloop"
	"ringfuzz/internal/observ"
	"ringfuzz/internal/report"
	"ringfuzz/internal/script"
	"ringfuzz/internal/target"
	"ringfuzz/internal/trace"
)

func newFuzzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Run a fuzz campaign against the target",
		Long: `Run a fuzz campaign: generate a random session, feed it to a fresh target
process, and repeat until the target fails or a stop condition fires.
On failure the exact script is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: runFuzz,
	}
	addFuzzFlags(cmd)
	return cmd
}

func addFuzzFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	addTargetFlags(cmd)
	addSessionFlags(cmd)
	f.Uint64("max-iterations", 0, "stop after this many sessions (0 = unbounded)")
	f.Duration("max-duration", 0, "stop after this much wall-clock time (0 = unbounded)")
	f.String("artifact-dir", "", "store failing scripts and metadata in this directory")
	f.String("ui", "auto", "progress UI on stderr (auto|on|off)")
}

func addTargetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("target", "", "path to the driver executable (default: fuzz_driver)")
	f.Duration("timeout", config.DefaultTimeout, "per-run timeout (0 disables)")
	f.Bool("capture-output", false, "keep the target's stdout/stderr for the report")
	f.String("config", "", "path to "+config.FileName+" (default: search upwards)")
}

func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("capacity", config.DefaultCapacity, "buffer capacity in bytes")
	f.Int("record-size", config.DefaultRecordSize, "record size in bytes")
	f.Int("length", config.DefaultLength, "generated commands per session")
	f.Uint64("seed", 0, "generator seed (default: random)")
}

// loadConfig reads ringfuzz.toml and applies explicitly set flags on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit := ""
	if cmd.Flags().Lookup("config") != nil {
		explicit, _ = cmd.Flags().GetString("config")
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("working directory: %w", err)
	}
	cfg, _, err := config.Load(explicit, wd)
	if err != nil {
		return config.Config{}, err
	}
	if err := applyFlagOverrides(cmd, &cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyFlagOverrides copies every flag the user set into cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	changed := func(name string) bool {
		fl := f.Lookup(name)
		return fl != nil && fl.Changed
	}
	var err error
	set := func(e error) {
		if err == nil {
			err = e
		}
	}

	if changed("target") {
		cfg.Target.Path, _ = f.GetString("target")
	}
	if changed("timeout") {
		v, e := f.GetDuration("timeout")
		set(e)
		cfg.Target.Timeout = v
	}
	if changed("capture-output") {
		v, e := f.GetBool("capture-output")
		set(e)
		cfg.Target.CaptureOutput = v
	}
	if changed("capacity") {
		v, e := f.GetInt("capacity")
		set(e)
		cfg.Buffer.Capacity = v
	}
	if changed("record-size") {
		v, e := f.GetInt("record-size")
		set(e)
		cfg.Buffer.RecordSize = v
	}
	if changed("length") {
		v, e := f.GetInt("length")
		set(e)
		cfg.Session.Length = v
	}
	if changed("seed") {
		v, e := f.GetUint64("seed")
		set(e)
		cfg.Campaign.Seed = v
		cfg.Campaign.SeedSet = true
	}
	if changed("max-iterations") {
		v, e := f.GetUint64("max-iterations")
		set(e)
		cfg.Campaign.MaxIterations = v
	}
	if changed("max-duration") {
		v, e := f.GetDuration("max-duration")
		set(e)
		cfg.Campaign.MaxDuration = v
	}
	if changed("artifact-dir") {
		cfg.Campaign.ArtifactDir, _ = f.GetString("artifact-dir")
	}
	return err
}

// campaignSeed returns the configured seed, or draws one.
func campaignSeed(cfg config.Config) uint64 {
	if cfg.Campaign.SeedSet {
		return cfg.Campaign.Seed
	}
	return rand.Uint64()
}

func newReporter(cmd *cobra.Command) *report.Reporter {
	return report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), colorEnabled(), quiet(cmd))
}

func runFuzz(cmd *cobra.Command, args []string) error {
	rep := newReporter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	warnings, err := cfg.Validate()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		rep.Warn(w)
	}
	uiValue, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	path, err := target.Resolve(cfg.Target.Path)
	if err != nil {
		return harnessError(cmd, rep, err)
	}
	runner, err := target.New(target.Options{
		Path:          path,
		Timeout:       cfg.Target.Timeout,
		WaitDelay:     cfg.Target.WaitDelay,
		CaptureOutput: cfg.Target.CaptureOutput,
	})
	if err != nil {
		return harnessError(cmd, rep, err)
	}

	seed := campaignSeed(cfg)
	builder, err := script.NewBuilder(cfg.SessionConfig(), script.NewGenerator(script.NewSeededSource(seed)))
	if err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "ringfuzz: fuzzing %s (seed %d, %d/%d bytes, %d commands)\n",
			runner.Path(), seed, cfg.Buffer.Capacity, cfg.Buffer.RecordSize, cfg.Session.Length)
	}

	timer := observ.NewTimer()
	opts := fuzzloop.Options{
		Builder: builder,
		Runner:  runner,
		Stop: fuzzloop.Any(
			fuzzloop.MaxIterations(cfg.Campaign.MaxIterations),
			fuzzloop.MaxDuration(cfg.Campaign.MaxDuration),
		),
		Timer: timer,
	}

	var res fuzzloop.Result
	if shouldUseTUI(mode) && !quiet(cmd) {
		res, err = runLoopWithUI(cmd.Context(), "ringfuzz", runner.Path(), cfg.Campaign.MaxIterations, opts)
	} else {
		var loop *fuzzloop.Loop
		loop, err = fuzzloop.New(opts)
		if err == nil {
			res, err = loop.Run(cmd.Context())
		}
	}
	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	if err != nil {
		return harnessError(cmd, rep, err)
	}

	if err := rep.Result(res, report.Campaign{Seed: seed, TargetPath: runner.Path(), ArtifactDir: cfg.Campaign.ArtifactDir}); err != nil {
		return harnessError(cmd, rep, err)
	}
	return nil
}

// harnessDumpEvents is how much of the trace ring a harness error prints.
const harnessDumpEvents = 64

// harnessError reports err, dumps the trace ring if there is one, and
// returns the exit code for environment failures.
func harnessError(cmd *cobra.Command, rep *report.Reporter, err error) error {
	rep.HarnessError(err)
	if ring := trace.RingOf(trace.FromContext(cmd.Context())); ring != nil && ring.Len() > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "ringfuzz: last %d trace events:\n", min(ring.Len(), harnessDumpEvents))
		if dumpErr := ring.DumpTail(cmd.ErrOrStderr(), trace.FormatText, harnessDumpEvents); dumpErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", dumpErr)
		}
	}
	var terr *target.Error
	if errors.As(err, &terr) && terr.Op == "resolve" {
		fmt.Fprintln(cmd.ErrOrStderr(), "ringfuzz: hint: pass --target or set [target] path in "+config.FileName)
	}
	return &exitError{code: exitHarness, err: err, reported: true}
}
