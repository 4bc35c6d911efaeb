package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ringfuzz/internal/report"
	"ringfuzz/internal/script"
	"ringfuzz/internal/target"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file|->",
		Short: "Feed a captured script to the target once",
		Long: `Feed a captured script to a fresh target process, byte for byte, and report
how it exits. The argument is a script file, a .mp crash artifact, or - for stdin.
Exits 0 when the failure reproduces and 3 when the target passes.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}
	addTargetFlags(cmd)
	return cmd
}

// readReplayInput returns the script bytes and, for artifacts, the recorded target.
func readReplayInput(cmd *cobra.Command, arg string) ([]byte, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}
	if report.IsArtifact(arg) {
		art, err := report.LoadArtifact(arg)
		if err != nil {
			return nil, "", err
		}
		return art.Script, art.TargetPath, nil
	}
	// #nosec G304 -- the path is the operator's argument
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	rep := newReporter(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Target.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", cfg.Target.Timeout)
	}

	input, recorded, err := readReplayInput(cmd, args[0])
	if err != nil {
		return err
	}
	if _, err := script.ParseSession(string(input)); err != nil {
		rep.Warn(fmt.Sprintf("input is not a well-formed script (%v); sending it anyway", err))
	}
	if cfg.Target.Path == "" && recorded != "" {
		cfg.Target.Path = recorded
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
	out, err := runner.Run(cmd.Context(), input)
	if err != nil {
		if errors.Is(err, cmd.Context().Err()) {
			return &exitError{code: exitHarness, err: err}
		}
		return harnessError(cmd, rep, err)
	}
	if !rep.Replay(out) {
		return &exitError{code: exitNotReproduced, reported: true}
	}
	return nil
}
