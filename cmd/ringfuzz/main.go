package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ringfuzz/internal/version"
)

// Process exit codes.
const (
	exitOK            = 0 // defect found, or the campaign stopped without one
	exitUsage         = 1 // configuration or usage error before the loop
	exitHarness       = 2 // harness or environment error
	exitNotReproduced = 3 // replay: the target passed
)

// exitError carries a process exit code through cobra's RunE.
type exitError struct {
	code     int
	err      error
	reported bool // already printed by the reporter
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}

// session holds per-invocation state shared by the subcommands.
type session struct {
	traceCleanup func()
}

func (s *session) close() {
	if s.traceCleanup != nil {
		s.traceCleanup()
		s.traceCleanup = nil
	}
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "ringfuzz",
		Short: "Randomized stress tester for ring buffer implementations",
		Long: `ringfuzz feeds random command scripts to a ring buffer driver until the
driver exits non-zero, crashes or hangs, then prints the failing script.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyColorMode(cmd); err != nil {
				return err
			}
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			s.traceCleanup = cleanup
			return nil
		},
		RunE: runFuzz,
	}
	addFuzzFlags(root)

	root.AddCommand(newFuzzCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newGenCmd())
	root.AddCommand(newVersionCmd())

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "print per-phase timings to stderr")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 0, "events kept in ring mode (0 = default)")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	return root
}

// main runs the CLI and maps the returned error to an exit code.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s := &session{}
	err := newRootCmd(s).ExecuteContext(ctx)
	s.close()
	stop()

	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || !ee.reported {
			fmt.Fprintf(os.Stderr, "ringfuzz: error: %v\n", err)
		}
	}
	os.Exit(exitCode(err))
}

func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Flags().GetBool("quiet")
	return err == nil && q
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled() bool {
	return !color.NoColor
}
