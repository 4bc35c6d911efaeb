// Package report prints campaign results and stores failure artifacts.
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"

	"ringfuzz/internal/fuzzloop"
	"ringfuzz/internal/target"
)

// Reporter writes the reproduction script to Stdout and everything else to
// Stderr. Stdout receives nothing but script bytes.
type Reporter struct {
	Stdout io.Writer
	Stderr io.Writer
	Quiet  bool

	bad  *color.Color
	good *color.Color
	dim  *color.Color
}

// New returns a reporter; colorize toggles ANSI styling on stderr.
func New(stdout, stderr io.Writer, colorize, quiet bool) *Reporter {
	r := &Reporter{
		Stdout: stdout,
		Stderr: stderr,
		Quiet:  quiet,
		bad:    color.New(color.FgRed, color.Bold),
		good:   color.New(color.FgGreen),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.bad, r.good, r.dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Campaign identifies the run in messages and artifacts.
type Campaign struct {
	Seed        uint64
	TargetPath  string
	ArtifactDir string
}

// Result reports a halted loop. For a defect it writes the exact script to
// stdout and, when configured, stores the artifact. A failed artifact save is
// printed as a warning and does not make Result fail.
func (r *Reporter) Result(res fuzzloop.Result, c Campaign) error {
	switch res.Reason {
	case fuzzloop.HaltDefect:
		return r.defect(res, c)
	case fuzzloop.HaltStopped:
		if !r.Quiet {
			fmt.Fprintf(r.Stderr, "ringfuzz: %s: %s after %s (seed %d)\n",
				r.good.Sprint("no defect found"), res.StopCause, iterations(res.Iterations), c.Seed)
		}
		return nil
	default:
		return fmt.Errorf("report: unexpected halt reason %s", res.Reason)
	}
}

func (r *Reporter) defect(res fuzzloop.Result, c Campaign) error {
	if _, err := r.Stdout.Write(res.Session.Bytes()); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	fmt.Fprintf(r.Stderr, "ringfuzz: %s: %s after %s (seed %d)\n",
		r.bad.Sprint("target failed"), res.Outcome, iterations(res.Iterations), c.Seed)
	r.captured(res.Outcome)

	if c.ArtifactDir == "" {
		return nil
	}
	// the script is already on stdout, so a failed save only warns
	art, err := NewArtifact(res, c.Seed, c.TargetPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "ringfuzz: warning: artifact not saved: %v\n", err)
		return nil
	}
	path, err := Save(c.ArtifactDir, art)
	if err != nil {
		fmt.Fprintf(r.Stderr, "ringfuzz: warning: artifact not saved: %v\n", err)
		return nil
	}
	if !r.Quiet {
		fmt.Fprintf(r.Stderr, "ringfuzz: artifact %s\n", path)
	}
	return nil
}

// Replay reports a single replayed run. reproduced is false when the target passed.
func (r *Reporter) Replay(out target.Outcome) (reproduced bool) {
	if !out.Failed() {
		fmt.Fprintf(r.Stderr, "ringfuzz: %s: target passed\n", r.good.Sprint("not reproduced"))
		return false
	}
	fmt.Fprintf(r.Stderr, "ringfuzz: %s: %s\n", r.bad.Sprint("reproduced"), out)
	r.captured(out)
	return true
}

// HarnessError prints an error that stopped the campaign.
func (r *Reporter) HarnessError(err error) {
	fmt.Fprintf(r.Stderr, "ringfuzz: %s %v\n", r.bad.Sprint("harness error:"), err)
}

// Warn prints a non-fatal configuration warning.
func (r *Reporter) Warn(msg string) {
	if r.Quiet {
		return
	}
	fmt.Fprintf(r.Stderr, "ringfuzz: warning: %s\n", msg)
}

func (r *Reporter) captured(out target.Outcome) {
	for _, s := range []struct {
		name string
		data []byte
	}{{"stdout", out.Stdout}, {"stderr", out.Stderr}} {
		if len(s.data) == 0 {
			continue
		}
		fmt.Fprintln(r.Stderr, r.dim.Sprintf("--- target %s ---", s.name))
		r.Stderr.Write(s.data)
		if !bytes.HasSuffix(s.data, []byte("\n")) {
			fmt.Fprintln(r.Stderr)
		}
	}
	if out.Truncated {
		fmt.Fprintln(r.Stderr, r.dim.Sprint("--- output truncated ---"))
	}
}

func iterations(n uint64) string {
	if n == 1 {
		return "1 iteration"
	}
	return fmt.Sprintf("%d iterations", n)
}
