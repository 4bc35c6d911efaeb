package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ringfuzz/internal/fuzzloop"
	"ringfuzz/internal/script"
	"ringfuzz/internal/target"
)

func defectResult(t *testing.T) fuzzloop.Result {
	t.Helper()
	g, err := script.NewGeometry(8, 2)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	s, err := script.BuildSession(script.NewGenerator(script.NewSeededSource(9)), g, 12)
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	return fuzzloop.Result{
		Reason:     fuzzloop.HaltDefect,
		Iterations: 37,
		Session:    s,
		Outcome: target.Outcome{
			Status:   target.StatusExit,
			ExitCode: 1,
			Duration: 3 * time.Millisecond,
			Stderr:   []byte("assertion failed"),
		},
	}
}

func TestDefectWritesExactScript(t *testing.T) {
	res := defectResult(t)
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, false)
	if err := r.Result(res, Campaign{Seed: 42}); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if !bytes.Equal(stdout.Bytes(), res.Session.Bytes()) {
		t.Fatalf("stdout = %q, want the session bytes", stdout.String())
	}
	want := "ringfuzz: target failed: exit status 1 after 37 iterations (seed 42)\n"
	if !strings.HasPrefix(stderr.String(), want) {
		t.Fatalf("stderr = %q, want prefix %q", stderr.String(), want)
	}
	if !strings.Contains(stderr.String(), "assertion failed\n") {
		t.Fatalf("captured stderr not attached: %q", stderr.String())
	}
}

func TestStoppedWritesNothingToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, false)
	res := fuzzloop.Result{Reason: fuzzloop.HaltStopped, StopCause: "reached 1 iterations", Iterations: 1}
	if err := r.Result(res, Campaign{Seed: 7}); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", stdout.String())
	}
	if !strings.Contains(stderr.String(), "no defect found") || !strings.Contains(stderr.String(), "1 iteration ") {
		t.Fatalf("stderr = %q", stderr.String())
	}

	stderr.Reset()
	New(&stdout, &stderr, false, true).Result(res, Campaign{})
	if stderr.Len() != 0 {
		t.Fatalf("quiet stderr = %q", stderr.String())
	}
}

func TestColorOff(t *testing.T) {
	var stdout, stderr bytes.Buffer
	New(&stdout, &stderr, false, false).HarnessError(os.ErrNotExist)
	if strings.Contains(stderr.String(), "\x1b[") {
		t.Fatalf("escape codes with color off: %q", stderr.String())
	}
	if !strings.HasPrefix(stderr.String(), "ringfuzz: harness error: ") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestReplay(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, false)
	if r.Replay(target.Outcome{Status: target.StatusOK}) {
		t.Fatalf("passing run reported as reproduced")
	}
	if !r.Replay(target.Outcome{Status: target.StatusSignal, Signal: "aborted"}) {
		t.Fatalf("signal not reported as reproduced")
	}
	if !strings.Contains(stderr.String(), "signal: aborted") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestArtifactSaveLoad(t *testing.T) {
	res := defectResult(t)
	dir := filepath.Join(t.TempDir(), "crashes")
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, false)
	if err := r.Result(res, Campaign{Seed: 42, TargetPath: "/bin/driver", ArtifactDir: dir}); err != nil {
		t.Fatalf("Result: %v", err)
	}

	art, err := NewArtifact(res, 42, "/bin/driver")
	if err != nil {
		t.Fatalf("NewArtifact: %v", err)
	}
	base := filepath.Join(dir, art.Name())
	raw, err := os.ReadFile(base + ScriptExt)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !bytes.Equal(raw, res.Session.Bytes()) {
		t.Fatalf("stored script differs")
	}
	if !IsArtifact(base + MetaExt) {
		t.Fatalf("IsArtifact(%q) = false", base+MetaExt)
	}
	got, err := LoadArtifact(base + MetaExt)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if got.Seed != 42 || got.Iteration != 37 || got.ExitCode != 1 || got.Status != "exit" {
		t.Fatalf("artifact = %+v", got)
	}
	if got.Capacity != 8 || got.RecordSize != 2 || got.Length != 12 {
		t.Fatalf("geometry = %d/%d len %d", got.Capacity, got.RecordSize, got.Length)
	}
	if !bytes.Equal(got.Script, raw) || string(got.Stderr) != "assertion failed" {
		t.Fatalf("payload mismatch")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("artifact dir has %d entries, want 2 (no temp files)", len(entries))
	}
}

func TestArtifactSaveFailureOnlyWarns(t *testing.T) {
	res := defectResult(t)
	// a regular file where the artifact directory should be
	dir := filepath.Join(t.TempDir(), "crashes")
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, true)
	if err := r.Result(res, Campaign{Seed: 42, ArtifactDir: dir}); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if !bytes.Equal(stdout.Bytes(), res.Session.Bytes()) {
		t.Fatalf("stdout = %q, want the session bytes", stdout.String())
	}
	if !strings.Contains(stderr.String(), "ringfuzz: warning: artifact not saved:") {
		t.Fatalf("stderr = %q, want an artifact warning even when quiet", stderr.String())
	}
}

func TestNewArtifactRejectsNonDefect(t *testing.T) {
	if _, err := NewArtifact(fuzzloop.Result{Reason: fuzzloop.HaltStopped}, 1, ""); err == nil {
		t.Fatalf("NewArtifact accepted a stopped result")
	}
}

func TestLoadArtifactRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mp")
	if err := os.WriteFile(path, []byte("not msgpack"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadArtifact(path); err == nil {
		t.Fatalf("LoadArtifact accepted garbage")
	}
}
