package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, data string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", FileName, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Buffer.Capacity != 8 || cfg.Buffer.RecordSize != 2 {
		t.Fatalf("default geometry = %+v, want 8/2", cfg.Buffer)
	}
	if cfg.Session.Length != 100 {
		t.Fatalf("default length = %d, want 100", cfg.Session.Length)
	}
	if cfg.Geometry().NumRecords() != 4 {
		t.Fatalf("default NumRecords = %d, want 4", cfg.Geometry().NumRecords())
	}
	if cfg.Campaign.MaxIterations != 0 || cfg.Campaign.MaxDuration != 0 {
		t.Fatalf("default campaign must be unbounded: %+v", cfg.Campaign)
	}
	if cfg.Target.CaptureOutput {
		t.Fatalf("default must discard target output")
	}
	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("default config warnings: %v", warnings)
	}
}

func TestLoadFileOverlaysDefinedKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, `# campaign
[target]
path = "./bin/fuzz_driver"
timeout = "250ms"
capture_output = true

[buffer]
capacity = 64

[campaign]
seed = 42
max_iterations = 1000
max_duration = "1m"
artifact_dir = "crashes"
`)
	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Target.Path != filepath.Join(dir, "bin", "fuzz_driver") {
		t.Fatalf("Target.Path = %q", cfg.Target.Path)
	}
	if cfg.Target.Timeout != 250*time.Millisecond {
		t.Fatalf("Target.Timeout = %s", cfg.Target.Timeout)
	}
	if cfg.Target.WaitDelay != DefaultWaitDelay {
		t.Fatalf("Target.WaitDelay = %s, want default", cfg.Target.WaitDelay)
	}
	if !cfg.Target.CaptureOutput {
		t.Fatalf("CaptureOutput not applied")
	}
	if cfg.Buffer.Capacity != 64 || cfg.Buffer.RecordSize != DefaultRecordSize {
		t.Fatalf("Buffer = %+v", cfg.Buffer)
	}
	if cfg.Session.Length != DefaultLength {
		t.Fatalf("Session.Length = %d, want default", cfg.Session.Length)
	}
	if !cfg.Campaign.SeedSet || cfg.Campaign.Seed != 42 {
		t.Fatalf("seed = %d (set %v)", cfg.Campaign.Seed, cfg.Campaign.SeedSet)
	}
	if cfg.Campaign.MaxIterations != 1000 || cfg.Campaign.MaxDuration != time.Minute {
		t.Fatalf("Campaign = %+v", cfg.Campaign)
	}
	if cfg.Campaign.ArtifactDir != filepath.Join(dir, "crashes") {
		t.Fatalf("ArtifactDir = %q", cfg.Campaign.ArtifactDir)
	}
}

func TestLoadFileBareTargetNameStaysBare(t *testing.T) {
	path := writeFile(t, t.TempDir(), "[target]\npath = \"ringbuf_driver\"\n")
	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Target.Path != "ringbuf_driver" {
		t.Fatalf("Target.Path = %q, want bare name", cfg.Target.Path)
	}
}

func TestLoadFileArtifactDirIsRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		value string
		want  string
	}{
		{"crashes", filepath.Join(dir, "crashes")},
		{"out/crashes", filepath.Join(dir, "out", "crashes")},
		{filepath.Join(dir, "abs"), filepath.Join(dir, "abs")},
	}
	for _, tc := range cases {
		path := writeFile(t, dir, "[campaign]\nartifact_dir = \""+filepath.ToSlash(tc.value)+"\"\n")
		cfg, err := LoadFile(path, Default())
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if cfg.Campaign.ArtifactDir != tc.want {
			t.Fatalf("ArtifactDir for %q = %q, want %q", tc.value, cfg.Campaign.ArtifactDir, tc.want)
		}
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "[buffer]\ncapacity = 8\nslots = 3\n")
	_, err := LoadFile(path, Default())
	if err == nil || !strings.Contains(err.Error(), "buffer.slots") {
		t.Fatalf("LoadFile error = %v, want unknown key buffer.slots", err)
	}
}

func TestLoadFileRejectsBadDuration(t *testing.T) {
	path := writeFile(t, t.TempDir(), "[target]\ntimeout = \"soon\"\n")
	if _, err := LoadFile(path, Default()); err == nil {
		t.Fatalf("LoadFile accepted a bad duration")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "[session]\nlength = 5\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg, path, err := Load("", nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != filepath.Join(root, FileName) {
		t.Fatalf("path = %q", path)
	}
	if cfg.Session.Length != 5 {
		t.Fatalf("Session.Length = %d, want 5", cfg.Session.Length)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), ""); err == nil {
		t.Fatalf("Load with a missing explicit file succeeded")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*Config)
		wantErr  bool
		warnings int
	}{
		{"record larger than capacity", func(c *Config) { c.Buffer.RecordSize = 16 }, true, 0},
		{"zero capacity", func(c *Config) { c.Buffer.Capacity = 0 }, true, 0},
		{"negative length", func(c *Config) { c.Session.Length = -1 }, true, 0},
		{"negative timeout", func(c *Config) { c.Target.Timeout = -time.Second }, true, 0},
		{"uneven geometry", func(c *Config) { c.Buffer.Capacity = 9 }, false, 1},
		{"oversized geometry", func(c *Config) { c.Buffer.Capacity = 8192 }, false, 1},
		{"empty sessions", func(c *Config) { c.Session.Length = 0 }, false, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			warnings, err := cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("Validate error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if len(warnings) != tc.warnings {
				t.Fatalf("warnings = %v, want %d", warnings, tc.warnings)
			}
		})
	}
}
