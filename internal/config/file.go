package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the campaign file looked up from the working directory upwards.
const FileName = "ringfuzz.toml"

type fileConfig struct {
	Target   targetFile   `toml:"target"`
	Buffer   bufferFile   `toml:"buffer"`
	Session  sessionFile  `toml:"session"`
	Campaign campaignFile `toml:"campaign"`
}

type targetFile struct {
	Path          string `toml:"path"`
	Timeout       string `toml:"timeout"`
	WaitDelay     string `toml:"wait_delay"`
	CaptureOutput bool   `toml:"capture_output"`
}

type bufferFile struct {
	Capacity   int `toml:"capacity"`
	RecordSize int `toml:"record_size"`
}

type sessionFile struct {
	Length int `toml:"length"`
}

type campaignFile struct {
	Seed          uint64 `toml:"seed"`
	MaxIterations uint64 `toml:"max_iterations"`
	MaxDuration   string `toml:"max_duration"`
	ArtifactDir   string `toml:"artifact_dir"`
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile applies the keys present in the TOML file at path on top of base.
// Keys missing from the file keep their base value; unknown keys are an error.
// A relative artifact dir, and a relative target path containing a separator,
// are resolved against the file's directory.
func LoadFile(path string, base Config) (Config, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	root := filepath.Dir(path)
	cfg := base

	if meta.IsDefined("target", "path") {
		cfg.Target.Path = resolveTarget(root, strings.TrimSpace(fc.Target.Path))
	}
	if meta.IsDefined("target", "timeout") {
		d, err := parseDuration(fc.Target.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [target].timeout: %w", path, err)
		}
		cfg.Target.Timeout = d
	}
	if meta.IsDefined("target", "wait_delay") {
		d, err := parseDuration(fc.Target.WaitDelay)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [target].wait_delay: %w", path, err)
		}
		cfg.Target.WaitDelay = d
	}
	if meta.IsDefined("target", "capture_output") {
		cfg.Target.CaptureOutput = fc.Target.CaptureOutput
	}

	if meta.IsDefined("buffer", "capacity") {
		cfg.Buffer.Capacity = fc.Buffer.Capacity
	}
	if meta.IsDefined("buffer", "record_size") {
		cfg.Buffer.RecordSize = fc.Buffer.RecordSize
	}
	if meta.IsDefined("session", "length") {
		cfg.Session.Length = fc.Session.Length
	}

	if meta.IsDefined("campaign", "seed") {
		cfg.Campaign.Seed = fc.Campaign.Seed
		cfg.Campaign.SeedSet = true
	}
	if meta.IsDefined("campaign", "max_iterations") {
		cfg.Campaign.MaxIterations = fc.Campaign.MaxIterations
	}
	if meta.IsDefined("campaign", "max_duration") {
		d, err := parseDuration(fc.Campaign.MaxDuration)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [campaign].max_duration: %w", path, err)
		}
		cfg.Campaign.MaxDuration = d
	}
	if meta.IsDefined("campaign", "artifact_dir") {
		cfg.Campaign.ArtifactDir = resolveDir(root, strings.TrimSpace(fc.Campaign.ArtifactDir))
	}
	return cfg, nil
}

// Load returns the defaults overlaid with ringfuzz.toml. An explicit path must
// exist; otherwise the file is discovered from startDir and is optional.
// The returned path is empty when no file was used.
func Load(explicitPath, startDir string) (Config, string, error) {
	path := explicitPath
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Config{}, "", err
		}
		if !ok {
			return Default(), "", nil
		}
		path = found
	}
	cfg, err := LoadFile(path, Default())
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

func resolveDir(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func resolveTarget(root, p string) string {
	// bare names are looked up on $PATH later, like a shell would
	if !strings.ContainsRune(p, '/') && !strings.ContainsRune(p, filepath.Separator) {
		return p
	}
	return resolveDir(root, p)
}
