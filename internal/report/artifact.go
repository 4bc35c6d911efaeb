package report

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ringfuzz/internal/fuzzloop"
)

// ArtifactSchema is bumped whenever the Artifact layout changes.
const ArtifactSchema uint16 = 1

// Artifact extensions.
const (
	ScriptExt = ".script"
	MetaExt   = ".mp"
)

// Artifact is the msgpack metadata stored next to a failing script.
type Artifact struct {
	Schema uint16 `msgpack:"schema"`

	Seed       uint64    `msgpack:"seed"`
	Iteration  uint64    `msgpack:"iteration"`
	FoundAt    time.Time `msgpack:"found_at"`
	TargetPath string    `msgpack:"target_path"`

	// Classification of the failing run.
	Status    string        `msgpack:"status"`
	ExitCode  int           `msgpack:"exit_code"`
	Signal    string        `msgpack:"signal,omitempty"`
	Duration  time.Duration `msgpack:"duration"`
	Summary   string        `msgpack:"summary"`
	Stdout    []byte        `msgpack:"stdout,omitempty"`
	Stderr    []byte        `msgpack:"stderr,omitempty"`
	Truncated bool          `msgpack:"truncated,omitempty"`

	Capacity   int `msgpack:"capacity"`
	RecordSize int `msgpack:"record_size"`
	Length     int `msgpack:"length"`

	Script []byte `msgpack:"script"`
}

// NewArtifact captures a defect result for storage.
func NewArtifact(res fuzzloop.Result, seed uint64, targetPath string) (*Artifact, error) {
	if !res.Found() || res.Session == nil {
		return nil, errors.New("artifact: result is not a defect")
	}
	out := res.Outcome
	return &Artifact{
		Schema:     ArtifactSchema,
		Seed:       seed,
		Iteration:  res.Iterations,
		FoundAt:    time.Now().UTC(),
		TargetPath: targetPath,
		Status:     out.Status.String(),
		ExitCode:   out.ExitCode,
		Signal:     out.Signal,
		Duration:   out.Duration,
		Summary:    out.String(),
		Stdout:     out.Stdout,
		Stderr:     out.Stderr,
		Truncated:  out.Truncated,
		Capacity:   res.Session.Geometry.CapacityBytes,
		RecordSize: res.Session.Geometry.RecordSizeBytes,
		Length:     res.Session.Len(),
		Script:     res.Session.Bytes(),
	}, nil
}

// Name returns the artifact base name, derived from the script contents.
func (a *Artifact) Name() string {
	sum := sha256.Sum256(a.Script)
	return "crash-" + hex.EncodeToString(sum[:6])
}

// Save writes <dir>/<name>.script and <dir>/<name>.mp atomically and
// returns the script path.
func Save(dir string, a *Artifact) (string, error) {
	if a == nil {
		return "", errors.New("artifact: nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact dir: %w", err)
	}
	base := filepath.Join(dir, a.Name())
	scriptPath := base + ScriptExt
	if err := writeAtomic(scriptPath, a.Script); err != nil {
		return "", fmt.Errorf("write %s: %w", scriptPath, err)
	}
	meta, err := msgpack.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}
	if err := writeAtomic(base+MetaExt, meta); err != nil {
		return "", fmt.Errorf("write %s: %w", base+MetaExt, err)
	}
	return scriptPath, nil
}

// LoadArtifact decodes a .mp record.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var a Artifact
	if err := msgpack.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if a.Schema != ArtifactSchema {
		return nil, fmt.Errorf("decode %s: unsupported schema %d", path, a.Schema)
	}
	return &a, nil
}

// IsArtifact reports whether path names a metadata record.
func IsArtifact(path string) bool {
	return strings.EqualFold(filepath.Ext(path), MetaExt)
}

func writeAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
