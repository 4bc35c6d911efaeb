// Package config holds the campaign settings and loads them from ringfuzz.toml.
package config

import (
	"errors"
	"fmt"
	"time"

	"ringfuzz/internal/script"
	"ringfuzz/internal/target"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Defaults for the out-of-the-box campaign.
const (
	DefaultCapacity   = 8
	DefaultRecordSize = 2
	DefaultLength     = script.DefaultLength
	DefaultTimeout    = 10 * time.Second
	DefaultWaitDelay  = target.DefaultWaitDelay

	// DriverSizeLimit is the largest capacity or record size the reference
	// driver accepts in an init line.
	DriverSizeLimit = 4096
)

// Config is every setting of one campaign. Fields are fixed once the loop starts.
type Config struct {
	Target   Target
	Buffer   Buffer
	Session  Session
	Campaign Campaign
}

// Target describes how the buffer-under-test is launched.
type Target struct {
	// Path to the executable. Empty means "fuzz_driver", resolved at startup.
	Path string
	// Timeout bounds one target run. Zero disables it.
	Timeout time.Duration
	// WaitDelay is how long to wait for the child's pipes to close after it
	// exits or is killed. Zero means DefaultWaitDelay; the wait is always bounded.
	WaitDelay time.Duration
	// CaptureOutput keeps the target's stdout/stderr for the failure report.
	CaptureOutput bool
}

// Buffer is the geometry announced in every init line.
type Buffer struct {
	Capacity   int
	RecordSize int
}

// Session shapes a generated script.
type Session struct {
	Length int
}

// Campaign controls randomness, stop conditions and the failure artifact.
type Campaign struct {
	// Seed for the generator. Only used when SeedSet is true; otherwise a
	// random seed is drawn at startup and reported with the failure.
	Seed    uint64
	SeedSet bool
	// MaxIterations stops the loop after that many sessions. Zero means unbounded.
	MaxIterations uint64
	// MaxDuration stops the loop after that much wall-clock time. Zero means unbounded.
	MaxDuration time.Duration
	// ArtifactDir receives the failing script and its metadata. Empty disables it.
	ArtifactDir string
}

// Default returns the baseline configuration: 8-byte buffer, 2-byte records,
// 100-command sessions, no iteration cap.
func Default() Config {
	return Config{
		Target: Target{
			Timeout:   DefaultTimeout,
			WaitDelay: DefaultWaitDelay,
		},
		Buffer: Buffer{
			Capacity:   DefaultCapacity,
			RecordSize: DefaultRecordSize,
		},
		Session: Session{
			Length: DefaultLength,
		},
	}
}

// Geometry converts the buffer settings.
func (c Config) Geometry() script.Geometry {
	return script.Geometry{CapacityBytes: c.Buffer.Capacity, RecordSizeBytes: c.Buffer.RecordSize}
}

// SessionConfig converts the settings used by the session builder.
func (c Config) SessionConfig() script.SessionConfig {
	return script.SessionConfig{Geometry: c.Geometry(), Length: c.Session.Length}
}

// Validate reports configuration errors, plus warnings for settings that are
// legal but unlikely to exercise the reference driver.
func (c Config) Validate() ([]string, error) {
	if err := c.SessionConfig().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Target.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalid, c.Target.Timeout)
	}
	if c.Target.WaitDelay < 0 {
		return nil, fmt.Errorf("%w: wait delay must not be negative, got %s", ErrInvalid, c.Target.WaitDelay)
	}
	if c.Campaign.MaxDuration < 0 {
		return nil, fmt.Errorf("%w: max duration must not be negative, got %s", ErrInvalid, c.Campaign.MaxDuration)
	}

	var warnings []string
	if c.Buffer.Capacity > DriverSizeLimit {
		warnings = append(warnings, fmt.Sprintf("capacity %d exceeds %d; the reference driver ignores such init lines", c.Buffer.Capacity, DriverSizeLimit))
	}
	if c.Buffer.RecordSize > DriverSizeLimit {
		warnings = append(warnings, fmt.Sprintf("record size %d exceeds %d; the reference driver ignores such init lines", c.Buffer.RecordSize, DriverSizeLimit))
	}
	if c.Buffer.Capacity%c.Buffer.RecordSize != 0 {
		warnings = append(warnings, fmt.Sprintf("capacity %d is not a multiple of record size %d; the reference driver rejects the init line (arguments are bounded by %d records)", c.Buffer.Capacity, c.Buffer.RecordSize, c.Geometry().NumRecords()))
	}
	if c.Session.Length == 0 {
		warnings = append(warnings, "session length is 0; only the init line is sent")
	}
	return warnings, nil
}
