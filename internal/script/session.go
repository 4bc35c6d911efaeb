package script

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultLength is the number of generated commands following the init line.
const DefaultLength = 100

// SessionConfig groups the settings that shape every session of a campaign.
type SessionConfig struct {
	Geometry Geometry
	// Length is the number of generated commands after the init line.
	Length int
}

// Validate checks the geometry and length.
func (c SessionConfig) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	if c.Length < 0 {
		return fmt.Errorf("session length must not be negative, got %d", c.Length)
	}
	return nil
}

// Session is one complete script for a single target invocation.
type Session struct {
	Geometry Geometry
	cmds     []Command
	text     string
}

func newSession(g Geometry, cmds []Command) *Session {
	lines := make([]string, 0, len(cmds)+1)
	lines = append(lines, g.InitLine())
	for _, c := range cmds {
		lines = append(lines, c.String())
	}
	return &Session{
		Geometry: g,
		cmds:     cmds,
		text:     strings.Join(lines, "\n"),
	}
}

// Commands returns a copy of the commands after the init line.
func (s *Session) Commands() []Command {
	return slices.Clone(s.cmds)
}

// Len is the number of commands after the init line.
func (s *Session) Len() int {
	return len(s.cmds)
}

// Text returns the newline-joined script. There is no trailing newline.
func (s *Session) Text() string {
	return s.text
}

// Bytes returns the script as fed to the target's standard input.
func (s *Session) Bytes() []byte {
	return []byte(s.text)
}

// Lines returns the init line followed by one line per command.
func (s *Session) Lines() []string {
	return strings.Split(s.text, "\n")
}

// Builder assembles sessions from a fixed configuration.
type Builder struct {
	cfg SessionConfig
	gen *Generator
}

// NewBuilder validates cfg up front so a bad geometry fails before any target runs.
func NewBuilder(cfg SessionConfig, gen *Generator) (*Builder, error) {
	if gen == nil {
		return nil, fmt.Errorf("missing generator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, gen: gen}, nil
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() SessionConfig {
	return b.cfg
}

// Build generates a fresh session.
func (b *Builder) Build() (*Session, error) {
	return BuildSession(b.gen, b.cfg.Geometry, b.cfg.Length)
}

// BuildSession produces the init line for g followed by length generated commands.
func BuildSession(gen *Generator, g Geometry, length int) (*Session, error) {
	if length < 0 {
		return nil, fmt.Errorf("session length must not be negative, got %d", length)
	}
	n := g.NumRecords()
	cmds := make([]Command, 0, length)
	for i := 0; i < length; i++ {
		c, err := gen.Generate(n)
		if err != nil {
			return nil, fmt.Errorf("generate command %d: %w", i+1, err)
		}
		cmds = append(cmds, c)
	}
	return newSession(g, cmds), nil
}
