// Package observ accumulates per-phase timings of a campaign.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase aggregates every measurement taken under one name.
type Phase struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
	Note  string
}

// Timer accumulates durations per phase, preserving first-seen order.
// A Timer is used by a single goroutine.
type Timer struct {
	phases []Phase
	index  map[string]int
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 4), index: make(map[string]int, 4)}
}

// Mark is an in-flight measurement returned by Begin.
type Mark struct {
	name  string
	start time.Time
}

// Begin starts a measurement for phase name.
func (t *Timer) Begin(name string) Mark {
	return Mark{name: name, start: time.Now()}
}

// End finishes a measurement and adds it to its phase.
func (t *Timer) End(m Mark) time.Duration {
	d := time.Since(m.start)
	t.Add(m.name, d)
	return d
}

// Add records one measurement of d under name.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	i, ok := t.index[name]
	if !ok {
		i = len(t.phases)
		t.index[name] = i
		t.phases = append(t.phases, Phase{Name: name})
	}
	p := &t.phases[i]
	p.Count++
	p.Total += d
	if d > p.Max {
		p.Max = d
	}
}

// Note attaches a free-form annotation to a phase.
func (t *Timer) Note(name, note string) {
	if t == nil {
		return
	}
	if i, ok := t.index[name]; ok {
		t.phases[i].Note = note
	}
}

// Summary returns a human-readable table of all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-12s %9.2f ms  n=%-8d avg %7.3f ms  max %7.3f ms", p.Name, p.TotalMS, p.Count, p.AvgMS, p.MaxMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %-12s %9.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport is the serializable view of a phase.
type PhaseReport struct {
	Name    string  `json:"name" msgpack:"name"`
	Count   int     `json:"count" msgpack:"count"`
	TotalMS float64 `json:"total_ms" msgpack:"total_ms"`
	AvgMS   float64 `json:"avg_ms" msgpack:"avg_ms"`
	MaxMS   float64 `json:"max_ms" msgpack:"max_ms"`
	Note    string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report aggregates all phases.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

// Report returns the phases in first-seen order and their summed duration.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Total
		avg := time.Duration(0)
		if p.Count > 0 {
			avg = p.Total / time.Duration(p.Count)
		}
		report.Phases[i] = PhaseReport{
			Name:    p.Name,
			Count:   p.Count,
			TotalMS: durationToMillis(p.Total),
			AvgMS:   durationToMillis(avg),
			MaxMS:   durationToMillis(p.Max),
			Note:    p.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
