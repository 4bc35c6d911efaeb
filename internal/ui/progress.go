// Package ui renders live campaign progress on the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ringfuzz/internal/fuzzloop"
)

type progressModel struct {
	title   string
	target  string
	limit   uint64
	events  <-chan fuzzloop.Event
	stop    func()
	spinner spinner.Model
	prog    progress.Model
	width   int
	started time.Time

	iteration uint64
	stage     fuzzloop.Stage
	passed    uint64
	last      string
	lastDur   time.Duration
	halt      string
	done      bool
}

type eventMsg fuzzloop.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders campaign progress.
// limit is the iteration cap, or zero for an unbounded campaign. stop is
// called when the user presses ctrl+c or q; the model keeps draining events
// until the channel is closed.
func NewProgressModel(title, targetPath string, limit uint64, events <-chan fuzzloop.Event, stop func()) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		target:  targetPath,
		limit:   limit,
		events:  events,
		stop:    stop,
		spinner: sp,
		prog:    prog,
		width:   80,
		started: time.Now(),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(fuzzloop.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.stop != nil {
				m.stop()
			}
			m.halt = "stopping"
		}
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stage != "" && !m.done {
		header = fmt.Sprintf("%s (%s)", header, stageLabel(m.stage))
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate(header, m.width)))
	b.WriteString("\n\n")

	nameWidth := m.width - 14
	if nameWidth < 20 {
		nameWidth = 20
	}
	m.row(&b, "target", truncate(m.target, nameWidth), "7")
	count := fmt.Sprintf("%d", m.iteration)
	if m.limit > 0 {
		count = fmt.Sprintf("%d / %d", m.iteration, m.limit)
	}
	m.row(&b, "iterations", count, "7")
	m.row(&b, "passed", fmt.Sprintf("%d", m.passed), "2")
	if m.last != "" {
		last := truncate(fmt.Sprintf("%s in %s", m.last, m.lastDur.Round(time.Microsecond)), nameWidth)
		m.row(&b, "last", last, statusColor(m.last))
	}
	m.row(&b, "elapsed", time.Since(m.started).Round(time.Second).String(), "7")
	if m.halt != "" {
		m.row(&b, "result", truncate(m.halt, nameWidth), statusColor(m.halt))
	}

	if m.limit > 0 {
		b.WriteString("\n")
		if m.done {
			b.WriteString(m.prog.ViewAs(1.0))
		} else {
			b.WriteString(m.prog.View())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *progressModel) row(b *strings.Builder, label, value, color string) {
	styled := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(value)
	fmt.Fprintf(b, "  %12s %s\n", label, styled)
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev fuzzloop.Event) tea.Cmd {
	switch ev.Stage {
	case fuzzloop.StageHalt:
		m.stage = ev.Stage
		switch {
		case ev.Err != nil:
			m.halt = "error: " + ev.Err.Error()
		case ev.Reason == fuzzloop.HaltDefect:
			m.halt = "failed: target failed"
		default:
			m.halt = "stopped"
		}
		return nil
	case fuzzloop.StageRun:
		m.stage = ev.Stage
		m.iteration = ev.Iteration
		if !ev.Done {
			return nil
		}
		if !ev.Outcome.Failed() {
			m.passed++
		}
		m.last = ev.Outcome.String()
		m.lastDur = ev.Elapsed
		if m.limit > 0 {
			return m.prog.SetPercent(float64(ev.Iteration) / float64(m.limit))
		}
		return nil
	default:
		m.stage = ev.Stage
		m.iteration = ev.Iteration
		return nil
	}
}

func stageLabel(stage fuzzloop.Stage) string {
	switch stage {
	case fuzzloop.StageBuild:
		return "generating"
	case fuzzloop.StageRun:
		return "running"
	case fuzzloop.StageHalt:
		return "halted"
	default:
		return ""
	}
}

func statusColor(status string) string {
	switch status {
	case "ok", "stopped":
		return "2"
	default:
		return "1"
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
