package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"ringfuzz/internal/fuzzloop"
	"ringfuzz/internal/target"
)

func newModel(limit uint64) *progressModel {
	return NewProgressModel("ringfuzz", "/opt/fuzz_driver", limit, make(chan fuzzloop.Event), nil).(*progressModel)
}

func TestApplyEventCountsIterations(t *testing.T) {
	m := newModel(10)
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageBuild, Iteration: 1})
	if m.iteration != 1 || m.stage != fuzzloop.StageBuild {
		t.Fatalf("after build: iteration=%d stage=%s", m.iteration, m.stage)
	}
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageRun, Iteration: 1})
	if m.passed != 0 {
		t.Fatalf("run start counted as passed")
	}
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageRun, Iteration: 1, Done: true,
		Outcome: target.Outcome{Status: target.StatusOK}, Elapsed: time.Millisecond})
	if m.passed != 1 || m.last != "ok" {
		t.Fatalf("after ok: passed=%d last=%q", m.passed, m.last)
	}
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageRun, Iteration: 2, Done: true,
		Outcome: target.Outcome{Status: target.StatusExit, ExitCode: 1}})
	if m.passed != 1 || m.last != "exit status 1" {
		t.Fatalf("after failure: passed=%d last=%q", m.passed, m.last)
	}
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageHalt, Iteration: 2, Reason: fuzzloop.HaltDefect})
	if !strings.HasPrefix(m.halt, "failed") {
		t.Fatalf("halt = %q", m.halt)
	}
}

func TestApplyEventHarnessError(t *testing.T) {
	m := newModel(0)
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageHalt, Err: errors.New("no such file")})
	if m.halt != "error: no such file" {
		t.Fatalf("halt = %q", m.halt)
	}
}

func TestViewShowsCounters(t *testing.T) {
	m := newModel(5)
	m.applyEvent(fuzzloop.Event{Stage: fuzzloop.StageRun, Iteration: 3, Done: true,
		Outcome: target.Outcome{Status: target.StatusOK}})
	view := m.View()
	for _, want := range []string{"ringfuzz", "/opt/fuzz_driver", "3 / 5", "iterations"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestDoneMsgQuits(t *testing.T) {
	m := newModel(0)
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("doneMsg did not finish the model")
	}
	if !strings.Contains(m.View(), "done: ringfuzz") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
		{"abcdefghi", 8, "abcde..."},
		{"界界界界界", 7, "界界..."},
	}
	for _, tc := range cases {
		got := truncate(tc.in, tc.width)
		if tc.width > 0 && runewidth.StringWidth(got) > tc.width {
			t.Fatalf("truncate(%q, %d) is %d columns wide", tc.in, tc.width, runewidth.StringWidth(got))
		}
		if got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestKeyStopsCampaign(t *testing.T) {
	stopped := false
	m := NewProgressModel("ringfuzz", "", 0, make(chan fuzzloop.Event), func() { stopped = true }).(*progressModel)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !stopped {
		t.Fatalf("ctrl+c did not call stop")
	}
	if m.done {
		t.Fatalf("model finished before the event channel closed")
	}
}
