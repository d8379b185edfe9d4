package ui

import (
	"math"
	"strings"
	"testing"

	"viewck/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"a.vw", "b.vw"}, events).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "a.vw", Stage: driver.StageCheck, Status: driver.StatusWorking}))
	m.Update(eventMsg(driver.Event{File: "b.vw", Stage: driver.StageCheck, Status: driver.StatusCached}))

	view := m.View()
	if !strings.Contains(view, "checking a.vw") {
		t.Errorf("a.vw should be checking:\n%s", view)
	}
	if !strings.Contains(view, "cached b.vw") {
		t.Errorf("b.vw should be cached:\n%s", view)
	}
	if got := m.percent(); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("percent = %v", got)
	}

	m.Update(eventMsg(driver.Event{File: "a.vw", Stage: driver.StageCheck, Status: driver.StatusError}))
	// финальный статус не перетирается
	m.Update(eventMsg(driver.Event{File: "a.vw", Stage: driver.StageParse, Status: driver.StatusWorking}))
	if m.items[0].status != driver.StatusError || m.failures != 1 {
		t.Errorf("item = %+v, failures = %d", m.items[0], m.failures)
	}

	m.Update(doneMsg{})
	view = m.View()
	if !strings.Contains(view, "done: checking (2 files, 1 cached, 1 failed") {
		t.Errorf("unexpected summary:\n%s", view)
	}
}

func TestProgressModelAddsUnknownFiles(t *testing.T) {
	m := NewProgressModel("watch", nil, nil).(*progressModel)
	if m.View() != "" {
		t.Error("empty model must render nothing")
	}
	m.Update(eventMsg(driver.Event{File: "late.vw", Stage: driver.StageLoad, Status: driver.StatusWorking}))
	if len(m.items) != 1 || !strings.Contains(m.View(), "loading late.vw") {
		t.Errorf("items = %+v", m.items)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.vw", 20, "short.vw"},
		{"very/long/path/file.vw", 10, "very/lo..."},
		{"abcdef", 3, "abc"},
		{"日本語.vw", 5, "日..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
