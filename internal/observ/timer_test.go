package observ

import (
	"strings"
	"testing"
)

func TestNilTimerIsInert(t *testing.T) {
	var timer *Timer
	idx := timer.Begin("parse")
	timer.End(idx, "x")
	if r := timer.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("report = %+v", r)
	}
}

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	timer.End(timer.Begin("parse"), "items=3")
	timer.End(timer.Begin("check"), "")
	timer.End(42, "ignored")

	r := timer.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "parse" || r.Phases[0].Note != "items=3" {
		t.Fatalf("phases = %+v", r.Phases)
	}
	s := r.Summary()
	if !strings.Contains(s, "parse") || !strings.Contains(s, "// items=3") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestAggregate(t *testing.T) {
	agg := NewAggregate()
	agg.Add(Report{Phases: []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "check", DurationMS: 2}}})
	agg.Add(Report{Phases: []PhaseReport{{Name: "parse", DurationMS: 3}}})

	r := agg.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "parse" || r.Phases[0].DurationMS != 4 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.TotalMS != 6 || r.Phases[1].Note != "2 files" {
		t.Fatalf("report = %+v", r)
	}
}
