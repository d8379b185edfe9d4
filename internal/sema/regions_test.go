package sema

import (
	"slices"
	"testing"

	"viewck/internal/source"
)

func TestTrackerExclusiveInvariant(t *testing.T) {
	tr := NewTracker()
	const root, v, w, m BindingID = 1, 2, 3, 4

	r1, conflict := tr.OpenRegion(root, AccessReadOnly, v, source.Span{}, false)
	if r1 == NoRegionID || conflict != NoRegionID {
		t.Fatalf("first read-only region: %d, %d", r1, conflict)
	}
	if _, conflict = tr.OpenRegion(root, AccessReadOnly, w, source.Span{}, false); conflict != NoRegionID {
		t.Fatal("read-only regions must overlap")
	}
	id, conflict := tr.OpenRegion(root, AccessExclusive, m, source.Span{}, false)
	if id != NoRegionID || conflict != r1 {
		t.Fatalf("exclusive over read-only: id=%d conflict=%d", id, conflict)
	}
	if len(tr.OpenOn(root)) != 2 {
		t.Fatalf("open = %v", tr.OpenOn(root))
	}
	if _, conflict = tr.OpenRegion(root+10, AccessExclusive, m, source.Span{}, false); conflict != NoRegionID {
		t.Fatal("regions on other roots do not conflict")
	}
}

func TestTrackerConflictingSkipsOwnRegions(t *testing.T) {
	tr := NewTracker()
	const root, v BindingID = 1, 2
	id, _ := tr.OpenRegion(root, AccessExclusive, v, source.Span{}, false)

	if _, bad := tr.Conflicting(root, UseRead, v); bad {
		t.Fatal("dependent conflicts with its own region")
	}
	if got, bad := tr.Conflicting(root, UseRead, root); !bad || got != id {
		t.Fatalf("read under exclusive region: %d, %v", got, bad)
	}
}

func TestTrackerInheritAndEnd(t *testing.T) {
	tr := NewTracker()
	const root, a, b BindingID = 1, 2, 3
	id, _ := tr.OpenRegion(root, AccessReadOnly, a, source.Span{}, false)
	tr.Inherit(b, a)
	if deps := tr.Dependents(id); !slices.Equal(deps, []BindingID{a, b}) {
		t.Fatalf("dependents = %v", deps)
	}
	tr.EndDependent(a)
	if !tr.IsOpen(id) {
		t.Fatal("region closed while b still depends on it")
	}
	tr.EndDependent(b)
	if tr.IsOpen(id) {
		t.Fatal("region open without dependents")
	}
	tr.CloseRegion(id)
	if info := tr.Info(id); info == nil || info.Opener != a || info.Root != root {
		t.Fatalf("info = %+v", info)
	}
}

func TestTrackerSnapshotJoin(t *testing.T) {
	tr := NewTracker()
	const root, other, v, w BindingID = 1, 2, 3, 4
	base, _ := tr.OpenRegion(root, AccessReadOnly, v, source.Span{}, false)

	entry := tr.Snapshot()
	tr.EndDependent(v)
	inThen, _ := tr.OpenRegion(other, AccessExclusive, w, source.Span{}, false)
	then := tr.Snapshot()

	tr.Restore(entry)
	if !tr.IsOpen(base) || tr.IsOpen(inThen) {
		t.Fatal("restore did not bring back the entry state")
	}
	tr.Join(then)
	if !tr.IsOpen(base) || !tr.IsOpen(inThen) {
		t.Fatal("join must keep regions open on either path")
	}
	if inThen == base {
		t.Fatal("region IDs must stay unique across snapshots")
	}
}
