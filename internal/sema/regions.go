package sema

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"viewck/internal/source"
)

// RegionID identifies an access region.
type RegionID uint32

// NoRegionID marks the absence of a region.
const NoRegionID RegionID = 0

// Region is the immutable part of an access region: where it was opened,
// on which root, with which kind.
type Region struct {
	ID             RegionID
	Root           BindingID
	Kind           AccessKind
	Opener         BindingID
	Span           source.Span
	RuntimeChecked bool
}

// regionLog is shared by a tracker and all its snapshots so that region IDs
// stay unique across branches.
type regionLog struct {
	infos []Region
}

// Tracker keeps the open access regions of one function body. Each open
// region carries the dependents keeping it alive; it closes when the last
// of them ends.
//
// OpenRegion never creates two exclusive regions, or a read-only and an
// exclusive one, on the same root. Join may: it is the union of two paths.
type Tracker struct {
	log  *regionLog
	open map[RegionID][]BindingID
}

func NewTracker() *Tracker {
	return &Tracker{
		log:  &regionLog{infos: []Region{{}}},
		open: make(map[RegionID][]BindingID),
	}
}

// OpenRegion opens a region on root for dependent. On conflict nothing is
// opened and the conflicting region is returned.
func (t *Tracker) OpenRegion(root BindingID, kind AccessKind, dependent BindingID, span source.Span, runtimeChecked bool) (RegionID, RegionID) {
	for _, id := range t.openIDs() {
		info := &t.log.infos[id]
		if info.Root != root {
			continue
		}
		if kind == AccessExclusive || info.Kind == AccessExclusive {
			return NoRegionID, id
		}
	}
	value, err := safecast.Conv[uint32](len(t.log.infos))
	if err != nil {
		panic(fmt.Errorf("region table overflow: %w", err))
	}
	id := RegionID(value)
	t.log.infos = append(t.log.infos, Region{
		ID:             id,
		Root:           root,
		Kind:           kind,
		Opener:         dependent,
		Span:           span,
		RuntimeChecked: runtimeChecked,
	})
	t.open[id] = []BindingID{dependent}
	return id, NoRegionID
}

// Conflicting returns the first open region on root a use of the given kind
// conflicts with. Regions that user itself keeps alive never conflict.
func (t *Tracker) Conflicting(root BindingID, use UseKind, user BindingID) (RegionID, bool) {
	for _, id := range t.openIDs() {
		info := &t.log.infos[id]
		if info.Root != root || slices.Contains(t.open[id], user) {
			continue
		}
		if use != UseRead || info.Kind == AccessExclusive {
			return id, true
		}
	}
	return NoRegionID, false
}

// Inherit makes dependent keep alive every region from keeps alive.
func (t *Tracker) Inherit(dependent, from BindingID) {
	for _, id := range t.openIDs() {
		deps := t.open[id]
		if slices.Contains(deps, from) && !slices.Contains(deps, dependent) {
			t.open[id] = append(deps, dependent)
		}
	}
}

// EndDependent removes dependent from every region and closes the ones
// left without dependents.
func (t *Tracker) EndDependent(dependent BindingID) {
	for _, id := range t.openIDs() {
		deps := t.open[id]
		idx := slices.Index(deps, dependent)
		if idx < 0 {
			continue
		}
		deps = slices.Delete(slices.Clone(deps), idx, idx+1)
		if len(deps) == 0 {
			delete(t.open, id)
		} else {
			t.open[id] = deps
		}
	}
}

// CloseRegion is idempotent.
func (t *Tracker) CloseRegion(id RegionID) {
	delete(t.open, id)
}

// OpenOn lists the open regions on root in opening order.
func (t *Tracker) OpenOn(root BindingID) []RegionID {
	var out []RegionID
	for _, id := range t.openIDs() {
		if t.log.infos[id].Root == root {
			out = append(out, id)
		}
	}
	return out
}

// Dependents returns the bindings keeping an open region alive.
func (t *Tracker) Dependents(id RegionID) []BindingID {
	return t.open[id]
}

func (t *Tracker) IsOpen(id RegionID) bool {
	_, ok := t.open[id]
	return ok
}

// Info returns metadata for the region.
func (t *Tracker) Info(id RegionID) *Region {
	if t == nil || id == NoRegionID || int(id) >= len(t.log.infos) {
		return nil
	}
	return &t.log.infos[id]
}

// Infos returns a copy of every region ever opened (excluding sentinel).
func (t *Tracker) Infos() []Region {
	if t == nil || len(t.log.infos) <= 1 {
		return nil
	}
	return slices.Clone(t.log.infos[1:])
}

// Snapshot copies the open set; the log stays shared.
func (t *Tracker) Snapshot() *Tracker {
	open := make(map[RegionID][]BindingID, len(t.open))
	for id, deps := range t.open {
		open[id] = slices.Clone(deps)
	}
	return &Tracker{log: t.log, open: open}
}

// Restore replaces the open set with a snapshot's.
func (t *Tracker) Restore(s *Tracker) {
	t.open = s.Snapshot().open
}

// Join unions the open regions of other into t.
func (t *Tracker) Join(other *Tracker) {
	for id, deps := range other.open {
		mine := t.open[id]
		for _, d := range deps {
			if !slices.Contains(mine, d) {
				mine = append(mine, d)
			}
		}
		t.open[id] = mine
	}
}

func (t *Tracker) openIDs() []RegionID {
	ids := make([]RegionID, 0, len(t.open))
	for id := range t.open {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
