package sema

import "slices"

// valueKey names one value held by a binding: gen counts the reassignments
// in the declaring block that came before it.
type valueKey struct {
	id  BindingID
	gen int
}

// livenessPlan says when each view stops keeping its sources alive.
type livenessPlan struct {
	mode Liveness
	// splits holds the Init writes that start a new value of a view local.
	splits map[BindingID][]int
	uses   map[valueKey][]int
	// endAfter maps an EvStmtEnd index to the views that end there.
	endAfter map[int][]BindingID
	// endAt maps an EvBranch or EvElse index to the views already dead when
	// that arm starts.
	endAt map[int][]BindingID
}

func (p *livenessPlan) key(id BindingID, idx int) valueKey {
	gen := 0
	for _, at := range p.splits[id] {
		if at <= idx {
			gen++
		}
	}
	return valueKey{id: id, gen: gen}
}

// lastUse is the last event that needs the value id holds at idx, or -1.
func (p *livenessPlan) lastUse(id BindingID, idx int) int {
	us := p.uses[p.key(id, idx)]
	if len(us) == 0 {
		return -1
	}
	return us[len(us)-1]
}

// live reports whether dependent still needs its regions at event idx.
func (p *livenessPlan) live(dependent BindingID, idx int, ended bool) bool {
	if ended {
		return false
	}
	if p.mode == LivenessLexical {
		return true
	}
	return p.lastUse(dependent, idx) > idx
}

type ifArms struct {
	branch, els, join int
}

func planLiveness(body *Body, mode Liveness) *livenessPlan {
	p := &livenessPlan{
		mode:     mode,
		splits:   make(map[BindingID][]int),
		uses:     make(map[valueKey][]int),
		endAfter: make(map[int][]BindingID),
		endAt:    make(map[int][]BindingID),
	}
	declAt := make(map[BindingID]int)
	arms := make(map[int]*ifArms)
	touch := func(id BindingID, i int) {
		if id.IsValid() {
			k := p.key(id, i)
			p.uses[k] = append(p.uses[k], i)
		}
	}
	for i := range body.Events {
		ev := &body.Events[i]
		switch ev.Kind {
		case EvDeclare:
			declAt[ev.Binding] = i
			touch(ev.Binding, i)
		case EvUse:
			if ev.Init && p.startsValue(body, declAt, ev) {
				p.splits[ev.Binding] = append(p.splits[ev.Binding], i)
			}
			touch(ev.Binding, i)
		case EvConsume, EvReturn:
			touch(ev.Binding, i)
		case EvBeginAccess:
			touch(ev.Source, i)
			touch(ev.Binding, i)
		case EvBranch:
			arms[ev.Stmt] = &ifArms{branch: i}
		case EvElse:
			arms[ev.Stmt].els = i
		case EvJoin:
			arms[ev.Stmt].join = i
		}
	}

	// a source lives at least as long as anything depending on it
	for i := len(body.Events) - 1; i >= 0; i-- {
		ev := &body.Events[i]
		if ev.Kind != EvBeginAccess || ev.Edge == EdgeNone {
			continue
		}
		dk, sk := p.key(ev.Binding, i), p.key(ev.Source, i)
		p.uses[sk] = append(p.uses[sk], p.uses[dk]...)
	}
	for k, us := range p.uses {
		slices.Sort(us)
		p.uses[k] = slices.Compact(us)
	}

	if mode == LivenessLexical {
		return p
	}
	for i := 1; i < len(body.Bindings); i++ {
		b := &body.Bindings[i]
		if b.Kind != BindLocal || !b.IsView() {
			continue
		}
		decl, ok := declAt[b.ID]
		if !ok {
			continue
		}
		parent := body.stmts[body.Events[decl].Stmt].Parent
		starts := append([]int{decl}, p.splits[b.ID]...)
		for g, start := range starts {
			limit := len(body.Events)
			if g+1 < len(starts) {
				limit = starts[g+1]
			}
			us := p.uses[valueKey{id: b.ID, gen: g}]
			p.place(body, arms, b.ID, us, parent, start-1, limit)
		}
	}
	return p
}

// startsValue reports whether an Init write replaces the whole value on
// every path, i.e. it sits directly in the block that declared the view.
func (p *livenessPlan) startsValue(body *Body, declAt map[BindingID]int, ev *Event) bool {
	b := body.Binding(ev.Binding)
	decl, ok := declAt[ev.Binding]
	if b == nil || b.Kind != BindLocal || !b.IsView() || !ok {
		return false
	}
	d, a := body.stmts[body.Events[decl].Stmt], body.stmts[ev.Stmt]
	return ev.Stmt != 0 && a.Parent == d.Parent && a.Block == d.Block
}

// place schedules the end of one value of id among the statements under
// parent whose events lie in (lo, hi). An if holding the last use is
// entered and each arm gets its own end.
func (p *livenessPlan) place(body *Body, arms map[int]*ifArms, id BindingID, uses []int, parent, lo, hi int) {
	last := -1
	for _, u := range uses {
		if u > lo && u < hi {
			last = u
		}
	}
	if last < 0 {
		// в этой ветке значение не нужно
		if lo < 0 {
			return
		}
		if ev := &body.Events[lo]; ev.Kind == EvBranch || ev.Kind == EvElse {
			p.endAt[lo] = append(p.endAt[lo], id)
		}
		return
	}
	s := body.stmtUnder(body.Events[last].Stmt, parent)
	if s == 0 {
		return
	}
	if a, ok := arms[s]; ok && last < a.join {
		p.place(body, arms, id, uses, s, a.branch, a.els)
		p.place(body, arms, id, uses, s, a.els, a.join)
		return
	}
	// присваивание само завершит старое значение
	if end := body.stmts[s].End; end < hi {
		p.endAfter[end] = append(p.endAfter[end], id)
	}
}
