package sema

import (
	"fmt"
	"maps"
	"slices"

	"viewck/internal/diag"
	"viewck/internal/source"
)

type depEdge struct {
	Source BindingID
	Kind   EdgeKind
}

// flowState is what the checker knows at one point of the event stream.
type flowState struct {
	regions    *Tracker
	edges      map[BindingID][]depEdge
	consumed   map[BindingID]source.Span
	ended      map[BindingID]bool
	terminated bool
}

func newFlowState() flowState {
	return flowState{
		regions:  NewTracker(),
		edges:    make(map[BindingID][]depEdge),
		consumed: make(map[BindingID]source.Span),
		ended:    make(map[BindingID]bool),
	}
}

func (s *flowState) clone() flowState {
	edges := make(map[BindingID][]depEdge, len(s.edges))
	for id, es := range s.edges {
		edges[id] = slices.Clone(es)
	}
	return flowState{
		regions:    s.regions.Snapshot(),
		edges:      edges,
		consumed:   maps.Clone(s.consumed),
		ended:      maps.Clone(s.ended),
		terminated: s.terminated,
	}
}

// join merges the state of another path into s. A path that left the
// function contributes nothing.
func (s *flowState) join(o *flowState) {
	switch {
	case o.terminated:
		return
	case s.terminated:
		*s = o.clone()
		return
	}
	s.regions.Join(o.regions)
	for id, es := range o.edges {
		mine := s.edges[id]
		for _, e := range es {
			if !slices.Contains(mine, e) {
				mine = append(mine, e)
			}
		}
		s.edges[id] = mine
	}
	for id, span := range o.consumed {
		if _, ok := s.consumed[id]; !ok {
			s.consumed[id] = span
		}
	}
	for id := range s.ended {
		if !o.ended[id] {
			delete(s.ended, id)
		}
	}
}

type branchFrame struct {
	entry flowState
	then  *flowState
}

// checker walks the events of one body over a region tracker.
type checker struct {
	body     *Body
	sig      *Signature
	reporter diag.Reporter
	plan     *livenessPlan

	st       flowState
	branches []branchFrame
	inScope  map[ScopeID][]BindingID
	idx      int
}

func newChecker(body *Body, plan *livenessPlan, reporter diag.Reporter) *checker {
	return &checker{
		body:     body,
		sig:      body.Sig,
		reporter: reporter,
		plan:     plan,
		st:       newFlowState(),
		inScope:  make(map[ScopeID][]BindingID),
	}
}

func (c *checker) run() {
	for i := range c.body.Events {
		c.idx = i
		c.step(&c.body.Events[i])
	}
}

func (c *checker) step(ev *Event) {
	switch ev.Kind {
	case EvDeclare:
		b := c.body.Binding(ev.Binding)
		c.inScope[b.Scope] = append(c.inScope[b.Scope], b.ID)
		return
	case EvBranch:
		c.branches = append(c.branches, branchFrame{entry: c.st.clone()})
		c.endArm()
		return
	case EvElse:
		f := &c.branches[len(c.branches)-1]
		then := c.st
		f.then = &then
		c.st = f.entry.clone()
		c.endArm()
		return
	case EvJoin:
		f := c.branches[len(c.branches)-1]
		c.branches = c.branches[:len(c.branches)-1]
		if f.then != nil {
			c.st.join(f.then)
		}
		return
	}
	if c.st.terminated {
		return
	}
	switch ev.Kind {
	case EvUse:
		c.use(ev)
	case EvBeginAccess:
		c.beginAccess(ev)
	case EvEndAccess:
		c.endDependent(ev.Binding)
	case EvConsume:
		c.st.consumed[ev.Binding] = ev.Span
		c.endDependent(ev.Binding)
	case EvReturn:
		c.checkReturn(ev)
	case EvExit:
		c.st.terminated = true
	case EvKill:
		c.kill(ev.Binding, ev.Span)
	case EvStmtEnd:
		for _, id := range c.plan.endAfter[c.idx] {
			c.endDependent(id)
		}
	case EvCloseScope:
		c.closeScope(ev)
	}
}

// roots follows copied edges; a binding with no copied edge is its own root.
func (c *checker) roots(b BindingID) []BindingID {
	var out []BindingID
	seen := make(map[BindingID]bool)
	var walk func(BindingID)
	walk = func(x BindingID) {
		if seen[x] {
			return
		}
		seen[x] = true
		es := c.st.edges[x]
		self := len(es) == 0
		for _, e := range es {
			if e.Kind == EdgeCopied {
				walk(e.Source)
			} else {
				self = true
			}
		}
		if self && !slices.Contains(out, x) {
			out = append(out, x)
		}
	}
	walk(b)
	return out
}

func (c *checker) use(ev *Event) {
	b := ev.Binding
	if at, ok := c.st.consumed[b]; ok {
		if ev.Use != UseWrite || !ev.Init {
			c.reportConsumed(b, ev.Span, at)
			return
		}
		delete(c.st.consumed, b)
	}
	targets := []BindingID{b}
	if ev.Init {
		// новое значение целиком: старые рёбра больше не действуют
		delete(c.st.edges, b)
		delete(c.st.ended, b)
	} else {
		targets = c.roots(b)
	}
	for _, root := range targets {
		id, conflict := c.st.regions.Conflicting(root, ev.Use, b)
		if !conflict {
			continue
		}
		info := c.st.regions.Info(id)
		var msg string
		switch ev.Use {
		case UseRead:
			msg = fmt.Sprintf("cannot read %s while %s holds exclusive access to %s", c.label(b), c.dependentsLabel(info), c.label(root))
		case UseWrite:
			msg = fmt.Sprintf("cannot assign to %s while %s depends on it", c.label(root), c.dependentsLabel(info))
		default:
			msg = fmt.Sprintf("cannot move %s while %s depends on it", c.label(root), c.dependentsLabel(info))
		}
		if ev.Note != "" {
			msg += " (" + ev.Note + ")"
		}
		c.emitRegionDiag(diag.SemaExclusivityViolation, ev.Span, msg, id)
		return
	}
}

func (c *checker) beginAccess(ev *Event) {
	src, dep := ev.Source, ev.Binding
	if at, ok := c.st.consumed[src]; ok {
		c.reportConsumed(src, ev.Span, at)
		return
	}
	if ev.Edge == EdgeNone {
		c.open(src, ev.Access, dep, ev)
		return
	}
	if c.st.ended[dep] {
		delete(c.st.edges, dep)
		delete(c.st.ended, dep)
	}
	c.st.edges[dep] = append(c.st.edges[dep], depEdge{Source: src, Kind: ev.Edge})
	if ev.Edge.Scoped() {
		c.open(src, ev.Edge.Access(), dep, ev)
		return
	}
	c.st.regions.Inherit(dep, src)
}

// open starts a region on every root of src. A conflicting region is
// reported and not opened.
func (c *checker) open(src BindingID, kind AccessKind, dep BindingID, ev *Event) {
	for _, root := range c.roots(src) {
		_, conflict := c.st.regions.OpenRegion(root, kind, dep, ev.Span, ev.RuntimeChecked)
		if conflict == NoRegionID {
			continue
		}
		info := c.st.regions.Info(conflict)
		what := "borrow"
		if kind == AccessExclusive {
			what = "mutably borrow"
		}
		msg := fmt.Sprintf("cannot %s %s for %s: it already has %s access by %s",
			what, c.label(root), c.label(dep), info.Kind, c.dependentsLabel(info))
		c.emitRegionDiag(diag.SemaExclusivityViolation, ev.Span, msg, conflict)
	}
}

// endArm ends the views that are dead on the path entered at c.idx.
func (c *checker) endArm() {
	for _, id := range c.plan.endAt[c.idx] {
		if !c.st.ended[id] {
			c.endDependent(id)
		}
	}
}

func (c *checker) endDependent(id BindingID) {
	c.st.regions.EndDependent(id)
	c.st.ended[id] = true
}

func (c *checker) isLive(id BindingID) bool {
	b := c.body.Binding(id)
	if b == nil || b.Kind == BindCall {
		return false
	}
	return c.plan.live(id, c.idx, c.st.ended[id])
}

// kill destroys root; views still depending on it would dangle.
func (c *checker) kill(root BindingID, span source.Span) {
	if _, moved := c.st.consumed[root]; moved {
		return
	}
	for _, id := range c.st.regions.OpenOn(root) {
		var live []BindingID
		for _, dep := range c.st.regions.Dependents(id) {
			if c.isLive(dep) {
				live = append(live, dep)
			}
		}
		if len(live) > 0 {
			info := c.st.regions.Info(id)
			msg := fmt.Sprintf("%s is destroyed here while %s still depends on it", c.label(root), c.label(live[0]))
			diag.ReportError(c.reporter, diag.SemaDanglingDependency, span, msg).
				WithNote(info.Span, fmt.Sprintf("dependency on %s created here", c.label(root))).
				Emit()
		}
		c.st.regions.CloseRegion(id)
	}
}

func (c *checker) closeScope(ev *Event) {
	ids := c.inScope[ev.Scope]
	delete(c.inScope, ev.Scope)
	for i := len(ids) - 1; i >= 0; i-- {
		if b := c.body.Binding(ids[i]); b.IsView() && !c.st.ended[b.ID] {
			c.endDependent(b.ID)
		}
	}
	for i := len(ids) - 1; i >= 0; i-- {
		c.kill(ids[i], ev.Span)
	}
}

type anchor struct {
	id     BindingID
	scoped bool
}

// anchors lists the storage a view ultimately points into.
func (c *checker) anchors(b BindingID) []anchor {
	var out []anchor
	seen := make(map[BindingID]bool)
	var walk func(BindingID)
	walk = func(x BindingID) {
		if seen[x] {
			return
		}
		seen[x] = true
		es := c.st.edges[x]
		if len(es) == 0 {
			out = append(out, anchor{id: x})
			return
		}
		for _, e := range es {
			if e.Kind == EdgeCopied {
				walk(e.Source)
				continue
			}
			for _, r := range c.roots(e.Source) {
				a := anchor{id: r, scoped: true}
				if !slices.Contains(out, a) {
					out = append(out, a)
				}
			}
		}
	}
	walk(b)
	return out
}

func (c *checker) checkReturn(ev *Event) {
	if ev.Result >= len(c.sig.Results) {
		return
	}
	rs := c.sig.Results[ev.Result]
	if rs.TypeKind != NonEscapable || rs.Edge == nil {
		return
	}
	if _, ok := c.st.consumed[ev.Binding]; ok {
		return
	}
	want := c.sig.Params[rs.Edge.Param]
	for _, a := range c.anchors(ev.Binding) {
		ab := c.body.Binding(a.id)
		if ab.IsView() && ab.Kind != BindParam && len(c.st.edges[a.id]) == 0 {
			// происхождение неизвестно, об этом уже сообщили
			continue
		}
		switch {
		case ab.Kind == BindParam && ab.ParamIndex != rs.Edge.Param:
			msg := fmt.Sprintf("returned view depends on %s, but the result is declared to depend on %s", ab.Label(), want.Label())
			diag.ReportError(c.reporter, diag.SemaDanglingDependency, ev.Span, msg).
				WithNote(ab.Span, "parameter declared here").
				Emit()
		case ab.Kind == BindParam && rs.Edge.Kind == EdgeCopied && a.scoped:
			msg := fmt.Sprintf("returned view is a scoped access of %s that ends when the call returns; the result copies the dependency of %s", ab.Label(), want.Label())
			diag.ReportError(c.reporter, diag.SemaDanglingDependency, ev.Span, msg).
				WithNote(rs.Span, "result declared here").
				Emit()
		case ab.IsTemporary():
			msg := fmt.Sprintf("returned view depends on %s, destroyed at the end of the statement", ab.Label())
			diag.ReportError(c.reporter, diag.SemaDanglingDependency, ev.Span, msg).Emit()
		case ab.Kind == BindLocal:
			msg := fmt.Sprintf("returned view depends on local %s, destroyed when '%s' returns", ab.Label(), c.sig.Name)
			diag.ReportError(c.reporter, diag.SemaDanglingDependency, ev.Span, msg).
				WithNote(ab.Span, "declared here").
				Emit()
		}
	}
}

func (c *checker) reportConsumed(b BindingID, span, at source.Span) {
	msg := fmt.Sprintf("use of %s after it was consumed", c.label(b))
	diag.ReportError(c.reporter, diag.SemaUseAfterConsume, span, msg).
		WithNote(at, "consumed here").
		Emit()
}
