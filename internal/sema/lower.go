package sema

import (
	"fmt"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/source"
	"viewck/internal/symbols"
)

type scopeFrame struct {
	id    ScopeID
	names map[source.StringID]BindingID
}

// lowerer turns one function body into the event stream. It reports the
// diagnostics that need only the tree (names, arity, lvalues); everything
// that depends on regions is left to the checker.
type lowerer struct {
	b        *ast.Builder
	table    *symbols.Table
	res      *Resolver
	cls      *Classifier
	oracle   BorrowabilityOracle
	reporter diag.Reporter
	opts     *Options

	sig    *Signature
	caller CallerContext
	body   *Body

	scopes    []scopeFrame
	nextScope ScopeID
	stmt      int
	temps     []BindingID
	edgeOf    map[BindingID]BindingID
	selfName  source.StringID
}

func lowerBody(c *checkContext, sig *Signature) *Body {
	l := &lowerer{
		b:        c.builder,
		table:    c.table,
		res:      c.resolver,
		cls:      c.classifier,
		oracle:   c.oracle,
		reporter: c.reporter,
		opts:     c.opts,
		sig:      sig,
		caller:   CallerContext{Type: sig.Func.Receiver},
		body:     newBody(sig),
		edgeOf:   make(map[BindingID]BindingID),
		selfName: c.builder.StringsInterner.Intern("self"),
	}

	fnScope := l.openScope()
	for i := range sig.Params {
		id := l.addBinding(sig.Params[i])
		name := sig.Func.Params[i].Name
		if sig.Func.Params[i].IsSelf {
			name = l.selfName
		}
		l.emit(Event{Kind: EvDeclare, Binding: id, Span: sig.Params[i].Span})
		l.bindName(name, id)
	}
	l.lowerBlock(sig.Func.Body)
	l.closeScope(fnScope, sig.Func.Span)
	return l.body
}

func (l *lowerer) emit(ev Event) int {
	ev.Stmt = l.stmt
	l.body.Events = append(l.body.Events, ev)
	return len(l.body.Events) - 1
}

func (l *lowerer) addBinding(b Binding) BindingID {
	b.ID = BindingID(len(l.body.Bindings))
	b.Scope = l.scopes[len(l.scopes)-1].id
	l.body.Bindings = append(l.body.Bindings, b)
	return b.ID
}

func (l *lowerer) binding(id BindingID) *Binding {
	return l.body.Binding(id)
}

func (l *lowerer) openScope() ScopeID {
	l.nextScope++
	l.scopes = append(l.scopes, scopeFrame{id: l.nextScope, names: make(map[source.StringID]BindingID)})
	l.emit(Event{Kind: EvOpenScope, Scope: l.nextScope})
	return l.nextScope
}

func (l *lowerer) closeScope(id ScopeID, span source.Span) {
	l.emit(Event{Kind: EvCloseScope, Scope: id, Span: span})
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *lowerer) currentScope() ScopeID {
	return l.scopes[len(l.scopes)-1].id
}

func (l *lowerer) bindName(name source.StringID, id BindingID) {
	l.scopes[len(l.scopes)-1].names[name] = id
}

func (l *lowerer) lookup(name source.StringID) (BindingID, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if id, ok := l.scopes[i].names[name]; ok {
			return id, true
		}
	}
	return NoBindingID, false
}

func (l *lowerer) beginStmt() int {
	l.body.stmts = append(l.body.stmts, stmtInfo{Parent: l.stmt, Block: l.currentScope()})
	l.stmt = len(l.body.stmts) - 1
	return l.stmt
}

func (l *lowerer) endStmt(ord int, span source.Span) {
	l.endTemps()
	l.body.stmts[ord].End = l.emit(Event{Kind: EvStmtEnd, Span: span})
	l.stmt = l.body.stmts[ord].Parent
}

// endTemps closes the temporaries of the current full expression: views
// first, then the storage they may point into.
func (l *lowerer) endTemps() {
	for i := len(l.temps) - 1; i >= 0; i-- {
		if b := l.binding(l.temps[i]); b.IsView() {
			l.emit(Event{Kind: EvEndAccess, Binding: b.ID, Span: b.Span})
		}
	}
	for i := len(l.temps) - 1; i >= 0; i-- {
		b := l.binding(l.temps[i])
		l.emit(Event{Kind: EvKill, Binding: b.ID, Span: b.Span})
	}
	l.temps = l.temps[:0]
}

func (l *lowerer) lowerBlock(id ast.StmtID) {
	block, ok := l.b.Stmts.Block(id)
	if !ok {
		return
	}
	scope := l.openScope()
	for _, stmt := range block.Stmts {
		l.lowerStmt(stmt)
	}
	l.closeScope(scope, block.Close)
}

func (l *lowerer) lowerStmt(id ast.StmtID) {
	st := l.b.Stmts.Get(id)
	if st == nil {
		return
	}
	ord := l.beginStmt()
	switch st.Kind {
	case ast.StmtBlock:
		l.lowerBlock(id)
	case ast.StmtLet:
		l.lowerLet(id)
	case ast.StmtDrop:
		l.lowerDrop(id)
	case ast.StmtReturn:
		l.lowerReturn(id, st.Span)
	case ast.StmtIf:
		l.lowerIf(id)
	case ast.StmtExpr:
		data, _ := l.b.Stmts.Expr(id)
		v := l.evalExpr(data.Expr)
		if v.kind == valPlace && !l.binding(v.binding).IsTemporary() {
			l.read(v)
		}
	case ast.StmtAssign:
		l.lowerAssign(id)
	}
	l.endStmt(ord, st.Span)
}

func (l *lowerer) lowerLet(id ast.StmtID) {
	data, _ := l.b.Stmts.Let(id)
	dests := make([]destSpec, len(data.Names))
	for i, n := range data.Names {
		dests[i] = destSpec{name: n.Name, span: n.Span, mutable: data.Mutable, keyword: data.KeywordSpan}
	}

	v := l.evalInto(data.Value, dests)
	var ids []BindingID
	switch {
	case v.bound:
		if v.kind == valTuple {
			for _, e := range v.elems {
				ids = append(ids, e.binding)
			}
		} else {
			ids = append(ids, v.binding)
		}
	case data.Tuple && v.kind == valTuple && len(v.elems) == len(dests):
		for i, e := range v.elems {
			ids = append(ids, l.bindFrom(dests[i], e))
		}
	case !data.Tuple && v.kind != valTuple:
		ids = append(ids, l.bindFrom(dests[0], v))
	default:
		if v.kind != valNone {
			msg := fmt.Sprintf("pattern binds %d name(s) but the value has %d element(s)", len(dests), v.arity())
			diag.ReportError(l.reporter, diag.SemaArityMismatch, v.span, msg).Emit()
		}
		l.read(v)
		for _, d := range dests {
			ids = append(ids, l.bindFrom(d, value{}))
		}
	}
	for i, bid := range ids {
		l.bindName(dests[i].name, bid)
	}
}

// bindFrom declares a new local initialised from v.
func (l *lowerer) bindFrom(d destSpec, v value) BindingID {
	typ := v.typ
	if v.kind == valNone {
		typ = symbols.NoTypeID
	}
	id := l.newLocal(d, typ)
	nb := l.binding(id)
	if v.kind != valPlace {
		l.emit(Event{Kind: EvDeclare, Binding: id, Span: d.span})
		return id
	}

	move := !nb.Copyable && l.canMove(v, "move")
	use := UseRead
	if move {
		use = UseExclusive
	}
	l.emit(Event{Kind: EvUse, Binding: v.binding, Use: use, Span: v.span})
	l.emit(Event{Kind: EvDeclare, Binding: id, Span: d.span})
	if nb.IsView() {
		l.link(id, v, EdgeCopied, v.span, "copy of "+v.label)
	}
	if move {
		l.emit(Event{Kind: EvConsume, Binding: v.binding, Span: v.span})
	}
	return id
}

func (l *lowerer) newLocal(d destSpec, typ symbols.TypeID) BindingID {
	b := l.cls.Local(l.b.Name(d.name), BindLocal, typ, d.mutable, d.span)
	if !d.mutable {
		b.KeywordSpan = d.keyword
	}
	return l.addBinding(b)
}

// link records dependent -> v.binding and emits the access that carries it.
func (l *lowerer) link(dependent BindingID, v value, kind EdgeKind, at source.Span, via string) {
	l.emit(Event{
		Kind:           EvBeginAccess,
		Binding:        dependent,
		Source:         v.binding,
		Edge:           kind,
		Access:         kind.Access(),
		RuntimeChecked: v.runtimeChecked,
		Span:           at,
		Note:           via,
	})
	root := v.binding
	if kind == EdgeCopied {
		for {
			next, ok := l.edgeOf[root]
			if !ok {
				break
			}
			root = next
		}
	}
	if kind == EdgeCopied {
		l.edgeOf[dependent] = root
	} else {
		delete(l.edgeOf, dependent)
	}
	l.body.Deps = append(l.body.Deps, DepRecord{
		Span:           at,
		Dependent:      dependent,
		Source:         v.binding,
		Root:           root,
		Kind:           kind,
		RuntimeChecked: v.runtimeChecked,
		Via:            via,
	})
	if v.runtimeChecked && l.opts.WarnRuntimeChecked {
		msg := fmt.Sprintf("view over dynamic member %s is only checked at runtime", v.label)
		diag.ReportWarning(l.reporter, diag.SemaRuntimeCheckedAccess, at, msg).Emit()
	}
}

func (l *lowerer) lowerDrop(id ast.StmtID) {
	data, _ := l.b.Stmts.Drop(id)
	bid, ok := l.lookup(data.Name)
	if !ok {
		l.reportUnknownName(data.Name, data.NameSpan)
		return
	}
	b := l.binding(bid)
	v := value{kind: valPlace, binding: bid, typ: b.Type, span: data.NameSpan, label: b.Name}
	if !l.canMove(v, "drop") {
		return
	}
	l.emit(Event{Kind: EvUse, Binding: bid, Use: UseExclusive, Span: data.NameSpan})
	l.emit(Event{Kind: EvConsume, Binding: bid, Span: data.NameSpan, Note: "drop"})
}

// canMove rejects moves out of fields and out of borrowed parameters.
func (l *lowerer) canMove(v value, what string) bool {
	b := l.binding(v.binding)
	if v.field {
		msg := fmt.Sprintf("cannot %s out of field %s", what, v.label)
		diag.ReportError(l.reporter, diag.SemaInvalidConventionTarget, v.span, msg).Emit()
		return false
	}
	if b.Kind == BindParam && b.Convention != ConvConsuming {
		msg := fmt.Sprintf("cannot %s %s parameter %s", what, b.Convention, b.Label())
		diag.ReportError(l.reporter, diag.SemaInvalidConventionTarget, v.span, msg).
			WithNote(b.Span, "parameter declared here").
			Emit()
		return false
	}
	return true
}

func (l *lowerer) lowerReturn(id ast.StmtID, span source.Span) {
	data, _ := l.b.Stmts.Return(id)
	results := l.sig.Results
	if !data.Value.IsValid() {
		if len(results) > 0 {
			msg := fmt.Sprintf("'%s' must return %d value(s)", l.table.FuncName(l.sig.ID), len(results))
			diag.ReportError(l.reporter, diag.SemaArityMismatch, span, msg).Emit()
		}
		l.emit(Event{Kind: EvExit, Span: span})
		return
	}

	v := l.evalExpr(data.Value)
	var elems []value
	switch {
	case len(results) == 0:
		msg := fmt.Sprintf("'%s' does not return a value", l.table.FuncName(l.sig.ID))
		diag.ReportError(l.reporter, diag.SemaArityMismatch, v.span, msg).Emit()
		l.read(v)
	case len(results) == 1 && !l.sig.Func.Tuple && v.kind != valTuple:
		elems = []value{v}
	case v.kind == valTuple && len(v.elems) == len(results):
		elems = v.elems
	case v.kind != valNone:
		msg := fmt.Sprintf("'%s' returns %d value(s), got %d", l.table.FuncName(l.sig.ID), len(results), v.arity())
		diag.ReportError(l.reporter, diag.SemaArityMismatch, v.span, msg).Emit()
		l.read(v)
	}
	for j, e := range elems {
		if e.kind != valPlace {
			continue
		}
		b := l.binding(e.binding)
		use := UseRead
		if !b.Copyable && !b.IsTemporary() && l.canMove(e, "return") {
			use = UseExclusive
		}
		l.emit(Event{Kind: EvUse, Binding: e.binding, Use: use, Span: e.span})
		l.emit(Event{Kind: EvReturn, Binding: e.binding, Result: j, Span: e.span})
	}
	l.emit(Event{Kind: EvExit, Span: span})
}

func (l *lowerer) lowerIf(id ast.StmtID) {
	data, _ := l.b.Stmts.If(id)
	l.read(l.evalExpr(data.Cond))
	l.endTemps()

	l.emit(Event{Kind: EvBranch})
	l.lowerBlock(data.Then)
	l.emit(Event{Kind: EvElse})
	if data.Else.IsValid() {
		if st := l.b.Stmts.Get(data.Else); st != nil && st.Kind == ast.StmtIf {
			l.lowerStmt(data.Else)
		} else {
			l.lowerBlock(data.Else)
		}
	}
	l.emit(Event{Kind: EvJoin})
}

func (l *lowerer) lowerAssign(id ast.StmtID) {
	data, _ := l.b.Stmts.Assign(id)
	v := l.evalExpr(data.Value)
	target := l.b.Exprs.Unparen(data.Target)
	expr := l.b.Exprs.Get(target)

	if expr.Kind == ast.ExprMember {
		l.assignField(target, v)
		return
	}

	var bid BindingID
	var ok bool
	switch expr.Kind {
	case ast.ExprIdent:
		ident, _ := l.b.Exprs.Ident(target)
		if bid, ok = l.lookup(ident.Name); !ok {
			l.reportUnknownName(ident.Name, expr.Span)
		}
	case ast.ExprSelf:
		if bid, ok = l.lookup(l.selfName); !ok {
			l.reportNoSelf(expr.Span)
		}
	}
	if !ok {
		l.read(v)
		return
	}
	b := l.binding(bid)
	if !b.LValue {
		l.reportNotMutable(b, expr.Span, "assign to %s")
		l.read(v)
		return
	}
	if v.kind == valTuple {
		diag.ReportError(l.reporter, diag.SemaArityMismatch, v.span, "cannot assign a tuple to a single binding").Emit()
		l.read(v)
		return
	}

	move := v.kind == valPlace && !l.binding(v.binding).Copyable && !l.binding(v.binding).IsTemporary() && l.canMove(v, "move")
	if v.kind == valPlace {
		use := UseRead
		if move {
			use = UseExclusive
		}
		l.emit(Event{Kind: EvUse, Binding: v.binding, Use: use, Span: v.span})
	}
	if b.IsView() {
		// старое значение умирает до записи нового
		l.emit(Event{Kind: EvEndAccess, Binding: bid, Span: expr.Span, Note: "reassign"})
	}
	l.emit(Event{Kind: EvUse, Binding: bid, Use: UseWrite, Init: true, Span: expr.Span})
	if b.IsView() && v.kind == valPlace {
		l.link(bid, v, EdgeCopied, v.span, "assign "+v.label)
	}
	if move {
		l.emit(Event{Kind: EvConsume, Binding: v.binding, Span: v.span})
	}
}

func (l *lowerer) assignField(target ast.ExprID, v value) {
	m, _ := l.b.Exprs.Member(target)
	base := l.evalExpr(m.Target)
	if base.kind != valPlace {
		l.read(v)
		return
	}
	ty := l.table.Type(base.typ)
	f, ok := ty.Field(m.Field)
	if !ok {
		l.reportNoMember(base, m.Field, m.FieldSpan)
		l.read(v)
		return
	}
	span := l.b.Exprs.Get(target).Span
	if !base.lvalue {
		l.reportNotMutable(l.binding(base.rootBinding()), span, "assign to a field of %s")
		l.read(v)
		return
	}
	if fk, _ := l.cls.Kind(f.Type); fk == NonEscapable {
		msg := fmt.Sprintf("cannot store a non-escapable value into field %s.%s", base.label, l.b.Name(m.Field))
		diag.ReportError(l.reporter, diag.SemaInvalidConventionTarget, span, msg).Emit()
		l.read(v)
		return
	}
	l.consumeValue(v)
	l.emit(Event{Kind: EvUse, Binding: base.binding, Use: UseWrite, Span: span, Note: "set " + l.b.Name(m.Field)})
	if base.owner.IsValid() {
		l.emit(Event{Kind: EvUse, Binding: base.owner, Use: UseWrite, Span: span, Note: "writeback " + base.label})
	}
}

// consumeValue reads a copyable value or moves a non-copyable one.
func (l *lowerer) consumeValue(v value) {
	switch v.kind {
	case valTuple:
		diag.ReportError(l.reporter, diag.SemaArityMismatch, v.span, "tuple value used where a single value is expected").Emit()
		l.read(v)
	case valPlace:
		b := l.binding(v.binding)
		if !b.Copyable && !b.IsTemporary() && l.canMove(v, "move") {
			l.emit(Event{Kind: EvUse, Binding: v.binding, Use: UseExclusive, Span: v.span})
			l.emit(Event{Kind: EvConsume, Binding: v.binding, Span: v.span})
			return
		}
		l.read(v)
	}
}

func (l *lowerer) read(v value) {
	switch v.kind {
	case valPlace:
		l.emit(Event{Kind: EvUse, Binding: v.binding, Use: UseRead, Span: v.span})
	case valTuple:
		for _, e := range v.elems {
			l.read(e)
		}
	}
}
