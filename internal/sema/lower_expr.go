package sema

import (
	"fmt"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/source"
	"viewck/internal/symbols"
)

type valueKind uint8

const (
	valNone valueKind = iota
	valLit
	valPlace
	valTuple
)

// value is the result of evaluating an expression. Places are not read
// until the consumer decides how (copy, borrow, move).
type value struct {
	kind    valueKind
	binding BindingID
	typ     symbols.TypeID
	span    source.Span
	lvalue  bool
	label   string
	// field: the place is a member path inside binding.
	field bool
	// owner is the binding a materialized getter read from.
	owner          BindingID
	runtimeChecked bool
	elems          []value
	// bound: the value was evaluated straight into the let destinations.
	bound bool
}

func (v value) arity() int {
	if v.kind == valTuple {
		return len(v.elems)
	}
	return 1
}

func (v value) rootBinding() BindingID {
	if v.owner.IsValid() {
		return v.owner
	}
	return v.binding
}

// destSpec is a let binder waiting for its value's type.
type destSpec struct {
	name    source.StringID
	span    source.Span
	mutable bool
	keyword source.Span
}

type operand struct {
	val   value
	param int
}

type opMode uint8

const (
	opSkip opMode = iota
	opFormal
	opCopy
	opMove
)

// evalInto evaluates a let initializer; a call writes its results straight
// into the destinations.
func (l *lowerer) evalInto(id ast.ExprID, dests []destSpec) value {
	id = l.b.Exprs.Unparen(id)
	if expr := l.b.Exprs.Get(id); expr != nil && expr.Kind == ast.ExprCall {
		return l.evalCall(id, expr.Span, dests)
	}
	return l.evalExpr(id)
}

func (l *lowerer) evalExpr(id ast.ExprID) value {
	id = l.b.Exprs.Unparen(id)
	expr := l.b.Exprs.Get(id)
	if expr == nil {
		return value{}
	}
	switch expr.Kind {
	case ast.ExprIdent:
		ident, _ := l.b.Exprs.Ident(id)
		return l.evalName(ident.Name, expr.Span)
	case ast.ExprSelf:
		bid, ok := l.lookup(l.selfName)
		if !ok {
			l.reportNoSelf(expr.Span)
			return value{}
		}
		return l.place(bid, expr.Span)
	case ast.ExprLit:
		lit, _ := l.b.Exprs.Literal(id)
		typ := symbols.TypeBool
		if lit.Kind == ast.LitInt {
			typ = symbols.TypeInt
		}
		return value{kind: valLit, typ: typ, span: expr.Span, label: l.b.Name(lit.Value)}
	case ast.ExprMember:
		return l.evalMember(id, expr.Span)
	case ast.ExprCall:
		return l.evalCall(id, expr.Span, nil)
	case ast.ExprTuple:
		tuple, _ := l.b.Exprs.Tuple(id)
		v := value{kind: valTuple, span: expr.Span}
		for _, e := range tuple.Elems {
			elem := l.evalExpr(e)
			if elem.kind == valTuple {
				diag.ReportError(l.reporter, diag.SemaArityMismatch, elem.span, "nested tuples are not supported").Emit()
				l.read(elem)
				elem = value{}
			}
			v.elems = append(v.elems, elem)
		}
		return v
	}
	return value{}
}

func (l *lowerer) place(id BindingID, span source.Span) value {
	b := l.binding(id)
	return value{kind: valPlace, binding: id, typ: b.Type, span: span, lvalue: b.LValue, label: b.Name}
}

func (l *lowerer) evalName(name source.StringID, span source.Span) value {
	if id, ok := l.lookup(name); ok {
		return l.place(id, span)
	}
	if _, isType := l.table.LookupType(name); isType {
		msg := fmt.Sprintf("type '%s' used as a value; construct it with %s()", l.b.Name(name), l.b.Name(name))
		diag.ReportError(l.reporter, diag.SemaUnresolvedName, span, msg).Emit()
		return value{}
	}
	l.reportUnknownName(name, span)
	return value{}
}

func (l *lowerer) evalMember(id ast.ExprID, span source.Span) value {
	m, _ := l.b.Exprs.Member(id)
	base := l.evalExpr(m.Target)
	if base.kind != valPlace {
		if base.kind != valNone {
			l.reportNoMember(base, m.Field, m.FieldSpan)
		}
		return value{}
	}
	f, ok := l.table.Type(base.typ).Field(m.Field)
	if !ok {
		l.reportNoMember(base, m.Field, m.FieldSpan)
		return value{}
	}
	label := base.label + "." + l.b.Name(m.Field)

	switch l.oracle.GuaranteesBorrowableAccess(base.typ, m.Field, l.caller) {
	case NeverBorrowable:
		l.emit(Event{Kind: EvUse, Binding: base.binding, Use: UseRead, Span: span, Note: "get " + label})
		tmp := l.newTemp(BindMaterialized, label, f.Type, span)
		return value{
			kind:    valPlace,
			binding: tmp,
			typ:     f.Type,
			span:    span,
			lvalue:  base.lvalue,
			label:   label,
			owner:   base.rootBinding(),
		}
	case BorrowableAtRuntimeBestEffort:
		base.runtimeChecked = true
	}
	base.typ = f.Type
	base.span = span
	base.label = label
	base.field = true
	return base
}

func (l *lowerer) newTemp(kind BindingKind, label string, typ symbols.TypeID, span source.Span) BindingID {
	b := l.cls.Local(label, kind, typ, false, span)
	id := l.addBinding(b)
	l.emit(Event{Kind: EvDeclare, Binding: id, Span: span})
	l.temps = append(l.temps, id)
	return id
}

// evalCall lowers a call in the fixed evaluation order: operands, then
// (a) formal accesses, (b) by-value copies and moves, (c) the callee,
// (d) closing the formal accesses, then result edges, consumes and
// writebacks of materialized inout operands.
func (l *lowerer) evalCall(id ast.ExprID, span source.Span, dests []destSpec) value {
	call, _ := l.b.Exprs.Call(id)
	calleeID := l.b.Exprs.Unparen(call.Callee)
	callee := l.b.Exprs.Get(calleeID)

	var (
		sig      *Signature
		operands []operand
	)
	switch callee.Kind {
	case ast.ExprIdent:
		ident, _ := l.b.Exprs.Ident(calleeID)
		if tid, ok := l.table.LookupType(ident.Name); ok {
			return l.construct(tid, call, span, dests)
		}
		fid, ok := l.table.LookupFunc(ident.Name)
		if !ok {
			l.reportUnknownName(ident.Name, callee.Span)
			l.evalForEffect(call.Args)
			return value{}
		}
		sig = l.res.Signature(fid)
	case ast.ExprMember:
		m, _ := l.b.Exprs.Member(calleeID)
		recv := l.evalExpr(m.Target)
		if recv.kind != valPlace {
			if recv.kind != valNone {
				l.reportNoMember(recv, m.Field, m.FieldSpan)
			}
			l.evalForEffect(call.Args)
			return value{}
		}
		fid, ok := l.table.LookupMethod(recv.typ, m.Field)
		if !ok {
			l.reportNoMember(recv, m.Field, m.FieldSpan)
			l.evalForEffect(call.Args)
			return value{}
		}
		sig = l.res.Signature(fid)
		self := sig.Func.SelfIndex()
		if self < 0 {
			msg := fmt.Sprintf("'%s' has no receiver and cannot be called on a value", l.table.FuncName(fid))
			diag.ReportError(l.reporter, diag.SemaNoSuchMember, m.FieldSpan, msg).Emit()
			l.evalForEffect(call.Args)
			return value{}
		}
		operands = append(operands, operand{val: recv, param: self})
	default:
		diag.ReportError(l.reporter, diag.SemaUnresolvedName, callee.Span, "expression is not callable").Emit()
		l.evalForEffect(call.Args)
		return value{}
	}

	params := make([]int, 0, len(sig.Params))
	for i := range sig.Params {
		if !sig.Func.Params[i].IsSelf {
			params = append(params, i)
		}
	}
	if len(params) != len(call.Args) {
		msg := fmt.Sprintf("'%s' expects %d argument(s), got %d", l.table.FuncName(sig.ID), len(params), len(call.Args))
		diag.ReportError(l.reporter, diag.SemaArityMismatch, span, msg).Emit()
		for _, op := range operands {
			l.read(op.val)
		}
		l.evalForEffect(call.Args)
		return l.results(sig, nil, span, dests)
	}
	for i, arg := range call.Args {
		operands = append(operands, operand{val: l.evalExpr(arg), param: params[i]})
	}
	return l.applyCall(sig, operands, span, dests)
}

func (l *lowerer) applyCall(sig *Signature, operands []operand, span source.Span, dests []destSpec) value {
	name := l.table.FuncName(sig.ID)
	scopedSource := make(map[int]bool)
	for _, r := range sig.Results {
		if r.Edge != nil && r.Edge.Kind.Scoped() {
			scopedSource[r.Edge.Param] = true
		}
	}

	modes := make([]opMode, len(operands))
	for i := range operands {
		modes[i] = l.operandMode(sig, &operands[i], scopedSource[operands[i].param])
	}

	callID := l.addBinding(Binding{Name: "call to " + name, Kind: BindCall, Span: span, ParamIndex: -1})
	formal := false
	// (a)
	for i, op := range operands {
		if modes[i] != opFormal {
			continue
		}
		p := &sig.Params[op.param]
		access := AccessReadOnly
		if p.Convention == ConvMutating {
			access = AccessExclusive
		}
		l.emit(Event{
			Kind:           EvBeginAccess,
			Binding:        callID,
			Source:         op.val.binding,
			Access:         access,
			RuntimeChecked: op.val.runtimeChecked,
			Span:           op.val.span,
			Note:           fmt.Sprintf("%s %s", p.Convention, p.Name),
		})
		formal = true
	}
	// (b)
	for i, op := range operands {
		switch modes[i] {
		case opCopy:
			l.emit(Event{Kind: EvUse, Binding: op.val.binding, Use: UseRead, Span: op.val.span})
		case opMove:
			l.emit(Event{Kind: EvUse, Binding: op.val.binding, Use: UseExclusive, Span: op.val.span})
		}
	}
	// (c) вызов сам по себе событий не порождает; (d)
	if formal {
		l.emit(Event{Kind: EvEndAccess, Binding: callID, Span: span})
	}

	out := l.results(sig, operands, span, dests)

	for i, op := range operands {
		if modes[i] == opMove {
			l.emit(Event{Kind: EvConsume, Binding: op.val.binding, Span: op.val.span})
		}
	}
	for i, op := range operands {
		if modes[i] == opFormal && op.val.owner.IsValid() && sig.Params[op.param].Convention == ConvMutating {
			l.emit(Event{Kind: EvUse, Binding: op.val.owner, Use: UseWrite, Span: op.val.span, Note: "writeback " + op.val.label})
		}
	}
	return out
}

// operandMode decides how an argument is passed and reports the
// convention errors that can be seen from the call site alone.
func (l *lowerer) operandMode(sig *Signature, op *operand, scopedSource bool) opMode {
	p := &sig.Params[op.param]
	v := &op.val
	switch v.kind {
	case valNone:
		return opSkip
	case valTuple:
		diag.ReportError(l.reporter, diag.SemaArityMismatch, v.span, "tuple value passed as an argument").Emit()
		l.read(*v)
		return opSkip
	case valLit:
		if p.Convention == ConvMutating {
			msg := fmt.Sprintf("cannot pass literal %s to mutating parameter %s", v.label, p.Label())
			diag.ReportError(l.reporter, diag.SemaInvalidConventionTarget, v.span, msg).Emit()
			return opSkip
		}
		if !scopedSource {
			return opSkip
		}
		// литерал, от которого зависит результат, живёт до конца оператора
		tmp := l.newTemp(BindMaterialized, "literal "+v.label, v.typ, v.span)
		*v = value{kind: valPlace, binding: tmp, typ: v.typ, span: v.span, label: v.label}
		return opFormal
	}

	switch p.Convention {
	case ConvMutating:
		if !v.lvalue {
			l.reportNotMutable(l.binding(v.rootBinding()), v.span, "pass %s to mutating parameter "+p.Label())
			return opSkip
		}
		return opFormal
	case ConvConsuming:
		b := l.binding(v.binding)
		move := !p.Copyable || (p.TypeKind == NonEscapable && b.Kind != BindParam)
		if !move {
			return opCopy
		}
		if !p.Copyable && !l.canMove(*v, "consume") {
			return opSkip
		}
		if v.field {
			return opCopy
		}
		return opMove
	default:
		if scopedSource || !p.Copyable {
			return opFormal
		}
		return opCopy
	}
}

// results creates the result bindings of a call and the edges to their
// sources. A nil operand list means the call was malformed: results get no
// edges.
func (l *lowerer) results(sig *Signature, operands []operand, span source.Span, dests []destSpec) value {
	name := l.table.FuncName(sig.ID)
	into := dests
	if into != nil && len(into) != len(sig.Results) {
		// несовпадение арности сообщает lowerLet; здесь только пустой результат
		if len(sig.Results) == 0 {
			msg := fmt.Sprintf("'%s' does not return a value", name)
			diag.ReportError(l.reporter, diag.SemaArityMismatch, span, msg).Emit()
		}
		into = nil
	}

	out := value{kind: valTuple, span: span, bound: into != nil}
	for j := range sig.Results {
		rs := &sig.Results[j]
		var rid BindingID
		if into != nil {
			rid = l.newLocal(into[j], rs.Type)
			l.emit(Event{Kind: EvDeclare, Binding: rid, Span: into[j].span})
		} else {
			rid = l.newTemp(BindTemp, fmt.Sprintf("result of %s", name), rs.Type, span)
		}
		if rs.Edge != nil && operands != nil {
			for _, op := range operands {
				if op.param == rs.Edge.Param && op.val.kind == valPlace {
					l.link(rid, op.val, rs.Edge.Kind, span, "call to "+name)
					break
				}
			}
		}
		elem := l.place(rid, span)
		elem.label = l.binding(rid).Name
		out.elems = append(out.elems, elem)
	}

	switch {
	case len(out.elems) == 0:
		return value{}
	case len(out.elems) == 1 && !sig.Func.Tuple:
		elem := out.elems[0]
		elem.bound = out.bound
		return elem
	}
	return out
}

func (l *lowerer) construct(tid symbols.TypeID, call *ast.ExprCallData, span source.Span, dests []destSpec) value {
	name := l.table.TypeName(tid)
	if len(call.Args) > 0 {
		msg := fmt.Sprintf("constructor '%s' takes no arguments, got %d", name, len(call.Args))
		diag.ReportError(l.reporter, diag.SemaArityMismatch, span, msg).Emit()
		l.evalForEffect(call.Args)
	}
	if kind, _ := l.cls.Kind(tid); kind == NonEscapable {
		msg := fmt.Sprintf("cannot construct non-escapable '%s' without a value it depends on", name)
		diag.ReportError(l.reporter, diag.SemaMissingDependencySource, span, msg).Emit()
	}
	if len(dests) == 1 {
		rid := l.newLocal(dests[0], tid)
		l.emit(Event{Kind: EvDeclare, Binding: rid, Span: dests[0].span})
		v := l.place(rid, span)
		v.bound = true
		return v
	}
	rid := l.newTemp(BindTemp, name+"()", tid, span)
	v := l.place(rid, span)
	v.label = name + "()"
	return v
}

func (l *lowerer) evalForEffect(args []ast.ExprID) {
	for _, a := range args {
		l.read(l.evalExpr(a))
	}
}
