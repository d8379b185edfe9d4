package sema

import (
	"fmt"
	"strings"

	"viewck/internal/diag"
	"viewck/internal/source"
	"viewck/internal/symbols"
)

// ResultEdge is the resolved dependency of one non-escapable result.
type ResultEdge struct {
	Param    int
	Kind     EdgeKind
	Explicit bool
}

// ResultSig describes one element of a function's result list.
type ResultSig struct {
	Type     symbols.TypeID
	TypeKind TypeKind
	Copyable bool
	Span     source.Span
	// Edge is nil for escapable results and for results that failed to resolve.
	Edge *ResultEdge
}

// Signature is a function declaration after classification and
// dependency resolution.
type Signature struct {
	ID      symbols.FuncID
	Name    string
	Func    *symbols.Func
	Params  []Binding
	Results []ResultSig
	// IllFormed declarations are not body-checked.
	IllFormed bool
}

// Resolver resolves and memoizes signatures. Diagnostics are reported once,
// the first time a signature is requested.
type Resolver struct {
	table    *symbols.Table
	cls      *Classifier
	reporter diag.Reporter
	sigs     map[symbols.FuncID]*Signature
}

func NewResolver(table *symbols.Table, cls *Classifier, reporter diag.Reporter) *Resolver {
	return &Resolver{
		table:    table,
		cls:      cls,
		reporter: reporter,
		sigs:     make(map[symbols.FuncID]*Signature),
	}
}

// Signature returns the resolved signature of id, or nil for unknown IDs.
func (r *Resolver) Signature(id symbols.FuncID) *Signature {
	if sig, ok := r.sigs[id]; ok {
		return sig
	}
	fn := r.table.Func(id)
	if fn == nil {
		return nil
	}
	sig := &Signature{ID: id, Name: r.table.FuncName(id), Func: fn, IllFormed: fn.Broken}
	r.sigs[id] = sig
	for i := range fn.Params {
		sig.Params = append(sig.Params, r.cls.Param(fn, i))
	}
	for j := range fn.Results {
		kind, copyable := r.cls.Kind(fn.Results[j].Type)
		sig.Results = append(sig.Results, ResultSig{
			Type:     fn.Results[j].Type,
			TypeKind: kind,
			Copyable: copyable,
			Span:     fn.Results[j].Span,
		})
	}
	if fn.Broken {
		return sig
	}
	for j := range sig.Results {
		edge, ok := r.resolveResult(sig, j)
		if !ok {
			sig.IllFormed = true
			continue
		}
		sig.Results[j].Edge = edge
	}
	return sig
}

func (r *Resolver) resolveResult(sig *Signature, j int) (*ResultEdge, bool) {
	fn := sig.Func
	res := &sig.Results[j]
	ann := fn.Results[j].DependsOn

	if res.TypeKind == Escapable {
		if ann == nil {
			return nil, true
		}
		msg := fmt.Sprintf("dependsOn on escapable result '%s' of '%s'", r.table.TypeName(res.Type), r.fnName(sig))
		diag.ReportError(r.reporter, diag.SemaInvalidConventionTarget, ann.Span, msg).
			WithFix("remove the annotation", diag.FixEdit{Span: ann.Span, NewText: ""}).
			Emit()
		return nil, false
	}

	if ann != nil {
		idx := fn.SelfIndex()
		if !ann.TargetSelf {
			idx = fn.ParamIndex(ann.Target)
		}
		if idx < 0 {
			target := "self"
			if !ann.TargetSelf {
				target = r.table.Strings.MustLookup(ann.Target)
			}
			msg := fmt.Sprintf("dependsOn names '%s', which is not a parameter of '%s'", target, r.fnName(sig))
			diag.ReportError(r.reporter, diag.SemaAmbiguousDependency, ann.Span, msg).Emit()
			return nil, false
		}
		return r.edgeTo(sig, j, idx, ann.Scoped, true, ann.Span)
	}

	candidates := r.candidates(sig)
	switch len(candidates) {
	case 1:
		return r.edgeTo(sig, j, candidates[0], false, false, res.Span)
	case 0:
		msg := fmt.Sprintf("'%s' returns non-escapable '%s' but has no parameter it could depend on",
			r.fnName(sig), r.table.TypeName(res.Type))
		diag.ReportError(r.reporter, diag.SemaMissingDependencySource, res.Span, msg).Emit()
		return nil, false
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = "'" + sig.Params[c].Name + "'"
		}
		msg := fmt.Sprintf("cannot infer what result of '%s' depends on: candidates are %s",
			r.fnName(sig), strings.Join(names, ", "))
		b := diag.ReportError(r.reporter, diag.SemaAmbiguousDependency, res.Span, msg)
		for _, c := range candidates {
			b.WithNote(sig.Params[c].Span, "possible source")
		}
		at := source.Span{File: res.Span.File, Start: res.Span.Start, End: res.Span.Start}
		b.WithFix("annotate the result", diag.FixEdit{
			Span:    at,
			NewText: fmt.Sprintf("dependsOn(%s) ", sig.Params[candidates[0]].Name),
		})
		b.Emit()
		return nil, false
	}
}

// candidates lists the parameters that could back a view without an
// annotation: the receiver of a method, plus every non-escapable or
// non-copyable parameter.
func (r *Resolver) candidates(sig *Signature) []int {
	var out []int
	self := sig.Func.SelfIndex()
	if self >= 0 {
		out = append(out, self)
	}
	for i := range sig.Params {
		if i == self {
			continue
		}
		p := &sig.Params[i]
		if p.TypeKind == NonEscapable || !p.Copyable {
			out = append(out, i)
		}
	}
	return out
}

func (r *Resolver) edgeTo(sig *Signature, j, param int, scoped, explicit bool, at source.Span) (*ResultEdge, bool) {
	p := &sig.Params[param]
	kind, ok := EdgeFor(p.Convention, p.TypeKind, scoped)
	if !ok {
		var msg string
		if p.TypeKind == Escapable {
			msg = fmt.Sprintf("result of '%s' cannot depend on consuming parameter %s: it is destroyed by the call",
				r.fnName(sig), p.Label())
		} else {
			msg = fmt.Sprintf("result of '%s' cannot hold a scoped dependence on consumed view %s",
				r.fnName(sig), p.Label())
		}
		diag.ReportError(r.reporter, diag.SemaInvalidConventionTarget, at, msg).
			WithNote(p.Span, "parameter declared here").
			Emit()
		return nil, false
	}
	return &ResultEdge{Param: param, Kind: kind, Explicit: explicit}, true
}

// EdgeFor is the legality table: which edge a source of the given
// convention and kind produces.
//
//	Borrowing  Escapable     ScopedBorrow
//	Mutating   Escapable     ScopedMutate
//	Consuming  Escapable     illegal
//	Borrowing  NonEscapable  Copied, or ScopedBorrow when scoped
//	Mutating   NonEscapable  Copied, or ScopedBorrow when scoped
//	Consuming  NonEscapable  Copied; scoped is illegal
func EdgeFor(conv Convention, kind TypeKind, scoped bool) (EdgeKind, bool) {
	if kind == Escapable {
		switch conv {
		case ConvBorrowing:
			return EdgeScopedBorrow, true
		case ConvMutating:
			return EdgeScopedMutate, true
		default:
			return EdgeNone, false
		}
	}
	if conv == ConvConsuming {
		if scoped {
			return EdgeNone, false
		}
		return EdgeCopied, true
	}
	if scoped {
		return EdgeScopedBorrow, true
	}
	return EdgeCopied, true
}

func (r *Resolver) fnName(sig *Signature) string {
	return sig.Name
}
