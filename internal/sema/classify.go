package sema

import (
	"viewck/internal/ast"
	"viewck/internal/source"
	"viewck/internal/symbols"
)

// Classifier assigns conventions, type kinds and ownership classes.
type Classifier struct {
	table           *symbols.Table
	defaultParam    Convention
	defaultReceiver Convention
}

func NewClassifier(table *symbols.Table, opts *Options) *Classifier {
	return &Classifier{
		table:           table,
		defaultParam:    opts.DefaultParam,
		defaultReceiver: opts.DefaultReceiver,
	}
}

// Convention resolves the written keyword or the configured default.
func (c *Classifier) Convention(p *symbols.Param) Convention {
	switch p.Convention {
	case ast.ConvBorrowing:
		return ConvBorrowing
	case ast.ConvConsuming:
		return ConvConsuming
	case ast.ConvMutating:
		return ConvMutating
	}
	if p.IsSelf {
		return c.defaultReceiver
	}
	return c.defaultParam
}

// Kind reports the escapability and copyability of a type. Unknown types
// classify as escapable and copyable so that they never produce edges.
func (c *Classifier) Kind(id symbols.TypeID) (TypeKind, bool) {
	ty := c.table.Type(id)
	if ty == nil {
		return Escapable, true
	}
	kind := Escapable
	if ty.NonEscapable {
		kind = NonEscapable
	}
	return kind, ty.Copyable()
}

// Param classifies the i-th parameter of fn.
func (c *Classifier) Param(fn *symbols.Func, i int) Binding {
	p := &fn.Params[i]
	kind, copyable := c.Kind(p.Type)
	conv := c.Convention(p)
	name := c.table.Strings.MustLookup(p.Name)
	if p.IsSelf {
		name = "self"
	}
	return Binding{
		Name:       name,
		Kind:       BindParam,
		Convention: conv,
		TypeKind:   kind,
		Type:       p.Type,
		Copyable:   copyable,
		LValue:     conv == ConvMutating,
		Class:      ClassOf(conv, kind),
		Span:       p.Span,
		ParamIndex: i,
	}
}

// Local classifies a let/var binding or a synthetic one.
func (c *Classifier) Local(name string, kind BindingKind, typ symbols.TypeID, mutable bool, span source.Span) Binding {
	tk, copyable := c.Kind(typ)
	return Binding{
		Name:       name,
		Kind:       kind,
		Convention: ConvOwning,
		TypeKind:   tk,
		Type:       typ,
		Copyable:   copyable,
		LValue:     mutable,
		Class:      ClassOf(ConvOwning, tk),
		Span:       span,
		ParamIndex: -1,
	}
}

// ClassOf: non-escapable values are views whatever the convention;
// borrowing and mutating parameters are borrowed; the rest is owned.
func ClassOf(conv Convention, kind TypeKind) Class {
	if kind == NonEscapable {
		return ClassView
	}
	switch conv {
	case ConvBorrowing, ConvMutating:
		return ClassBorrowed
	default:
		return ClassOwned
	}
}
