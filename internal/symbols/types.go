package symbols

import (
	"viewck/internal/ast"
	"viewck/internal/source"
)

// Field is a member of a declared type.
type Field struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
	Access   ast.FieldAccess
}

// Type is a nominal type. Escapable and copyable unless suppressed with
// ~Escapable / ~Copyable.
type Type struct {
	ID           TypeID
	Name         source.StringID
	Span         source.Span
	Item         ast.ItemID
	Builtin      bool
	NonEscapable bool
	NonCopyable  bool
	Resilient    bool
	Fields       []Field
}

func (t *Type) Escapable() bool { return t != nil && !t.NonEscapable }
func (t *Type) Copyable() bool  { return t != nil && !t.NonCopyable }

// Field looks a member up by name.
func (t *Type) Field(name source.StringID) (*Field, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// Param is a resolved function parameter; the receiver is the param with
// IsSelf set.
type Param struct {
	Name       source.StringID
	Span       source.Span
	Type       TypeID
	Convention ast.Convention
	ConvSpan   source.Span
	IsSelf     bool
}

// FuncResult is one element of a function's result list.
type FuncResult struct {
	Type      TypeID
	Span      source.Span
	DependsOn *ast.DependsOn
}

// Func is a free function or a method (Receiver != NoTypeID).
type Func struct {
	ID       FuncID
	Name     source.StringID
	NameSpan source.Span
	Receiver TypeID
	Item     ast.ItemID
	Params   []Param
	Results  []FuncResult
	Tuple    bool
	Body     ast.StmtID
	Span     source.Span
	// Broken is set when a parameter or result type failed to resolve.
	Broken bool
}

func (f *Func) IsMethod() bool { return f.Receiver.IsValid() }

// SelfIndex returns the index of the receiver parameter or -1.
func (f *Func) SelfIndex() int {
	for i := range f.Params {
		if f.Params[i].IsSelf {
			return i
		}
	}
	return -1
}

// ParamIndex finds a parameter by name.
func (f *Func) ParamIndex(name source.StringID) int {
	for i := range f.Params {
		if !f.Params[i].IsSelf && f.Params[i].Name == name {
			return i
		}
	}
	return -1
}
