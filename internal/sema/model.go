package sema

import (
	"viewck/internal/source"
	"viewck/internal/symbols"
)

// Convention is the resolved passing convention of a binding.
type Convention uint8

const (
	ConvBorrowing Convention = iota
	ConvConsuming
	ConvMutating
	// ConvOwning is the convention of locals and temporaries.
	ConvOwning
)

func (c Convention) String() string {
	switch c {
	case ConvBorrowing:
		return "borrowing"
	case ConvConsuming:
		return "consuming"
	case ConvMutating:
		return "mutating"
	case ConvOwning:
		return "owning"
	default:
		return "unknown"
	}
}

// TypeKind says whether values of a type may escape their scope.
type TypeKind uint8

const (
	Escapable TypeKind = iota
	NonEscapable
)

func (k TypeKind) String() string {
	if k == NonEscapable {
		return "non-escapable"
	}
	return "escapable"
}

// Class is the ownership class the classifier assigns to a binding.
type Class uint8

const (
	ClassOwned Class = iota
	ClassBorrowed
	ClassView
)

func (c Class) String() string {
	switch c {
	case ClassOwned:
		return "owned"
	case ClassBorrowed:
		return "borrowed"
	case ClassView:
		return "view"
	default:
		return "unknown"
	}
}

// EdgeKind is the kind of a dependency edge.
type EdgeKind uint8

const (
	EdgeNone EdgeKind = iota
	EdgeScopedBorrow
	EdgeScopedMutate
	EdgeCopied
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeScopedBorrow:
		return "scoped_borrow"
	case EdgeScopedMutate:
		return "scoped_mutate"
	case EdgeCopied:
		return "copied"
	default:
		return "none"
	}
}

// Scoped reports whether the edge keeps an access region open on its source.
func (k EdgeKind) Scoped() bool {
	return k == EdgeScopedBorrow || k == EdgeScopedMutate
}

// Access maps a scoped edge onto the region it opens.
func (k EdgeKind) Access() AccessKind {
	if k == EdgeScopedMutate {
		return AccessExclusive
	}
	return AccessReadOnly
}

// AccessKind is the kind of an access region.
type AccessKind uint8

const (
	AccessReadOnly AccessKind = iota
	AccessExclusive
)

func (k AccessKind) String() string {
	if k == AccessExclusive {
		return "exclusive"
	}
	return "read_only"
}

// UseKind classifies a use of a binding.
type UseKind uint8

const (
	UseRead UseKind = iota
	UseWrite
	UseExclusive
)

func (k UseKind) String() string {
	switch k {
	case UseWrite:
		return "write"
	case UseExclusive:
		return "exclusive"
	default:
		return "read"
	}
}

// Liveness selects when a view's regions close.
type Liveness uint8

const (
	// LivenessLastUse closes regions after the statement holding the last use.
	LivenessLastUse Liveness = iota
	// LivenessLexical closes regions at the end of the declaring scope.
	LivenessLexical
)

func (l Liveness) String() string {
	if l == LivenessLexical {
		return "lexical"
	}
	return "last-use"
}

// BindingID identifies a binding inside one function body.
type BindingID uint32

const NoBindingID BindingID = 0

func (id BindingID) IsValid() bool { return id != NoBindingID }

// ScopeID identifies a lexical scope inside one function body.
type ScopeID uint32

const NoScopeID ScopeID = 0

// BindingKind separates named bindings from the ones lowering invents.
type BindingKind uint8

const (
	BindParam BindingKind = iota
	BindLocal
	// BindTemp holds a call result that was not bound to a name.
	BindTemp
	// BindMaterialized holds a value read through a getter, or a literal
	// that had to be stored to be borrowed.
	BindMaterialized
	// BindCall is the dependent of the formal accesses of one call.
	BindCall
)

func (k BindingKind) String() string {
	switch k {
	case BindParam:
		return "param"
	case BindLocal:
		return "local"
	case BindTemp:
		return "temp"
	case BindMaterialized:
		return "materialized"
	case BindCall:
		return "call"
	default:
		return "unknown"
	}
}

// Binding is a named or synthetic storage location.
type Binding struct {
	ID         BindingID
	Name       string
	Kind       BindingKind
	Convention Convention
	TypeKind   TypeKind
	Type       symbols.TypeID
	Copyable   bool
	LValue     bool
	Class      Class
	Scope      ScopeID
	Span       source.Span
	// KeywordSpan points at `let` for immutable locals; used for fix-its.
	KeywordSpan source.Span
	// ParamIndex is the position in the signature for params, -1 otherwise.
	ParamIndex int
}

// Label renders the binding for diagnostics.
func (b *Binding) Label() string {
	if b == nil {
		return "value"
	}
	switch b.Kind {
	case BindTemp:
		return "temporary " + b.Name
	case BindMaterialized:
		return "materialized " + b.Name
	case BindCall:
		return b.Name
	default:
		return "'" + b.Name + "'"
	}
}

// Short is the bare name of locals and params and the label of the rest.
func (b *Binding) Short() string {
	if b != nil && (b.Kind == BindLocal || b.Kind == BindParam) {
		return b.Name
	}
	return b.Label()
}

func (b *Binding) IsView() bool { return b != nil && b.TypeKind == NonEscapable }

// IsTemporary reports whether the binding dies at the end of its statement.
func (b *Binding) IsTemporary() bool {
	return b != nil && (b.Kind == BindTemp || b.Kind == BindMaterialized)
}
