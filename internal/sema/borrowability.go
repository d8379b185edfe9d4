package sema

import (
	"viewck/internal/ast"
	"viewck/internal/source"
	"viewck/internal/symbols"
)

// Borrowability says whether a field path can be accessed in place.
type Borrowability uint8

const (
	// AlwaysBorrowable fields are stored with a known layout.
	AlwaysBorrowable Borrowability = iota
	// NeverBorrowable fields are read through a getter into a temporary.
	NeverBorrowable
	// BorrowableAtRuntimeBestEffort fields are accessed in place but their
	// exclusivity is only enforced at runtime.
	BorrowableAtRuntimeBestEffort
)

func (b Borrowability) String() string {
	switch b {
	case AlwaysBorrowable:
		return "always"
	case NeverBorrowable:
		return "never"
	case BorrowableAtRuntimeBestEffort:
		return "runtime_best_effort"
	default:
		return "unknown"
	}
}

// CallerContext is the code asking for access. Type is the receiver type of
// the method being checked, NoTypeID in free functions.
type CallerContext struct {
	Type symbols.TypeID
}

// BorrowabilityOracle answers the one question lowering asks about fields.
type BorrowabilityOracle interface {
	GuaranteesBorrowableAccess(owner symbols.TypeID, field source.StringID, caller CallerContext) Borrowability
}

type oracleKey struct {
	owner  symbols.TypeID
	field  source.StringID
	caller symbols.TypeID
}

// CachedOracle derives borrowability from declarations and caches answers
// per (type, field, caller).
type CachedOracle struct {
	table  *symbols.Table
	frozen map[string]struct{}
	cache  map[oracleKey]Borrowability
	hits   int
	misses int
}

func NewCachedOracle(table *symbols.Table, frozen []string) *CachedOracle {
	set := make(map[string]struct{}, len(frozen))
	for _, name := range frozen {
		set[name] = struct{}{}
	}
	return &CachedOracle{
		table:  table,
		frozen: set,
		cache:  make(map[oracleKey]Borrowability),
	}
}

func (o *CachedOracle) GuaranteesBorrowableAccess(owner symbols.TypeID, field source.StringID, caller CallerContext) Borrowability {
	key := oracleKey{owner: owner, field: field, caller: caller.Type}
	if b, ok := o.cache[key]; ok {
		o.hits++
		return b
	}
	o.misses++
	b := o.compute(owner, field, caller)
	o.cache[key] = b
	return b
}

func (o *CachedOracle) compute(owner symbols.TypeID, field source.StringID, caller CallerContext) Borrowability {
	ty := o.table.Type(owner)
	f, ok := ty.Field(field)
	if !ok {
		return AlwaysBorrowable
	}
	switch f.Access {
	case ast.FieldGet:
		return NeverBorrowable
	case ast.FieldDynamic:
		return BorrowableAtRuntimeBestEffort
	}
	if ty.Resilient && caller.Type != owner {
		if _, frozen := o.frozen[o.table.Strings.MustLookup(ty.Name)]; !frozen {
			return NeverBorrowable
		}
	}
	return AlwaysBorrowable
}

// Stats reports cache hits and misses.
func (o *CachedOracle) Stats() (hits, misses int) {
	return o.hits, o.misses
}
