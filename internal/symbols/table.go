package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"viewck/internal/source"
)

// Hints provide optional capacity suggestions for the table.
type Hints struct{ Types, Funcs uint }

type methodKey struct {
	recv TypeID
	name source.StringID
}

// Table aggregates the declarations of one file.
type Table struct {
	Strings *source.Interner

	types   []Type
	funcs   []Func
	byName  map[source.StringID]TypeID
	fnName  map[source.StringID]FuncID
	methods map[methodKey]FuncID
}

// NewTable builds a table holding only the built-in types.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Strings: strings,
		types:   make([]Type, 1, h.Types+3),
		funcs:   make([]Func, 1, h.Funcs+1),
		byName:  make(map[source.StringID]TypeID, h.Types+2),
		fnName:  make(map[source.StringID]FuncID, h.Funcs),
		methods: make(map[methodKey]FuncID),
	}
	t.addBuiltin("Int")
	t.addBuiltin("Bool")
	return t
}

func (t *Table) addBuiltin(name string) {
	t.AddType(Type{Name: t.Strings.Intern(name), Builtin: true})
}

// AddType registers a type and returns its ID. Name clashes are the
// caller's concern.
func (t *Table) AddType(ty Type) TypeID {
	n, err := safecast.Conv[uint32](len(t.types))
	if err != nil {
		panic(fmt.Errorf("type table overflow: %w", err))
	}
	ty.ID = TypeID(n)
	t.types = append(t.types, ty)
	if _, exists := t.byName[ty.Name]; !exists {
		t.byName[ty.Name] = ty.ID
	}
	return ty.ID
}

// AddFunc registers a function; methods are indexed by (receiver, name).
func (t *Table) AddFunc(fn Func) FuncID {
	n, err := safecast.Conv[uint32](len(t.funcs))
	if err != nil {
		panic(fmt.Errorf("func table overflow: %w", err))
	}
	fn.ID = FuncID(n)
	t.funcs = append(t.funcs, fn)
	if fn.Receiver.IsValid() {
		key := methodKey{recv: fn.Receiver, name: fn.Name}
		if _, exists := t.methods[key]; !exists {
			t.methods[key] = fn.ID
		}
	} else if _, exists := t.fnName[fn.Name]; !exists {
		t.fnName[fn.Name] = fn.ID
	}
	return fn.ID
}

// Type returns the type for id or nil.
func (t *Table) Type(id TypeID) *Type {
	if !id.IsValid() || int(id) >= len(t.types) {
		return nil
	}
	return &t.types[id]
}

// Func returns the function for id or nil.
func (t *Table) Func(id FuncID) *Func {
	if !id.IsValid() || int(id) >= len(t.funcs) {
		return nil
	}
	return &t.funcs[id]
}

func (t *Table) LookupType(name source.StringID) (TypeID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

func (t *Table) LookupFunc(name source.StringID) (FuncID, bool) {
	id, ok := t.fnName[name]
	return id, ok
}

func (t *Table) LookupMethod(recv TypeID, name source.StringID) (FuncID, bool) {
	id, ok := t.methods[methodKey{recv: recv, name: name}]
	return id, ok
}

// TypeName renders a type for messages; "<invalid>" for unknown IDs.
func (t *Table) TypeName(id TypeID) string {
	ty := t.Type(id)
	if ty == nil {
		return "<invalid>"
	}
	return t.Strings.MustLookup(ty.Name)
}

// FuncName renders "Recv.name" for methods and "name" otherwise.
func (t *Table) FuncName(id FuncID) string {
	fn := t.Func(id)
	if fn == nil {
		return "<invalid>"
	}
	name := t.Strings.MustLookup(fn.Name)
	if fn.Receiver.IsValid() {
		return t.TypeName(fn.Receiver) + "." + name
	}
	return name
}

func (t *Table) TypeCount() int { return len(t.types) - 1 }
func (t *Table) FuncCount() int { return len(t.funcs) - 1 }
