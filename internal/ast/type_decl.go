package ast

import "viewck/internal/source"

// FieldAccess describes how a field is reached.
type FieldAccess uint8

const (
	// FieldStored is a plain stored field.
	FieldStored FieldAccess = iota
	// FieldGet is a computed property: every read materialises a temporary.
	FieldGet
	// FieldDynamic is dispatched at runtime; exclusivity is only checked dynamically.
	FieldDynamic
)

func (a FieldAccess) String() string {
	switch a {
	case FieldGet:
		return "get"
	case FieldDynamic:
		return "dynamic"
	default:
		return "stored"
	}
}

// TypeRef names a type at a use site.
type TypeRef struct {
	Name source.StringID
	Span source.Span
}

// Marker is a `~Name` suppression such as ~Escapable.
type Marker struct {
	Name source.StringID
	Span source.Span
}

type TypeField struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeRef
	Access   FieldAccess
	Span     source.Span
}

type TypeItem struct {
	Name      source.StringID
	NameSpan  source.Span
	Markers   []Marker
	Resilient bool
	Fields    []TypeField
	Span      source.Span
}

func (i *Items) Type(id ItemID) (*TypeItem, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || item.Kind != ItemType {
		return nil, false
	}
	return i.Types.Get(uint32(item.Payload)), true
}

func (i *Items) NewType(t TypeItem) ItemID {
	payload := PayloadID(i.Types.Allocate(t))
	return i.New(ItemType, t.Span, payload)
}
