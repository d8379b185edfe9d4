package ast

import "viewck/internal/source"

type ItemKind uint8

const (
	ItemType ItemKind = iota
	ItemFn
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

type Items struct {
	Arena *Arena[Item]
	Types *Arena[TypeItem]
	Fns   *Arena[FnItem]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena: NewArena[Item](capHint),
		Types: NewArena[TypeItem](capHint),
		Fns:   NewArena[FnItem](capHint),
	}
}

func (i *Items) New(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{Kind: kind, Span: span, Payload: payload}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}
