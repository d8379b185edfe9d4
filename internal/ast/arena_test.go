package ast

import (
	"testing"

	"viewck/internal/source"
)

func TestArenaOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil || a.Get(1) != nil {
		t.Fatal("empty arena must return nil")
	}
	id := a.Allocate(7)
	if id != 1 || *a.Get(id) != 7 || a.Len() != 1 {
		t.Fatalf("id=%d len=%d", id, a.Len())
	}
}

func TestPayloadAccessorsCheckKind(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	x := b.StringsInterner.Intern("x")
	ident := b.Exprs.NewIdent(source.Span{Start: 0, End: 1}, x)
	group := b.Exprs.NewGroup(source.Span{Start: 0, End: 3}, ident)

	if _, ok := b.Exprs.Call(ident); ok {
		t.Fatal("ident is not a call")
	}
	if b.Exprs.Unparen(group) != ident {
		t.Fatal("Unparen must strip the group")
	}
	if d, ok := b.Exprs.Ident(ident); !ok || b.Name(d.Name) != "x" {
		t.Fatal("ident payload lost")
	}

	ret := b.Stmts.NewReturn(source.Span{}, ident)
	if _, ok := b.Stmts.Let(ret); ok {
		t.Fatal("return is not a let")
	}
	if r, ok := b.Stmts.Return(ret); !ok || r.Value != ident {
		t.Fatal("return payload lost")
	}
}

func TestFnHelpers(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	fn := FnItem{
		Receiver: b.StringsInterner.Intern("Buf"),
		Name:     b.StringsInterner.Intern("span"),
		Params:   []FnParam{{Name: b.StringsInterner.Intern("n")}, {IsSelf: true, Convention: ConvMutating}},
	}
	id := b.Items.NewFn(fn)
	got, ok := b.Items.Fn(id)
	if !ok || !got.IsMethod() || got.SelfParam() != 1 {
		t.Fatalf("fn helpers: %+v", got)
	}
	if _, ok := b.Items.Type(id); ok {
		t.Fatal("fn is not a type")
	}
	if ConvMutating.String() != "mutating" || FieldGet.String() != "get" {
		t.Fatal("stringers")
	}
}
