package ast

import "viewck/internal/source"

// Convention is the keyword written before a parameter, if any.
type Convention uint8

const (
	ConvDefault Convention = iota
	ConvBorrowing
	ConvConsuming
	ConvMutating
)

func (c Convention) String() string {
	switch c {
	case ConvBorrowing:
		return "borrowing"
	case ConvConsuming:
		return "consuming"
	case ConvMutating:
		return "mutating"
	default:
		return ""
	}
}

type FnParam struct {
	Convention Convention
	ConvSpan   source.Span
	IsSelf     bool
	Name       source.StringID
	NameSpan   source.Span
	Type       TypeRef // пусто для self
	Span       source.Span
}

// DependsOn is the `dependsOn(x[, scoped])` annotation on a result.
type DependsOn struct {
	Target     source.StringID
	TargetSelf bool
	Scoped     bool
	Span       source.Span
}

type FnResult struct {
	DependsOn *DependsOn
	Type      TypeRef
	Span      source.Span
}

type FnItem struct {
	Receiver     source.StringID // NoStringID для свободных функций
	ReceiverSpan source.Span
	Name         source.StringID
	NameSpan     source.Span
	Params       []FnParam
	Results      []FnResult
	ResultTuple  bool
	Body         StmtID // NoStmtID если объявление без тела
	Span         source.Span
}

// IsMethod reports whether the function is declared as Type.name.
func (f *FnItem) IsMethod() bool {
	return f.Receiver != source.NoStringID
}

// SelfParam returns the index of the self parameter or -1.
func (f *FnItem) SelfParam() int {
	for i := range f.Params {
		if f.Params[i].IsSelf {
			return i
		}
	}
	return -1
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) NewFn(fn FnItem) ItemID {
	payload := PayloadID(i.Fns.Allocate(fn))
	return i.New(ItemFn, fn.Span, payload)
}
