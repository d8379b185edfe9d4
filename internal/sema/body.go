package sema

import (
	"viewck/internal/source"
)

type stmtInfo struct {
	Parent int
	Block  ScopeID
	// End is the index of the statement's EvStmtEnd event.
	End int
}

// DepRecord is one resolved dependency edge of the enriched output.
type DepRecord struct {
	Span           source.Span
	Dependent      BindingID
	Source         BindingID
	Root           BindingID
	Kind           EdgeKind
	RuntimeChecked bool
	Via            string
}

// Body is a lowered function body: its bindings and the ordered events.
type Body struct {
	Sig      *Signature
	Bindings []Binding
	Events   []Event
	Deps     []DepRecord
	stmts    []stmtInfo
}

func newBody(sig *Signature) *Body {
	return &Body{
		Sig:      sig,
		Bindings: []Binding{{}},
		stmts:    []stmtInfo{{}},
	}
}

// Binding returns the binding for id or nil.
func (b *Body) Binding(id BindingID) *Binding {
	if b == nil || !id.IsValid() || int(id) >= len(b.Bindings) {
		return nil
	}
	return &b.Bindings[id]
}

// stmtUnder walks up from stmt to the statement whose parent is parent;
// 0 if stmt is not nested under it.
func (b *Body) stmtUnder(stmt, parent int) int {
	for stmt > 0 {
		if b.stmts[stmt].Parent == parent {
			return stmt
		}
		stmt = b.stmts[stmt].Parent
	}
	return 0
}
