package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"viewck/internal/ast"
	"viewck/internal/source"
)

// CheckSpanInvariants runs span invariants on a parsed file:
// 1) file.Span is non-empty and within file content bounds
// 2) every item span is non-empty and contained in file.Span
// 3) every statement and expression of a fn body nests inside its parent
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if err := within(item.Span, f.Span, sf.ID); err != nil {
			return fmt.Errorf("item %d: %w", it, err)
		}
		fn, ok := b.Items.Fn(it)
		if !ok || !fn.Body.IsValid() {
			continue
		}
		w := spanWalker{b: b, file: sf.ID}
		if err := w.stmt(fn.Body, item.Span); err != nil {
			return fmt.Errorf("fn %s: %w", b.Name(fn.Name), err)
		}
	}
	return nil
}

func within(sp, parent source.Span, file source.FileID) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("empty span: %v", sp)
	}
	if sp.File != file {
		return fmt.Errorf("span file mismatch: got=%d want=%d", sp.File, file)
	}
	if sp.Start < parent.Start || sp.End > parent.End {
		return fmt.Errorf("span %v is outside parent %v", sp, parent)
	}
	return nil
}

type spanWalker struct {
	b    *ast.Builder
	file source.FileID
}

func (w spanWalker) stmt(id ast.StmtID, parent source.Span) error {
	st := w.b.Stmts.Get(id)
	if st == nil {
		return fmt.Errorf("nil stmt for id=%d", id)
	}
	if err := within(st.Span, parent, w.file); err != nil {
		return fmt.Errorf("stmt %d: %w", id, err)
	}
	var exprs []ast.ExprID
	var stmts []ast.StmtID
	switch st.Kind {
	case ast.StmtBlock:
		if d, ok := w.b.Stmts.Block(id); ok {
			stmts = d.Stmts
		}
	case ast.StmtLet:
		if d, ok := w.b.Stmts.Let(id); ok {
			exprs = append(exprs, d.Value)
		}
	case ast.StmtReturn:
		if d, ok := w.b.Stmts.Return(id); ok {
			exprs = append(exprs, d.Value)
		}
	case ast.StmtIf:
		if d, ok := w.b.Stmts.If(id); ok {
			exprs = append(exprs, d.Cond)
			stmts = append(stmts, d.Then, d.Else)
		}
	case ast.StmtExpr:
		if d, ok := w.b.Stmts.Expr(id); ok {
			exprs = append(exprs, d.Expr)
		}
	case ast.StmtAssign:
		if d, ok := w.b.Stmts.Assign(id); ok {
			exprs = append(exprs, d.Target, d.Value)
		}
	}
	for _, e := range exprs {
		if err := w.expr(e, st.Span); err != nil {
			return err
		}
	}
	for _, s := range stmts {
		if !s.IsValid() {
			continue
		}
		if err := w.stmt(s, st.Span); err != nil {
			return err
		}
	}
	return nil
}

func (w spanWalker) expr(id ast.ExprID, parent source.Span) error {
	if !id.IsValid() {
		return nil
	}
	e := w.b.Exprs.Get(id)
	if e == nil {
		return fmt.Errorf("nil expr for id=%d", id)
	}
	if err := within(e.Span, parent, w.file); err != nil {
		return fmt.Errorf("expr %d: %w", id, err)
	}
	var children []ast.ExprID
	switch e.Kind {
	case ast.ExprGroup:
		if d, ok := w.b.Exprs.Group(id); ok {
			children = append(children, d.Inner)
		}
	case ast.ExprMember:
		if d, ok := w.b.Exprs.Member(id); ok {
			children = append(children, d.Target)
		}
	case ast.ExprCall:
		if d, ok := w.b.Exprs.Call(id); ok {
			children = append(children, d.Callee)
			children = append(children, d.Args...)
		}
	case ast.ExprTuple:
		if d, ok := w.b.Exprs.Tuple(id); ok {
			children = d.Elems
		}
	}
	for _, c := range children {
		if err := w.expr(c, e.Span); err != nil {
			return err
		}
	}
	return nil
}
