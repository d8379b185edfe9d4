package parser

import (
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
)

func bodyOf(t *testing.T, b *ast.Builder, file *ast.File) []ast.StmtID {
	t.Helper()
	fn, ok := b.Items.Fn(file.Items[len(file.Items)-1])
	if !ok {
		t.Fatal("last item is not a fn")
	}
	block, ok := b.Stmts.Block(fn.Body)
	if !ok {
		t.Fatal("fn has no body")
	}
	return block.Stmts
}

func TestParseStatements(t *testing.T) {
	b, file := mustParse(t, `fn f(mutating buf: Buf) {
	let s = buf.span();
	var (a, c) = split(buf, buf);
	drop a;
	buf.count = 3;
	s.first().len;
	if true { return; } else if false { } else { let z = 1; }
	{ return s; }
}`)
	stmts := bodyOf(t, b, file)
	kinds := []ast.StmtKind{ast.StmtLet, ast.StmtLet, ast.StmtDrop, ast.StmtAssign, ast.StmtExpr, ast.StmtIf, ast.StmtBlock}
	if len(stmts) != len(kinds) {
		t.Fatalf("stmts = %d", len(stmts))
	}
	for i, id := range stmts {
		if got := b.Stmts.Get(id).Kind; got != kinds[i] {
			t.Errorf("stmt %d kind = %v, want %v", i, got, kinds[i])
		}
	}

	let0, _ := b.Stmts.Let(stmts[0])
	if let0.Mutable || let0.Tuple {
		t.Fatalf("let0 = %+v", let0)
	}
	call, ok := b.Exprs.Call(let0.Value)
	if !ok {
		t.Fatal("let value is not a call")
	}
	member, ok := b.Exprs.Member(call.Callee)
	if !ok || b.Name(member.Field) != "span" {
		t.Fatal("method callee lost")
	}

	let1, _ := b.Stmts.Let(stmts[1])
	if !let1.Mutable || !let1.Tuple || len(let1.Names) != 2 {
		t.Fatalf("let1 = %+v", let1)
	}

	ifs, _ := b.Stmts.If(stmts[5])
	if elseIf := b.Stmts.Get(ifs.Else); elseIf.Kind != ast.StmtIf {
		t.Fatalf("else-if kind = %v", elseIf.Kind)
	}
}

func TestParseInvalidAssignTarget(t *testing.T) {
	_, _, bag := parseSource(t, "fn f() { g() = 1; }")
	if !hasCode(bag, diag.SynInvalidAssignLHS) {
		t.Fatalf("want SynInvalidAssignLHS: %s", diagnosticsSummary(bag))
	}
}

func TestStatementRecovery(t *testing.T) {
	b, file, bag := parseSource(t, "fn f() { let = 1; let y = 2; }")
	if !hasCode(bag, diag.SynExpectIdentifier) {
		t.Fatalf("diags: %s", diagnosticsSummary(bag))
	}
	stmts := bodyOf(t, b, b.Files.Get(file))
	if len(stmts) != 1 {
		t.Fatalf("want the second let to survive, got %d stmts", len(stmts))
	}
}

func TestMissingSemicolon(t *testing.T) {
	_, _, bag := parseSource(t, "fn f() { let x = 1 }")
	if !hasCode(bag, diag.SynExpectSemicolon) {
		t.Fatalf("diags: %s", diagnosticsSummary(bag))
	}
}
