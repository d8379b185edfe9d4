package parser

import (
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
)

func TestParseMethodWithDependsOn(t *testing.T) {
	b, file := mustParse(t, "fn Buf.span(borrowing self, n: Int) -> dependsOn(self, scoped) Span;")
	fn, ok := b.Items.Fn(file.Items[0])
	if !ok {
		t.Fatal("not a fn")
	}
	if b.Name(fn.Receiver) != "Buf" || b.Name(fn.Name) != "span" || fn.Body.IsValid() {
		t.Fatalf("header = %+v", fn)
	}
	if len(fn.Params) != 2 || !fn.Params[0].IsSelf || fn.Params[0].Convention != ast.ConvBorrowing {
		t.Fatalf("params = %+v", fn.Params)
	}
	if fn.Params[1].Convention != ast.ConvDefault || b.Name(fn.Params[1].Type.Name) != "Int" {
		t.Fatalf("second param = %+v", fn.Params[1])
	}
	if len(fn.Results) != 1 || fn.ResultTuple {
		t.Fatalf("results = %+v", fn.Results)
	}
	dep := fn.Results[0].DependsOn
	if dep == nil || !dep.TargetSelf || !dep.Scoped {
		t.Fatalf("dependsOn = %+v", dep)
	}
}

func TestParseTupleResult(t *testing.T) {
	b, file := mustParse(t, "fn split(mutating a: Buf, b: Buf) -> (dependsOn(a) Span, dependsOn(b) Span, Int) { return a; }")
	fn, _ := b.Items.Fn(file.Items[0])
	if !fn.ResultTuple || len(fn.Results) != 3 {
		t.Fatalf("results = %+v", fn.Results)
	}
	if b.Name(fn.Results[1].DependsOn.Target) != "b" || fn.Results[2].DependsOn != nil {
		t.Fatalf("dependsOn targets = %+v", fn.Results)
	}
	if fn.Params[0].Convention != ast.ConvMutating {
		t.Fatal("mutating lost")
	}
	if !fn.Body.IsValid() {
		t.Fatal("body missing")
	}
}

func TestParseSelfOutsideMethod(t *testing.T) {
	_, _, bag := parseSource(t, "fn f(self);")
	if !hasCode(bag, diag.SynUnexpectedToken) {
		t.Fatalf("want error for self in free fn: %s", diagnosticsSummary(bag))
	}
}

func TestParseDoubleConvention(t *testing.T) {
	_, _, bag := parseSource(t, "fn f(borrowing mutating x: Buf);")
	if !hasCode(bag, diag.SynUnexpectedModifier) {
		t.Fatalf("want SynUnexpectedModifier: %s", diagnosticsSummary(bag))
	}
}

func TestTopLevelRecovery(t *testing.T) {
	b, file, bag := parseSource(t, "let x = 1;\nfn ok();\ntype T;")
	if !hasCode(bag, diag.SynUnexpectedTopLevel) {
		t.Fatalf("want top-level error: %s", diagnosticsSummary(bag))
	}
	if len(b.Files.Get(file).Items) != 2 {
		t.Fatalf("recovery lost items: %d", len(b.Files.Get(file).Items))
	}
}
