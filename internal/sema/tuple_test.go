package sema

import (
	"testing"

	"viewck/internal/diag"
)

const splitDecls = `
fn split(a: Array, b: Array) -> (dependsOn(a) Span, dependsOn(b) Span) {
	return (a.span(), b.span());
}
`

func TestTupleResultsResolveIndependently(t *testing.T) {
	c := check(t, splitDecls+`
fn withCount(a: Array) -> (Span, Int) { return (a.span(), a.count()); }
`)
	wantClean(t, c)
	sig := signatureOf(t, c, "split")
	if len(sig.Results) != 2 {
		t.Fatalf("results = %+v", sig.Results)
	}
	for j, r := range sig.Results {
		if r.Edge == nil || r.Edge.Param != j || r.Edge.Kind != EdgeScopedBorrow || !r.Edge.Explicit {
			t.Errorf("result %d edge = %+v", j, r.Edge)
		}
	}
	wc := signatureOf(t, c, "withCount")
	if wc.Results[0].Edge == nil || wc.Results[1].Edge != nil {
		t.Fatalf("withCount edges = %+v, %+v", wc.Results[0].Edge, wc.Results[1].Edge)
	}
}

func TestTupleReturnSwapped(t *testing.T) {
	c := check(t, `
fn swapped(a: Array, b: Array) -> (dependsOn(a) Span, dependsOn(b) Span) {
	return (b.span(), a.span());
}
`)
	wantCodes(t, c, diag.SemaDanglingDependency, diag.SemaDanglingDependency)
}

func TestTupleLetBindsEachEdge(t *testing.T) {
	c := check(t, splitDecls+`
fn f() {
	var a = Array();
	var b = Array();
	let (x, y) = split(a, b);
	b.append(1);
	y.count();
	a.append(1);
	x.count();
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation, diag.SemaExclusivityViolation)
}

func TestTupleArity(t *testing.T) {
	c := check(t, splitDecls+`
fn f() {
	let a = Array();
	let b = Array();
	let (x, y, z) = split(a, b);
	let w = split(a, b);
}
fn g(a: Array) -> (Span, Int) { return a.span(); }
`)
	wantCodes(t, c, diag.SemaArityMismatch, diag.SemaArityMismatch, diag.SemaArityMismatch)
}
