package sema

import (
	"testing"

	"viewck/internal/diag"
)

func TestBorrowThenMutateInOneCall(t *testing.T) {
	c := check(t, `
fn appendAll(mutating dst: Array, src: Span);
fn f() {
	var a = Array();
	appendAll(a, a.span());
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)
}

func TestBorrowThenMutateInSequence(t *testing.T) {
	wantClean(t, check(t, `
fn f() {
	var a = Array();
	a.span().count();
	a.append(1);
}
`))
}

func TestTwoBorrowsOfOneArray(t *testing.T) {
	wantClean(t, check(t, `
fn pair(x: Array, y: Array);
fn pairSpans(x: Span, y: Span);
fn f() {
	let a = Array();
	pair(a, a);
	pairSpans(a.span(), a.span());
}
`))
}

func TestReceiverInferredAsScopedBorrow(t *testing.T) {
	c := check(t, `
fn Array.first(self) -> Span { return self.span(); }
`)
	wantClean(t, c)
	for _, name := range []string{"Array.span", "Array.first"} {
		sig := signatureOf(t, c, name)
		edge := sig.Results[0].Edge
		if edge == nil || edge.Param != 0 || edge.Kind != EdgeScopedBorrow || edge.Explicit {
			t.Fatalf("%s: edge = %+v", name, edge)
		}
	}
	if edge := signatureOf(t, c, "Array.edit").Results[0].Edge; edge.Kind != EdgeScopedMutate {
		t.Fatalf("Array.edit: edge = %+v", edge)
	}
}

func TestTwoPlausibleSourcesAreAmbiguous(t *testing.T) {
	c := check(t, `
fn pick(a: Span, b: Span) -> Span;
`)
	wantCodes(t, c, diag.SemaAmbiguousDependency)
	d := firstWith(c.bag, diag.SemaAmbiguousDependency)
	if len(d.Notes) != 2 {
		t.Fatalf("notes = %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "dependsOn(a) " {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	if !signatureOf(t, c, "pick").IllFormed {
		t.Fatal("pick must be ill-formed")
	}
}

func TestConsumingViewReceiverIsCopied(t *testing.T) {
	c := check(t, `
fn Span.take(consuming self) -> Span;
fn pass(s: Span) -> Span { return s.take(); }
`)
	wantClean(t, c)
	edge := signatureOf(t, c, "Span.take").Results[0].Edge
	if edge == nil || edge.Param != 0 || edge.Kind != EdgeCopied {
		t.Fatalf("edge = %+v", edge)
	}
	if edge := signatureOf(t, c, "pass").Results[0].Edge; edge.Kind != EdgeCopied {
		t.Fatalf("pass edge = %+v", edge)
	}
}
