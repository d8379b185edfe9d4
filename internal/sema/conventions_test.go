package sema

import (
	"testing"

	"viewck/internal/diag"
)

func TestMutatingNeedsLValue(t *testing.T) {
	c := check(t, `
fn bump(mutating x: Int);
fn letLocal() {
	let a = Array();
	a.append(1);
}
fn literal() { bump(1); }
fn temporary() { Array().append(1); }
fn borrowedParam(b: Array) { b.append(1); }
fn mutatingParam(mutating b: Array) { b.append(1); }
`)
	wantCodes(t, c,
		diag.SemaInvalidConventionTarget,
		diag.SemaInvalidConventionTarget,
		diag.SemaInvalidConventionTarget,
		diag.SemaInvalidConventionTarget,
	)
	d := firstWith(c.bag, diag.SemaInvalidConventionTarget)
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "var" {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
}

func TestSignatureConventionErrors(t *testing.T) {
	c := check(t, `
fn Array.into(consuming self) -> Span;
fn escapable(a: Array) -> dependsOn(a) Int;
fn consumedScoped(consuming s: Span) -> dependsOn(s, scoped) Span;
`)
	wantCodes(t, c,
		diag.SemaInvalidConventionTarget,
		diag.SemaInvalidConventionTarget,
		diag.SemaInvalidConventionTarget,
	)
	for _, name := range []string{"Array.into", "escapable", "consumedScoped"} {
		if !signatureOf(t, c, name).IllFormed {
			t.Errorf("%s must be ill-formed", name)
		}
	}
}

func TestUnknownDependsOnTarget(t *testing.T) {
	c := check(t, `
fn f(a: Array) -> dependsOn(z) Span;
fn Int.g() -> dependsOn(self) Span;
`)
	wantCodes(t, c, diag.SemaAmbiguousDependency, diag.SemaAmbiguousDependency)
}

func TestConstructingViewNeedsSource(t *testing.T) {
	c := check(t, `
fn f() { let s = Span(); }
fn g() { let a = Array(1); }
`)
	wantCodes(t, c, diag.SemaMissingDependencySource, diag.SemaArityMismatch)
}

func TestEdgeLegalityTable(t *testing.T) {
	tests := []struct {
		conv   Convention
		kind   TypeKind
		scoped bool
		want   EdgeKind
		ok     bool
	}{
		{ConvBorrowing, Escapable, false, EdgeScopedBorrow, true},
		{ConvMutating, Escapable, false, EdgeScopedMutate, true},
		{ConvConsuming, Escapable, false, EdgeNone, false},
		{ConvBorrowing, NonEscapable, false, EdgeCopied, true},
		{ConvBorrowing, NonEscapable, true, EdgeScopedBorrow, true},
		{ConvMutating, NonEscapable, false, EdgeCopied, true},
		{ConvConsuming, NonEscapable, false, EdgeCopied, true},
		{ConvConsuming, NonEscapable, true, EdgeNone, false},
	}
	for _, tt := range tests {
		got, ok := EdgeFor(tt.conv, tt.kind, tt.scoped)
		if got != tt.want || ok != tt.ok {
			t.Errorf("EdgeFor(%s, %s, %v) = %s, %v; want %s, %v", tt.conv, tt.kind, tt.scoped, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDefaultConventionsComeFromOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultReceiver = ConvMutating
	c := checkSource(t, prelude+`
fn f() {
	let a = Array();
	a.count();
}
`, opts)
	wantCodes(t, c, diag.SemaInvalidConventionTarget)
	if edge := signatureOf(t, c, "Array.span").Results[0].Edge; edge.Kind != EdgeScopedMutate {
		t.Fatalf("Array.span edge = %+v", edge)
	}
}
