package sema

import (
	"testing"

	"viewck/internal/diag"
)

func TestScopedBorrowBlocksMutationWhileLive(t *testing.T) {
	c := check(t, `
fn f() {
	var a = Array();
	let v = a.span();
	a.append(1);
	v.count();
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)
	d := firstWith(c.bag, diag.SemaExclusivityViolation)
	if len(d.Notes) != 1 || d.Notes[0].Msg != "read_only access by 'v' opened here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestMutationAfterLastUseIsAccepted(t *testing.T) {
	wantClean(t, check(t, `
fn f() {
	var a = Array();
	let v = a.span();
	v.count();
	a.append(1);
}
`))
}

func TestScopedMutateBlocksReadsAndWrites(t *testing.T) {
	c := check(t, `
fn reads() {
	var a = Array();
	let m = a.edit();
	a.count();
	m.set(1);
}

fn writes() {
	var a = Array();
	let m = a.edit();
	a = Array();
	m.set(1);
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation, diag.SemaExclusivityViolation)
}

func TestScopedMutateAllowsUseThroughDependent(t *testing.T) {
	wantClean(t, check(t, `
fn f() {
	var a = Array();
	let m = a.edit();
	m.set(1);
	m.set(2);
	a.count();
}
`))
}

func TestReadOnlyRegionsOverlap(t *testing.T) {
	wantClean(t, check(t, `
fn f() {
	let a = Array();
	let v = a.span();
	let w = a.span();
	v.count();
	w.count();
	a.count();
}
`))
}

func TestCopiedEdgeIsTransitive(t *testing.T) {
	c := check(t, `
fn f() {
	var a = Array();
	let s = a.span();
	let b = s.prefix();
	a.append(1);
	b.count();
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)

	fr := c.res.Func("f")
	var found bool
	for _, d := range fr.Body.Deps {
		dep := fr.Body.Binding(d.Dependent)
		if dep.Name == "b" {
			found = true
			if d.Kind != EdgeCopied || fr.Body.Binding(d.Source).Name != "s" {
				t.Fatalf("edge of b = %+v", d)
			}
		}
	}
	if !found {
		t.Fatal("no edge recorded for b")
	}
}

func TestCopiedEdgeEndsWithLastDependent(t *testing.T) {
	wantClean(t, check(t, `
fn f() {
	var a = Array();
	let s = a.span();
	let b = s.prefix();
	b.count();
	a.append(1);
}
`))
}

func TestNoDependencySourceIsRejected(t *testing.T) {
	c := check(t, `
fn make() -> Span { return make(); }
fn fromInt(x: Int) -> Span {
	let a = Array();
	return a.span();
}
`)
	wantCodes(t, c, diag.SemaMissingDependencySource, diag.SemaMissingDependencySource)
	for _, name := range []string{"make", "fromInt"} {
		fr := c.res.Func(name)
		if fr.Checked || fr.Body != nil {
			t.Errorf("%s: body of ill-formed declaration was checked", name)
		}
	}
	if firstWith(c.bag, diag.SemaDeclarationNotChecked) == nil {
		t.Fatal("want info about skipped bodies")
	}
}

func TestCallOrderIsIndependentOfArgumentOrder(t *testing.T) {
	c := check(t, `
fn fill(mutating dst: Array, src: Span);
fn fillFrom(src: Span, mutating dst: Array);
fn both(mutating dst: Array, src: Array);
fn bothFrom(src: Array, mutating dst: Array);

fn a1() { var a = Array(); fill(a, a.span()); }
fn a2() { var a = Array(); fillFrom(a.span(), a); }
fn a3() { var a = Array(); both(a, a); }
fn a4() { var a = Array(); bothFrom(a, a); }
`)
	wantCodes(t, c,
		diag.SemaExclusivityViolation,
		diag.SemaExclusivityViolation,
		diag.SemaExclusivityViolation,
		diag.SemaExclusivityViolation,
	)
}
