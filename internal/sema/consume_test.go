package sema

import (
	"testing"

	"viewck/internal/diag"
)

func TestUseAfterConsume(t *testing.T) {
	c := check(t, `
fn f() {
	let a = Array();
	eat(a);
	eat(a);
}
`)
	wantCodes(t, c, diag.SemaUseAfterConsume)
	if d := firstWith(c.bag, diag.SemaUseAfterConsume); len(d.Notes) != 1 || d.Notes[0].Msg != "consumed here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestReassignRevivesConsumedBinding(t *testing.T) {
	wantClean(t, check(t, `
fn f() {
	var a = Array();
	eat(a);
	a = Array();
	eat(a);
}
`))
}

func TestConsumeOnOnePath(t *testing.T) {
	c := check(t, `
fn early(c: Bool) {
	let a = Array();
	if c {
		eat(a);
		return;
	}
	eat(a);
}

fn late(c: Bool) {
	let a = Array();
	if c {
		eat(a);
	}
	eat(a);
}
`)
	wantCodes(t, c, diag.SemaUseAfterConsume)
}

func TestConsumeBorrowedRoot(t *testing.T) {
	c := check(t, `
fn f() {
	let a = Array();
	let v = a.span();
	eat(a);
	v.count();
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)
}

func TestDropEndsView(t *testing.T) {
	src := `
fn dropView() {
	var a = Array();
	let v = a.span();
	v.count();
	drop v;
	a.append(1);
}
fn sinkView() {
	var a = Array();
	let v = a.span();
	sink(v);
	a.append(1);
}
`
	wantClean(t, check(t, src))
	wantClean(t, checkLexical(t, src))
}

func TestDropBorrowedRoot(t *testing.T) {
	c := check(t, `
fn f() {
	let a = Array();
	let v = a.span();
	drop a;
	v.count();
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)
}

func TestCannotMoveBorrowedParameter(t *testing.T) {
	c := check(t, `
fn f(b: Array) { drop b; }
fn g(b: Array) { eat(b); }
fn h(consuming b: Array) { eat(b); }
`)
	wantCodes(t, c, diag.SemaInvalidConventionTarget, diag.SemaInvalidConventionTarget)
}
