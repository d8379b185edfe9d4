package sema

import (
	"strings"
	"testing"

	"viewck/internal/diag"
)

const writebackDecls = `
type Box { n: Int; }
type Holder { get data: Array; get box: Box; }
fn Holder.view(self) -> Span;
`

func TestMutatingCallThroughComputedFieldWritesBack(t *testing.T) {
	c := check(t, writebackDecls+`
fn f() {
	var h = Holder();
	h.data.append(1);
	let s = h.view();
	h.data.append(2);
	s.count();
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)
	d := firstWith(c.bag, diag.SemaExclusivityViolation)
	if !strings.Contains(d.Message, "cannot assign to 'h' while 's' depends on it") ||
		!strings.Contains(d.Message, "writeback h.data") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestWritebackAfterViewEnds(t *testing.T) {
	wantClean(t, check(t, writebackDecls+`
fn f() {
	var h = Holder();
	let s = h.view();
	s.count();
	h.data.append(2);
}
`))
}

func TestFieldStoreThroughComputedFieldWritesBack(t *testing.T) {
	c := check(t, writebackDecls+`
fn live() {
	var h = Holder();
	let s = h.view();
	h.box.n = 1;
	s.count();
}

fn dead() {
	var h = Holder();
	let s = h.view();
	s.count();
	h.box.n = 1;
}
`)
	wantCodes(t, c, diag.SemaExclusivityViolation)
	d := firstWith(c.bag, diag.SemaExclusivityViolation)
	if !strings.Contains(d.Message, "writeback h.box") {
		t.Fatalf("message = %q", d.Message)
	}
}
