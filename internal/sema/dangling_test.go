package sema

import (
	"strings"
	"testing"

	"viewck/internal/diag"
)

func TestReturnViewOfLocal(t *testing.T) {
	c := check(t, `
fn leak(b: Array) -> Span {
	let a = Array();
	let v = a.span();
	return v;
}
`)
	wantCodes(t, c, diag.SemaDanglingDependency)
	d := firstWith(c.bag, diag.SemaDanglingDependency)
	if !strings.Contains(d.Message, "local 'a'") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestReturnViewOfDeclaredSource(t *testing.T) {
	wantClean(t, check(t, `
fn direct(b: Array) -> Span { return b.span(); }
fn viaLocal(b: Array) -> Span {
	let v = b.span();
	return v;
}
fn viaCopy(s: Span) -> Span {
	let p = s.prefix();
	return p;
}
`))
}

func TestReturnViewOfOtherParameter(t *testing.T) {
	c := check(t, `
fn first(x: Array, y: Array) -> dependsOn(x) Span { return y.span(); }
`)
	wantCodes(t, c, diag.SemaDanglingDependency)
}

func TestScopedAccessReturnedAsCopy(t *testing.T) {
	c := check(t, `
fn Span.narrow(self) -> dependsOn(self, scoped) Span;
fn copied(s: Span) -> Span { return s.narrow(); }
fn scoped(s: Span) -> dependsOn(s, scoped) Span { return s.narrow(); }
`)
	wantCodes(t, c, diag.SemaDanglingDependency)
	if edge := signatureOf(t, c, "scoped").Results[0].Edge; edge.Kind != EdgeScopedBorrow || !edge.Explicit {
		t.Fatalf("scoped edge = %+v", edge)
	}
}

func TestRootDiesBeforeView(t *testing.T) {
	for _, mode := range []Liveness{LivenessLastUse, LivenessLexical} {
		t.Run(mode.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Liveness = mode
			c := checkSource(t, prelude+`
fn f() {
	let a = Array();
	var v = a.span();
	{
		let b = Array();
		v = b.span();
	}
	v.count();
}
`, opts)
			wantCodes(t, c, diag.SemaDanglingDependency)
			d := firstWith(c.bag, diag.SemaDanglingDependency)
			if !strings.Contains(d.Message, "'b' is destroyed here while 'v'") {
				t.Fatalf("message = %q", d.Message)
			}
		})
	}
}

func TestViewOverComputedField(t *testing.T) {
	c := check(t, `
type Holder { get data: Array; }
fn Holder.peek(self) {
	let v = self.data.span();
	v.count();
}
fn Holder.size(self) -> Int { return self.data.count(); }
`)
	wantCodes(t, c, diag.SemaDanglingDependency)
	d := firstWith(c.bag, diag.SemaDanglingDependency)
	if !strings.Contains(d.Message, "materialized self.data") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestResilientFieldOutsideOwner(t *testing.T) {
	src := prelude + `
type Remote resilient { data: Array; }
fn look(r: Remote) {
	let v = r.data.span();
	v.count();
}
fn Remote.look(self) {
	let v = self.data.span();
	v.count();
}
`
	c := checkSource(t, src, DefaultOptions())
	wantCodes(t, c, diag.SemaDanglingDependency)

	opts := DefaultOptions()
	opts.Frozen = []string{"Remote"}
	wantClean(t, checkSource(t, src, opts))
}

func TestDynamicFieldIsRuntimeChecked(t *testing.T) {
	src := prelude + `
type Dyn { dynamic data: Array; }
fn f(d: Dyn) {
	let v = d.data.span();
	v.count();
}
`
	c := checkSource(t, src, DefaultOptions())
	wantClean(t, c)
	deps := c.res.Func("f").Body.Deps
	if len(deps) != 1 || !deps[0].RuntimeChecked {
		t.Fatalf("deps = %+v", deps)
	}

	opts := DefaultOptions()
	opts.WarnRuntimeChecked = true
	wantCodes(t, checkSource(t, src, opts), diag.SemaRuntimeCheckedAccess)
}
