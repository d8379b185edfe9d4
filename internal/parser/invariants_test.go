package parser

import (
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/source"
	"viewck/internal/testkit"
)

func TestParsedSpansNest(t *testing.T) {
	inputs := map[string]string{
		"decls": `type Array;
type Span: ~Escapable;
fn Array.span(self) -> dependsOn(self, scoped) Span;
`,
		"body": `fn f(mutating a: Array, b: Array) -> (Int, Span) {
	var v = (a.span());
	if true {
		a.append(1);
	} else if false {
		drop v;
	} else {
		v = b.span();
	}
	return (1, v);
}
`,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual(name+".vw", []byte(input))
			bag := diag.NewBag(16)
			b := ast.NewBuilder(ast.Hints{}, nil)
			res := ParseSource(fs.Get(id), b, diag.BagReporter{Bag: bag})
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			if err := testkit.CheckSpanInvariants(b, res.File, fs.Get(id)); err != nil {
				t.Fatal(err)
			}
		})
	}
}
