package sema

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/parser"
	"viewck/internal/source"
)

// prelude declares the shapes most tests use: an owning array, read-only
// and mutable views over it, and a few calls with fixed conventions.
const prelude = `
type Array: ~Copyable;
type Span: ~Escapable;
type MutSpan: ~Escapable;
fn Array.span(self) -> Span;
fn Array.edit(mutating self) -> MutSpan;
fn Array.append(mutating self, x: Int);
fn Array.count(self) -> Int;
fn Span.count(self) -> Int;
fn Span.prefix(self) -> Span;
fn MutSpan.set(self, x: Int);
fn eat(consuming a: Array);
fn sink(consuming s: Span);
`

type checked struct {
	res Result
	bag *diag.Bag
	fs  *source.FileSet
}

func checkSource(t *testing.T, src string, opts Options) checked {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.vw", []byte(src))
	bag := diag.NewBag(128)
	builder := ast.NewBuilder(ast.Hints{}, nil)
	reporter := diag.BagReporter{Bag: bag}
	parsed := parser.ParseSource(fs.Get(fileID), builder, reporter)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", summary(bag))
	}
	opts.Reporter = reporter
	return checked{
		res: Check(context.Background(), builder, parsed.File, opts),
		bag: bag,
		fs:  fs,
	}
}

// check runs the default options over prelude + body.
func check(t *testing.T, body string) checked {
	t.Helper()
	return checkSource(t, prelude+body, DefaultOptions())
}

func checkLexical(t *testing.T, body string) checked {
	t.Helper()
	opts := DefaultOptions()
	opts.Liveness = LivenessLexical
	return checkSource(t, prelude+body, opts)
}

// codes lists warnings and errors in emission order; info is skipped.
func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevWarning {
			out = append(out, d.Code)
		}
	}
	return out
}

func summary(bag *diag.Bag) string {
	if bag.Len() == 0 {
		return "<none>"
	}
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, fmt.Sprintf("[%s %s] %s", d.Severity, d.Code.ID(), d.Message))
	}
	return strings.Join(lines, "; ")
}

func wantCodes(t *testing.T, c checked, want ...diag.Code) {
	t.Helper()
	if got := codes(c.bag); !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v\n%s", got, want, summary(c.bag))
	}
}

func wantClean(t *testing.T, c checked) {
	t.Helper()
	wantCodes(t, c)
}

func firstWith(bag *diag.Bag, code diag.Code) *diag.Diagnostic {
	items := bag.Items()
	for i := range items {
		if items[i].Code == code {
			return &items[i]
		}
	}
	return nil
}

func signatureOf(t *testing.T, c checked, name string) *Signature {
	t.Helper()
	fr := c.res.Func(name)
	if fr == nil {
		t.Fatalf("no function %s", name)
	}
	return fr.Signature
}
