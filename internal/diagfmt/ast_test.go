package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/lexer"
	"viewck/internal/parser"
	"viewck/internal/source"
)

const astSource = `type Array;
type Span: ~Escapable;
fn Array.span(self) -> dependsOn(self, scoped) Span;
fn f(mutating a: Array) {
	let v = a.span();
	if true {
		drop v;
	}
}
`

func parseForDump(t *testing.T) (*ast.Builder, ast.FileID, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("dump.vw", []byte(astSource))
	bag := diag.NewBag(16)
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseSource(fs.Get(id), b, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{})
		t.Fatalf("parse errors:\n%s", buf.String())
	}
	return b, res.File, fs
}

func TestFormatASTPretty(t *testing.T) {
	b, file, fs := parseForDump(t)
	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, b, file, fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"File: dump.vw (span: ",
		"├─ Type: Array (span: 1:1-",
		"├─ Fn [method]: Array.span (span: ",
		"│  └─ Results",
		"│     └─ Result: Span (span: ",
		"│        └─ DependsOn: self, scoped",
		"└─ Fn: f (span: ",
		"   ├─ Params",
		"   │  └─ Param [mutating]: a: Array (span: ",
		"Let [let]: v (span: ",
		"Member: span (span: ",
		"Drop: v (span: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatASTJSON(t *testing.T) {
	b, file, _ := parseForDump(t)
	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, b, file); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if root.Type != "File" || len(root.Children) != 4 {
		t.Fatalf("root = %+v", root)
	}
	fn := root.Children[3]
	if fn.Type != "Fn" || fn.Text != "f" {
		t.Errorf("fn = %+v", fn)
	}
	body := fn.Children[len(fn.Children)-1]
	if body.Type != "Block" || len(body.Children) != 2 || body.Children[1].Type != "If" {
		t.Errorf("body = %+v", body)
	}
}

func TestFormatASTMissingFile(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{}, nil)
	if err := FormatASTPretty(&bytes.Buffer{}, b, ast.FileID(7), nil); err == nil {
		t.Error("expected an error for an unknown file")
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.vw", []byte("let x = 1; // c\n"))
	toks := lexer.New(fs.Get(id), lexer.Options{}).All()

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, toks, fs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(pretty.String()), "\n")
	if len(lines) != len(toks) {
		t.Errorf("lines = %d, tokens = %d", len(lines), len(toks))
	}
	if !strings.Contains(lines[0], "at 1:1-1:4") {
		t.Errorf("first token line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "(leading: space)") {
		t.Errorf("second token line = %q", lines[1])
	}

	var js bytes.Buffer
	if err := FormatTokensJSON(&js, toks); err != nil {
		t.Fatal(err)
	}
	var decoded []TokenOutput
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != len(toks) || decoded[len(decoded)-1].Kind != "EOF" {
		t.Errorf("decoded = %+v", decoded)
	}
}
