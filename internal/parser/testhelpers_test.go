package parser

import (
	"fmt"
	"strings"
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.vw", []byte(input))
	bag := diag.NewBag(64)
	builder := ast.NewBuilder(ast.Hints{}, nil)
	res := ParseSource(fs.Get(fileID), builder, diag.BagReporter{Bag: bag})
	return builder, res.File, bag
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func mustParse(t *testing.T, input string) (*ast.Builder, *ast.File) {
	t.Helper()
	b, file, bag := parseSource(t, input)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return b, b.Files.Get(file)
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
