package parser

import (
	"testing"

	"viewck/internal/ast"
	"viewck/internal/diag"
)

func TestParseTypeItem(t *testing.T) {
	b, file := mustParse(t, `
type Buf;
type Span: ~Escapable, ~Copyable;
type Remote resilient {
	data: Buf;
	get count: Int;
	dynamic live: Buf;
}
`)
	if len(file.Items) != 3 {
		t.Fatalf("items = %d", len(file.Items))
	}
	buf, ok := b.Items.Type(file.Items[0])
	if !ok || b.Name(buf.Name) != "Buf" || len(buf.Fields) != 0 {
		t.Fatalf("Buf = %+v", buf)
	}
	span, _ := b.Items.Type(file.Items[1])
	if len(span.Markers) != 2 || b.Name(span.Markers[0].Name) != "Escapable" {
		t.Fatalf("markers = %+v", span.Markers)
	}
	remote, _ := b.Items.Type(file.Items[2])
	if !remote.Resilient || len(remote.Fields) != 3 {
		t.Fatalf("Remote = %+v", remote)
	}
	want := []ast.FieldAccess{ast.FieldStored, ast.FieldGet, ast.FieldDynamic}
	for i, f := range remote.Fields {
		if f.Access != want[i] {
			t.Errorf("field %d access = %v, want %v", i, f.Access, want[i])
		}
	}
	if b.Name(remote.Fields[1].Type.Name) != "Int" {
		t.Errorf("field type = %q", b.Name(remote.Fields[1].Type.Name))
	}
}

func TestParseTypeItemErrors(t *testing.T) {
	_, _, bag := parseSource(t, "type A: ~Sendable;\ntype B { x Int; }\nfn f();")
	if !hasCode(bag, diag.SynUnknownMarker) {
		t.Errorf("want SynUnknownMarker: %s", diagnosticsSummary(bag))
	}
	if !hasCode(bag, diag.SynExpectColon) {
		t.Errorf("want SynExpectColon: %s", diagnosticsSummary(bag))
	}
}
