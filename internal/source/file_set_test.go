package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("view.vw", []byte("type Buf;"), 0)
	id2 := fs.Add("view.vw", []byte("type Buf {}"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("view.vw")
	if !ok || latest != id2 {
		t.Errorf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "type Buf;" {
		t.Errorf("first content = %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len = %d, want 2", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.vw", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx len = %d, want %d", len(file.LineIdx), len(expected))
	}
	for i, v := range expected {
		if file.LineIdx[i] != v {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], v)
		}
	}
	if !file.Flags.Has(FileVirtual) {
		t.Error("expected FileVirtual flag")
	}
}

func TestAddNormalizesBOMAndCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("w.vw", []byte("\xEF\xBB\xBFfn f();\r\nfn g();\r\n"), 0)
	file := fs.Get(id)
	if string(file.Content) != "fn f();\nfn g();\n" {
		t.Errorf("content = %q", file.Content)
	}
	if !file.Flags.Has(FileHadBOM|FileNormalizedCRLF) {
		t.Errorf("flags = %b, want BOM and CRLF bits", file.Flags)
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.vw", []byte("fn f() {\n  let x = 1;\n}\n"))

	start, end := fs.Resolve(Span{File: id, Start: 11, End: 20})
	if start != (LineCol{Line: 2, Col: 3}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 12}) {
		t.Errorf("end = %+v", end)
	}

	// неизвестный файл
	start, _ = fs.Resolve(Span{File: 42})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("unknown file start = %+v", start)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("l.vw", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	cases := map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""}
	for n, want := range cases {
		if got := f.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatPath(t *testing.T) {
	f := &File{Path: "/very/long/absolute/path/to/some/project/dir/main.vw"}
	if got := f.FormatPath("basename", ""); got != "main.vw" {
		t.Errorf("basename = %q", got)
	}
	if got := f.FormatPath("auto", ""); got != "main.vw" {
		t.Errorf("auto = %q", got)
	}
	if got := f.FormatPath("relative", "/very/long/absolute/path/to"); got != "some/project/dir/main.vw" {
		t.Errorf("relative = %q", got)
	}
	short := &File{Path: "src/a.vw"}
	if got := short.FormatPath("auto", ""); got != "src/a.vw" {
		t.Errorf("auto short = %q", got)
	}
}
