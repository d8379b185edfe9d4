package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"viewck/internal/diag"
	"viewck/internal/source"
)

func singleDiag(t *testing.T, path, content string, d func(source.FileID) diag.Diagnostic) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	bag.Add(d(id))
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := singleDiag(t, "/home/user/project/src/test.vw", "fn f() {\n\tlet x = y;\n}\n",
		func(id source.FileID) diag.Diagnostic {
			return diag.NewError(diag.SemaUnresolvedName, source.Span{File: id, Start: 18, End: 19}, "unknown name 'y'")
		})
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.vw:2:10"},
		{"Relative path", PathModeRelative, "src/test.vw:2:10"},
		{"Basename only", PathModeBasename, "test.vw:2:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR SEM3005: unknown name 'y'") {
				t.Errorf("missing header:\n%s", output)
			}
		})
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		span    source.Span
		lead    int
		width   int
	}{
		{"tab expanded", "\tx = yy;\n", source.Span{Start: 5, End: 7}, 8, 2},
		{"wide runes", "日本 = y;\n", source.Span{Start: 9, End: 10}, 7, 1},
		{"empty span", "x = y;\n", source.Span{Start: 4, End: 4}, 4, 1},
		{"multi-line span", "view(a,\n b);\n", source.Span{Start: 0, End: 11}, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag, fs := singleDiag(t, "a.vw", tt.content, func(id source.FileID) diag.Diagnostic {
				sp := tt.span
				sp.File = id
				return diag.NewError(diag.SemaExclusivityViolation, sp, "conflict")
			})
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{TabWidth: 4})

			want := "   | " + strings.Repeat(" ", tt.lead) + "^" + strings.Repeat("~", tt.width-1) + "\n"
			if !strings.Contains(buf.String(), want) {
				t.Errorf("want caret line %q in:\n%s", want, buf.String())
			}
		})
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := singleDiag(t, "a.vw", "x;\n", func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SemaUseAfterConsume, source.Span{File: id, Start: 0, End: 1}, "used after consume")
	})

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escapes: %q", colored.String())
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	bag, fs := singleDiag(t, "a.vw", "let x = 1;\nx = 2;\n", func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SemaInvalidConventionTarget, source.Span{File: id, Start: 11, End: 12}, "cannot assign to 'x'").
			WithNote(source.Span{File: id, Start: 4, End: 5}, "declared here").
			WithFix("declare it with var", diag.FixEdit{Span: source.Span{File: id, Start: 0, End: 3}, NewText: "var"})
	})

	var hidden bytes.Buffer
	Pretty(&hidden, bag, fs, PrettyOpts{})
	if strings.Contains(hidden.String(), "note:") || strings.Contains(hidden.String(), "help:") {
		t.Errorf("notes and fixes must be opt-in:\n%s", hidden.String())
	}

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true, ShowPreview: true})
	out := buf.String()
	for _, want := range []string{
		"a.vw:2:1: ERROR SEM3101: cannot assign to 'x'",
		"  note: a.vw:1:5: declared here",
		"  help: declare it with var",
		"    - let x = 1;",
		"    + var x = 1;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrettyUnlocatedAndDropped(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "pipeline timings").
		WithNote(source.Span{}, "check: 1.00ms"))
	bag.Add(diag.NewError(diag.SemaInfo, source.Span{}, "dropped"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	out := buf.String()
	if !strings.HasPrefix(out, "INFO OBS6001: pipeline timings\n  note: check: 1.00ms\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "1 more diagnostics not shown") {
		t.Errorf("dropped count missing:\n%s", out)
	}
}

func TestParsePathMode(t *testing.T) {
	for _, m := range []PathMode{PathModeAuto, PathModeAbsolute, PathModeRelative, PathModeBasename} {
		got, ok := ParsePathMode(m.String())
		if !ok || got != m {
			t.Errorf("ParsePathMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParsePathMode("nope"); ok {
		t.Error("unknown mode accepted")
	}
}
