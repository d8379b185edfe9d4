package sema

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/parser"
	"viewck/internal/source"
)

// Fixtures are txtar archives with an input.vw file and an optional options
// file of key=value lines. A line of input.vw expects the diagnostics named
// by its trailing "// want CODE..." comment; every other line expects none.
func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures")
	}
	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			runFixture(t, path)
		})
	}
}

var wantRe = regexp.MustCompile(`//\s*want\s+(.+)$`)

func runFixture(t *testing.T, path string) {
	arc, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var input []byte
	opts := DefaultOptions()
	for _, f := range arc.Files {
		switch f.Name {
		case "input.vw":
			input = f.Data
		case "options":
			if err := applyFixtureOptions(&opts, string(f.Data)); err != nil {
				t.Fatal(err)
			}
		default:
			t.Fatalf("unexpected file %q", f.Name)
		}
	}
	if input == nil {
		t.Fatal("fixture has no input.vw")
	}

	want := make(map[uint32][]string)
	for i, line := range strings.Split(string(input), "\n") {
		m := wantRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		want[uint32(i+1)] = strings.Fields(m[1])
	}

	fs := source.NewFileSet()
	fileID := fs.AddVirtual(filepath.Base(path), input)
	bag := diag.NewBag(128)
	reporter := diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{}, nil)
	parsed := parser.ParseSource(fs.Get(fileID), builder, reporter)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", summary(bag))
	}
	opts.Reporter = reporter
	Check(context.Background(), builder, parsed.File, opts)

	got := make(map[uint32][]string)
	for _, d := range bag.Items() {
		if d.Severity < diag.SevWarning {
			continue
		}
		start, _ := fs.Resolve(d.Primary)
		got[start.Line] = append(got[start.Line], d.Code.ID())
	}
	for line := range union(want, got) {
		w, g := want[line], got[line]
		slices.Sort(w)
		slices.Sort(g)
		if !slices.Equal(w, g) {
			t.Errorf("line %d: got %v, want %v", line, g, w)
		}
	}
	if t.Failed() {
		t.Logf("diagnostics: %s", summary(bag))
	}
}

func union(a, b map[uint32][]string) map[uint32]struct{} {
	out := make(map[uint32]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func applyFixtureOptions(opts *Options, text string) error {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("bad option line %q", line)
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "liveness":
			mode, err := ParseLiveness(val)
			if err != nil {
				return err
			}
			opts.Liveness = mode
		case "frozen":
			opts.Frozen = strings.Split(val, ",")
		case "warn-runtime-checked":
			opts.WarnRuntimeChecked = val == "true"
		default:
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return nil
}
