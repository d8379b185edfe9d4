package fuzztests

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 1 << 16
)

func addCorpusSeeds(f *testing.F) {
	addFixtureSeeds(f)
	f.Add([]byte{})
	f.Add([]byte("type Array: ~Copyable;\ntype Span: ~Escapable;\nfn Array.span(self) -> Span;\n"))
	f.Add([]byte("fn f() { var a = Array(); let s = a.span(); drop a; s.count(); }\n"))
}

// addFixtureSeeds adds every .vw member of the checker fixtures.
func addFixtureSeeds(f *testing.F) {
	paths, err := filepath.Glob(filepath.Join("..", "sema", "testdata", "*.txtar"))
	if err != nil {
		return
	}
	for _, path := range paths {
		arc, err := txtar.ParseFile(path)
		if err != nil {
			continue
		}
		for _, member := range arc.Files {
			if filepath.Ext(member.Name) == ".vw" {
				f.Add(clampSeed(member.Data))
			}
		}
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
