package fuzztests

import (
	"testing"

	"viewck/internal/diag"
	"viewck/internal/lexer"
	"viewck/internal/source"
	"viewck/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.vw", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		end := uint32(0)
		// каждый токен сдвигает курсор, иначе зациклимся
		for i := 0; i <= len(input)+1; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				return
			}
			if tok.Span.End < end {
				t.Fatalf("token %v goes backwards: %d < %d", tok.Kind, tok.Span.End, end)
			}
			end = tok.Span.End
		}
		t.Fatalf("lexer did not reach EOF on %d bytes", len(input))
	})
}
