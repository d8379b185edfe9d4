package driver

import (
	"context"

	"viewck/internal/diag"
	"viewck/internal/lexer"
	"viewck/internal/source"
	"viewck/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize runs only the lexer; the EOF token is included.
func Tokenize(ctx context.Context, loader *Loader, path string, maxDiagnostics int) (*TokenizeResult, error) {
	data, err := loader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.Add(path, data, 0))

	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	// собираем все токены до EOF
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
