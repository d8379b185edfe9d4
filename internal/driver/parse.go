package driver

import (
	"context"

	"fortio.org/safecast"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/lexer"
	"viewck/internal/parser"
	"viewck/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
}

// Parse runs the lexer and parser; the parser stops after maxDiagnostics
// errors.
func Parse(ctx context.Context, loader *Loader, path string, maxDiagnostics int) (*ParseResult, error) {
	data, err := loader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.Add(path, data, 0))

	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{}, nil)

	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, err
	}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	result := parser.ParseFile(lx, builder, parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
	})
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  result.File,
		Bag:     bag,
	}, nil
}
