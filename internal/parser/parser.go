package parser

import (
	"slices"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/lexer"
	"viewck/internal/source"
	"viewck/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser - состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile - входная точка для разбора одного файла.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	start := lx.Peek().Span
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.Files.New(start),
		opts:     opts,
		lastSpan: source.Span{File: start.File},
	}
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

// ParseSource lexes and parses one registered file with a shared reporter.
func ParseSource(file *source.File, arenas *ast.Builder, reporter diag.Reporter) Result {
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return ParseFile(lx, arenas, Options{Reporter: reporter})
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems - основной цикл верхнего уровня: пока не EOF - parseItem.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lx.Peek().Span)
}

func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwType:
		return p.parseTypeItem()
	case token.KwFn:
		return p.parseFnItem()
	default:
		p.err(diag.SynUnexpectedTopLevel, "expected 'type' or 'fn', got \""+p.lx.Peek().Text+"\"")
		return ast.NoItemID, false
	}
}

// resyncTop - прокручиваем до стартера следующего item или EOF.
// Незакрытые '{' пропускаются целиком, чтобы не начать item внутри тела.
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth > 0 {
				depth--
			}
		case token.KwType, token.KwFn:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

// parseIdent - ожидает Ident и интернирует его.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.StringsInterner.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return source.NoStringID, p.getDiagnosticSpan(), false
}
