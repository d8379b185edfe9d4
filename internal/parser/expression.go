package parser

import (
	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/token"
)

// parseExpr: primary ('.' Ident ['(' args ')'] | '(' args ')')*
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			field, fieldSpan, ok := p.parseIdent()
			if !ok {
				return ast.NoExprID, false
			}
			span := p.arenas.Exprs.Get(expr).Span.Cover(fieldSpan)
			expr = p.arenas.Exprs.NewMember(span, expr, field, fieldSpan)
		case p.at(token.LParen):
			args, closeTok, ok := p.parseArgs()
			if !ok {
				return ast.NoExprID, false
			}
			span := p.arenas.Exprs.Get(expr).Span.Cover(closeTok.Span)
			expr = p.arenas.Exprs.NewCall(span, expr, args)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parseArgs() ([]ast.ExprID, token.Token, bool) {
	p.advance() // '('
	var args []ast.ExprID
	for !p.atOr(token.RParen, token.EOF) {
		arg, ok := p.parseExpr()
		if !ok {
			return nil, token.Token{}, false
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close argument list")
	return args, closeTok, ok
}

func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, p.arenas.StringsInterner.Intern(tok.Text)), true
	case token.KwSelf:
		p.advance()
		return p.arenas.Exprs.NewSelf(tok.Span), true
	case token.IntLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitInt, p.arenas.StringsInterner.Intern(tok.Text)), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		kind := ast.LitTrue
		if tok.Kind == token.KwFalse {
			kind = ast.LitFalse
		}
		return p.arenas.Exprs.NewLiteral(tok.Span, kind, p.arenas.StringsInterner.Intern(tok.Text)), true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems := []ast.ExprID{inner}
		for p.at(token.Comma) {
			p.advance()
			elem, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			elems = append(elems, elem)
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
		if !ok {
			return ast.NoExprID, false
		}
		span := tok.Span.Cover(closeTok.Span)
		if len(elems) > 1 {
			return p.arenas.Exprs.NewTuple(span, elems), true
		}
		return p.arenas.Exprs.NewGroup(span, inner), true
	default:
		p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
		return ast.NoExprID, false
	}
}
