package parser

import (
	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/token"
)

// parseBlock разбирает '{' stmt* '}'.
func (p *Parser) parseBlock() (ast.StmtID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoStmtID, false
	}
	var stmts []ast.StmtID
	for !p.atOr(token.RBrace, token.EOF) {
		id, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, id)
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewBlock(open.Span.Cover(closeTok.Span), stmts, closeTok.Span), true
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet, token.KwVar:
		return p.parseLetStmt()
	case token.KwDrop:
		kw := p.advance()
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoStmtID, false
		}
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after drop")
		if !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewDrop(kw.Span.Cover(semi.Span), name, nameSpan), true
	case token.KwReturn:
		kw := p.advance()
		value := ast.NoExprID
		if !p.at(token.Semicolon) {
			v, ok := p.parseExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			value = v
		}
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return")
		if !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewReturn(kw.Span.Cover(semi.Span), value), true
	case token.KwIf:
		return p.parseIfStmt()
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// let x = e; | var (a, b) = e;
func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	kw := p.advance()
	data := ast.LetData{Mutable: kw.Kind == token.KwVar, KeywordSpan: kw.Span}
	if p.at(token.LParen) {
		p.advance()
		data.Tuple = true
		for {
			name, sp, ok := p.parseIdent()
			if !ok {
				return ast.NoStmtID, false
			}
			data.Names = append(data.Names, ast.Binder{Name: name, Span: sp})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close pattern"); !ok {
			return ast.NoStmtID, false
		}
	} else {
		name, sp, ok := p.parseIdent()
		if !ok {
			return ast.NoStmtID, false
		}
		data.Names = []ast.Binder{{Name: name, Span: sp}}
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in binding"); !ok {
		return ast.NoStmtID, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	data.Value = value
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after binding")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLet(kw.Span.Cover(semi.Span), data), true
}

func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	kw := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	span := kw.Span.Cover(p.arenas.Stmts.Get(then).Span)
	els := ast.NoStmtID
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			els, ok = p.parseIfStmt()
		} else {
			els, ok = p.parseBlock()
		}
		if !ok {
			return ast.NoStmtID, false
		}
		span = span.Cover(p.arenas.Stmts.Get(els).Span)
	}
	return p.arenas.Stmts.NewIf(span, cond, then, els), true
}

// expr; | place = expr;
func (p *Parser) parseExprStmt() (ast.StmtID, bool) {
	lhs, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if p.at(token.Assign) {
		p.advance()
		if !p.isPlace(lhs) {
			p.errAt(diag.SynInvalidAssignLHS, p.arenas.Exprs.Get(lhs).Span, "left side of '=' must be a name, self or a field")
		}
		rhs, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after assignment")
		if !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewAssign(p.arenas.Exprs.Get(lhs).Span.Cover(semi.Span), lhs, rhs), true
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewExpr(p.arenas.Exprs.Get(lhs).Span.Cover(semi.Span), lhs), true
}

func (p *Parser) isPlace(id ast.ExprID) bool {
	id = p.arenas.Exprs.Unparen(id)
	switch p.arenas.Exprs.Get(id).Kind {
	case ast.ExprIdent, ast.ExprSelf:
		return true
	case ast.ExprMember:
		m, _ := p.arenas.Exprs.Member(id)
		return p.isPlace(m.Target)
	default:
		return false
	}
}
