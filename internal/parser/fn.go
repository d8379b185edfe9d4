package parser

import (
	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/token"
)

// parseFnItem разбирает
//
//	fn [Type.]name(params) [-> result] (; | block)
func (p *Parser) parseFnItem() (ast.ItemID, bool) {
	kw := p.advance()
	fn := ast.FnItem{}

	first, firstSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	if p.at(token.Dot) {
		p.advance()
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		fn.Receiver, fn.ReceiverSpan = first, firstSpan
		fn.Name, fn.NameSpan = name, nameSpan
	} else {
		fn.Name, fn.NameSpan = first, firstSpan
	}

	params, ok := p.parseParams(fn.IsMethod())
	if !ok {
		return ast.NoItemID, false
	}
	fn.Params = params

	if p.at(token.Arrow) {
		p.advance()
		results, tuple, ok := p.parseResults()
		if !ok {
			return ast.NoItemID, false
		}
		fn.Results, fn.ResultTuple = results, tuple
	}

	switch {
	case p.at(token.Semicolon):
		fn.Span = kw.Span.Cover(p.advance().Span)
	case p.at(token.LBrace):
		body, ok := p.parseBlock()
		if !ok {
			return ast.NoItemID, false
		}
		fn.Body = body
		fn.Span = kw.Span.Cover(p.arenas.Stmts.Get(body).Span)
	default:
		p.err(diag.SynExpectSemicolon, "expected ';' or function body")
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewFn(fn), true
}

func (p *Parser) parseParams(method bool) ([]ast.FnParam, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return nil, false
	}
	var params []ast.FnParam
	sawSelf := false
	for !p.atOr(token.RParen, token.EOF) {
		param, ok := p.parseParam()
		if !ok {
			return nil, false
		}
		if param.IsSelf {
			switch {
			case !method:
				p.errAt(diag.SynUnexpectedToken, param.NameSpan, "'self' parameter is only allowed in methods")
			case sawSelf:
				p.errAt(diag.SynUnexpectedToken, param.NameSpan, "duplicate 'self' parameter")
			}
			sawSelf = true
		}
		params = append(params, param)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close parameter list"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseParam() (ast.FnParam, bool) {
	param := ast.FnParam{}
	start := p.lx.Peek().Span
	if tok := p.lx.Peek(); tok.IsConvention() {
		p.advance()
		param.ConvSpan = tok.Span
		switch tok.Kind {
		case token.KwBorrowing:
			param.Convention = ast.ConvBorrowing
		case token.KwConsuming:
			param.Convention = ast.ConvConsuming
		case token.KwMutating:
			param.Convention = ast.ConvMutating
		}
		if p.lx.Peek().IsConvention() {
			p.err(diag.SynUnexpectedModifier, "only one convention is allowed per parameter")
			p.advance()
		}
	}
	if p.at(token.KwSelf) {
		tok := p.advance()
		param.IsSelf = true
		param.Name = p.arenas.StringsInterner.Intern("self")
		param.NameSpan = tok.Span
		param.Span = start.Cover(tok.Span)
		return param, true
	}
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return param, false
	}
	param.Name, param.NameSpan = name, nameSpan
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after parameter name"); !ok {
		return param, false
	}
	ty, ok := p.parseTypeRef()
	if !ok {
		return param, false
	}
	param.Type = ty
	param.Span = start.Cover(ty.Span)
	return param, true
}

// parseResults разбирает одиночный результат или кортеж `(r1, r2)`.
func (p *Parser) parseResults() ([]ast.FnResult, bool, bool) {
	if !p.at(token.LParen) {
		r, ok := p.parseResult()
		if !ok {
			return nil, false, false
		}
		return []ast.FnResult{r}, false, true
	}
	p.advance()
	var results []ast.FnResult
	for {
		r, ok := p.parseResult()
		if !ok {
			return nil, true, false
		}
		results = append(results, r)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close result tuple"); !ok {
		return nil, true, false
	}
	return results, true, true
}

func (p *Parser) parseResult() (ast.FnResult, bool) {
	res := ast.FnResult{}
	start := p.lx.Peek().Span
	if p.at(token.KwDependsOn) {
		dep, ok := p.parseDependsOn()
		if !ok {
			return res, false
		}
		res.DependsOn = dep
	}
	ty, ok := p.parseTypeRef()
	if !ok {
		return res, false
	}
	res.Type = ty
	res.Span = start.Cover(ty.Span)
	return res, true
}

// dependsOn(x) | dependsOn(self, scoped)
func (p *Parser) parseDependsOn() (*ast.DependsOn, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after dependsOn"); !ok {
		return nil, false
	}
	dep := &ast.DependsOn{}
	switch {
	case p.at(token.KwSelf):
		p.advance()
		dep.TargetSelf = true
		dep.Target = p.arenas.StringsInterner.Intern("self")
	default:
		name, _, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		dep.Target = name
	}
	if p.at(token.Comma) {
		p.advance()
		if _, ok := p.expect(token.KwScoped, diag.SynUnexpectedToken, "expected 'scoped' in dependsOn"); !ok {
			return nil, false
		}
		dep.Scoped = true
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close dependsOn")
	if !ok {
		return nil, false
	}
	dep.Span = kw.Span.Cover(closeTok.Span)
	return dep, true
}
