package parser

import (
	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/token"
)

var knownMarkers = map[string]bool{
	"Escapable": true,
	"Copyable":  true,
}

// parseTypeItem разбирает
//
//	type Name [: ~Marker, ...] [resilient] (; | { fields })
func (p *Parser) parseTypeItem() (ast.ItemID, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	item := ast.TypeItem{Name: name, NameSpan: nameSpan}

	if p.at(token.Colon) {
		p.advance()
		for {
			tilde, ok := p.expect(token.Tilde, diag.SynUnexpectedToken, "expected '~' before type marker")
			if !ok {
				return ast.NoItemID, false
			}
			markerTok := p.lx.Peek()
			marker, markerSpan, ok := p.parseIdent()
			if !ok {
				return ast.NoItemID, false
			}
			if !knownMarkers[markerTok.Text] {
				p.errAt(diag.SynUnknownMarker, tilde.Span.Cover(markerSpan), "unknown type marker ~"+markerTok.Text)
			}
			item.Markers = append(item.Markers, ast.Marker{Name: marker, Span: tilde.Span.Cover(markerSpan)})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if p.at(token.KwResilient) {
		p.advance()
		item.Resilient = true
	}

	switch {
	case p.at(token.Semicolon):
		item.Span = kw.Span.Cover(p.advance().Span)
	case p.at(token.LBrace):
		p.advance()
		for !p.atOr(token.RBrace, token.EOF) {
			field, ok := p.parseTypeField()
			if !ok {
				p.resyncStmt()
				continue
			}
			item.Fields = append(item.Fields, field)
		}
		closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close type body")
		if !ok {
			return ast.NoItemID, false
		}
		item.Span = kw.Span.Cover(closeTok.Span)
	default:
		p.err(diag.SynExpectSemicolon, "expected ';' or '{' after type header")
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewType(item), true
}

func (p *Parser) parseTypeField() (ast.TypeField, bool) {
	field := ast.TypeField{Access: ast.FieldStored}
	start := p.lx.Peek().Span
	switch {
	case p.at(token.KwGet):
		p.advance()
		field.Access = ast.FieldGet
	case p.at(token.KwDynamic):
		p.advance()
		field.Access = ast.FieldDynamic
	}
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return field, false
	}
	field.Name, field.NameSpan = name, nameSpan
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
		return field, false
	}
	ty, ok := p.parseTypeRef()
	if !ok {
		return field, false
	}
	field.Type = ty
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after field")
	if !ok {
		return field, false
	}
	field.Span = start.Cover(semi.Span)
	return field, true
}

func (p *Parser) parseTypeRef() (ast.TypeRef, bool) {
	if !p.at(token.Ident) {
		p.err(diag.SynExpectType, "expected type name, got \""+p.lx.Peek().Text+"\"")
		return ast.TypeRef{}, false
	}
	name, sp, _ := p.parseIdent()
	return ast.TypeRef{Name: name, Span: sp}, true
}
