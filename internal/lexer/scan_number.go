package lexer

import (
	"viewck/internal/diag"
	"viewck/internal/token"
)

// Только десятичные целые: [0-9][0-9_]*. Буквы сразу после цифр
// съедаются в тот же токен и репортятся как LexBadNumber.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
	bad := false
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
		bad = true
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if bad {
		lx.errLex(diag.LexBadNumber, sp, "malformed integer literal "+text)
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}
	return token.Token{Kind: token.IntLit, Span: sp, Text: text}
}
