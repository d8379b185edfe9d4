package token_test

import (
	"testing"

	"viewck/internal/source"
	"viewck/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.IntLit, token.KwTrue, token.KwFalse} {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.KwLet, token.Dot, token.LParen} {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestClassPredicates(t *testing.T) {
	ops := []token.Kind{
		token.Colon, token.Semicolon, token.Comma, token.Dot, token.Arrow,
		token.Assign, token.Tilde, token.LParen, token.RParen, token.LBrace, token.RBrace,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() || tok(k).IsKeyword() {
			t.Fatalf("%v should be punct/op only", k)
		}
	}
	for _, k := range []token.Kind{token.KwType, token.KwDynamic, token.KwScoped} {
		if !tok(k).IsKeyword() || tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be keyword only", k)
		}
	}
	if !tok(token.KwMutating).IsConvention() || tok(token.KwScoped).IsConvention() {
		t.Fatal("convention predicate mismatch")
	}
	if !tok(token.Ident).IsIdent() || tok(token.IntLit).IsIdent() {
		t.Fatal("ident predicate mismatch")
	}
}
