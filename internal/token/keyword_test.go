package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"fn":        KwFn,
		"let":       KwLet,
		"var":       KwVar,
		"drop":      KwDrop,
		"borrowing": KwBorrowing,
		"consuming": KwConsuming,
		"mutating":  KwMutating,
		"dependsOn": KwDependsOn,
		"scoped":    KwScoped,
		"self":      KwSelf,
		"true":      KwTrue,
	}
	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	// регистр важен, имена типов остаются Ident
	notKw := []string{"Fn", "LET", "DependsOn", "Int", "Bool", "Self", "span"}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}

func TestKindString(t *testing.T) {
	if KwDependsOn.String() != "KwDependsOn" || Arrow.String() != "Arrow" {
		t.Fatalf("unexpected names: %s %s", KwDependsOn, Arrow)
	}
	if Kind(250).String() != "Kind(?)" {
		t.Fatalf("unknown kind must render as Kind(?)")
	}
}
