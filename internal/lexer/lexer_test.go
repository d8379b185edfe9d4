package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"viewck/internal/diag"
	"viewck/internal/lexer"
	"viewck/internal/source"
	"viewck/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.vw", []byte(input))
	bag := diag.NewBag(16)
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx, bag
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// expectTokens проверяет последовательность токенов без EOF
func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, bag := makeTestLexer(input)
	tokens := lx.All()
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d\ninput: %q\ntokens: %v\ndiags: %v",
			len(expected), len(tokens), input, tokensToString(tokens), bag.Items())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func TestFunctionSignature(t *testing.T) {
	expectTokens(t, "fn Buf.span(borrowing self) -> dependsOn(self, scoped) Span;", []token.Kind{
		token.KwFn, token.Ident, token.Dot, token.Ident, token.LParen,
		token.KwBorrowing, token.KwSelf, token.RParen, token.Arrow,
		token.KwDependsOn, token.LParen, token.KwSelf, token.Comma, token.KwScoped, token.RParen,
		token.Ident, token.Semicolon,
	})
}

func TestTypeDeclWithMarkers(t *testing.T) {
	expectTokens(t, "type Span: ~Escapable, ~Copyable resilient { get count: Int; }", []token.Kind{
		token.KwType, token.Ident, token.Colon, token.Tilde, token.Ident, token.Comma,
		token.Tilde, token.Ident, token.KwResilient, token.LBrace,
		token.KwGet, token.Ident, token.Colon, token.Ident, token.Semicolon, token.RBrace,
	})
}

func TestStatements(t *testing.T) {
	expectTokens(t, "var (a, b) = split(x); drop a; b.count = 10;", []token.Kind{
		token.KwVar, token.LParen, token.Ident, token.Comma, token.Ident, token.RParen,
		token.Assign, token.Ident, token.LParen, token.Ident, token.RParen, token.Semicolon,
		token.KwDrop, token.Ident, token.Semicolon,
		token.Ident, token.Dot, token.Ident, token.Assign, token.IntLit, token.Semicolon,
	})
}

func TestCommentsAreTrivia(t *testing.T) {
	lx, bag := makeTestLexer("// head\nlet /* a /* nested */ b */ x")
	let := lx.Next()
	if let.Kind != token.KwLet {
		t.Fatalf("want let, got %v", let.Kind)
	}
	if len(let.Leading) != 2 || let.Leading[0].Kind != token.TriviaLineComment || let.Leading[1].Kind != token.TriviaNewline {
		t.Fatalf("leading trivia = %+v", let.Leading)
	}
	x := lx.Next()
	if x.Kind != token.Ident || x.Text != "x" {
		t.Fatalf("want ident x, got %v %q", x.Kind, x.Text)
	}
	var sawBlock bool
	for _, tr := range x.Leading {
		if tr.Kind == token.TriviaBlockComment {
			sawBlock = tr.Text == "/* a /* nested */ b */"
		}
	}
	if !sawBlock {
		t.Fatalf("nested block comment not kept whole: %+v", x.Leading)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	lx, bag := makeTestLexer("fn /* never closed")
	toks := lx.All()
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatal("lexer must end with EOF")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("diags = %v", bag.Items())
	}
}

func TestUnknownCharAndBadNumber(t *testing.T) {
	lx, bag := makeTestLexer("x + 12ab")
	toks := lx.All()
	if toks[1].Kind != token.Invalid || toks[2].Kind != token.Invalid {
		t.Fatalf("tokens = %s", tokensToString(toks))
	}
	codes := make(map[diag.Code]int)
	for _, d := range bag.Items() {
		codes[d.Code]++
	}
	if codes[diag.LexUnknownChar] != 1 || codes[diag.LexBadNumber] != 1 {
		t.Fatalf("codes = %v", codes)
	}
}

func TestIdentifierNFC(t *testing.T) {
	// "café" в NFD: e + U+0301
	lx, bag := makeTestLexer("cafe\u0301 caf\u00e9")
	a, b := lx.Next(), lx.Next()
	if a.Kind != token.Ident || b.Kind != token.Ident {
		t.Fatalf("kinds = %v %v", a.Kind, b.Kind)
	}
	if a.Text != b.Text {
		t.Fatalf("NFC mismatch: %q vs %q", a.Text, b.Text)
	}
	if a.Span.Len() != 6 || b.Span.Len() != 5 {
		t.Fatalf("spans must cover source bytes: %v %v", a.Span, b.Span)
	}
	if bag.Len() != 0 {
		t.Fatalf("diags = %v", bag.Items())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("self.data")
	if lx.Peek().Kind != token.KwSelf || lx.Next().Kind != token.KwSelf {
		t.Fatal("peek/next mismatch")
	}
	if lx.Next().Kind != token.Dot {
		t.Fatal("expected dot")
	}
	lx.Next()
	for range 3 {
		if lx.Next().Kind != token.EOF {
			t.Fatal("EOF must be sticky")
		}
	}
}
