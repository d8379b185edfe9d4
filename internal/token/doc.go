// Package token defines lexical token kinds and trivia for .vw sources.
// Invariants:
//   - Token.Text is a slice of the original source, except identifiers
//     that had to be NFC-normalised.
//   - Token.Span covers the original bytes of the lexeme.
//   - Comments and whitespace are leading Trivia and never appear in the
//     main token stream.
//   - Built-in type names (Int, Bool) are identifiers. They are recognised
//     by the symbol table, not the lexer.
package token
