// Package fuzztests holds Go fuzz harnesses for the viewck pipeline
// (source -> lexer -> parser -> checker). They look for panics and hangs
// on arbitrary input; diagnostics themselves are not inspected.
//
// Сиды берутся из txtar-фикстур internal/sema/testdata.
package fuzztests
