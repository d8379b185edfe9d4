// Package diag defines the diagnostic model shared by all checking phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     the lexer, the parser and the view checker.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does no formatting beyond the stable one-line form used by
// golden tests and `--format short`. Rendering lives in internal/diagfmt,
// orchestration in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//   - Message: short, actionable text.
//   - Primary: the source.Span pointing at the offending use.
//   - Notes: secondary spans, e.g. "previous access opened here".
//   - Fixes: optional text edits (e.g. turn `let` into `var`).
//
// A finding is never a Go error: phases report through a Reporter and keep
// going, so one body can produce several diagnostics.
//
// # Emitting diagnostics
//
// Phases build a ReportBuilder with ReportError / ReportWarning / ReportInfo,
// chain WithNote / WithFix and call Emit. BagReporter stores into a Bag;
// DedupReporter drops repeats of the same code, span and message.
package diag
