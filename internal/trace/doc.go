// Package trace records what the checker spends its time on.
//
// Spans are opened per pass (lex, parse, symbols, signatures, bodies) and per
// checked function. A tracer is carried through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
//
// Tracers: Nop, StreamTracer (text or NDJSON as events arrive), RingTracer
// (last N events, dumped on failure) and MultiTracer.
package trace
