package sema

import (
	"context"
	"fmt"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/symbols"
	"viewck/internal/trace"
)

// FuncReport is the enriched output for one function.
type FuncReport struct {
	ID        symbols.FuncID
	Name      string
	Signature *Signature
	// Checked is false for bodiless functions and ill-formed declarations.
	Checked bool
	// Body is nil when the function was not checked. Its Events are kept
	// only with Options.RecordEvents.
	Body *Body
}

// Result of checking one file.
type Result struct {
	Table *symbols.Table
	Funcs []FuncReport
	// OracleHits and OracleMisses count borrowability cache lookups.
	OracleHits   int
	OracleMisses int
}

// Func finds a report by function name.
func (r *Result) Func(name string) *FuncReport {
	for i := range r.Funcs {
		if r.Funcs[i].Name == name {
			return &r.Funcs[i]
		}
	}
	return nil
}

type checkContext struct {
	builder    *ast.Builder
	table      *symbols.Table
	resolver   *Resolver
	classifier *Classifier
	oracle     BorrowabilityOracle
	reporter   diag.Reporter
	opts       *Options
}

// Check resolves every signature of the file and then checks each body.
// Diagnostics go to opts.Reporter with repeats filtered; a nil reporter
// discards them.
func Check(ctx context.Context, builder *ast.Builder, fileID ast.FileID, opts Options) Result {
	opts.Reporter = diag.NewDedupReporter(opts.Reporter)
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	var funcs []symbols.FuncID
	table := opts.Table
	if table == nil {
		span := trace.Begin(tracer, trace.ScopePass, "symbols", parent)
		res := symbols.ResolveFile(builder, fileID, symbols.ResolveOptions{Reporter: opts.Reporter})
		span.End(fmt.Sprintf("%d types, %d funcs", res.Table.TypeCount(), res.Table.FuncCount()))
		table = res.Table
		funcs = res.Funcs
	} else {
		for i := 1; i <= table.FuncCount(); i++ {
			funcs = append(funcs, symbols.FuncID(i))
		}
	}

	cc := &checkContext{
		builder:  builder,
		table:    table,
		oracle:   opts.Oracle,
		reporter: opts.Reporter,
		opts:     &opts,
	}
	cc.classifier = NewClassifier(table, &opts)
	cc.resolver = NewResolver(table, cc.classifier, opts.Reporter)
	if cc.oracle == nil {
		cc.oracle = NewCachedOracle(table, opts.Frozen)
	}

	result := Result{Table: table, Funcs: make([]FuncReport, 0, len(funcs))}

	// сначала все сигнатуры: тела вызывают функции, объявленные ниже
	sigSpan := trace.Begin(tracer, trace.ScopePass, "signatures", parent)
	for _, id := range funcs {
		cc.resolver.Signature(id)
	}
	sigSpan.End("")

	bodySpan := trace.Begin(tracer, trace.ScopePass, "bodies", parent)
	checked := 0
	for _, id := range funcs {
		if ctx != nil && ctx.Err() != nil {
			break
		}
		sig := cc.resolver.Signature(id)
		report := FuncReport{ID: id, Name: sig.Name, Signature: sig}
		switch {
		case !sig.Func.Body.IsValid():
		case sig.IllFormed:
			msg := fmt.Sprintf("body of '%s' is not checked: its declaration has errors", sig.Name)
			diag.ReportInfo(opts.Reporter, diag.SemaDeclarationNotChecked, sig.Func.NameSpan, msg).Emit()
		default:
			report.Body = checkBody(cc, sig, tracer, bodySpan.ID())
			report.Checked = true
			checked++
		}
		result.Funcs = append(result.Funcs, report)
	}
	bodySpan.End(fmt.Sprintf("%d checked", checked))

	if co, ok := cc.oracle.(*CachedOracle); ok {
		result.OracleHits, result.OracleMisses = co.Stats()
	}
	return result
}

func checkBody(cc *checkContext, sig *Signature, tracer trace.Tracer, parent uint64) *Body {
	span := trace.Begin(tracer, trace.ScopeFunc, sig.Name, parent)
	body := lowerBody(cc, sig)
	plan := planLiveness(body, cc.opts.Liveness)
	newChecker(body, plan, cc.reporter).run()
	span.End(fmt.Sprintf("%d bindings, %d events", len(body.Bindings)-1, len(body.Events)))
	if !cc.opts.RecordEvents {
		body.Events = nil
	}
	return body
}
