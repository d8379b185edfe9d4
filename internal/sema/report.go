package sema

import (
	"fmt"

	"viewck/internal/diag"
	"viewck/internal/source"
)

func (l *lowerer) reportUnknownName(name source.StringID, span source.Span) {
	msg := fmt.Sprintf("unknown name '%s'", l.b.Name(name))
	diag.ReportError(l.reporter, diag.SemaUnresolvedName, span, msg).Emit()
}

func (l *lowerer) reportNoSelf(span source.Span) {
	diag.ReportError(l.reporter, diag.SemaUnresolvedName, span, "'self' is only available in methods with a receiver").Emit()
}

func (l *lowerer) reportNoMember(base value, name source.StringID, span source.Span) {
	var msg string
	switch base.kind {
	case valLit:
		msg = fmt.Sprintf("literal %s has no member '%s'", base.label, l.b.Name(name))
	case valTuple:
		msg = fmt.Sprintf("tuple value has no member '%s'", l.b.Name(name))
	default:
		msg = fmt.Sprintf("type '%s' has no member '%s'", l.table.TypeName(base.typ), l.b.Name(name))
	}
	diag.ReportError(l.reporter, diag.SemaNoSuchMember, span, msg).Emit()
}

// reportNotMutable: a mutation needs an lvalue. action is a format with
// one %s for the binding. Immutable locals get a let -> var fix.
func (l *lowerer) reportNotMutable(b *Binding, span source.Span, action string) {
	msg := "cannot " + fmt.Sprintf(action, b.Label())
	switch b.Kind {
	case BindParam:
		msg += fmt.Sprintf(": %s parameter is not mutable", b.Convention)
	case BindLocal:
		msg += ": it is declared with let"
	default:
		msg += ": it is not mutable storage"
	}
	rb := diag.ReportError(l.reporter, diag.SemaInvalidConventionTarget, span, msg)
	switch b.Kind {
	case BindParam:
		rb.WithNote(b.Span, "parameter declared here")
	case BindLocal:
		rb.WithNote(b.Span, "declared here")
		if b.KeywordSpan != (source.Span{}) {
			rb.WithFix("declare it with var", diag.FixEdit{Span: b.KeywordSpan, NewText: "var"})
		}
	}
	rb.Emit()
}

// emitRegionDiag reports a conflict with an open region and points at the
// place where that region was opened.
func (c *checker) emitRegionDiag(code diag.Code, span source.Span, msg string, region RegionID) {
	b := diag.ReportError(c.reporter, code, span, msg)
	if info := c.st.regions.Info(region); info != nil {
		note := fmt.Sprintf("%s access by %s opened here", info.Kind, c.dependentsLabel(info))
		b.WithNote(info.Span, note)
	}
	b.Emit()
}

func (c *checker) label(id BindingID) string {
	return c.body.Binding(id).Label()
}

func (c *checker) dependentsLabel(info *Region) string {
	if deps := c.st.regions.Dependents(info.ID); len(deps) > 0 {
		return c.label(deps[0])
	}
	return c.label(info.Opener)
}
