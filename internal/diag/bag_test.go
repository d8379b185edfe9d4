package diag

import (
	"testing"

	"viewck/internal/source"
)

type collect struct{ got []Diagnostic }

func (c *collect) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	c.got = append(c.got, Diagnostic{Code: code, Severity: sev, Primary: primary, Message: msg, Notes: notes, Fixes: fixes})
}

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	b.Add(NewError(SemaDanglingDependency, source.Span{Start: 9, End: 10}, "late"))
	b.Add(New(SevWarning, SemaRuntimeCheckedAccess, source.Span{Start: 1, End: 2}, "early"))
	if b.Add(NewError(SemaUseAfterConsume, source.Span{}, "over")) {
		t.Fatal("expected limit to reject third diagnostic")
	}
	if b.Dropped() != 1 || !b.HasErrors() {
		t.Fatalf("dropped=%d hasErrors=%v", b.Dropped(), b.HasErrors())
	}
	b.Sort()
	if b.Items()[0].Message != "early" {
		t.Fatalf("sort order: %+v", b.Items())
	}
}

func TestBagUnlimitedAndMerge(t *testing.T) {
	a := NewBag(0)
	for range 200 {
		a.Add(New(SevInfo, SemaInfo, source.Span{}, "x"))
	}
	if a.Len() != 200 || a.HasErrors() {
		t.Fatalf("len=%d", a.Len())
	}
	a.Add(New(SevInfo, SemaInfo, source.Span{}, "y"))
	a.Dedup()
	if a.Len() != 2 {
		t.Fatalf("dedup len=%d", a.Len())
	}
	other := NewBag(1)
	other.Add(NewError(SemaExclusivityViolation, source.Span{Start: 3}, "conflict"))
	a.Merge(other)
	if !a.HasErrors() || a.Items()[a.Len()-1].Code != SemaExclusivityViolation {
		t.Fatal("merge lost the error")
	}
}

func TestDedupReporterAndBuilder(t *testing.T) {
	sink := &collect{}
	r := NewDedupReporter(sink)
	sp := source.Span{Start: 4, End: 8}
	for range 3 {
		ReportError(r, SemaExclusivityViolation, sp, "overlapping access").
			WithNote(source.Span{Start: 0, End: 2}, "previous access opened here").
			Emit()
	}
	b := ReportWarning(r, SemaRuntimeCheckedAccess, sp, "dynamic").WithFix("use var", FixEdit{Span: sp, NewText: "var"})
	b.Emit()
	b.Emit()
	if len(sink.got) != 2 {
		t.Fatalf("want 2 unique diagnostics, got %d", len(sink.got))
	}
	if len(sink.got[0].Notes) != 1 || len(sink.got[1].Fixes) != 1 {
		t.Fatalf("notes/fixes lost: %+v", sink.got)
	}
}

func TestParseCode(t *testing.T) {
	c, ok := ParseCode("sem3103")
	if !ok || c != SemaExclusivityViolation {
		t.Fatalf("ParseCode = %v,%v", c, ok)
	}
	if _, ok := ParseCode("3999"); ok {
		t.Fatal("unknown code must not parse")
	}
	if SemaDanglingDependency.Help() == SemaDanglingDependency.Title() {
		t.Fatal("expected long help")
	}
	if SemaNoSuchMember.Help() != SemaNoSuchMember.Title() {
		t.Fatal("help must fall back to title")
	}
}

func TestBagFilterAndTransform(t *testing.T) {
	b := NewBag(0)
	b.Add(Diagnostic{Severity: SevInfo, Code: SemaDeclarationNotChecked})
	b.Add(Diagnostic{Severity: SevWarning, Code: SemaRuntimeCheckedAccess})
	b.Add(Diagnostic{Severity: SevError, Code: SemaExclusivityViolation})

	b.Filter(func(d *Diagnostic) bool { return d.Severity != SevInfo })
	if b.Len() != 2 {
		t.Fatalf("len after filter = %d", b.Len())
	}
	b.Transform(func(d *Diagnostic) *Diagnostic {
		if d.Severity == SevWarning {
			d.Severity = SevError
		}
		return d
	})
	for _, d := range b.Items() {
		if d.Severity != SevError {
			t.Fatalf("severity = %v", d.Severity)
		}
	}
	b.Transform(func(d *Diagnostic) *Diagnostic {
		if d.Code == SemaExclusivityViolation {
			return nil
		}
		return d
	})
	if b.Len() != 1 || b.Items()[0].Code != SemaRuntimeCheckedAccess {
		t.Fatalf("items = %+v", b.Items())
	}
}
