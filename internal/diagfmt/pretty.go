package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"viewck/internal/diag"
	"viewck/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note, help      *color.Color
	added, removed  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		code:    color.New(color.Bold),
		path:    color.New(color.FgWhite, color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgRed, color.Bold),
		note:    color.New(color.FgCyan),
		help:    color.New(color.FgGreen),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note, p.help, p.added, p.removed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pr := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	if pr.opts.TabWidth <= 0 {
		pr.opts.TabWidth = 4
	}
	items := bag.Items()
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		pr.diagnostic(&items[i])
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostics not shown\n", n)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (pr *prettyPrinter) location(span source.Span) string {
	f, ok := located(pr.fs, span)
	if !ok {
		return ""
	}
	start, _ := pr.fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(pr.fs, f, pr.opts.PathMode), start.Line, start.Col)
}

func (pr *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	sev := pr.pal.severity(d.Severity)
	header := sev.Sprint(d.Severity.String()) + " " + pr.pal.code.Sprint(d.Code.ID()) + ": " + d.Message
	if loc := pr.location(d.Primary); loc != "" {
		header = pr.pal.path.Sprint(loc) + ": " + header
	}
	fmt.Fprintln(pr.w, header)
	pr.excerpt(d.Primary, pr.pal.caret)

	if pr.opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, note := range d.Notes {
			prefix := pr.pal.note.Sprint("note")
			if loc := pr.location(note.Span); loc != "" {
				fmt.Fprintf(pr.w, "  %s: %s: %s\n", prefix, pr.pal.path.Sprint(loc), note.Msg)
				pr.excerpt(note.Span, pr.pal.note)
				continue
			}
			fmt.Fprintf(pr.w, "  %s: %s\n", prefix, note.Msg)
		}
	}
	if pr.opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(pr.w, "  %s: %s\n", pr.pal.help.Sprint("help"), fix.Title)
			if pr.opts.ShowPreview {
				pr.preview(fix)
			}
		}
	}
}

// excerpt печатает строку исходника и подчёркивание под span.
// Многострочные span подчёркиваются до конца первой строки.
func (pr *prettyPrinter) excerpt(span source.Span, marker *color.Color) {
	f, ok := located(pr.fs, span)
	if !ok {
		return
	}
	start, end := pr.fs.Resolve(span)
	line := f.GetLine(start.Line)
	num := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(num))

	prefix, rest := splitAtColumn(line, start.Col)
	under := rest
	if end.Line == start.Line {
		under, _ = splitAtColumn(rest, end.Col-start.Col+1)
	}

	lead := runewidth.StringWidth(pr.expandTabs(prefix))
	width := max(runewidth.StringWidth(pr.expandTabs(under)), 1)

	fmt.Fprintf(pr.w, " %s %s %s\n", pr.pal.gutter.Sprint(num), pr.pal.gutter.Sprint("|"), pr.expandTabs(line))
	fmt.Fprintf(pr.w, " %s %s %s%s\n", pad, pr.pal.gutter.Sprint("|"),
		strings.Repeat(" ", lead), marker.Sprint("^"+strings.Repeat("~", width-1)))
}

func (pr *prettyPrinter) preview(fix diag.Fix) {
	for _, edit := range fix.Edits {
		p, err := buildFixEditPreview(pr.fs, edit)
		if err != nil {
			continue
		}
		for _, l := range p.before {
			fmt.Fprintf(pr.w, "    %s\n", pr.pal.removed.Sprint("- "+pr.expandTabs(l)))
		}
		for _, l := range p.after {
			fmt.Fprintf(pr.w, "    %s\n", pr.pal.added.Sprint("+ "+pr.expandTabs(l)))
		}
	}
}

func (pr *prettyPrinter) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", pr.opts.TabWidth))
}

// splitAtColumn делит строку перед 1-based байтовой колонкой col.
func splitAtColumn(line string, col uint32) (string, string) {
	if col <= 1 {
		return "", line
	}
	i := int(col - 1)
	if i >= len(line) {
		return line, ""
	}
	return line[:i], line[i:]
}
