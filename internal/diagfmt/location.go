package diagfmt

import (
	"fmt"

	"viewck/internal/source"
)

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	if f == nil {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// formatSpan renders "startLine:startCol-endLine:endCol" when fs is known,
// "span(start-end)" otherwise.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

// located reports whether span points into a registered file. Diagnostics
// such as timings carry a zero span.
func located(fs *source.FileSet, span source.Span) (*source.File, bool) {
	if fs == nil || span == (source.Span{}) {
		return nil, false
	}
	f := fs.Get(span.File)
	return f, f != nil
}
