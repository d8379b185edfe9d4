package diagfmt

import (
	"encoding/json"
	"io"

	"viewck/internal/diag"
	"viewck/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
	Fixes    []FixJSON     `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

// makeLocation returns nil for spans that point at no file.
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) *LocationJSON {
	f, ok := located(fs, span)
	if !ok {
		return nil
	}
	loc := &LocationJSON{
		File:      formatPath(fs, f, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// Input pairs a bag with the FileSet its spans resolve against. Directory
// checks produce one per file.
type Input struct {
	Bag     *diag.Bag
	FileSet *source.FileSet
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	return BuildDiagnosticsOutputAll([]Input{{Bag: bag, FileSet: fs}}, opts)
}

// BuildDiagnosticsOutputAll concatenates inputs in order; opts.Max caps the total.
func BuildDiagnosticsOutputAll(inputs []Input, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, in := range inputs {
		out.Dropped += in.Bag.Dropped()
		items := in.Bag.Items()
		for i := range items {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Dropped++
				continue
			}
			out.Diagnostics = append(out.Diagnostics, buildDiagnosticJSON(&items[i], in.FileSet, opts))
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

func buildDiagnosticJSON(d *diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
	}

	// тайминги живут в заметках, их показываем всегда
	includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
	if includeNotes && len(d.Notes) > 0 {
		out.Notes = make([]NoteJSON, len(d.Notes))
		for j, note := range d.Notes {
			out.Notes[j] = NoteJSON{
				Message:  note.Msg,
				Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
			}
		}
	}

	if opts.IncludeFixes && len(d.Fixes) > 0 {
		out.Fixes = make([]FixJSON, 0, len(d.Fixes))
		for _, fix := range d.Fixes {
			out.Fixes = append(out.Fixes, buildFixJSON(fix, fs, opts))
		}
	}
	return out
}

func buildFixJSON(fix diag.Fix, fs *source.FileSet, opts JSONOpts) FixJSON {
	out := FixJSON{Title: fix.Title}
	for _, edit := range fix.Edits {
		loc := makeLocation(edit.Span, fs, opts.PathMode, opts.IncludePositions)
		if loc == nil {
			continue
		}
		e := FixEditJSON{
			Location: *loc,
			NewText:  edit.NewText,
			OldText:  oldText(fs, edit.Span),
		}
		if opts.IncludePreviews {
			if preview, err := buildFixEditPreview(fs, edit); err == nil {
				e.BeforeLines = preview.before
				e.AfterLines = preview.after
			}
		}
		out.Edits = append(out.Edits, e)
	}
	return out
}

func oldText(fs *source.FileSet, span source.Span) string {
	f, ok := located(fs, span)
	if !ok || span.End < span.Start || int(span.End) > len(f.Content) {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	return JSONAll(w, []Input{{Bag: bag, FileSet: fs}}, opts)
}

func JSONAll(w io.Writer, inputs []Input, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutputAll(inputs, opts))
}
