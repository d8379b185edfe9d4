package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"viewck/internal/diag"
	"viewck/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type SarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Invocations []SarifInvocation `json:"invocations,omitempty"`
	Results     []SarifResult     `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []SarifRule `json:"rules,omitempty"`
}

type SarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription SarifMessage `json:"shortDescription"`
	FullDescription  SarifMessage `json:"fullDescription"`
}

type SarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          SarifMessage    `json:"message"`
	Locations        []SarifLocation `json:"locations,omitempty"`
	RelatedLocations []SarifLocation `json:"relatedLocations,omitempty"`
	Fixes            []SarifFix      `json:"fixes,omitempty"`
}

type SarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
	Message          *SarifMessage         `json:"message,omitempty"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

type SarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type SarifFix struct {
	Description     SarifMessage          `json:"description"`
	ArtifactChanges []SarifArtifactChange `json:"artifactChanges"`
}

type SarifArtifactChange struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Replacements     []SarifReplacement    `json:"replacements"`
}

type SarifReplacement struct {
	DeletedRegion   SarifRegion   `json:"deletedRegion"`
	InsertedContent *SarifMessage `json:"insertedContent,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// BuildSarif собирает SARIF-лог с одним run.
func BuildSarif(bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) SarifLog {
	return BuildSarifAll([]Input{{Bag: bag, FileSet: fs}}, meta)
}

// BuildSarifAll puts every input into a single run. Rules are the codes
// seen in the inputs, in ascending order.
func BuildSarifAll(inputs []Input, meta SarifRunMeta) SarifLog {
	seen := make(map[diag.Code]struct{})
	var codes []diag.Code
	total := 0
	success := true
	for _, in := range inputs {
		items := in.Bag.Items()
		total += len(items)
		if in.Bag.HasErrors() {
			success = false
		}
		for i := range items {
			if _, ok := seen[items[i].Code]; !ok {
				seen[items[i].Code] = struct{}{}
				codes = append(codes, items[i].Code)
			}
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	ruleIndex := make(map[diag.Code]int, len(codes))
	rules := make([]SarifRule, len(codes))
	for i, c := range codes {
		ruleIndex[c] = i
		rules[i] = SarifRule{
			ID:               c.ID(),
			Name:             c.Title(),
			ShortDescription: SarifMessage{Text: c.Title()},
			FullDescription:  SarifMessage{Text: c.Help()},
		}
	}

	name := meta.ToolName
	if name == "" {
		name = "viewck"
	}
	run := SarifRun{
		Tool: SarifTool{Driver: SarifDriver{
			Name:           name,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          rules,
		}},
		Results: make([]SarifResult, 0, total),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []SarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: success,
		}}
	}

	for _, in := range inputs {
		items := in.Bag.Items()
		for i := range items {
			run.Results = append(run.Results, sarifResult(&items[i], in.FileSet, ruleIndex[items[i].Code]))
		}
	}
	return SarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []SarifRun{run}}
}

func sarifResult(d *diag.Diagnostic, fs *source.FileSet, rule int) SarifResult {
	res := SarifResult{
		RuleID:    d.Code.ID(),
		RuleIndex: rule,
		Level:     sarifLevel(d.Severity),
		Message:   SarifMessage{Text: d.Message},
	}
	if loc, ok := sarifLocation(fs, d.Primary); ok {
		res.Locations = []SarifLocation{loc}
	}
	for j, note := range d.Notes {
		loc, ok := sarifLocation(fs, note.Span)
		if !ok {
			continue
		}
		loc.ID = j + 1
		loc.Message = &SarifMessage{Text: note.Msg}
		res.RelatedLocations = append(res.RelatedLocations, loc)
	}
	for _, fix := range d.Fixes {
		if sf, ok := sarifFix(fs, fix); ok {
			res.Fixes = append(res.Fixes, sf)
		}
	}
	return res
}

func sarifLocation(fs *source.FileSet, span source.Span) (SarifLocation, bool) {
	f, ok := located(fs, span)
	if !ok {
		return SarifLocation{}, false
	}
	return SarifLocation{PhysicalLocation: SarifPhysicalLocation{
		ArtifactLocation: SarifArtifactLocation{URI: f.FormatPath("relative", fs.BaseDir())},
		Region:           sarifRegion(fs, span),
	}}, true
}

func sarifRegion(fs *source.FileSet, span source.Span) SarifRegion {
	start, end := fs.Resolve(span)
	return SarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  span.Start,
		ByteLength:  span.End - span.Start,
	}
}

// sarifFix группирует правки по файлам.
func sarifFix(fs *source.FileSet, fix diag.Fix) (SarifFix, bool) {
	out := SarifFix{Description: SarifMessage{Text: fix.Title}}
	byFile := make(map[source.FileID]int)
	for _, edit := range fix.Edits {
		f, ok := located(fs, edit.Span)
		if !ok {
			continue
		}
		idx, seen := byFile[edit.Span.File]
		if !seen {
			idx = len(out.ArtifactChanges)
			byFile[edit.Span.File] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, SarifArtifactChange{
				ArtifactLocation: SarifArtifactLocation{URI: f.FormatPath("relative", fs.BaseDir())},
			})
		}
		rep := SarifReplacement{DeletedRegion: sarifRegion(fs, edit.Span)}
		if edit.NewText != "" {
			rep.InsertedContent = &SarifMessage{Text: edit.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, rep)
	}
	return out, len(out.ArtifactChanges) > 0
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	return SarifAll(w, []Input{{Bag: bag, FileSet: fs}}, meta)
}

func SarifAll(w io.Writer, inputs []Input, meta SarifRunMeta) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildSarifAll(inputs, meta))
}
