package sema

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"viewck/internal/source"
)

// DepsDump is the serialisable view of the dependency graph of a file.
type DepsDump struct {
	Funcs []FuncDump `yaml:"funcs" json:"funcs"`
}

type FuncDump struct {
	Name    string       `yaml:"name" json:"name"`
	Checked bool         `yaml:"checked" json:"checked"`
	Results []ResultDump `yaml:"results,omitempty" json:"results,omitempty"`
	Deps    []DepDump    `yaml:"deps,omitempty" json:"deps,omitempty"`
}

type ResultDump struct {
	Index    int    `yaml:"index" json:"index"`
	Type     string `yaml:"type" json:"type"`
	Kind     string `yaml:"kind" json:"kind"`
	Source   string `yaml:"source,omitempty" json:"source,omitempty"`
	Edge     string `yaml:"edge,omitempty" json:"edge,omitempty"`
	Explicit bool   `yaml:"explicit,omitempty" json:"explicit,omitempty"`
}

type DepDump struct {
	At             string `yaml:"at" json:"at"`
	Dependent      string `yaml:"dependent" json:"dependent"`
	Source         string `yaml:"source" json:"source"`
	Root           string `yaml:"root" json:"root"`
	Edge           string `yaml:"edge" json:"edge"`
	RuntimeChecked bool   `yaml:"runtime_checked,omitempty" json:"runtime_checked,omitempty"`
	Via            string `yaml:"via,omitempty" json:"via,omitempty"`
}

// BuildDepsDump converts a result into its dump form. fs may be nil, then
// positions are printed as byte offsets.
func BuildDepsDump(fs *source.FileSet, r *Result) DepsDump {
	pos := func(sp source.Span) string {
		if fs == nil {
			return sp.String()
		}
		start, _ := fs.Resolve(sp)
		return fmt.Sprintf("%d:%d", start.Line, start.Col)
	}
	out := DepsDump{Funcs: make([]FuncDump, 0, len(r.Funcs))}
	for i := range r.Funcs {
		fr := &r.Funcs[i]
		fd := FuncDump{Name: fr.Name, Checked: fr.Checked}
		for j, rs := range fr.Signature.Results {
			rd := ResultDump{Index: j, Type: r.Table.TypeName(rs.Type), Kind: rs.TypeKind.String()}
			if rs.Edge != nil {
				rd.Source = fr.Signature.Params[rs.Edge.Param].Name
				rd.Edge = rs.Edge.Kind.String()
				rd.Explicit = rs.Edge.Explicit
			}
			fd.Results = append(fd.Results, rd)
		}
		if fr.Body != nil {
			for _, d := range fr.Body.Deps {
				fd.Deps = append(fd.Deps, DepDump{
					At:             pos(d.Span),
					Dependent:      fr.Body.Binding(d.Dependent).Short(),
					Source:         fr.Body.Binding(d.Source).Short(),
					Root:           fr.Body.Binding(d.Root).Short(),
					Edge:           d.Kind.String(),
					RuntimeChecked: d.RuntimeChecked,
					Via:            d.Via,
				})
			}
		}
		out.Funcs = append(out.Funcs, fd)
	}
	return out
}

// WriteYAML writes the dump as YAML.
func (d DepsDump) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode deps: %w", err)
	}
	return enc.Close()
}

// WriteText writes one line per edge, grouped by function.
func (d DepsDump) WriteText(w io.Writer) error {
	var sb strings.Builder
	for _, fd := range d.Funcs {
		fmt.Fprintf(&sb, "fn %s", fd.Name)
		if !fd.Checked {
			sb.WriteString(" (not checked)")
		}
		sb.WriteByte('\n')
		for _, rd := range fd.Results {
			fmt.Fprintf(&sb, "  result #%d %s %s", rd.Index, rd.Type, rd.Kind)
			if rd.Source != "" {
				fmt.Fprintf(&sb, " <- %s %s", rd.Source, rd.Edge)
			}
			sb.WriteByte('\n')
		}
		for _, dd := range fd.Deps {
			fmt.Fprintf(&sb, "  %s %s -> %s %s", dd.At, dd.Dependent, dd.Source, dd.Edge)
			if dd.Root != dd.Source {
				fmt.Fprintf(&sb, " (root %s)", dd.Root)
			}
			if dd.RuntimeChecked {
				sb.WriteString(" runtime_checked")
			}
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteEvents prints the lowered event stream of every checked function.
// Events are present only when the check ran with RecordEvents.
func WriteEvents(w io.Writer, r *Result) error {
	var sb strings.Builder
	for i := range r.Funcs {
		fr := &r.Funcs[i]
		if fr.Body == nil {
			continue
		}
		fmt.Fprintf(&sb, "fn %s\n", fr.Name)
		for j := range fr.Body.Events {
			fmt.Fprintf(&sb, "  %3d %s\n", j, fr.Body.Events[j].Format(fr.Body))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
