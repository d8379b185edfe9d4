package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"viewck/internal/ast"
	"viewck/internal/source"
)

// ASTNodeOutput is the JSON form of one AST node.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

type treeNode struct {
	typ      string
	kind     string
	text     string
	span     source.Span
	hasSpan  bool
	children []*treeNode
}

func (n *treeNode) add(children ...*treeNode) *treeNode {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

func leaf(typ, text string) *treeNode {
	return &treeNode{typ: typ, text: text}
}

func spanned(typ, kind string, span source.Span) *treeNode {
	return &treeNode{typ: typ, kind: kind, span: span, hasSpan: true}
}

type astTree struct {
	b *ast.Builder
}

func (t astTree) name(id source.StringID) string { return t.b.Name(id) }

func (t astTree) file(fileID ast.FileID) (*treeNode, error) {
	file := t.b.Files.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("file %d not found", fileID)
	}
	root := spanned("File", "", file.Span)
	for _, id := range file.Items {
		root.add(t.item(id))
	}
	return root, nil
}

func (t astTree) item(id ast.ItemID) *treeNode {
	if typ, ok := t.b.Items.Type(id); ok {
		return t.typeItem(typ)
	}
	if fn, ok := t.b.Items.Fn(id); ok {
		return t.fnItem(fn)
	}
	return leaf("Item", "<nil>")
}

func (t astTree) typeItem(it *ast.TypeItem) *treeNode {
	n := spanned("Type", "", it.Span)
	n.text = t.name(it.Name)
	if it.Resilient {
		n.add(leaf("Resilient", "true"))
	}
	for _, m := range it.Markers {
		n.add(leaf("Marker", "~"+t.name(m.Name)))
	}
	for _, f := range it.Fields {
		field := spanned("Field", f.Access.String(), f.Span)
		field.text = t.name(f.Name) + ": " + t.name(f.Type.Name)
		n.add(field)
	}
	return n
}

func (t astTree) fnItem(fn *ast.FnItem) *treeNode {
	n := spanned("Fn", "", fn.Span)
	n.text = t.name(fn.Name)
	if fn.IsMethod() {
		n.kind = "method"
		n.text = t.name(fn.Receiver) + "." + n.text
	}
	if len(fn.Params) > 0 {
		params := leaf("Params", "")
		for _, p := range fn.Params {
			param := spanned("Param", p.Convention.String(), p.Span)
			if p.IsSelf {
				param.text = "self"
			} else {
				param.text = t.name(p.Name) + ": " + t.name(p.Type.Name)
			}
			params.add(param)
		}
		n.add(params)
	}
	if len(fn.Results) > 0 {
		results := leaf("Results", "")
		if fn.ResultTuple {
			results.kind = "tuple"
		}
		for _, r := range fn.Results {
			res := spanned("Result", "", r.Span)
			res.text = t.name(r.Type.Name)
			if d := r.DependsOn; d != nil {
				target := "self"
				if !d.TargetSelf {
					target = t.name(d.Target)
				}
				if d.Scoped {
					target += ", scoped"
				}
				res.add(leaf("DependsOn", target))
			}
			results.add(res)
		}
		n.add(results)
	}
	if fn.Body.IsValid() {
		n.add(t.stmt(fn.Body))
	}
	return n
}

func (t astTree) stmt(id ast.StmtID) *treeNode {
	st := t.b.Stmts.Get(id)
	if st == nil {
		return leaf("Stmt", "<nil>")
	}
	switch st.Kind {
	case ast.StmtBlock:
		n := spanned("Block", "", st.Span)
		if data, ok := t.b.Stmts.Block(id); ok {
			for _, s := range data.Stmts {
				n.add(t.stmt(s))
			}
		}
		return n
	case ast.StmtLet:
		n := spanned("Let", "let", st.Span)
		if data, ok := t.b.Stmts.Let(id); ok {
			if data.Mutable {
				n.kind = "var"
			}
			names := make([]string, len(data.Names))
			for i, bnd := range data.Names {
				names[i] = t.name(bnd.Name)
			}
			n.text = strings.Join(names, ", ")
			if data.Tuple {
				n.text = "(" + n.text + ")"
			}
			n.add(t.expr(data.Value))
		}
		return n
	case ast.StmtDrop:
		n := spanned("Drop", "", st.Span)
		if data, ok := t.b.Stmts.Drop(id); ok {
			n.text = t.name(data.Name)
		}
		return n
	case ast.StmtReturn:
		n := spanned("Return", "", st.Span)
		if data, ok := t.b.Stmts.Return(id); ok && data.Value.IsValid() {
			n.add(t.expr(data.Value))
		}
		return n
	case ast.StmtIf:
		n := spanned("If", "", st.Span)
		if data, ok := t.b.Stmts.If(id); ok {
			n.add(leaf("Cond", "").add(t.expr(data.Cond)))
			n.add(leaf("Then", "").add(t.stmt(data.Then)))
			if data.Else.IsValid() {
				n.add(leaf("Else", "").add(t.stmt(data.Else)))
			}
		}
		return n
	case ast.StmtExpr:
		n := spanned("ExprStmt", "", st.Span)
		if data, ok := t.b.Stmts.Expr(id); ok {
			n.add(t.expr(data.Expr))
		}
		return n
	case ast.StmtAssign:
		n := spanned("Assign", "", st.Span)
		if data, ok := t.b.Stmts.Assign(id); ok {
			n.add(leaf("Target", "").add(t.expr(data.Target)))
			n.add(leaf("Value", "").add(t.expr(data.Value)))
		}
		return n
	}
	return spanned("Stmt", "unknown", st.Span)
}

func (t astTree) expr(id ast.ExprID) *treeNode {
	if !id.IsValid() {
		return nil
	}
	e := t.b.Exprs.Get(id)
	if e == nil {
		return leaf("Expr", "<nil>")
	}
	switch e.Kind {
	case ast.ExprIdent:
		n := spanned("Ident", "", e.Span)
		if data, ok := t.b.Exprs.Ident(id); ok {
			n.text = t.name(data.Name)
		}
		return n
	case ast.ExprSelf:
		n := spanned("Self", "", e.Span)
		n.text = "self"
		return n
	case ast.ExprLit:
		n := spanned("Literal", "", e.Span)
		if data, ok := t.b.Exprs.Literal(id); ok {
			switch data.Kind {
			case ast.LitTrue:
				n.kind, n.text = "bool", "true"
			case ast.LitFalse:
				n.kind, n.text = "bool", "false"
			default:
				n.kind, n.text = "int", t.name(data.Value)
			}
		}
		return n
	case ast.ExprGroup:
		n := spanned("Group", "", e.Span)
		if data, ok := t.b.Exprs.Group(id); ok {
			n.add(t.expr(data.Inner))
		}
		return n
	case ast.ExprMember:
		n := spanned("Member", "", e.Span)
		if data, ok := t.b.Exprs.Member(id); ok {
			n.text = t.name(data.Field)
			n.add(t.expr(data.Target))
		}
		return n
	case ast.ExprCall:
		n := spanned("Call", "", e.Span)
		if data, ok := t.b.Exprs.Call(id); ok {
			n.add(leaf("Callee", "").add(t.expr(data.Callee)))
			if len(data.Args) > 0 {
				args := leaf("Args", "")
				for _, a := range data.Args {
					args.add(t.expr(a))
				}
				n.add(args)
			}
		}
		return n
	case ast.ExprTuple:
		n := spanned("Tuple", "", e.Span)
		if data, ok := t.b.Exprs.Tuple(id); ok {
			for _, el := range data.Elems {
				n.add(t.expr(el))
			}
		}
		return n
	}
	return spanned("Expr", "unknown", e.Span)
}

func (n *treeNode) label(fs *source.FileSet) string {
	var b strings.Builder
	b.WriteString(n.typ)
	if n.kind != "" {
		b.WriteString(" [" + n.kind + "]")
	}
	if n.text != "" {
		b.WriteString(": " + n.text)
	}
	if n.hasSpan {
		b.WriteString(" (span: " + formatSpan(n.span, fs) + ")")
	}
	return b.String()
}

func writeTree(w io.Writer, n *treeNode, fs *source.FileSet, prefix string, last, root bool) error {
	connector := "├─ "
	childPrefix := prefix + "│  "
	if last {
		connector = "└─ "
		childPrefix = prefix + "   "
	}
	if root {
		connector, childPrefix = "", ""
	}
	if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, connector, n.label(fs)); err != nil {
		return err
	}
	for i, c := range n.children {
		if err := writeTree(w, c, fs, childPrefix, i == len(n.children)-1, false); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTPretty печатает дерево файла. fs может быть nil, тогда
// позиции выводятся байтовыми смещениями.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := astTree{b: builder}.file(fileID)
	if err != nil {
		return err
	}
	if fs != nil {
		if f := fs.Get(root.span.File); f != nil {
			root.text = formatPath(fs, f, PathModeAuto)
		}
	}
	return writeTree(w, root, fs, "", true, true)
}

func (n *treeNode) output() ASTNodeOutput {
	out := ASTNodeOutput{Type: n.typ, Kind: n.kind, Span: n.span, Text: n.text}
	for _, c := range n.children {
		out.Children = append(out.Children, c.output())
	}
	return out
}

func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	root, err := astTree{b: builder}.file(fileID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(root.output())
}
