package symbols

import (
	"fmt"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/source"
)

// ResolveOptions controls a resolve pass for a single AST file.
type ResolveOptions struct {
	Table    *Table
	Hints    Hints
	Reporter diag.Reporter
}

// Result captures resolve artefacts for one file.
type Result struct {
	Table *Table
	File  ast.FileID
	// Funcs lists declared functions in source order.
	Funcs []FuncID
	// ItemFuncs maps fn items to their entries; duplicates are absent.
	ItemFuncs map[ast.ItemID]FuncID
}

// ResolveFile declares every type and function of the file. Types are
// declared first so that signatures may refer to types declared later.
func ResolveFile(builder *ast.Builder, fileID ast.FileID, opts ResolveOptions) Result {
	table := opts.Table
	if table == nil {
		table = NewTable(opts.Hints, builder.StringsInterner)
	}
	result := Result{
		Table:     table,
		File:      fileID,
		ItemFuncs: make(map[ast.ItemID]FuncID),
	}
	file := builder.Files.Get(fileID)
	if file == nil {
		return result
	}

	fr := fileResolver{
		builder:  builder,
		table:    table,
		reporter: opts.Reporter,
		result:   &result,
		declared: make(map[ast.ItemID]TypeID),
		names:    make(map[source.StringID]source.Span),
	}
	for _, itemID := range file.Items {
		if typeItem, ok := builder.Items.Type(itemID); ok {
			fr.declareType(itemID, typeItem)
		}
	}
	for _, itemID := range file.Items {
		if typeItem, ok := builder.Items.Type(itemID); ok {
			fr.fillType(itemID, typeItem)
		}
	}
	for _, itemID := range file.Items {
		if fnItem, ok := builder.Items.Fn(itemID); ok {
			fr.declareFn(itemID, fnItem)
		}
	}
	return result
}

type fileResolver struct {
	builder  *ast.Builder
	table    *Table
	reporter diag.Reporter
	result   *Result
	declared map[ast.ItemID]TypeID
	// names holds top-level names: types and free functions share one namespace.
	names map[source.StringID]source.Span
}

func (fr *fileResolver) name(id source.StringID) string {
	return fr.builder.Name(id)
}

func (fr *fileResolver) declareType(itemID ast.ItemID, typeItem *ast.TypeItem) {
	if existing, ok := fr.table.LookupType(typeItem.Name); ok {
		prev := fr.table.Type(existing)
		fr.reportDuplicate(typeItem.Name, typeItem.NameSpan, prev.Span, prev.Builtin)
		return
	}
	fr.names[typeItem.Name] = typeItem.NameSpan
	ty := Type{
		Name:      typeItem.Name,
		Span:      typeItem.NameSpan,
		Item:      itemID,
		Resilient: typeItem.Resilient,
	}
	// маркеры нужны до полей: поле может ссылаться на тип, объявленный ниже
	for _, m := range typeItem.Markers {
		switch fr.name(m.Name) {
		case "Escapable":
			ty.NonEscapable = true
		case "Copyable":
			ty.NonCopyable = true
		}
	}
	fr.declared[itemID] = fr.table.AddType(ty)
}

func (fr *fileResolver) fillType(itemID ast.ItemID, typeItem *ast.TypeItem) {
	id, ok := fr.declared[itemID]
	if !ok {
		return
	}
	nonEscapable := fr.table.Type(id).NonEscapable

	fields := make([]Field, 0, len(typeItem.Fields))
	seen := make(map[source.StringID]source.Span, len(typeItem.Fields))
	for _, f := range typeItem.Fields {
		if prev, dup := seen[f.Name]; dup {
			fr.reportDuplicate(f.Name, f.NameSpan, prev, false)
			continue
		}
		seen[f.Name] = f.NameSpan
		fieldType, ok := fr.resolveTypeRef(f.Type)
		if !ok {
			continue
		}
		if !nonEscapable && fr.table.Type(fieldType).NonEscapable {
			msg := fmt.Sprintf("escapable type '%s' cannot store non-escapable field '%s'",
				fr.name(typeItem.Name), fr.name(f.Name))
			diag.ReportError(fr.reporter, diag.SemaInvalidConventionTarget, f.Span, msg).
				WithFix("mark the type ~Escapable", diag.FixEdit{
					Span:    source.Span{File: typeItem.NameSpan.File, Start: typeItem.NameSpan.End, End: typeItem.NameSpan.End},
					NewText: ": ~Escapable",
				}).
				Emit()
			continue
		}
		fields = append(fields, Field{Name: f.Name, NameSpan: f.NameSpan, Type: fieldType, Access: f.Access})
	}

	fr.table.Type(id).Fields = fields
}

func (fr *fileResolver) declareFn(itemID ast.ItemID, fnItem *ast.FnItem) {
	fn := Func{
		Name:     fnItem.Name,
		NameSpan: fnItem.NameSpan,
		Item:     itemID,
		Tuple:    fnItem.ResultTuple,
		Body:     fnItem.Body,
		Span:     fnItem.Span,
	}

	if fnItem.IsMethod() {
		recv, ok := fr.table.LookupType(fnItem.Receiver)
		if !ok {
			fr.reportUnresolvedType(fnItem.Receiver, fnItem.ReceiverSpan)
			return
		}
		if prevID, dup := fr.table.LookupMethod(recv, fnItem.Name); dup {
			fr.reportDuplicate(fnItem.Name, fnItem.NameSpan, fr.table.Func(prevID).NameSpan, false)
			return
		}
		fn.Receiver = recv
	} else {
		if prev, dup := fr.names[fnItem.Name]; dup {
			fr.reportDuplicate(fnItem.Name, fnItem.NameSpan, prev, false)
			return
		}
		if tid, ok := fr.table.LookupType(fnItem.Name); ok && fr.table.Type(tid).Builtin {
			fr.reportDuplicate(fnItem.Name, fnItem.NameSpan, source.Span{}, true)
			return
		}
		fr.names[fnItem.Name] = fnItem.NameSpan
	}

	seen := make(map[source.StringID]source.Span, len(fnItem.Params))
	for _, p := range fnItem.Params {
		param := Param{
			Name:       p.Name,
			Span:       p.Span,
			Convention: p.Convention,
			ConvSpan:   p.ConvSpan,
			IsSelf:     p.IsSelf,
		}
		if p.IsSelf {
			param.Type = fn.Receiver
		} else {
			if prev, dup := seen[p.Name]; dup {
				fr.reportDuplicate(p.Name, p.NameSpan, prev, false)
				fn.Broken = true
			}
			seen[p.Name] = p.NameSpan
			ty, ok := fr.resolveTypeRef(p.Type)
			if !ok {
				fn.Broken = true
			}
			param.Type = ty
		}
		fn.Params = append(fn.Params, param)
	}
	for _, r := range fnItem.Results {
		ty, ok := fr.resolveTypeRef(r.Type)
		if !ok {
			fn.Broken = true
		}
		fn.Results = append(fn.Results, FuncResult{Type: ty, Span: r.Span, DependsOn: r.DependsOn})
	}

	id := fr.table.AddFunc(fn)
	fr.result.Funcs = append(fr.result.Funcs, id)
	fr.result.ItemFuncs[itemID] = id
}

func (fr *fileResolver) resolveTypeRef(ref ast.TypeRef) (TypeID, bool) {
	id, ok := fr.table.LookupType(ref.Name)
	if !ok {
		fr.reportUnresolvedType(ref.Name, ref.Span)
		return NoTypeID, false
	}
	return id, true
}

func (fr *fileResolver) reportUnresolvedType(name source.StringID, span source.Span) {
	msg := fmt.Sprintf("unknown type '%s'", fr.name(name))
	diag.ReportError(fr.reporter, diag.SemaUnresolvedType, span, msg).Emit()
}

func (fr *fileResolver) reportDuplicate(name source.StringID, span, prevSpan source.Span, builtin bool) {
	msg := fmt.Sprintf("duplicate declaration of '%s'", fr.name(name))
	if builtin {
		msg = fmt.Sprintf("'%s' is a built-in type", fr.name(name))
	}
	b := diag.ReportError(fr.reporter, diag.SemaDuplicateSymbol, span, msg)
	if prevSpan != (source.Span{}) {
		b.WithNote(prevSpan, "previous declaration here")
	}
	b.Emit()
}
