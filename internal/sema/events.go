package sema

import (
	"fmt"

	"viewck/internal/source"
)

// EventKind identifies one step of a lowered function body.
type EventKind uint8

const (
	EvOpenScope EventKind = iota
	EvCloseScope
	EvDeclare
	EvUse
	// EvBeginAccess opens a region on root(Source) for dependent Binding.
	// With Edge set it also records the dependency edge Binding -> Source.
	EvBeginAccess
	// EvEndAccess ends the lifetime of dependent Binding.
	EvEndAccess
	EvConsume
	// EvReturn returns Binding as result element Result.
	EvReturn
	// EvExit leaves the function; the rest of the path is unreachable.
	EvExit
	// EvKill destroys a root binding.
	EvKill
	EvStmtEnd
	EvBranch
	EvElse
	EvJoin
)

func (k EventKind) String() string {
	switch k {
	case EvOpenScope:
		return "open_scope"
	case EvCloseScope:
		return "close_scope"
	case EvDeclare:
		return "declare"
	case EvUse:
		return "use"
	case EvBeginAccess:
		return "begin_access"
	case EvEndAccess:
		return "end_access"
	case EvConsume:
		return "consume"
	case EvReturn:
		return "return"
	case EvExit:
		return "exit"
	case EvKill:
		return "kill"
	case EvStmtEnd:
		return "stmt_end"
	case EvBranch:
		return "branch"
	case EvElse:
		return "else"
	case EvJoin:
		return "join"
	default:
		return "unknown"
	}
}

// Event is one entry of the ordered stream the checker walks.
type Event struct {
	Kind    EventKind
	Binding BindingID
	Source  BindingID
	Use     UseKind
	Access  AccessKind
	Edge    EdgeKind
	// RuntimeChecked marks accesses through dynamic fields.
	RuntimeChecked bool
	// Init marks a write that reinitialises the whole binding.
	Init   bool
	Result int
	Scope  ScopeID
	// Stmt is the innermost statement the event belongs to.
	Stmt int
	Span source.Span
	Note string
}

// Format renders the event using the binding table of its body.
func (ev *Event) Format(body *Body) string {
	name := func(id BindingID) string {
		if b := body.Binding(id); b != nil {
			return b.Short()
		}
		return "-"
	}
	var s string
	switch ev.Kind {
	case EvOpenScope, EvCloseScope:
		s = fmt.Sprintf("%s #%d", ev.Kind, ev.Scope)
	case EvDeclare, EvConsume, EvEndAccess, EvKill:
		s = fmt.Sprintf("%s %s", ev.Kind, name(ev.Binding))
	case EvUse:
		s = fmt.Sprintf("use %s %s", name(ev.Binding), ev.Use)
	case EvBeginAccess:
		if ev.Edge != EdgeNone {
			s = fmt.Sprintf("begin_access %s -> %s %s", name(ev.Binding), name(ev.Source), ev.Edge)
		} else {
			s = fmt.Sprintf("begin_access %s on %s %s", name(ev.Binding), name(ev.Source), ev.Access)
		}
		if ev.RuntimeChecked {
			s += " runtime_checked"
		}
	case EvReturn:
		s = fmt.Sprintf("return %s #%d", name(ev.Binding), ev.Result)
	case EvStmtEnd:
		s = fmt.Sprintf("stmt_end %d", ev.Stmt)
	default:
		s = ev.Kind.String()
	}
	if ev.Note != "" {
		s += " (" + ev.Note + ")"
	}
	return s
}
