package diag

import (
	"fmt"
	"strconv"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005

	// Парсерные
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2006
	SynUnclosedBrace      Code = 2007
	SynExpectSemicolon    Code = 2012
	SynUnexpectedTopLevel Code = 2101
	SynExpectIdentifier   Code = 2102
	SynExpectType         Code = 2202
	SynExpectExpression   Code = 2203
	SynExpectColon        Code = 2204
	SynUnexpectedModifier Code = 2205
	SynInvalidAssignLHS   Code = 2206
	SynUnknownMarker      Code = 2207

	// Семантические: таблица объявлений
	SemaInfo            Code = 3000
	SemaDuplicateSymbol Code = 3002
	SemaUnresolvedName  Code = 3005
	SemaUnresolvedType  Code = 3006
	SemaArityMismatch   Code = 3007
	SemaNoSuchMember    Code = 3008

	// Семантические: зависимости и эксклюзивность
	SemaMissingDependencySource Code = 3100
	SemaInvalidConventionTarget Code = 3101
	SemaAmbiguousDependency     Code = 3102
	SemaExclusivityViolation    Code = 3103
	SemaDanglingDependency      Code = 3104
	SemaUseAfterConsume         Code = 3105
	SemaRuntimeCheckedAccess    Code = 3106
	SemaDeclarationNotChecked   Code = 3107

	// I/O
	IOLoadFileError Code = 4001

	// Проект
	ProjInfo            Code = 5000
	ProjInvalidManifest Code = 5001
	ProjToolTooOld      Code = 5002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Bad number",
	LexTokenTooLong:             "Token too long",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBrace:            "Unclosed brace",
	SynExpectSemicolon:          "Expect semicolon",
	SynUnexpectedTopLevel:       "Unexpected top-level item",
	SynExpectIdentifier:         "Expect identifier",
	SynExpectType:               "Expect type",
	SynExpectExpression:         "Expect expression",
	SynExpectColon:              "Expect colon",
	SynUnexpectedModifier:       "Unexpected modifier",
	SynInvalidAssignLHS:         "Invalid assignment target",
	SynUnknownMarker:            "Unknown type marker",
	SemaInfo:                    "Semantic information",
	SemaDuplicateSymbol:         "Duplicate declaration",
	SemaUnresolvedName:          "Unresolved name",
	SemaUnresolvedType:          "Unresolved type",
	SemaArityMismatch:           "Argument count mismatch",
	SemaNoSuchMember:            "No such member",
	SemaMissingDependencySource: "Missing dependency source",
	SemaInvalidConventionTarget: "Invalid convention target",
	SemaAmbiguousDependency:     "Ambiguous or missing dependency",
	SemaExclusivityViolation:    "Exclusivity violation",
	SemaDanglingDependency:      "Dangling dependency risk",
	SemaUseAfterConsume:         "Use after consume",
	SemaRuntimeCheckedAccess:    "Access relies on runtime exclusivity checks",
	SemaDeclarationNotChecked:   "Body not checked",
	IOLoadFileError:             "I/O load file error",
	ProjInfo:                    "Project information",
	ProjInvalidManifest:         "Invalid manifest",
	ProjToolTooOld:              "Tool version does not satisfy manifest",
	ObsInfo:                     "Observability information",
	ObsTimings:                  "Pipeline timings",
}

// codeHelp carries the long form printed by `viewck explain`.
var codeHelp = map[Code]string{
	SemaMissingDependencySource: `A non-escapable value must be derived from something that outlives it.
The function (or constructor) produces a view but has no parameter or
receiver the view could depend on. Add a non-escapable or non-copyable
parameter, or mark the source with dependsOn(name).`,
	SemaInvalidConventionTarget: `The dependency is legal only for some conventions. A consuming
escapable source cannot back a view: the value is gone when the call
returns. A mutating parameter needs an lvalue argument: a var local or a
mutating parameter, never a let binding or a temporary.`,
	SemaAmbiguousDependency: `Several parameters could back the returned view, or dependsOn names
something that is not a parameter. Name the source explicitly with
dependsOn(name).`,
	SemaExclusivityViolation: `A use conflicts with an access region kept open by a live view. Reads
conflict with exclusive (mutating) regions; writes, mutating calls and
consumes conflict with every open region on the same root.`,
	SemaDanglingDependency: `A view may outlive the value it depends on: the root goes out of scope
while a dependent is still alive, the view is returned but depends on a
local or a temporary, or the view was taken over a path that cannot be
borrowed in place (a computed property or a resilient stored field).`,
	SemaUseAfterConsume: `The binding was consumed (passed to a consuming parameter or dropped)
and is used again afterwards.`,
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Help returns the long description, falling back to the title.
func (c Code) Help() string {
	if h, ok := codeHelp[c]; ok {
		return h
	}
	return c.Title()
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode accepts "SEM3103" or a bare "3103".
func ParseCode(s string) (Code, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimLeft(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return UnknownCode, false
	}
	c := Code(n)
	if _, ok := codeDescription[c]; !ok {
		return UnknownCode, false
	}
	return c, true
}
