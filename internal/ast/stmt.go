package ast

import (
	"viewck/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtDrop
	StmtReturn
	StmtIf
	StmtExpr
	StmtAssign
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockData struct {
	Stmts []StmtID
	Close source.Span // позиция '}'
}

type Binder struct {
	Name source.StringID
	Span source.Span
}

type LetData struct {
	Mutable     bool // var
	KeywordSpan source.Span
	Names       []Binder
	Tuple       bool
	Value       ExprID
}

type DropData struct {
	Name     source.StringID
	NameSpan source.Span
}

type ReturnData struct {
	Value ExprID
}

type IfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID, блок или вложенный if
}

type ExprStmtData struct {
	Expr ExprID
}

type AssignData struct {
	Target ExprID
	Value  ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockData]
	Lets    *Arena[LetData]
	Drops   *Arena[DropData]
	Returns *Arena[ReturnData]
	Ifs     *Arena[IfData]
	Exprs   *Arena[ExprStmtData]
	Assigns *Arena[AssignData]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockData](capHint >> 2),
		Lets:    NewArena[LetData](capHint),
		Drops:   NewArena[DropData](capHint >> 3),
		Returns: NewArena[ReturnData](capHint >> 2),
		Ifs:     NewArena[IfData](capHint >> 3),
		Exprs:   NewArena[ExprStmtData](capHint),
		Assigns: NewArena[AssignData](capHint >> 2),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID, closeSpan source.Span) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockData{Stmts: stmts, Close: closeSpan}))
}

func (s *Stmts) Block(id StmtID) (*BlockData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewLet(span source.Span, data LetData) StmtID {
	return s.new(StmtLet, span, s.Lets.Allocate(data))
}

func (s *Stmts) Let(id StmtID) (*LetData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtLet {
		return nil, false
	}
	return s.Lets.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewDrop(span source.Span, name source.StringID, nameSpan source.Span) StmtID {
	return s.new(StmtDrop, span, s.Drops.Allocate(DropData{Name: name, NameSpan: nameSpan}))
}

func (s *Stmts) Drop(id StmtID) (*DropData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtDrop {
		return nil, false
	}
	return s.Drops.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnData{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfData{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) (*IfData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmtData{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmtData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignData{Target: target, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*AssignData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtAssign {
		return nil, false
	}
	return s.Assigns.Get(uint32(st.Payload)), true
}
