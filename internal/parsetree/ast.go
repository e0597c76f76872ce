package parsetree

import "basiclower/internal/symtab"

// Pos is the minimal location every node carries, used to build
// ir.SourceLoc / berrors.SourceLoc without parsetree depending on
// either package.
type Pos struct {
	Line   int
	Column int
	Text   string // source excerpt for error reporting
}

// ---- expressions ----

// Expr is a node that produces a value. Accept returns the symbol
// table id holding that value once lowering has emitted whatever
// instructions were needed — this is the concrete, statically typed
// form of spec.md §6's "nodeToInstruction" binding.
type Expr interface {
	Pos() Pos
	Accept(v ExprVisitor) symtab.EntryID
}

// NumberLiteral is a numeric constant as written in source: Text is
// the raw digits (without sigil), Base is 8/10/16, Suffix is the
// trailing '!'/'#'/'@'/'&' type-forcing sigil (0 if absent), and
// IsFloat records whether the source spelling itself carries a decimal
// point or exponent (always false for a non-decimal base).
type NumberLiteral struct {
	At      Pos
	Text    string
	Base    int
	Suffix  byte
	IsFloat bool
}

func (n *NumberLiteral) Pos() Pos { return n.At }
func (n *NumberLiteral) Accept(v ExprVisitor) symtab.EntryID { return v.VisitNumberLiteral(n) }

// StringLiteral is a quoted string constant.
type StringLiteral struct {
	At    Pos
	Value string
}

func (n *StringLiteral) Pos() Pos { return n.At }
func (n *StringLiteral) Accept(v ExprVisitor) symtab.EntryID { return v.VisitStringLiteral(n) }

// VariableRef is a bare name reference. Indices is nil for a scalar
// reference and non-nil (possibly empty, for a 0-subscript error case)
// for an array subscript.
type VariableRef struct {
	At      Pos
	Name    string
	Suffix  byte
	Indices []Expr
}

func (n *VariableRef) Pos() Pos { return n.At }
func (n *VariableRef) Accept(v ExprVisitor) symtab.EntryID { return v.VisitVariableRef(n) }

// UDFCall invokes a DEF FN function.
type UDFCall struct {
	At     Pos
	Name   string
	Suffix byte
	Args   []Expr
}

func (n *UDFCall) Pos() Pos { return n.At }
func (n *UDFCall) Accept(v ExprVisitor) symtab.EntryID { return v.VisitUDFCall(n) }

// FuncCall invokes a built-in function (ABS, MID$, DICT_GET, ...)
// rather than a user DEF FN. Its name is resolved against a static
// table at lowering time, never at parse time, so parsetree stays
// ignorant of which names are built in.
type FuncCall struct {
	At   Pos
	Name string
	Args []Expr
}

func (n *FuncCall) Pos() Pos { return n.At }
func (n *FuncCall) Accept(v ExprVisitor) symtab.EntryID { return v.VisitFuncCall(n) }

// Binary covers arithmetic, comparison, and logical/bitwise binary
// operators: "+", "-", "*", "/", "\\" (integer div), "^", "MOD",
// "=", "<>", "<", "<=", ">", ">=", "AND", "OR", "XOR", "EQV", "IMP",
// "<<", ">>". All are eager (no short-circuit) per spec.md §4.3.
type Binary struct {
	At          Pos
	Operator    string
	Left, Right Expr
}

func (n *Binary) Pos() Pos { return n.At }
func (n *Binary) Accept(v ExprVisitor) symtab.EntryID { return v.VisitBinary(n) }

// Unary covers "-" (negate) and "NOT".
type Unary struct {
	At       Pos
	Operator string
	Operand  Expr
}

func (n *Unary) Pos() Pos { return n.At }
func (n *Unary) Accept(v ExprVisitor) symtab.EntryID { return v.VisitUnary(n) }

// ExprVisitor is implemented by the lowering pass.
type ExprVisitor interface {
	VisitNumberLiteral(n *NumberLiteral) symtab.EntryID
	VisitStringLiteral(n *StringLiteral) symtab.EntryID
	VisitVariableRef(n *VariableRef) symtab.EntryID
	VisitUDFCall(n *UDFCall) symtab.EntryID
	VisitFuncCall(n *FuncCall) symtab.EntryID
	VisitBinary(n *Binary) symtab.EntryID
	VisitUnary(n *Unary) symtab.EntryID
}

// ---- statements ----

// Stmt is a node with no value of its own; lowering it only emits
// instructions / mutates the symbol table.
type Stmt interface {
	Pos() Pos
	Accept(v StmtVisitor)
}

type LetStmt struct {
	At      Pos
	Name    string
	Suffix  byte
	Indices []Expr // non-nil => assigning through an array reference
	Value   Expr
}

func (n *LetStmt) Pos() Pos { return n.At }
func (n *LetStmt) Accept(v StmtVisitor) { v.VisitLet(n) }

type PrintItem struct {
	Value             Expr
	SuppressSeparator bool // trailing ';' after this item
}

type PrintStmt struct {
	At         Pos
	Items      []PrintItem
	Using      Expr // nil unless PRINT USING
	FileNumber Expr // nil => stdout
}

func (n *PrintStmt) Pos() Pos { return n.At }
func (n *PrintStmt) Accept(v StmtVisitor) { v.VisitPrint(n) }

type WriteStmt struct {
	At         Pos
	Items      []Expr
	FileNumber Expr
}

func (n *WriteStmt) Pos() Pos { return n.At }
func (n *WriteStmt) Accept(v StmtVisitor) { v.VisitWrite(n) }

// IfInline is the single-line `IF expr THEN stmts [ELSE stmts]` form,
// fully delimited by the time the (out-of-scope) grammar hands it over.
type IfInline struct {
	At         Pos
	Cond       Expr
	Then, Else []Stmt
}

func (n *IfInline) Pos() Pos { return n.At }
func (n *IfInline) Accept(v StmtVisitor) { v.VisitIfInline(n) }

// IfThenBegin/ElseBegin/EndIf are the flat markers of the multi-line
// `IF expr THEN BEGIN ... [ELSE BEGIN ...] END IF` form. Lowering
// matches them with an explicit stack (spec.md §4.3), which is also
// where MISMATCHED_ELSEBEGIN / MISMATCHED_ENDIF are detected — the
// grammar does not pre-nest them, by design, mirroring how a line-
// oriented BASIC statement grammar actually has to handle them.
type IfThenBegin struct {
	At   Pos
	Cond Expr
}

func (n *IfThenBegin) Pos() Pos { return n.At }
func (n *IfThenBegin) Accept(v StmtVisitor) { v.VisitIfThenBegin(n) }

type ElseBegin struct{ At Pos }

func (n *ElseBegin) Pos() Pos { return n.At }
func (n *ElseBegin) Accept(v StmtVisitor) { v.VisitElseBegin(n) }

type EndIf struct{ At Pos }

func (n *EndIf) Pos() Pos { return n.At }
func (n *EndIf) Accept(v StmtVisitor) { v.VisitEndIf(n) }

type While struct {
	At   Pos
	Cond Expr
}

func (n *While) Pos() Pos { return n.At }
func (n *While) Accept(v StmtVisitor) { v.VisitWhile(n) }

type Wend struct{ At Pos }

func (n *Wend) Pos() Pos { return n.At }
func (n *Wend) Accept(v StmtVisitor) { v.VisitWend(n) }

type For struct {
	At         Pos
	Var        string
	Suffix     byte
	Init       Expr
	End        Expr
	Step       Expr // nil => default 1
}

func (n *For) Pos() Pos { return n.At }
func (n *For) Accept(v StmtVisitor) { v.VisitFor(n) }

type NextVar struct {
	Name   string
	Suffix byte
}

type Next struct {
	At   Pos
	Vars []NextVar // empty => bare NEXT, closes the innermost FOR
}

func (n *Next) Pos() Pos { return n.At }
func (n *Next) Accept(v StmtVisitor) { v.VisitNext(n) }

// GotoTarget names a branch target either by BASIC line number or by
// string label; exactly one of HasLine/Label is meaningful.
type GotoTarget struct {
	HasLine bool
	Line    int
	Label   string
}

type Gosub struct {
	At     Pos
	Target GotoTarget
}

func (n *Gosub) Pos() Pos { return n.At }
func (n *Gosub) Accept(v StmtVisitor) { v.VisitGosub(n) }

type Return struct {
	At       Pos
	HasLine  bool
	Line     int
}

func (n *Return) Pos() Pos { return n.At }
func (n *Return) Accept(v StmtVisitor) { v.VisitReturn(n) }

type Goto struct {
	At     Pos
	Target GotoTarget
}

func (n *Goto) Pos() Pos { return n.At }
func (n *Goto) Accept(v StmtVisitor) { v.VisitGoto(n) }

type Param struct {
	Name   string
	Suffix byte
}

type DefFn struct {
	At     Pos
	Name   string
	Suffix byte
	Params []Param
	Body   Expr
}

func (n *DefFn) Pos() Pos { return n.At }
func (n *DefFn) Accept(v StmtVisitor) { v.VisitDefFn(n) }

type Dim struct {
	At     Pos
	Name   string
	Suffix byte
	Dims   []Expr
}

func (n *Dim) Pos() Pos { return n.At }
func (n *Dim) Accept(v StmtVisitor) { v.VisitDim(n) }

type DefType struct {
	At   Pos
	From byte
	To   byte
	Type symtab.DataType
}

func (n *DefType) Pos() Pos { return n.At }
func (n *DefType) Accept(v StmtVisitor) { v.VisitDefType(n) }

type Open struct {
	At         Pos
	FileName   Expr
	FileNumber Expr
	Mode       string // INPUT/OUTPUT/APPEND/RANDOM/BINARY
	Access     string
	Lock       string
	RecordLen  Expr // nil if absent
}

func (n *Open) Pos() Pos { return n.At }
func (n *Open) Accept(v StmtVisitor) { v.VisitOpen(n) }

type Close struct {
	At          Pos
	FileNumbers []Expr // empty => CLOSE_ALL
}

func (n *Close) Pos() Pos { return n.At }
func (n *Close) Accept(v StmtVisitor) { v.VisitClose(n) }

type FieldPart struct {
	Var Expr // must be a VariableRef
	Len Expr
}

type Field struct {
	At         Pos
	FileNumber Expr
	Parts      []FieldPart
}

func (n *Field) Pos() Pos { return n.At }
func (n *Field) Accept(v StmtVisitor) { v.VisitField(n) }

type Get struct {
	At         Pos
	FileNumber Expr
	Record     Expr // nil if absent
	Target     Expr // VariableRef
}

func (n *Get) Pos() Pos { return n.At }
func (n *Get) Accept(v StmtVisitor) { v.VisitGet(n) }

type Put struct {
	At         Pos
	FileNumber Expr
	Record     Expr
	Source     Expr
}

func (n *Put) Pos() Pos { return n.At }
func (n *Put) Accept(v StmtVisitor) { v.VisitPut(n) }

// StmtVisitor is implemented by the lowering pass.
type StmtVisitor interface {
	VisitLet(n *LetStmt)
	VisitPrint(n *PrintStmt)
	VisitWrite(n *WriteStmt)
	VisitIfInline(n *IfInline)
	VisitIfThenBegin(n *IfThenBegin)
	VisitElseBegin(n *ElseBegin)
	VisitEndIf(n *EndIf)
	VisitWhile(n *While)
	VisitWend(n *Wend)
	VisitFor(n *For)
	VisitNext(n *Next)
	VisitGosub(n *Gosub)
	VisitReturn(n *Return)
	VisitGoto(n *Goto)
	VisitDefFn(n *DefFn)
	VisitDim(n *Dim)
	VisitDefType(n *DefType)
	VisitOpen(n *Open)
	VisitClose(n *Close)
	VisitField(n *Field)
	VisitGet(n *Get)
	VisitPut(n *Put)
}

// Line pairs a statement with the BASIC line number (or named label)
// a preceding tokeniser pass attached to it, per spec.md §6's
// line-number map. Program is the top-level tree: an ordered sequence
// of logical lines, exactly what an external parser hands the
// lowering pass.
type Line struct {
	Number  int    // 0 if absent
	HasNumber bool
	Label   string // "" if absent
	Stmt    Stmt
}

type Program struct {
	Lines []Line
}
