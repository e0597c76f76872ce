// Package lower implements the tree walk that lowers a BASIC parse
// tree (internal/parsetree) into the typed three-address IR
// (internal/ir), allocating symbol-table entries (internal/symtab) as
// it goes. It is the "Lowering" component of spec.md §2: semantic
// checks, numeric promotion, and the structured-control-flow-from-
// unstructured-primitives compilers for IF, WHILE, FOR, GOSUB and
// UDF call all live here.
package lower

import (
	"fmt"
	"strings"

	"basiclower/internal/berrors"
	"basiclower/internal/diag"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// Lowering holds everything one compilation needs: the symbol table
// and IR it is building, plus the open control-flow stacks that let
// later statements (NEXT, WEND, ELSE BEGIN, END IF) find the header
// they close. It is used for exactly one Program call and discarded —
// lowering is single-threaded and stateless across compilations, per
// spec.md §5.
type Lowering struct {
	ST   *symtab.SymbolTable
	Prog *ir.IR
	file string
	bus  *diag.Bus // nil if the caller did not ask for diagnostics

	ifStack    []*ifState
	whileStack []*whileState
	forStack   []*forState
}

// New creates a Lowering pass writing into a fresh symbol table and
// IR. bus may be nil.
func New(file string, bus *diag.Bus) *Lowering {
	return &Lowering{
		ST:   symtab.New(),
		Prog: ir.New(),
		file: file,
		bus:  bus,
	}
}

func (l *Lowering) loc(p parsetree.Pos) ir.SourceLoc {
	return ir.SourceLoc{File: l.file, Line: p.Line, Column: p.Column}
}

// emit appends an instruction and, if a diagnostics bus is attached,
// publishes it — the bus is a read-only tap (spec.md §4.4), it never
// influences what gets emitted.
func (l *Lowering) emit(p parsetree.Pos, op ir.OpCode, op1, op2, result symtab.EntryID) *ir.Instruction {
	instr := l.Prog.Emit(l.loc(p), op, op1, op2, result)
	if l.bus != nil {
		l.bus.Publish(diag.Event{Kind: diag.EventInstruction, Instruction: instr})
	}
	return instr
}

// fail aborts the current compilation by panicking with a semantic
// error; Program recovers it at the top level. This mirrors the
// teacher's own recursive-descent error handling (its parser tests
// recover a panic into a returned error list) and is the natural shape
// for an error that must unwind an arbitrarily deep expression tree
// immediately, per spec.md §7's "semantic errors abort lowering
// immediately" policy.
func (l *Lowering) fail(kind berrors.Kind, p parsetree.Pos, format string, args ...interface{}) {
	err := berrors.New(kind, berrors.SourceLoc{File: l.file, Line: p.Line, Column: p.Column}, p.Text, format, args...)
	if l.bus != nil {
		l.bus.Publish(diag.Event{Kind: diag.EventError, Error: err})
	}
	panic(err)
}

// internalf reports a compiler bug: an unreachable arm in a typed
// switch, or a binding the lowering pass should always have made.
func (l *Lowering) internalf(format string, args ...interface{}) {
	panic(berrors.Internal(format, args...))
}

func varName(st *symtab.SymbolTable, name string, suffix byte) symtab.VariableName {
	return symtab.VariableName{Bare: strings.ToUpper(name), Type: st.ResolveType(name, suffix)}
}

// promote coerces id (currently of type from) to type to via a COPY
// into a fresh temporary, unless the types already match, in which
// case id is returned unchanged — COPY is only ever emitted when it
// does something.
func (l *Lowering) promote(p parsetree.Pos, id symtab.EntryID, from, to symtab.DataType) symtab.EntryID {
	if from == to {
		return id
	}
	tmp := l.ST.AddTmp(to, nil)
	l.emit(p, ir.COPY, symtab.NullID, id, tmp)
	return tmp
}

func excerpt(p parsetree.Pos) string { return p.Text }

func fmtName(name string, suffix byte) string {
	if suffix == 0 {
		return name
	}
	return fmt.Sprintf("%s%c", name, suffix)
}
