package lower

import (
	"testing"

	"github.com/kr/pretty"

	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
)

func buildSampleProgram(t *testing.T) []ir.Instruction {
	t.Helper()
	l := New("t.bas", nil)
	prog := &parsetree.Program{Lines: []parsetree.Line{
		{Number: 10, HasNumber: true, Stmt: &parsetree.LetStmt{
			At: pos(10, "A% = 1 + 2"), Name: "A", Suffix: '%',
			Value: &parsetree.Binary{At: pos(10, "1+2"), Operator: "+", Left: numLit("1"), Right: numLit("2")},
		}},
		{Number: 20, HasNumber: true, Stmt: &parsetree.IfInline{
			At: pos(20, "IF A% > 2 THEN PRINT A%"), Cond: &parsetree.Binary{At: pos(20, "A%>2"), Operator: ">", Left: varRef("A", '%'), Right: numLit("2")},
			Then: []parsetree.Stmt{&parsetree.PrintStmt{At: pos(20, "PRINT A%"), Items: []parsetree.PrintItem{{Value: varRef("A", '%')}}}},
		}},
	}}
	if err := l.Program(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l.Prog.All()
}

// Deterministic lowering: lowering the same parse tree twice yields
// the same sequence of (opcode, op1, op2, result) tuples up to the
// stable id assignment of the symbol table (spec.md §8). kr/pretty's
// structural Diff makes a mismatch actionable instead of a single
// "not equal" failure.
func TestDeterministicLowering(t *testing.T) {
	a := buildSampleProgram(t)
	b := buildSampleProgram(t)
	if diff := pretty.Diff(a, b); len(diff) > 0 {
		t.Fatalf("lowering the same tree twice produced different IR:\n%s", pretty.Sprint(diff))
	}
}

// balance walks a lowered program counting push/pop style opcodes; a
// dominance-light check is enough here because every push this
// package emits is immediately matched by its pop within the same
// call (VisitUDFCall's PUSH_RT_SCOPE/POP_RT_SCOPE pair), or by the
// statement that closes it (VisitGosub's PUSH_RETLABEL consumed by
// VisitReturn's RETURN), never left open across a branch.
func balance(instrs []ir.Instruction) (rtScope, retLabel int) {
	for _, instr := range instrs {
		switch instr.Op {
		case ir.PUSH_RT_SCOPE:
			rtScope++
		case ir.POP_RT_SCOPE:
			rtScope--
		case ir.PUSH_RETLABEL:
			retLabel++
		case ir.RETURN:
			retLabel--
		}
	}
	return rtScope, retLabel
}

// Scenario 4 (UDF call/return) and GOSUB/RETURN both push a
// compensating pop; a recursive UDF call must balance the same way as
// a single call, since each call site pushes and pops its own scope.
func TestRuntimeScopeAndReturnLabelsBalance(t *testing.T) {
	l := New("t.bas", nil)
	defFn := &parsetree.DefFn{
		At: pos(10, "DEF FN F(N%)"), Name: "F",
		Params: []parsetree.Param{{Name: "N", Suffix: '%'}},
		Body:   varRef("N", '%'),
	}
	defFn.Accept(l)
	call := &parsetree.UDFCall{At: pos(20, "FN F(1)"), Name: "F", Args: []parsetree.Expr{numLit("1")}}
	call.Accept(l)

	gosub := &parsetree.Gosub{At: pos(30, "GOSUB 100"), Target: parsetree.GotoTarget{HasLine: true, Line: 100}}
	gosub.Accept(l)
	ret := &parsetree.Return{At: pos(40, "RETURN")}
	ret.Accept(l)

	rtScope, retLabel := balance(l.Prog.All())
	if rtScope != 0 {
		t.Fatalf("PUSH_RT_SCOPE/POP_RT_SCOPE unbalanced: %d", rtScope)
	}
	if retLabel != 0 {
		t.Fatalf("PUSH_RETLABEL/RETURN unbalanced: %d", retLabel)
	}
}
