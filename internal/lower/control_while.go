package lower

import (
	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// whileState tracks one open WHILE, from its header to its matching
// WEND. checkLabel is where WEND jumps back to re-evaluate the
// condition; exitJump is the GOTO_LABEL_IF — branching on the negated
// condition — that leaves the loop once the condition is false,
// patched once WEND's position is known.
type whileState struct {
	checkLabel symtab.EntryID
	exitJump   *ir.Instruction
	at         parsetree.Pos
}

// VisitWhile implements the WHILE header per spec.md §4.3's literal
// pattern: LABEL L_before, evaluate the condition, NOT it, then
// GOTO_LABEL_IF on the negation to L_after_wend (GOTO_LABEL_IF always
// branches on true, so leaving the loop needs the condition negated
// first rather than a distinct branch-on-false opcode).
func (l *Lowering) VisitWhile(n *parsetree.While) {
	checkLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, checkLabel, symtab.NullID, symtab.NullID)

	condID := n.Cond.Accept(l)
	if !l.ST.TypeOf(condID).IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "WHILE condition must be numeric")
	}
	negID := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(n.At, ir.NOT, condID, symtab.NullID, negID)
	exitJump := l.emit(n.At, ir.GOTO_LABEL_IF, negID, symtab.NullID, symtab.NullID)

	l.whileStack = append(l.whileStack, &whileState{checkLabel: checkLabel, exitJump: exitJump, at: n.At})
}

// VisitWend closes the innermost open WHILE: jump back to re-check the
// condition, then patch the exit jump to land right after.
func (l *Lowering) VisitWend(n *parsetree.Wend) {
	if len(l.whileStack) == 0 {
		l.fail(berrors.WendWithoutWhile, n.At, "WEND with no matching WHILE")
	}
	top := l.whileStack[len(l.whileStack)-1]
	l.whileStack = l.whileStack[:len(l.whileStack)-1]

	l.emit(n.At, ir.GOTO_LABEL, top.checkLabel, symtab.NullID, symtab.NullID)

	exitLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, exitLabel, symtab.NullID, symtab.NullID)
	top.exitJump.PatchOp2(exitLabel)
}
