package lower

import (
	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// ifState tracks one open multi-line IF...THEN BEGIN, from the header
// to its matching END IF. The header's GOTO_LABEL_IF, which branches
// into the then-body when the condition is true, is patched to L_then
// inside VisitIfThenBegin and so is not kept here. skipJump is the
// unconditional jump taken when the condition was false; it is
// patched to L_before_else at ELSE BEGIN, or straight to L_after at
// END IF if there was no else. endJump is the then-body's own exit
// jump around the else-body, allocated only once ELSE BEGIN is seen.
type ifState struct {
	skipJump *ir.Instruction
	endJump  *ir.Instruction
	sawElse  bool
	at       parsetree.Pos
}

// VisitIfThenBegin implements the header of the multi-line IF form,
// spec.md §4.3's literal pattern: evaluate the condition, GOTO_LABEL_IF
// branching to L_then when it is true, an unconditional jump past the
// then-body when it is false, then L_then itself — the then-body
// follows as ordinary subsequent statements.
func (l *Lowering) VisitIfThenBegin(n *parsetree.IfThenBegin) {
	condID := n.Cond.Accept(l)
	if !l.ST.TypeOf(condID).IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "IF condition must be numeric")
	}
	thenJump := l.emit(n.At, ir.GOTO_LABEL_IF, condID, symtab.NullID, symtab.NullID)
	skipJump := l.emit(n.At, ir.GOTO_LABEL, symtab.NullID, symtab.NullID, symtab.NullID)

	thenLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, thenLabel, symtab.NullID, symtab.NullID)
	thenJump.PatchOp2(thenLabel)

	l.ifStack = append(l.ifStack, &ifState{skipJump: skipJump, at: n.At})
}

// VisitElseBegin closes the then-branch and opens the else-branch: the
// then-branch unconditionally jumps past the else-branch (endJump),
// and the pending skipJump is patched to land right here, at
// L_before_else.
func (l *Lowering) VisitElseBegin(n *parsetree.ElseBegin) {
	if len(l.ifStack) == 0 {
		l.fail(berrors.MismatchedElseBegin, n.At, "ELSE BEGIN with no matching IF THEN BEGIN")
	}
	top := l.ifStack[len(l.ifStack)-1]
	if top.sawElse {
		l.fail(berrors.MismatchedElseBegin, n.At, "IF already has an ELSE BEGIN")
	}
	top.endJump = l.emit(n.At, ir.GOTO_LABEL, symtab.NullID, symtab.NullID, symtab.NullID)

	elseLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, elseLabel, symtab.NullID, symtab.NullID)
	top.skipJump.PatchOp2(elseLabel)
	top.sawElse = true
}

// VisitEndIf closes the innermost open IF: patches whichever jump
// (skipJump if there was no ELSE BEGIN, endJump if there was) still
// needs to land here, and pops the stack.
func (l *Lowering) VisitEndIf(n *parsetree.EndIf) {
	if len(l.ifStack) == 0 {
		l.fail(berrors.MismatchedEndIf, n.At, "END IF with no matching IF THEN BEGIN")
	}
	top := l.ifStack[len(l.ifStack)-1]
	l.ifStack = l.ifStack[:len(l.ifStack)-1]

	endLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, endLabel, symtab.NullID, symtab.NullID)
	if top.sawElse {
		top.endJump.PatchOp2(endLabel)
	} else {
		top.skipJump.PatchOp2(endLabel)
	}
}

// VisitIfInline implements the single-line `IF cond THEN stmts [ELSE
// stmts]` form with the same literal instruction sequence as the
// multi-line form, just self-contained: the grammar already delimits
// the then/else statement lists, so no stack entry is needed.
func (l *Lowering) VisitIfInline(n *parsetree.IfInline) {
	condID := n.Cond.Accept(l)
	if !l.ST.TypeOf(condID).IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "IF condition must be numeric")
	}
	thenJump := l.emit(n.At, ir.GOTO_LABEL_IF, condID, symtab.NullID, symtab.NullID)
	skipJump := l.emit(n.At, ir.GOTO_LABEL, symtab.NullID, symtab.NullID, symtab.NullID)

	thenLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, thenLabel, symtab.NullID, symtab.NullID)
	thenJump.PatchOp2(thenLabel)

	for _, s := range n.Then {
		s.Accept(l)
	}

	if len(n.Else) == 0 {
		afterLabel := l.ST.AddGotoTarget()
		l.emit(n.At, ir.LABEL, afterLabel, symtab.NullID, symtab.NullID)
		skipJump.PatchOp2(afterLabel)
		return
	}

	endJump := l.emit(n.At, ir.GOTO_LABEL, symtab.NullID, symtab.NullID, symtab.NullID)
	beforeElseLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, beforeElseLabel, symtab.NullID, symtab.NullID)
	skipJump.PatchOp2(beforeElseLabel)

	for _, s := range n.Else {
		s.Accept(l)
	}

	afterLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, afterLabel, symtab.NullID, symtab.NullID)
	endJump.PatchOp2(afterLabel)
}
