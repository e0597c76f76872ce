package lower

import (
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// VisitGoto implements unconditional GOTO to a line number or a named
// label — spec.md §1 treats these as distinct opcodes, GOTO_LINENUM
// and GOTO_LABEL, so the target kind picks which one is emitted.
// Because symtab's label interning is idempotent, the target id exists
// whether or not the target line has been lowered yet — a forward
// GOTO and its eventual LABEL simply agree on the same id without any
// forward-reference bookkeeping here (spec.md §9).
func (l *Lowering) VisitGoto(n *parsetree.Goto) {
	target := l.resolveTarget(n.Target)
	l.emit(n.At, gotoOpFor(n.Target), target, symtab.NullID, symtab.NullID)
}

// VisitGosub implements GOSUB: push a return label, jump to the
// subroutine's target (by line number or by name, per gotoOpFor), then
// define the return label right after — the RETURN opcode pops
// PUSH_RETLABEL's stacked value and resumes there.
func (l *Lowering) VisitGosub(n *parsetree.Gosub) {
	target := l.resolveTarget(n.Target)
	retLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.PUSH_RETLABEL, retLabel, symtab.NullID, symtab.NullID)
	l.emit(n.At, gotoOpFor(n.Target), target, symtab.NullID, symtab.NullID)
	l.emit(n.At, ir.LABEL, retLabel, symtab.NullID, symtab.NullID)
}

// gotoOpFor picks GOTO_LINENUM for a numeric target and GOTO_LABEL for
// a named one.
func gotoOpFor(t parsetree.GotoTarget) ir.OpCode {
	if t.HasLine {
		return ir.GOTO_LINENUM
	}
	return ir.GOTO_LABEL
}

// VisitReturn implements RETURN, with or without an explicit line
// number override (`RETURN 100` resumes at line 100 instead of the
// GOSUB call site).
func (l *Lowering) VisitReturn(n *parsetree.Return) {
	if n.HasLine {
		target := l.ST.AddLineNumberLabel(n.Line)
		l.emit(n.At, ir.GOTO_LINENUM, target, symtab.NullID, symtab.NullID)
		return
	}
	l.emit(n.At, ir.RETURN, symtab.NullID, symtab.NullID, symtab.NullID)
}

func (l *Lowering) resolveTarget(t parsetree.GotoTarget) symtab.EntryID {
	if t.HasLine {
		return l.ST.AddLineNumberLabel(t.Line)
	}
	return l.ST.AddNamedLabel(t.Label)
}
