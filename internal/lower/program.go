package lower

import (
	"basiclower/internal/berrors"
	"basiclower/internal/diag"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// Program is the single entry point: lower every line of prog in
// order, check that every control-flow construct opened somewhere in
// the program was also closed, and emit the trailing END. It recovers
// the panic any fail/internalf call raises and turns it back into a
// returned error, so a caller never needs to know lowering fails by
// panicking internally (spec.md §7's "lowering aborts immediately").
func (l *Lowering) Program(prog *parsetree.Program) (err error) {
	defer func() {
		if r := recover(); r == nil {
			return
		} else if se, ok := r.(*berrors.SemanticError); ok {
			err = se
		} else if ie, ok := r.(*berrors.InternalError); ok {
			err = ie
		} else {
			panic(r)
		}
	}()

	parsetree.AssignLineNumbers(prog.Lines)

	for _, line := range prog.Lines {
		l.lowerLineHeader(line)
		line.Stmt.Accept(l)
	}

	l.checkUnclosedConstructs()

	l.emit(parsetree.Pos{}, ir.END, symtab.NullID, symtab.NullID, symtab.NullID)

	if l.bus != nil {
		l.bus.Publish(diag.Event{
			Kind: diag.EventSummary,
			Summary: &diag.Summary{
				Instructions: l.Prog.Len(),
				Symbols:      l.ST.Len(),
			},
		})
	}
	return nil
}

// lowerLineHeader emits the LABEL instruction(s) a line's own number
// and (if present) name make available as branch targets, before its
// statement is lowered.
func (l *Lowering) lowerLineHeader(line parsetree.Line) {
	p := parsetree.Pos{Line: line.Number}
	if line.HasNumber {
		id := l.ST.AddLineNumberLabel(line.Number)
		l.emit(p, ir.LABEL, id, symtab.NullID, symtab.NullID)
	}
	if line.Label != "" {
		id := l.ST.AddNamedLabel(line.Label)
		l.emit(p, ir.LABEL, id, symtab.NullID, symtab.NullID)
	}
}

// checkUnclosedConstructs raises the matching *_WITHOUT_* error for
// whichever control-flow stack is non-empty once every line has been
// lowered — an unclosed IF/WHILE/FOR is only detectable in hindsight,
// since any of them could legally still be open mid-program (inside a
// loop body spanning many lines) right up until the last line.
func (l *Lowering) checkUnclosedConstructs() {
	if len(l.forStack) > 0 {
		top := l.forStack[len(l.forStack)-1]
		l.fail(berrors.ForWithoutNext, top.at, "FOR %s has no matching NEXT", top.varName)
	}
	if len(l.whileStack) > 0 {
		top := l.whileStack[len(l.whileStack)-1]
		l.fail(berrors.WhileWithoutWend, top.at, "WHILE has no matching WEND")
	}
	if len(l.ifStack) > 0 {
		top := l.ifStack[len(l.ifStack)-1]
		l.fail(berrors.MismatchedEndIf, top.at, "IF THEN BEGIN has no matching END IF")
	}
}
