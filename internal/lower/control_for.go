package lower

import (
	"strings"

	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// forState tracks one open FOR, from its header to the NEXT that
// closes it. varID is the loop control variable; stepID/endID are
// already promoted to the loop variable's type. checkLabel is where
// NEXT jumps back to after incrementing; exitJump leaves the loop once
// the ascending or descending done condition holds.
type forState struct {
	varName  string
	varID    symtab.EntryID
	endID    symtab.EntryID
	stepID   symtab.EntryID
	loopType symtab.DataType

	checkLabel symtab.EntryID
	exitJump   *ir.Instruction
	at         parsetree.Pos
}

// VisitFor implements the FOR header of spec.md §4.3: initialise the
// control variable, then loop back to re-test a direction-agnostic
// exit condition that works whether STEP is positive,
// negative, or only known at run time (a variable STEP). The
// condition is built from ordinary comparison/logical opcodes rather
// than a dedicated "loop test" instruction, so the interpreter needs
// no FOR-specific opcode at all.
func (l *Lowering) VisitFor(n *parsetree.For) {
	name := varName(l.ST, n.Var, n.Suffix)
	varID := l.ST.GetOrCreateVariable(name)
	loopType := l.ST.TypeOf(varID)
	if !loopType.IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "FOR control variable %s must be numeric", fmtName(n.Var, n.Suffix))
	}

	initID := n.Init.Accept(l)
	initType := l.ST.TypeOf(initID)
	if !initType.IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "FOR initial value must be numeric")
	}
	initID = l.promote(n.At, initID, initType, loopType)
	l.emit(n.At, ir.COPY, symtab.NullID, initID, varID)

	endID := n.End.Accept(l)
	endType := l.ST.TypeOf(endID)
	if !endType.IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "FOR end value must be numeric")
	}
	endID = l.promote(n.At, endID, endType, loopType)

	var stepID symtab.EntryID
	if n.Step != nil {
		stepID = n.Step.Accept(l)
		stepType := l.ST.TypeOf(stepID)
		if !stepType.IsNumeric() {
			l.fail(berrors.DataTypeMismatch, n.At, "FOR STEP value must be numeric")
		}
		stepID = l.promote(n.At, stepID, stepType, loopType)
	} else {
		stepID = l.ST.AddTmp(loopType, oneOf(loopType))
		l.emit(n.At, ir.VALUE, symtab.NullID, symtab.NullID, stepID)
	}

	checkLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, checkLabel, symtab.NullID, symtab.NullID)
	exitJump := l.emitForCheck(n.At, varID, endID, stepID, loopType)

	l.forStack = append(l.forStack, &forState{
		varName:    strings.ToUpper(n.Var),
		varID:      varID,
		endID:      endID,
		stepID:     stepID,
		loopType:   loopType,
		checkLabel: checkLabel,
		exitJump:   exitJump,
		at:         n.At,
	})
}

// emitForCheck computes spec.md §4.3's literal done condition —
// `(step ≥ 0 ∧ var > end) ∨ (step < 0 ∧ var < end)` — using strict
// comparisons, then a GOTO_LABEL_IF that branches (GOTO_LABEL_IF
// always branches on true) to the loop exit once done holds. Returned
// so the caller can patch its target once the loop's exit point is
// known.
func (l *Lowering) emitForCheck(at parsetree.Pos, varID, endID, stepID symtab.EntryID, loopType symtab.DataType) *ir.Instruction {
	zero := l.ST.AddTmp(loopType, zeroOf(loopType))
	l.emit(at, ir.VALUE, symtab.NullID, symtab.NullID, zero)

	geOp, _ := ir.GeFor(loopType)
	gtOp, _ := ir.GtFor(loopType)
	ltOp, _ := ir.LtFor(loopType)

	stepNonNeg := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, geOp, stepID, zero, stepNonNeg)

	stepNeg := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, ir.NOT, stepNonNeg, symtab.NullID, stepNeg)

	gtEnd := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, gtOp, varID, endID, gtEnd)

	ltEnd := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, ltOp, varID, endID, ltEnd)

	ascDone := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, ir.AND, stepNonNeg, gtEnd, ascDone)

	descDone := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, ir.AND, stepNeg, ltEnd, descDone)

	done := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(at, ir.OR, ascDone, descDone, done)

	return l.emit(at, ir.GOTO_LABEL_IF, done, symtab.NullID, symtab.NullID)
}

// VisitNext implements NEXT, including a multi-variable list
// (`NEXT I, J`), which closes one enclosing FOR per named variable, in
// order. If a listed name does not match the FOR it would close, the
// list stops there: the mismatched name and anything after it does
// not close a loop (the chosen resolution of the spec's open question
// on this case, recorded alongside the rest of the open-question
// ledger).
func (l *Lowering) VisitNext(n *parsetree.Next) {
	if len(n.Vars) == 0 {
		l.closeOneFor(n.At, "")
		return
	}
	for _, v := range n.Vars {
		l.closeOneFor(n.At, strings.ToUpper(v.Name))
	}
}

func (l *Lowering) closeOneFor(at parsetree.Pos, wantName string) {
	if len(l.forStack) == 0 {
		l.fail(berrors.NextWithoutFor, at, "NEXT with no matching FOR")
	}
	top := l.forStack[len(l.forStack)-1]
	if wantName != "" && wantName != top.varName {
		l.fail(berrors.NextWithoutFor, at, "NEXT %s does not match innermost FOR %s", wantName, top.varName)
	}
	l.forStack = l.forStack[:len(l.forStack)-1]

	addOp, _ := ir.AddFor(top.loopType)
	l.emit(at, addOp, top.varID, top.stepID, top.varID)
	l.emit(at, ir.GOTO_LABEL, top.checkLabel, symtab.NullID, symtab.NullID)

	exitLabel := l.ST.AddGotoTarget()
	l.emit(at, ir.LABEL, exitLabel, symtab.NullID, symtab.NullID)
	top.exitJump.PatchOp2(exitLabel)
}

func zeroOf(dt symtab.DataType) interface{} {
	switch dt {
	case symtab.Int32:
		return int32(0)
	case symtab.Int64:
		return int64(0)
	case symtab.Float32:
		return float32(0)
	case symtab.Float64:
		return float64(0)
	default:
		return nil
	}
}

func oneOf(dt symtab.DataType) interface{} {
	switch dt {
	case symtab.Int32:
		return int32(1)
	case symtab.Int64:
		return int64(1)
	case symtab.Float32:
		return float32(1)
	case symtab.Float64:
		return float64(1)
	default:
		return nil
	}
}
