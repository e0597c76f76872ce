package lower

import (
	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// VisitLet implements LET (with or without the keyword, and with or
// without an array subscript on the left-hand side): evaluate the
// right-hand side, promote it to the target's type, and ASSIGN it —
// a dedicated opcode from COPY's, since an ASSIGN is a user-visible
// write to a named storage location rather than internal bookkeeping.
func (l *Lowering) VisitLet(n *parsetree.LetStmt) {
	valueID := n.Value.Accept(l)
	valueType := l.ST.TypeOf(valueID)
	name := varName(l.ST, n.Name, n.Suffix)

	if n.Indices == nil {
		id := l.ST.GetOrCreateVariable(name)
		targetType := l.ST.TypeOf(id)
		l.checkAssignable(n.At, valueType, targetType)
		valueID = l.promote(n.At, valueID, valueType, targetType)
		l.emit(n.At, ir.ASSIGN, symtab.NullID, valueID, id)
		return
	}

	ref := l.lowerArrayRef(n.At, name, n.Name, n.Suffix, n.Indices)
	targetType := l.ST.TypeOf(ref)
	l.checkAssignable(n.At, valueType, targetType)
	valueID = l.promote(n.At, valueID, valueType, targetType)
	l.emit(n.At, ir.ASSIGN, symtab.NullID, valueID, ref)
}

func (l *Lowering) checkAssignable(p parsetree.Pos, from, to symtab.DataType) {
	if from == symtab.String || to == symtab.String {
		if from != to {
			l.fail(berrors.BadAssignment, p, "cannot assign %s to %s", from, to)
		}
	}
}

// VisitPrint implements PRINT and PRINT USING: each item is evaluated
// and emitted as its own PRINT (or PRINTUSING, sharing the format
// operand across every item once it has been evaluated) instruction.
// For PRINT, SuppressSeparator is carried as op2 so the interpreter
// knows whether to insert the usual column/comma spacing; PRINTUSING
// uses op2 for the value and does not carry SuppressSeparator.
func (l *Lowering) VisitPrint(n *parsetree.PrintStmt) {
	var fileID symtab.EntryID = symtab.NullID
	if n.FileNumber != nil {
		fileID = n.FileNumber.Accept(l)
	}

	var usingID symtab.EntryID = symtab.NullID
	if n.Using != nil {
		usingID = n.Using.Accept(l)
		usingType := l.ST.TypeOf(usingID)
		if usingType != symtab.String {
			l.fail(berrors.DataTypeMismatch, n.At, "PRINT USING format must be a string")
		}
	}

	for _, item := range n.Items {
		valueID := item.Value.Accept(l)
		suppress := symtab.NullID
		if item.SuppressSeparator {
			suppress = l.ST.AddTmp(symtab.Int64, int64(1))
			l.emit(n.At, ir.VALUE, symtab.NullID, symtab.NullID, suppress)
		}
		if usingID != symtab.NullID {
			l.emit(n.At, ir.PRINTUSING, usingID, valueID, fileID)
		} else {
			l.emit(n.At, ir.PRINT, valueID, suppress, fileID)
		}
	}
	l.emit(n.At, ir.FLUSH, symtab.NullID, symtab.NullID, fileID)
}

// VisitWrite implements WRITE: like PRINT but always comma/quote
// delimited, one WRITE_ITEM instruction per value.
func (l *Lowering) VisitWrite(n *parsetree.WriteStmt) {
	var fileID symtab.EntryID = symtab.NullID
	if n.FileNumber != nil {
		fileID = n.FileNumber.Accept(l)
	}
	for _, item := range n.Items {
		valueID := item.Accept(l)
		l.emit(n.At, ir.WRITE_ITEM, valueID, symtab.NullID, fileID)
	}
	l.emit(n.At, ir.FLUSH, symtab.NullID, symtab.NullID, fileID)
}

// VisitDim implements DIM: evaluate each declared bound, then register
// the array shape in the symbol table.
func (l *Lowering) VisitDim(n *parsetree.Dim) {
	dims := make([]int, 0, len(n.Dims))
	for _, d := range n.Dims {
		lit, ok := d.(*parsetree.NumberLiteral)
		if !ok {
			l.fail(berrors.BadArgument, n.At, "DIM bounds must be constant")
		}
		val, err := parsetree.ParseNumericLiteral(lit.Text, lit.Base, 0, false)
		if err != nil || val.Type == symtab.Float32 || val.Type == symtab.Float64 {
			l.fail(berrors.BadArgument, n.At, "DIM bound %q is not an integer constant", lit.Text)
		}
		bound := val.I64
		if val.Type == symtab.Int32 {
			bound = int64(val.I32)
		}
		dims = append(dims, int(bound))
	}
	name := varName(l.ST, n.Name, n.Suffix)
	l.ST.DeclareArray(name, dims)
}

// VisitDefType implements DEFINT/DEFLNG/DEFSNG/DEFDBL/DEFSTR, each a
// letter-range default-type assignment.
func (l *Lowering) VisitDefType(n *parsetree.DefType) {
	l.ST.SetDefaultDataType(n.From, n.To, n.Type)
}
