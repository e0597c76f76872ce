package lower

import (
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// VisitOpen implements OPEN per spec.md §4.3: three PARAM2 pushes —
// (filename, fileNumber), (openMode, accessMode), (lockMode,
// recordLen) — drained by the OPEN opcode that follows them. Absent
// fields (no LOCK clause, no explicit record length) push NULL_ID so
// the interpreter's fixed six-operand drain never has to guess how
// many pushes happened.
func (l *Lowering) VisitOpen(n *parsetree.Open) {
	nameID := n.FileName.Accept(l)
	fnumID := n.FileNumber.Accept(l)
	l.emit(n.At, ir.PARAM2, nameID, fnumID, symtab.NullID)

	modeID := l.stringConst(n.At, n.Mode)
	accessID := l.stringConst(n.At, n.Access)
	l.emit(n.At, ir.PARAM2, modeID, accessID, symtab.NullID)

	lockID := l.stringConst(n.At, n.Lock)
	recLenID := symtab.NullID
	if n.RecordLen != nil {
		recLenID = n.RecordLen.Accept(l)
	}
	l.emit(n.At, ir.PARAM2, lockID, recLenID, symtab.NullID)

	l.emit(n.At, ir.OPEN, symtab.NullID, symtab.NullID, symtab.NullID)
}

func (l *Lowering) stringConst(p parsetree.Pos, s string) symtab.EntryID {
	if s == "" {
		return symtab.NullID
	}
	tmp := l.ST.AddTmp(symtab.String, s)
	l.emit(p, ir.VALUE, symtab.NullID, symtab.NullID, tmp)
	return tmp
}

// VisitClose implements CLOSE: with no file numbers, CLOSE_ALL; else
// one CLOSE per listed number.
func (l *Lowering) VisitClose(n *parsetree.Close) {
	if len(n.FileNumbers) == 0 {
		l.emit(n.At, ir.CLOSE_ALL, symtab.NullID, symtab.NullID, symtab.NullID)
		return
	}
	for _, fn := range n.FileNumbers {
		fnumID := fn.Accept(l)
		l.emit(n.At, ir.CLOSE, fnumID, symtab.NullID, symtab.NullID)
	}
}

// VisitField implements FIELD: one PARAM2(variable, partLen) push per
// field part, then a single FIELD opcode carrying the file number and
// the part count so the interpreter knows how many PARAM2 pushes to
// drain.
func (l *Lowering) VisitField(n *parsetree.Field) {
	fnumID := n.FileNumber.Accept(l)
	for _, part := range n.Parts {
		varID := part.Var.Accept(l)
		lenID := part.Len.Accept(l)
		l.emit(n.At, ir.PARAM2, varID, lenID, symtab.NullID)
	}
	countID := l.ST.AddTmp(symtab.Int64, int64(len(n.Parts)))
	l.emit(n.At, ir.VALUE, symtab.NullID, symtab.NullID, countID)
	l.emit(n.At, ir.FIELD, fnumID, countID, symtab.NullID)
}

// VisitGet implements GET: an optional record number is pushed via
// PARAM1 ahead of the GET opcode itself, mirroring how OPEN's optional
// trailing fields are pushed rather than folded into GET's own
// operand slots.
func (l *Lowering) VisitGet(n *parsetree.Get) {
	fnumID := n.FileNumber.Accept(l)
	if n.Record != nil {
		recID := n.Record.Accept(l)
		l.emit(n.At, ir.PARAM1, recID, symtab.NullID, symtab.NullID)
	}
	targetID := n.Target.Accept(l)
	l.emit(n.At, ir.GET, fnumID, targetID, symtab.NullID)
}

// VisitPut is GET's write-side mirror.
func (l *Lowering) VisitPut(n *parsetree.Put) {
	fnumID := n.FileNumber.Accept(l)
	if n.Record != nil {
		recID := n.Record.Accept(l)
		l.emit(n.At, ir.PARAM1, recID, symtab.NullID, symtab.NullID)
	}
	sourceID := n.Source.Accept(l)
	l.emit(n.At, ir.PUT, fnumID, sourceID, symtab.NullID)
}
