package lower

import (
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// VisitDefFn implements a DEF FN declaration, per spec.md §4.3's UDF
// protocol: its compiled body sits inline in the instruction stream at
// the point it was written, guarded by an unconditional jump so
// ordinary top-to-bottom execution never falls into it — the only way
// in is a call's GOTO_LABEL to the start label, and the only way out
// is GOTO_CALLER, which resumes at the return label the call stored in
// its PUSH_RT_SCOPE (GOSUB/RETURN use PUSH_RETLABEL/RETURN instead).
func (l *Lowering) VisitDefFn(n *parsetree.DefFn) {
	fullName := fmtName(n.Name, n.Suffix)
	returnType := l.ST.ResolveType(n.Name, n.Suffix)
	startLabel := l.ST.AddGotoTarget()
	udfID := l.ST.DeclareUDF(fullName, returnType, startLabel)

	skipJump := l.emit(n.At, ir.GOTO_LABEL, symtab.NullID, symtab.NullID, symtab.NullID)
	l.emit(n.At, ir.LABEL, startLabel, symtab.NullID, symtab.NullID)

	l.ST.PushDeclarationScope(udfID)
	paramIDs := make([]symtab.EntryID, 0, len(n.Params))
	for _, p := range n.Params {
		pname := varName(l.ST, p.Name, p.Suffix)
		paramIDs = append(paramIDs, l.ST.DeclareParam(pname))
	}
	returnID := l.ST.AddTmp(returnType, nil)
	l.ST.SetUDFSignature(udfID, paramIDs, returnID)

	bodyID := n.Body.Accept(l)
	bodyType := l.ST.TypeOf(bodyID)
	l.checkAssignable(n.At, bodyType, returnType)
	bodyID = l.promote(n.At, bodyID, bodyType, returnType)
	l.emit(n.At, ir.COPY, symtab.NullID, bodyID, returnID)
	l.ST.PopScope()

	l.emit(n.At, ir.GOTO_CALLER, symtab.NullID, symtab.NullID, symtab.NullID)

	skipLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, skipLabel, symtab.NullID, symtab.NullID)
	skipJump.PatchOp2(skipLabel)
}
