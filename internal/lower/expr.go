package lower

import (
	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// VisitNumberLiteral implements the numeric-literal lowering rule of
// spec.md §4.3: parse per sigil, allocate a preinitialised temp, emit
// VALUE.
func (l *Lowering) VisitNumberLiteral(n *parsetree.NumberLiteral) symtab.EntryID {
	val, err := parsetree.ParseNumericLiteral(n.Text, n.Base, n.Suffix, n.IsFloat)
	if err != nil {
		l.fail(berrors.DataTypeMismatch, n.At, "%s", err.Error())
	}
	var initial interface{}
	switch val.Type {
	case symtab.Int32:
		initial = val.I32
	case symtab.Int64:
		initial = val.I64
	case symtab.Float32:
		initial = val.F32
	case symtab.Float64:
		initial = val.F64
	}
	tmp := l.ST.AddTmp(val.Type, initial)
	l.emit(n.At, ir.VALUE, symtab.NullID, symtab.NullID, tmp)
	return tmp
}

func (l *Lowering) VisitStringLiteral(n *parsetree.StringLiteral) symtab.EntryID {
	tmp := l.ST.AddTmp(symtab.String, n.Value)
	l.emit(n.At, ir.VALUE, symtab.NullID, symtab.NullID, tmp)
	return tmp
}

// VisitVariableRef implements the three variable-reference cases of
// spec.md §4.3: scalar, array, and (handled separately, see
// VisitUDFCall) UDF call.
func (l *Lowering) VisitVariableRef(n *parsetree.VariableRef) symtab.EntryID {
	name := varName(l.ST, n.Name, n.Suffix)

	if n.Indices == nil {
		id := l.ST.GetOrCreateVariable(name)
		l.emit(n.At, ir.VARIABLE, id, symtab.NullID, id)
		return id
	}

	return l.lowerArrayRef(n.At, name, n.Name, n.Suffix, n.Indices)
}

// lowerArrayRef implements the shared RESET_ARRAY_IDX/SET_ARRAY_IDX/
// ARRAYREF instruction triple used both by a read (VisitVariableRef)
// and a write (VisitLet's array-target path).
func (l *Lowering) lowerArrayRef(p parsetree.Pos, name symtab.VariableName, rawName string, suffix byte, indices []parsetree.Expr) symtab.EntryID {
	before := l.ST.Len()
	id := l.ST.GetOrCreateVariable(name)
	entry := l.ST.Get(id)
	if !l.ST.IsDeclared(name) {
		if int(id) < before {
			l.fail(berrors.ScalarCannotBeIndexed, p, "%s is a scalar variable and cannot be indexed", fmtName(rawName, suffix))
		}
		l.fail(berrors.NotDefined, p, "array %s used before DIM", fmtName(rawName, suffix))
	}
	if entry.Variable.Rank == 0 {
		l.fail(berrors.ScalarCannotBeIndexed, p, "%s is a scalar variable and cannot be indexed", fmtName(rawName, suffix))
	}

	l.emit(p, ir.RESET_ARRAY_IDX, id, symtab.NullID, symtab.NullID)
	indexIDs := make([]symtab.EntryID, 0, len(indices))
	for _, subscript := range indices {
		idxID := subscript.Accept(l)
		l.emit(p, ir.SET_ARRAY_IDX, idxID, symtab.NullID, symtab.NullID)
		indexIDs = append(indexIDs, idxID)
	}
	ref := l.ST.AddArrayReference(id)
	for _, idxID := range indexIDs {
		l.ST.AppendIndex(ref, idxID)
	}
	l.emit(p, ir.ARRAYREF, id, symtab.NullID, ref)
	return ref
}

// VisitUDFCall implements the UDF-call lowering rule of spec.md §4.3:
// PUSH_RT_SCOPE, one COPY per actual parameter, GOTO_LABEL to the
// UDF's start label, a caller-return LABEL (which back-patches
// PUSH_RT_SCOPE's op2), POP_RT_SCOPE, and finally a COPY of the
// return value into a fresh temp so a later call (recursive or
// sibling) reusing the UDF's shared return-value cell cannot clobber
// a value this expression still needs.
func (l *Lowering) VisitUDFCall(n *parsetree.UDFCall) symtab.EntryID {
	fullName := fmtName(n.Name, n.Suffix)
	udfID, ok := l.ST.LookupUDF(fullName)
	if !ok {
		l.fail(berrors.NotDefined, n.At, "DEF FN %s called before it is declared", fullName)
	}
	entry := l.ST.Get(udfID)
	udf := entry.UDF
	if len(n.Args) != len(udf.Params) {
		l.fail(berrors.InsufficientUDFArgs, n.At, "%s expects %d argument(s), got %d", fullName, len(udf.Params), len(n.Args))
	}

	pushScope := l.emit(n.At, ir.PUSH_RT_SCOPE, udfID, symtab.NullID, symtab.NullID)
	for i, arg := range n.Args {
		argID := arg.Accept(l)
		argType := l.ST.TypeOf(argID)
		paramID := udf.Params[i]
		paramType := l.ST.TypeOf(paramID)
		if argType == symtab.String || paramType == symtab.String {
			if argType != paramType {
				l.fail(berrors.DataTypeMismatch, n.At, "argument %d to %s: cannot mix string and numeric", i+1, fullName)
			}
		} else {
			argID = l.promote(n.At, argID, argType, paramType)
		}
		l.emit(n.At, ir.COPY, symtab.NullID, argID, paramID)
	}
	l.emit(n.At, ir.GOTO_LABEL, udf.StartLabel, symtab.NullID, symtab.NullID)
	retLabel := l.ST.AddGotoTarget()
	l.emit(n.At, ir.LABEL, retLabel, symtab.NullID, symtab.NullID)
	pushScope.PatchOp2(retLabel)
	l.emit(n.At, ir.POP_RT_SCOPE, symtab.NullID, symtab.NullID, symtab.NullID)

	resultTmp := l.ST.AddTmpCompatibleWith(udf.ReturnID)
	l.emit(n.At, ir.COPY, symtab.NullID, udf.ReturnID, resultTmp)
	return resultTmp
}

func (l *Lowering) VisitUnary(n *parsetree.Unary) symtab.EntryID {
	operandID := n.Operand.Accept(l)
	dt := l.ST.TypeOf(operandID)
	if !dt.IsNumeric() {
		l.fail(berrors.DataTypeMismatch, n.At, "operator %s requires a numeric operand", n.Operator)
	}
	tmp := l.ST.AddTmp(dt, nil)
	switch n.Operator {
	case "-":
		l.emit(n.At, ir.UNARY_MINUS, operandID, symtab.NullID, tmp)
	case "NOT":
		l.emit(n.At, ir.NOT, operandID, symtab.NullID, tmp)
	default:
		l.internalf("lower: unknown unary operator %q", n.Operator)
	}
	return tmp
}

func (l *Lowering) VisitBinary(n *parsetree.Binary) symtab.EntryID {
	leftID := n.Left.Accept(l)
	rightID := n.Right.Accept(l)
	lt := l.ST.TypeOf(leftID)
	rt := l.ST.TypeOf(rightID)

	switch n.Operator {
	case "+":
		if lt == symtab.String || rt == symtab.String {
			if lt != symtab.String || rt != symtab.String {
				l.fail(berrors.DataTypeMismatch, n.At, "cannot mix string and numeric with '+'")
			}
			tmp := l.ST.AddTmp(symtab.String, nil)
			l.emit(n.At, ir.CONCAT, leftID, rightID, tmp)
			return tmp
		}
		return l.arith(n.At, ir.AddFor, leftID, lt, rightID, rt, "+")

	case "-":
		l.requireNumeric(n.At, lt, rt, "-")
		return l.arith(n.At, ir.SubFor, leftID, lt, rightID, rt, "-")
	case "*":
		l.requireNumeric(n.At, lt, rt, "*")
		return l.arith(n.At, ir.MulFor, leftID, lt, rightID, rt, "*")
	case "^":
		l.requireNumeric(n.At, lt, rt, "^")
		return l.arith(n.At, ir.ExpFor, leftID, lt, rightID, rt, "^")

	case "/":
		l.requireNumeric(n.At, lt, rt, "/")
		lp := l.promote(n.At, leftID, lt, symtab.Float64)
		rp := l.promote(n.At, rightID, rt, symtab.Float64)
		tmp := l.ST.AddTmp(symtab.Float64, nil)
		l.emit(n.At, ir.FDIV, lp, rp, tmp)
		return tmp

	case "\\":
		l.requireNumeric(n.At, lt, rt, "\\")
		joined, _ := symtab.Join(lt, rt)
		if joined == symtab.Float32 || joined == symtab.Float64 {
			joined = symtab.Int64
		}
		lp := l.promote(n.At, leftID, lt, joined)
		rp := l.promote(n.At, rightID, rt, joined)
		tmp := l.ST.AddTmp(joined, nil)
		l.emit(n.At, ir.IDIV, lp, rp, tmp)
		return tmp

	case "MOD":
		l.requireNumeric(n.At, lt, rt, "MOD")
		joined, _ := symtab.Join(lt, rt)
		lp := l.promote(n.At, leftID, lt, joined)
		rp := l.promote(n.At, rightID, rt, joined)
		tmp := l.ST.AddTmp(joined, nil)
		l.emit(n.At, ir.MOD, lp, rp, tmp)
		return tmp

	case "=", "<>", "<", "<=", ">", ">=":
		return l.compare(n.At, n.Operator, leftID, lt, rightID, rt)

	case "AND", "OR", "XOR", "EQV", "IMP", "<<", ">>":
		l.requireNumeric(n.At, lt, rt, n.Operator)
		joined, _ := symtab.Join(lt, rt)
		lp := l.promote(n.At, leftID, lt, joined)
		rp := l.promote(n.At, rightID, rt, joined)
		tmp := l.ST.AddTmp(joined, nil)
		op := logicalOpcode(n.Operator)
		l.emit(n.At, op, lp, rp, tmp)
		return tmp

	default:
		l.internalf("lower: unknown binary operator %q", n.Operator)
		return symtab.NullID
	}
}

func (l *Lowering) requireNumeric(p parsetree.Pos, lt, rt symtab.DataType, op string) {
	if !lt.IsNumeric() || !rt.IsNumeric() {
		l.fail(berrors.DataTypeMismatch, p, "operator %s requires numeric operands", op)
	}
}

type familyFunc func(symtab.DataType) (ir.OpCode, bool)

func (l *Lowering) arith(p parsetree.Pos, family familyFunc, leftID symtab.EntryID, lt symtab.DataType, rightID symtab.EntryID, rt symtab.DataType, op string) symtab.EntryID {
	joined, ok := symtab.Join(lt, rt)
	if !ok {
		l.fail(berrors.DataTypeMismatch, p, "operator %s requires numeric operands", op)
	}
	lp := l.promote(p, leftID, lt, joined)
	rp := l.promote(p, rightID, rt, joined)
	opcode, ok := family(joined)
	if !ok {
		l.internalf("lower: no opcode for operator %s over %s", op, joined)
	}
	tmp := l.ST.AddTmp(joined, nil)
	l.emit(p, opcode, lp, rp, tmp)
	return tmp
}

func (l *Lowering) compare(p parsetree.Pos, op string, leftID symtab.EntryID, lt symtab.DataType, rightID symtab.EntryID, rt symtab.DataType) symtab.EntryID {
	bothString := lt == symtab.String && rt == symtab.String
	bothNumeric := lt.IsNumeric() && rt.IsNumeric()
	if !bothString && !bothNumeric {
		l.fail(berrors.DataTypeMismatch, p, "operator %s requires either both-string or both-numeric operands", op)
	}
	var compareType symtab.DataType
	if bothString {
		compareType = symtab.String
		// strings never need promotion
	} else {
		var ok bool
		compareType, ok = symtab.Join(lt, rt)
		if !ok {
			l.internalf("lower: Join failed for two numeric operands")
		}
		leftID = l.promote(p, leftID, lt, compareType)
		rightID = l.promote(p, rightID, rt, compareType)
	}

	var family familyFunc
	switch op {
	case "=":
		family = ir.EqFor
	case "<>":
		family = ir.NeFor
	case "<":
		family = ir.LtFor
	case "<=":
		family = ir.LeFor
	case ">":
		family = ir.GtFor
	case ">=":
		family = ir.GeFor
	default:
		l.internalf("lower: unknown comparison operator %q", op)
	}
	opcode, ok := family(compareType)
	if !ok {
		l.internalf("lower: no comparison opcode for %s over %s", op, compareType)
	}
	tmp := l.ST.AddTmp(symtab.Int64, nil)
	l.emit(p, opcode, leftID, rightID, tmp)
	return tmp
}

func logicalOpcode(op string) ir.OpCode {
	switch op {
	case "AND":
		return ir.AND
	case "OR":
		return ir.OR
	case "XOR":
		return ir.XOR
	case "EQV":
		return ir.EQV
	case "IMP":
		return ir.IMP
	case "<<":
		return ir.LEFTSHIFT
	case ">>":
		return ir.RIGHTSHIFT
	}
	return ir.NOT // unreachable, guarded by caller's switch
}
