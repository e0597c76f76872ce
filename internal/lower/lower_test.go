package lower

import (
	"testing"

	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

func pos(line int, text string) parsetree.Pos { return parsetree.Pos{Line: line, Text: text} }

func numLit(text string) *parsetree.NumberLiteral {
	return &parsetree.NumberLiteral{At: pos(1, text), Text: text, Base: 10}
}

func floatLit(text string) *parsetree.NumberLiteral {
	return &parsetree.NumberLiteral{At: pos(1, text), Text: text, Base: 10, IsFloat: true}
}

func varRef(name string, suffix byte) *parsetree.VariableRef {
	return &parsetree.VariableRef{At: pos(1, name), Name: name, Suffix: suffix}
}

// Scenario 1: mixing Int32 and Float64 promotes the result to Float64.
func TestIntegerFloatPromotion(t *testing.T) {
	l := New("t.bas", nil)
	bin := &parsetree.Binary{At: pos(1, "A% + B#"), Operator: "+", Left: numLit("3"), Right: floatLit("2.5")}
	resultID := bin.Accept(l)
	if got := l.ST.TypeOf(resultID); got != symtab.Float64 {
		t.Fatalf("expected Float64 result, got %s", got)
	}
}

func TestStringConcatYieldsString(t *testing.T) {
	l := New("t.bas", nil)
	bin := &parsetree.Binary{
		At:       pos(1, `"a" + "b"`),
		Operator: "+",
		Left:     &parsetree.StringLiteral{At: pos(1, `"a"`), Value: "a"},
		Right:    &parsetree.StringLiteral{At: pos(1, `"b"`), Value: "b"},
	}
	resultID := bin.Accept(l)
	if got := l.ST.TypeOf(resultID); got != symtab.String {
		t.Fatalf("expected String result, got %s", got)
	}
	found := false
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.CONCAT {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a CONCAT instruction")
	}
}

func TestStringNumericMixRejected(t *testing.T) {
	l := New("t.bas", nil)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for mixed string/numeric '+'")
		}
	}()
	bin := &parsetree.Binary{
		At:       pos(1, `"a" + 1`),
		Operator: "+",
		Left:     &parsetree.StringLiteral{At: pos(1, `"a"`), Value: "a"},
		Right:    numLit("1"),
	}
	bin.Accept(l)
}

func TestFDivAlwaysDouble(t *testing.T) {
	l := New("t.bas", nil)
	bin := &parsetree.Binary{At: pos(1, "A% / B%"), Operator: "/", Left: numLit("7"), Right: numLit("2")}
	resultID := bin.Accept(l)
	if got := l.ST.TypeOf(resultID); got != symtab.Float64 {
		t.Fatalf("expected Float64 from '/', got %s", got)
	}
}

// Scenario 2: FOR with a negative STEP lowers a well-formed loop whose
// exit jump gets patched (no NULL_ID left behind on it).
func TestForNegativeStepPatchesExitJump(t *testing.T) {
	l := New("t.bas", nil)
	forStmt := &parsetree.For{
		At:   pos(10, "FOR I% = 5 TO 1 STEP -1"),
		Var:  "I",
		Suffix: '%',
		Init: numLit("5"),
		End:  numLit("1"),
		Step: &parsetree.Unary{At: pos(10, "-1"), Operator: "-", Operand: numLit("1")},
	}
	forStmt.Accept(l)
	next := &parsetree.Next{At: pos(20, "NEXT I%")}
	next.Accept(l)

	if len(l.forStack) != 0 {
		t.Fatal("FOR stack should be empty after matching NEXT")
	}
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.GOTO_LABEL_IF && instr.Op2() == symtab.NullID {
			t.Fatal("found an unpatched GOTO_LABEL_IF after NEXT closed the loop")
		}
	}
}

// Scenario 3: nested multi-line IF BEGIN/END IF lowers with every
// branch jump patched and the stack balanced.
func TestNestedIfBeginEndIf(t *testing.T) {
	l := New("t.bas", nil)
	outer := &parsetree.IfThenBegin{At: pos(10, "IF A% THEN BEGIN"), Cond: varRef("A", '%')}
	outer.Accept(l)
	inner := &parsetree.IfThenBegin{At: pos(20, "IF B% THEN BEGIN"), Cond: varRef("B", '%')}
	inner.Accept(l)
	(&parsetree.ElseBegin{At: pos(30, "ELSE BEGIN")}).Accept(l)
	(&parsetree.EndIf{At: pos(40, "END IF")}).Accept(l)
	(&parsetree.EndIf{At: pos(50, "END IF")}).Accept(l)

	if len(l.ifStack) != 0 {
		t.Fatal("IF stack should be empty once both END IFs are seen")
	}
	for _, instr := range l.Prog.All() {
		if (instr.Op == ir.GOTO_LABEL_IF || instr.Op == ir.GOTO_LABEL) && instr.Op2() == symtab.NullID {
			t.Fatalf("found an unpatched %s jump", instr.Op)
		}
	}
}

func TestMismatchedEndIfPanics(t *testing.T) {
	l := New("t.bas", nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for END IF with no matching IF")
		}
	}()
	(&parsetree.EndIf{At: pos(1, "END IF")}).Accept(l)
}

// Scenario 4: a recursive UDF call is lowered without the outer call's
// return value being overwritten by the inner one, because every call
// site wraps the shared return cell in its own fresh COPY.
func TestUDFRecursionWrapsReturnInFreshCopy(t *testing.T) {
	l := New("t.bas", nil)
	defFn := &parsetree.DefFn{
		At:     pos(10, "DEF FN F(N%)"),
		Name:   "F",
		Params: []parsetree.Param{{Name: "N", Suffix: '%'}},
		Body: &parsetree.Binary{
			At:       pos(10, "N% * FN F(N% - 1)"),
			Operator: "*",
			Left:     varRef("N", '%'),
			Right: &parsetree.UDFCall{
				At:   pos(10, "FN F(N%-1)"),
				Name: "F",
				Args: []parsetree.Expr{&parsetree.Binary{At: pos(10, "N%-1"), Operator: "-", Left: varRef("N", '%'), Right: numLit("1")}},
			},
		},
	}
	defFn.Accept(l)

	call := &parsetree.UDFCall{At: pos(20, "FN F(5)"), Name: "F", Args: []parsetree.Expr{numLit("5")}}
	resultID := call.Accept(l)

	udfID, ok := l.ST.LookupUDF("F")
	if !ok {
		t.Fatal("expected F to be registered")
	}
	if resultID == l.ST.Get(udfID).UDF.ReturnID {
		t.Fatal("call result must be a fresh copy, not the shared return cell")
	}
}

func TestUDFArityMismatchPanics(t *testing.T) {
	l := New("t.bas", nil)
	defFn := &parsetree.DefFn{
		At: pos(10, "DEF FN G(X%)"), Name: "G",
		Params: []parsetree.Param{{Name: "X", Suffix: '%'}},
		Body:   varRef("X", '%'),
	}
	defFn.Accept(l)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for arity mismatch")
		}
	}()
	call := &parsetree.UDFCall{At: pos(20, "FN G()"), Name: "G"}
	call.Accept(l)
}

// Scenario 5: WHILE without a matching WEND is only detected once the
// program ends.
func TestWhileWithoutWendDetectedAtProgramEnd(t *testing.T) {
	l := New("t.bas", nil)
	prog := &parsetree.Program{Lines: []parsetree.Line{
		{Number: 10, HasNumber: true, Stmt: &parsetree.While{At: pos(10, "WHILE 1"), Cond: numLit("1")}},
	}}
	if err := l.Program(prog); err == nil {
		t.Fatal("expected WHILE_WITHOUT_WEND")
	}
}

// Scenario 6: indexing a scalar variable is a semantic error.
func TestScalarCannotBeIndexed(t *testing.T) {
	l := New("t.bas", nil)
	l.ST.GetOrCreateVariable(symtab.VariableName{Bare: "X", Type: symtab.Int32})
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic indexing a scalar")
		}
		if se, ok := r.(*berrors.SemanticError); !ok || se.Kind != berrors.ScalarCannotBeIndexed {
			t.Fatalf("expected SCALAR_VARIABLE_CANNOT_BE_INDEXED, got %v", r)
		}
	}()
	ref := &parsetree.VariableRef{At: pos(1, "X(1)"), Name: "X", Suffix: '%', Indices: []parsetree.Expr{numLit("1")}}
	ref.Accept(l)
}

func TestArrayUsedBeforeDimIsNotDefined(t *testing.T) {
	l := New("t.bas", nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected NOT_DEFINED for an undeclared array")
		}
	}()
	ref := &parsetree.VariableRef{At: pos(1, "Y(1)"), Name: "Y", Suffix: '%', Indices: []parsetree.Expr{numLit("1")}}
	ref.Accept(l)
}

// GOTO_LABEL_IF branches when its condition is true: the skip jump
// right after it must be the one patched to land at the end label
// when there is no ELSE BEGIN, and the then label must come before
// the then-body, not after.
func TestIfThenBeginSkipsOnFalse(t *testing.T) {
	l := New("t.bas", nil)
	ifHdr := &parsetree.IfThenBegin{At: pos(10, "IF A% THEN BEGIN"), Cond: varRef("A", '%')}
	ifHdr.Accept(l)
	(&parsetree.EndIf{At: pos(20, "END IF")}).Accept(l)

	instrs := l.Prog.All()
	var thenJumpIdx, skipJumpIdx = -1, -1
	for i, instr := range instrs {
		if instr.Op == ir.GOTO_LABEL_IF && thenJumpIdx == -1 {
			thenJumpIdx = i
		}
		if instr.Op == ir.GOTO_LABEL && skipJumpIdx == -1 {
			skipJumpIdx = i
		}
	}
	if thenJumpIdx == -1 || skipJumpIdx != thenJumpIdx+1 {
		t.Fatalf("expected GOTO_LABEL_IF immediately followed by an unconditional skip jump, got thenJumpIdx=%d skipJumpIdx=%d", thenJumpIdx, skipJumpIdx)
	}
	thenJump := instrs[thenJumpIdx]
	thenLabelInstr := instrs[skipJumpIdx+1]
	if thenLabelInstr.Op != ir.LABEL || thenJump.Op2() != thenLabelInstr.Op1() {
		t.Fatal("GOTO_LABEL_IF must branch straight to the then label emitted right after the skip jump")
	}
	endLabelInstr := instrs[len(instrs)-1]
	if endLabelInstr.Op != ir.LABEL || instrs[skipJumpIdx].Op2() != endLabelInstr.Op1() {
		t.Fatal("with no ELSE BEGIN the skip jump must be patched to the END IF label")
	}
}

// WHILE negates its condition before testing it, since GOTO_LABEL_IF
// always branches on true and WEND needs to leave the loop when the
// condition is false.
func TestWhileNegatesConditionBeforeExitTest(t *testing.T) {
	l := New("t.bas", nil)
	w := &parsetree.While{At: pos(10, "WHILE A%"), Cond: varRef("A", '%')}
	w.Accept(l)
	(&parsetree.Wend{At: pos(20, "WEND")}).Accept(l)

	found := false
	instrs := l.Prog.All()
	for i, instr := range instrs {
		if instr.Op == ir.NOT {
			found = true
			if i+1 >= len(instrs) || instrs[i+1].Op != ir.GOTO_LABEL_IF || instrs[i+1].Op1() != instr.Result {
				t.Fatal("the exit GOTO_LABEL_IF must test the NOT's result right after it")
			}
		}
	}
	if !found {
		t.Fatal("expected WHILE to emit a NOT before its exit test")
	}
}

// GOTO/GOSUB to a named label must emit GOTO_LABEL, not GOTO_LINENUM.
func TestGotoNamedLabelEmitsGotoLabel(t *testing.T) {
	l := New("t.bas", nil)
	g := &parsetree.Goto{At: pos(10, "GOTO START"), Target: parsetree.GotoTarget{Label: "START"}}
	g.Accept(l)

	found := false
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.GOTO_LABEL {
			found = true
		}
		if instr.Op == ir.GOTO_LINENUM {
			t.Fatal("GOTO to a named label must not emit GOTO_LINENUM")
		}
	}
	if !found {
		t.Fatal("expected a GOTO_LABEL instruction")
	}
}

// GOTO to a line number must still emit GOTO_LINENUM.
func TestGotoLineNumberEmitsGotoLinenum(t *testing.T) {
	l := New("t.bas", nil)
	g := &parsetree.Goto{At: pos(10, "GOTO 100"), Target: parsetree.GotoTarget{HasLine: true, Line: 100}}
	g.Accept(l)

	found := false
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.GOTO_LINENUM {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a GOTO_LINENUM instruction")
	}
}

// A DEF FN whose body type is incompatible with its declared return
// type (string vs numeric) is a semantic error, same as an ordinary
// LET.
func TestDefFnBadReturnAssignmentPanics(t *testing.T) {
	l := New("t.bas", nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a string body assigned to a numeric FN return")
		}
	}()
	defFn := &parsetree.DefFn{
		At: pos(10, "DEF FN S%(X$)"), Name: "S", Suffix: '%',
		Params: []parsetree.Param{{Name: "X", Suffix: '$'}},
		Body:   &parsetree.StringLiteral{At: pos(10, `"x"`), Value: "x"},
	}
	defFn.Accept(l)
}

// PRINT and WRITE both end with a FLUSH on the same file number.
func TestPrintAndWriteEndWithFlush(t *testing.T) {
	l := New("t.bas", nil)
	print := &parsetree.PrintStmt{At: pos(10, "PRINT 1"), Items: []parsetree.PrintItem{{Value: numLit("1")}}}
	print.Accept(l)
	write := &parsetree.WriteStmt{At: pos(20, `WRITE "a"`), Items: []parsetree.Expr{&parsetree.StringLiteral{At: pos(20, `"a"`), Value: "a"}}}
	write.Accept(l)

	count := 0
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.FLUSH {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected one FLUSH per statement, got %d", count)
	}
}

// ABS() is a recognised built-in: it resolves against the static
// name table and emits FN_ABS with a Float64 result.
func TestBuiltinFuncCallLowersToNamedOpcode(t *testing.T) {
	l := New("t.bas", nil)
	call := &parsetree.FuncCall{At: pos(10, "ABS(X%)"), Name: "ABS", Args: []parsetree.Expr{varRef("X", '%')}}
	resultID := call.Accept(l)
	if got := l.ST.TypeOf(resultID); got != symtab.Float64 {
		t.Fatalf("expected Float64 result from ABS, got %s", got)
	}
	found := false
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.FN_ABS {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an FN_ABS instruction")
	}
}

func TestUnknownFuncCallPanics(t *testing.T) {
	l := New("t.bas", nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an unrecognised function name")
		}
	}()
	call := &parsetree.FuncCall{At: pos(10, "NOPE(1)"), Name: "NOPE", Args: []parsetree.Expr{numLit("1")}}
	call.Accept(l)
}

// A built-in call with more than two arguments routes every argument
// through PARAM1 ahead of its opcode, mirroring OPEN/FIELD.
func TestBuiltinFuncCallWithManyArgsUsesParam1(t *testing.T) {
	l := New("t.bas", nil)
	call := &parsetree.FuncCall{
		At: pos(10, "MID(A$,1,2)"), Name: "MID",
		Args: []parsetree.Expr{
			&parsetree.StringLiteral{At: pos(10, `"a"`), Value: "a"},
			numLit("1"),
			numLit("2"),
		},
	}
	call.Accept(l)

	param1Count, fnMidCount := 0, 0
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.PARAM1 {
			param1Count++
		}
		if instr.Op == ir.FN_MID {
			fnMidCount++
		}
	}
	if param1Count != 3 {
		t.Fatalf("expected 3 PARAM1 pushes for MID's 3 arguments, got %d", param1Count)
	}
	if fnMidCount != 1 {
		t.Fatalf("expected exactly one FN_MID instruction, got %d", fnMidCount)
	}
}

func TestLabelUniquenessAcrossProgram(t *testing.T) {
	l := New("t.bas", nil)
	prog := &parsetree.Program{Lines: []parsetree.Line{
		{Number: 10, HasNumber: true, Stmt: &parsetree.LetStmt{At: pos(10, "A% = 1"), Name: "A", Suffix: '%', Value: numLit("1")}},
		{Number: 20, HasNumber: true, Stmt: &parsetree.Goto{At: pos(20, "GOTO 10"), Target: parsetree.GotoTarget{HasLine: true, Line: 10}}},
	}}
	if err := l.Program(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := map[symtab.EntryID]int{}
	for _, instr := range l.Prog.All() {
		if instr.Op == ir.LABEL {
			counts[instr.Op1()]++
		}
	}
	for id, c := range counts {
		if c != 1 {
			t.Fatalf("label %d emitted %d times, want exactly 1", id, c)
		}
	}
}

