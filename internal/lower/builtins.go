package lower

import (
	"strings"

	"basiclower/internal/berrors"
	"basiclower/internal/ir"
	"basiclower/internal/parsetree"
	"basiclower/internal/symtab"
)

// builtinSpec is one row of the static name→opcode table a function
// call is matched against (SPEC_FULL.md §4.2): fixed arity bounds, a
// fixed result type, and which argument positions (if any) must be
// String rather than numeric. Lowering never invents a new opcode for
// an unrecognised name — it is a semantic error instead.
type builtinSpec struct {
	op         ir.OpCode
	minArgs    int
	maxArgs    int
	result     symtab.DataType
	stringArgs map[int]bool
}

func fixed(op ir.OpCode, argc int, result symtab.DataType, stringArgs ...int) builtinSpec {
	return variadic(op, argc, argc, result, stringArgs...)
}

func variadic(op ir.OpCode, minArgs, maxArgs int, result symtab.DataType, stringArgs ...int) builtinSpec {
	s := builtinSpec{op: op, minArgs: minArgs, maxArgs: maxArgs, result: result}
	if len(stringArgs) > 0 {
		s.stringArgs = make(map[int]bool, len(stringArgs))
		for _, i := range stringArgs {
			s.stringArgs[i] = true
		}
	}
	return s
}

// builtinTable is grounded on original_source/'s function groups
// (SPEC_FULL.md §4.2): one row per FN_* opcode, carrying the same
// kind of fixed shape the ADDI32/EQF64/etc. families carry for
// arithmetic and comparison.
var builtinTable = map[string]builtinSpec{
	// math
	"ABS":        fixed(ir.FN_ABS, 1, symtab.Float64),
	"SQR":        fixed(ir.FN_SQR, 1, symtab.Float64),
	"SIN":        fixed(ir.FN_SIN, 1, symtab.Float64),
	"COS":        fixed(ir.FN_COS, 1, symtab.Float64),
	"TAN":        fixed(ir.FN_TAN, 1, symtab.Float64),
	"ATN":        fixed(ir.FN_ATN, 1, symtab.Float64),
	"LOG":        fixed(ir.FN_LOG, 1, symtab.Float64),
	"EXP":        fixed(ir.FN_EXP, 1, symtab.Float64),
	"SGN":        fixed(ir.FN_SGN, 1, symtab.Int32),
	"FIX":        fixed(ir.FN_FIX, 1, symtab.Int64),
	"CINT":       fixed(ir.FN_CINT, 1, symtab.Int32),
	"CLNG":       fixed(ir.FN_CLNG, 1, symtab.Int64),
	"CSNG":       fixed(ir.FN_CSNG, 1, symtab.Float32),
	"CDBL":       fixed(ir.FN_CDBL, 1, symtab.Float64),
	"INT":        fixed(ir.FN_INT, 1, symtab.Int64),
	"RND":        variadic(ir.FN_RND, 0, 1, symtab.Float64),
	"RANDOMIZE":  variadic(ir.FN_RANDOMIZE, 0, 1, symtab.Int64),

	// string
	"LEN":     fixed(ir.FN_LEN, 1, symtab.Int64, 0),
	"MID":     variadic(ir.FN_MID, 2, 3, symtab.String, 0),
	"LEFT":    fixed(ir.FN_LEFT, 2, symtab.String, 0),
	"RIGHT":   fixed(ir.FN_RIGHT, 2, symtab.String, 0),
	"INSTR":   variadic(ir.FN_INSTR, 2, 3, symtab.Int64),
	"UCASE":   fixed(ir.FN_UCASE, 1, symtab.String, 0),
	"LCASE":   fixed(ir.FN_LCASE, 1, symtab.String, 0),
	"LTRIM":   fixed(ir.FN_LTRIM, 1, symtab.String, 0),
	"RTRIM":   fixed(ir.FN_RTRIM, 1, symtab.String, 0),
	"STR":     fixed(ir.FN_STR, 1, symtab.String),
	"VAL":     fixed(ir.FN_VAL, 1, symtab.Float64, 0),
	"CHR":     fixed(ir.FN_CHR, 1, symtab.String),
	"ASC":     fixed(ir.FN_ASC, 1, symtab.Int64, 0),
	"SPACE":   fixed(ir.FN_SPACE, 1, symtab.String),
	"STRING$": fixed(ir.FN_STRING_REPEAT, 2, symtab.String, 1),

	// conversion
	"HEX": fixed(ir.FN_HEX, 1, symtab.String),
	"OCT": fixed(ir.FN_OCT, 1, symtab.String),

	// collections — handles and element cells are untyped at this
	// layer (the DataType lattice has no map/set member), so only
	// arity is checked; the interpreter owns key/value typing.
	"DICT_NEW":     fixed(ir.FN_DICT_NEW, 0, symtab.Int64),
	"DICT_GET":     fixed(ir.FN_DICT_GET, 2, symtab.Float64),
	"DICT_SET":     fixed(ir.FN_DICT_SET, 3, symtab.Int64),
	"DICT_EXISTS":  fixed(ir.FN_DICT_EXISTS, 2, symtab.Int64),
	"SET_NEW":      fixed(ir.FN_SET_NEW, 0, symtab.Int64),
	"SET_ADD":      fixed(ir.FN_SET_ADD, 2, symtab.Int64),
	"SET_CONTAINS": fixed(ir.FN_SET_CONTAINS, 2, symtab.Int64),

	// graphics (shape only; runtime out of scope)
	"GRAPHICS_SCREEN": fixed(ir.FN_GRAPHICS_SCREEN, 3, symtab.Int64),
	"GRAPHICS_COLOR":  fixed(ir.FN_GRAPHICS_COLOR, 3, symtab.Int64),
	"GRAPHICS_LINE":   fixed(ir.FN_GRAPHICS_LINE, 4, symtab.Int64),
	"GRAPHICS_CIRCLE": fixed(ir.FN_GRAPHICS_CIRCLE, 3, symtab.Int64),
	"GRAPHICS_PSET":   fixed(ir.FN_GRAPHICS_PSET, 2, symtab.Int64),
	"GRAPHICS_GET":    fixed(ir.FN_GRAPHICS_GET, 2, symtab.Int64),
	"GRAPHICS_PUT":    fixed(ir.FN_GRAPHICS_PUT, 3, symtab.Int64),

	// sound (shape only)
	"SOUND_LOAD": fixed(ir.FN_SOUND_LOAD, 1, symtab.Int64, 0),
	"SOUND_PLAY": fixed(ir.FN_SOUND_PLAY, 1, symtab.Int64),
	"SOUND_STOP": fixed(ir.FN_SOUND_STOP, 1, symtab.Int64),
	"SOUND_LOOP": fixed(ir.FN_SOUND_LOOP, 2, symtab.Int64),
	"SOUND_BEEP": fixed(ir.FN_SOUND_BEEP, 0, symtab.Int64),
}

// VisitFuncCall matches n.Name against builtinTable and emits the
// fixed FN_* opcode it names. Up to two arguments are carried directly
// in op1/op2, the same as any other specialised opcode; a call with
// more than two arguments pushes every argument through PARAM1 first (the
// same side-channel OPEN/FIELD/GET/PUT already use for an operand
// count the fixed three-operand shape cannot hold) and the opcode's
// op1 carries the total argument count so the interpreter knows how
// many PARAM1 pushes to drain ahead of it.
func (l *Lowering) VisitFuncCall(n *parsetree.FuncCall) symtab.EntryID {
	name := strings.ToUpper(n.Name)
	spec, ok := builtinTable[name]
	if !ok {
		l.fail(berrors.UnknownFunction, n.At, "unknown function %s", n.Name)
	}
	if len(n.Args) < spec.minArgs || len(n.Args) > spec.maxArgs {
		l.fail(berrors.BadArgument, n.At, "%s expects between %d and %d argument(s), got %d", name, spec.minArgs, spec.maxArgs, len(n.Args))
	}

	collection := spec.op >= ir.FN_DICT_NEW && spec.op <= ir.FN_SET_CONTAINS
	argIDs := make([]symtab.EntryID, len(n.Args))
	for i, arg := range n.Args {
		argID := arg.Accept(l)
		argType := l.ST.TypeOf(argID)
		switch {
		case collection:
			// arity-checked only, see builtinTable
		case spec.stringArgs[i]:
			if argType != symtab.String {
				l.fail(berrors.DataTypeMismatch, n.At, "%s argument %d must be a string", name, i+1)
			}
		case !argType.IsNumeric():
			l.fail(berrors.DataTypeMismatch, n.At, "%s argument %d must be numeric", name, i+1)
		}
		argIDs[i] = argID
	}

	resultTmp := l.ST.AddTmp(spec.result, nil)

	if len(argIDs) <= 2 {
		op1, op2 := symtab.NullID, symtab.NullID
		if len(argIDs) > 0 {
			op1 = argIDs[0]
		}
		if len(argIDs) > 1 {
			op2 = argIDs[1]
		}
		l.emit(n.At, spec.op, op1, op2, resultTmp)
		return resultTmp
	}

	for _, argID := range argIDs {
		l.emit(n.At, ir.PARAM1, argID, symtab.NullID, symtab.NullID)
	}
	countID := l.ST.AddTmp(symtab.Int64, int64(len(argIDs)))
	l.emit(n.At, ir.VALUE, symtab.NullID, symtab.NullID, countID)
	l.emit(n.At, spec.op, countID, symtab.NullID, resultTmp)
	return resultTmp
}
