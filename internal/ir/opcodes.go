package ir

// OpCode enumerates every instruction shape the lowering pass emits
// and the downstream interpreter (out of scope here) must implement.
// Arithmetic and comparison opcodes are specialised per promoted
// result type rather than overloaded at interpretation time, because
// lowering already knows the promoted type and the interpreter should
// not have to re-derive it.
type OpCode int

const (
	// ---- data move ----
	VARIABLE OpCode = iota
	VALUE
	ASSIGN
	COPY

	// ---- array ----
	RESET_ARRAY_IDX
	SET_ARRAY_IDX
	ARRAYREF

	// ---- arithmetic, specialised per result type ----
	ADDI32
	ADDI64
	ADDF32
	ADDF64
	SUBI32
	SUBI64
	SUBF32
	SUBF64
	MULI32
	MULI64
	MULF32
	MULF64
	EXPI32
	EXPI64
	EXPF32
	EXPF64
	IDIV // integer division, operands integral
	FDIV // always promotes to Float64
	MOD
	UNARY_MINUS
	CONCAT // string '+'

	// ---- comparison, result is always an Int64 0/-1 boolean ----
	EQI32
	EQI64
	EQF32
	EQF64
	EQSTR
	NEI32
	NEI64
	NEF32
	NEF64
	NESTR
	LTI32
	LTI64
	LTF32
	LTF64
	LTSTR
	LEI32
	LEI64
	LEF32
	LEF64
	LESTR
	GTI32
	GTI64
	GTF32
	GTF64
	GTSTR
	GEI32
	GEI64
	GEF32
	GEF64
	GESTR

	// ---- logical / bitwise, operate on the integer representation ----
	NOT
	AND
	OR
	XOR
	EQV
	IMP
	LEFTSHIFT
	RIGHTSHIFT

	// ---- control flow ----
	GOTO_LINENUM
	GOTO_LABEL
	GOTO_LABEL_IF
	GOTO_CALLER
	LABEL
	PUSH_RT_SCOPE
	POP_RT_SCOPE
	PUSH_RETLABEL
	RETURN
	END

	// ---- parameter passing side-channel ----
	PARAM1
	PARAM2

	// ---- I/O statement shapes (runtime out of scope) ----
	OPEN
	CLOSE
	CLOSE_ALL
	FIELD
	GET
	PUT
	PRINT
	PRINTUSING
	WRITE_ITEM
	FLUSH

	// ---- built-in functions: math ----
	FN_ABS
	FN_SQR
	FN_SIN
	FN_COS
	FN_TAN
	FN_ATN
	FN_LOG
	FN_EXP
	FN_SGN
	FN_FIX
	FN_CINT
	FN_CLNG
	FN_CSNG
	FN_CDBL
	FN_INT
	FN_RND
	FN_RANDOMIZE

	// ---- built-in functions: string ----
	FN_LEN
	FN_MID
	FN_LEFT
	FN_RIGHT
	FN_INSTR
	FN_UCASE
	FN_LCASE
	FN_LTRIM
	FN_RTRIM
	FN_STR
	FN_VAL
	FN_CHR
	FN_ASC
	FN_SPACE
	FN_STRING_REPEAT

	// ---- built-in functions: conversion (HEX/OCT beyond the CINT family above) ----
	FN_HEX
	FN_OCT

	// ---- built-in functions: collections ----
	FN_DICT_NEW
	FN_DICT_GET
	FN_DICT_SET
	FN_DICT_EXISTS
	FN_SET_NEW
	FN_SET_ADD
	FN_SET_CONTAINS

	// ---- built-in functions: graphics (shape only, runtime out of scope) ----
	FN_GRAPHICS_SCREEN
	FN_GRAPHICS_COLOR
	FN_GRAPHICS_LINE
	FN_GRAPHICS_CIRCLE
	FN_GRAPHICS_PSET
	FN_GRAPHICS_GET
	FN_GRAPHICS_PUT

	// ---- built-in functions: sound (shape only, runtime out of scope) ----
	FN_SOUND_LOAD
	FN_SOUND_PLAY
	FN_SOUND_STOP
	FN_SOUND_LOOP
	FN_SOUND_BEEP

	opCodeCount
)

var opCodeNames = [...]string{
	VARIABLE: "VARIABLE", VALUE: "VALUE", ASSIGN: "ASSIGN", COPY: "COPY",
	RESET_ARRAY_IDX: "RESET_ARRAY_IDX", SET_ARRAY_IDX: "SET_ARRAY_IDX", ARRAYREF: "ARRAYREF",
	ADDI32: "ADDI32", ADDI64: "ADDI64", ADDF32: "ADDF32", ADDF64: "ADDF64",
	SUBI32: "SUBI32", SUBI64: "SUBI64", SUBF32: "SUBF32", SUBF64: "SUBF64",
	MULI32: "MULI32", MULI64: "MULI64", MULF32: "MULF32", MULF64: "MULF64",
	EXPI32: "EXPI32", EXPI64: "EXPI64", EXPF32: "EXPF32", EXPF64: "EXPF64",
	IDIV: "IDIV", FDIV: "FDIV", MOD: "MOD", UNARY_MINUS: "UNARY_MINUS", CONCAT: "CONCAT",
	EQI32: "EQI32", EQI64: "EQI64", EQF32: "EQF32", EQF64: "EQF64", EQSTR: "EQSTR",
	NEI32: "NEI32", NEI64: "NEI64", NEF32: "NEF32", NEF64: "NEF64", NESTR: "NESTR",
	LTI32: "LTI32", LTI64: "LTI64", LTF32: "LTF32", LTF64: "LTF64", LTSTR: "LTSTR",
	LEI32: "LEI32", LEI64: "LEI64", LEF32: "LEF32", LEF64: "LEF64", LESTR: "LESTR",
	GTI32: "GTI32", GTI64: "GTI64", GTF32: "GTF32", GTF64: "GTF64", GTSTR: "GTSTR",
	GEI32: "GEI32", GEI64: "GEI64", GEF32: "GEF32", GEF64: "GEF64", GESTR: "GESTR",
	NOT: "NOT", AND: "AND", OR: "OR", XOR: "XOR", EQV: "EQV", IMP: "IMP",
	LEFTSHIFT: "LEFTSHIFT", RIGHTSHIFT: "RIGHTSHIFT",
	GOTO_LINENUM: "GOTO_LINENUM", GOTO_LABEL: "GOTO_LABEL", GOTO_LABEL_IF: "GOTO_LABEL_IF",
	GOTO_CALLER: "GOTO_CALLER", LABEL: "LABEL",
	PUSH_RT_SCOPE: "PUSH_RT_SCOPE", POP_RT_SCOPE: "POP_RT_SCOPE",
	PUSH_RETLABEL: "PUSH_RETLABEL", RETURN: "RETURN", END: "END",
	PARAM1: "PARAM1", PARAM2: "PARAM2",
	OPEN: "OPEN", CLOSE: "CLOSE", CLOSE_ALL: "CLOSE_ALL", FIELD: "FIELD",
	GET: "GET", PUT: "PUT", PRINT: "PRINT", PRINTUSING: "PRINTUSING",
	WRITE_ITEM: "WRITE_ITEM", FLUSH: "FLUSH",
	FN_ABS: "FN_ABS", FN_SQR: "FN_SQR", FN_SIN: "FN_SIN", FN_COS: "FN_COS", FN_TAN: "FN_TAN",
	FN_ATN: "FN_ATN", FN_LOG: "FN_LOG", FN_EXP: "FN_EXP", FN_SGN: "FN_SGN", FN_FIX: "FN_FIX",
	FN_CINT: "FN_CINT", FN_CLNG: "FN_CLNG", FN_CSNG: "FN_CSNG", FN_CDBL: "FN_CDBL",
	FN_INT: "FN_INT", FN_RND: "FN_RND", FN_RANDOMIZE: "FN_RANDOMIZE",
	FN_LEN: "FN_LEN", FN_MID: "FN_MID", FN_LEFT: "FN_LEFT", FN_RIGHT: "FN_RIGHT",
	FN_INSTR: "FN_INSTR", FN_UCASE: "FN_UCASE", FN_LCASE: "FN_LCASE",
	FN_LTRIM: "FN_LTRIM", FN_RTRIM: "FN_RTRIM", FN_STR: "FN_STR", FN_VAL: "FN_VAL",
	FN_CHR: "FN_CHR", FN_ASC: "FN_ASC", FN_SPACE: "FN_SPACE", FN_STRING_REPEAT: "FN_STRING_REPEAT",
	FN_HEX: "FN_HEX", FN_OCT: "FN_OCT",
	FN_DICT_NEW: "FN_DICT_NEW", FN_DICT_GET: "FN_DICT_GET", FN_DICT_SET: "FN_DICT_SET",
	FN_DICT_EXISTS: "FN_DICT_EXISTS", FN_SET_NEW: "FN_SET_NEW", FN_SET_ADD: "FN_SET_ADD",
	FN_SET_CONTAINS: "FN_SET_CONTAINS",
	FN_GRAPHICS_SCREEN: "FN_GRAPHICS_SCREEN", FN_GRAPHICS_COLOR: "FN_GRAPHICS_COLOR",
	FN_GRAPHICS_LINE: "FN_GRAPHICS_LINE", FN_GRAPHICS_CIRCLE: "FN_GRAPHICS_CIRCLE",
	FN_GRAPHICS_PSET: "FN_GRAPHICS_PSET", FN_GRAPHICS_GET: "FN_GRAPHICS_GET",
	FN_GRAPHICS_PUT: "FN_GRAPHICS_PUT",
	FN_SOUND_LOAD: "FN_SOUND_LOAD", FN_SOUND_PLAY: "FN_SOUND_PLAY",
	FN_SOUND_STOP: "FN_SOUND_STOP", FN_SOUND_LOOP: "FN_SOUND_LOOP", FN_SOUND_BEEP: "FN_SOUND_BEEP",
}

func (op OpCode) String() string {
	if int(op) >= 0 && int(op) < len(opCodeNames) && opCodeNames[op] != "" {
		return opCodeNames[op]
	}
	return "UNKNOWN_OPCODE"
}

// addOpcodes ... geOpcodes let lowering pick the right specialised
// opcode for a promoted result type without a long switch at every
// call site.
var addOpcodes = map[symDataType]OpCode{i32: ADDI32, i64: ADDI64, f32: ADDF32, f64: ADDF64}
var subOpcodes = map[symDataType]OpCode{i32: SUBI32, i64: SUBI64, f32: SUBF32, f64: SUBF64}
var mulOpcodes = map[symDataType]OpCode{i32: MULI32, i64: MULI64, f32: MULF32, f64: MULF64}
var expOpcodes = map[symDataType]OpCode{i32: EXPI32, i64: EXPI64, f32: EXPF32, f64: EXPF64}

var eqOpcodes = map[symDataType]OpCode{i32: EQI32, i64: EQI64, f32: EQF32, f64: EQF64, str: EQSTR}
var neOpcodes = map[symDataType]OpCode{i32: NEI32, i64: NEI64, f32: NEF32, f64: NEF64, str: NESTR}
var ltOpcodes = map[symDataType]OpCode{i32: LTI32, i64: LTI64, f32: LTF32, f64: LTF64, str: LTSTR}
var leOpcodes = map[symDataType]OpCode{i32: LEI32, i64: LEI64, f32: LEF32, f64: LEF64, str: LESTR}
var gtOpcodes = map[symDataType]OpCode{i32: GTI32, i64: GTI64, f32: GTF32, f64: GTF64, str: GTSTR}
var geOpcodes = map[symDataType]OpCode{i32: GEI32, i64: GEI64, f32: GEF32, f64: GEF64, str: GESTR}

// AddFor, SubFor, ... resolve the per-type opcode for an arithmetic
// family. ok is false for a DataType with no member in that family
// (e.g. asking SubFor(String)).
func AddFor(dt symDataType) (OpCode, bool) { op, ok := addOpcodes[dt]; return op, ok }
func SubFor(dt symDataType) (OpCode, bool) { op, ok := subOpcodes[dt]; return op, ok }
func MulFor(dt symDataType) (OpCode, bool) { op, ok := mulOpcodes[dt]; return op, ok }
func ExpFor(dt symDataType) (OpCode, bool) { op, ok := expOpcodes[dt]; return op, ok }

func EqFor(dt symDataType) (OpCode, bool) { op, ok := eqOpcodes[dt]; return op, ok }
func NeFor(dt symDataType) (OpCode, bool) { op, ok := neOpcodes[dt]; return op, ok }
func LtFor(dt symDataType) (OpCode, bool) { op, ok := ltOpcodes[dt]; return op, ok }
func LeFor(dt symDataType) (OpCode, bool) { op, ok := leOpcodes[dt]; return op, ok }
func GtFor(dt symDataType) (OpCode, bool) { op, ok := gtOpcodes[dt]; return op, ok }
func GeFor(dt symDataType) (OpCode, bool) { op, ok := geOpcodes[dt]; return op, ok }
