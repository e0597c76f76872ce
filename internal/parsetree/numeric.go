package parsetree

import (
	"strconv"

	"basiclower/internal/symtab"
)

// NumericValue is the parsed result of a numeric literal: exactly one
// of the four fields is meaningful, selected by Type.
type NumericValue struct {
	Type symtab.DataType
	I32  int32
	I64  int64
	F32  float32
	F64  float64
}

// ParseNumericLiteral implements the numeric literal parser of
// spec.md §4.3/§6: digits in the given base (8, 10, or 16 — the
// sigil, "&H"/"&O"/"&", has already been stripped by the tokeniser,
// which passes the base through explicitly), combined with an
// optional forcing suffix ('!' Float32, '#'/'@' Float64/Int64 per
// context, '&' Int64). A bare decimal literal with no suffix and a
// decimal point or exponent is a float (Float64 unless '!'-suffixed);
// otherwise it is an Int32 unless out of Int32 range, in which case it
// is promoted to Int64 — the smallest integer type that fits. An
// integer literal outside the Int64 range is a malformed-literal error.
func ParseNumericLiteral(text string, base int, suffix byte, isFloat bool) (NumericValue, error) {
	switch suffix {
	case '!':
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return NumericValue{}, malformed(text, err)
		}
		return NumericValue{Type: symtab.Float32, F32: float32(f)}, nil
	case '#':
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return NumericValue{}, malformed(text, err)
		}
		return NumericValue{Type: symtab.Float64, F64: f}, nil
	case '&', '@':
		i, err := strconv.ParseInt(text, base, 64)
		if err != nil {
			return NumericValue{}, malformed(text, err)
		}
		return NumericValue{Type: symtab.Int64, I64: i}, nil
	}

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return NumericValue{}, malformed(text, err)
		}
		return NumericValue{Type: symtab.Float64, F64: f}, nil
	}

	i, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return NumericValue{}, malformed(text, err)
	}
	if i >= -(1<<31) && i <= (1<<31-1) {
		return NumericValue{Type: symtab.Int32, I32: int32(i)}, nil
	}
	return NumericValue{Type: symtab.Int64, I64: i}, nil
}

// malformedLiteralError is returned (not panicked) so a caller in the
// lowering pass can turn it into a berrors.SemanticError carrying the
// original excerpt, per spec.md §6.
type malformedLiteralError struct {
	text string
	err  error
}

func (e *malformedLiteralError) Error() string {
	return "malformed numeric literal " + strconv.Quote(e.text) + ": " + e.err.Error()
}

func malformed(text string, err error) error { return &malformedLiteralError{text: text, err: err} }
