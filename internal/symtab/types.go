// Package symtab implements the BASIC front end's symbol table: dense
// integer ids for variables, temporaries, labels, UDFs and array
// references, plus the suffix-sigil and default-type-letter rules that
// resolve a bare BASIC name into a typed identity.
package symtab

// DataType is one of the five BASIC scalar types. Int32 < Int64 <
// Float32 < Float64 forms the numeric promotion lattice; String is
// disjoint from it.
type DataType int

const (
	Int32 DataType = iota
	Int64
	Float32
	Float64
	String
)

func (d DataType) String() string {
	switch d {
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case String:
		return "String"
	default:
		return "?"
	}
}

// IsNumeric reports whether d participates in the promotion lattice.
func (d DataType) IsNumeric() bool { return d != String }

// rank gives a numeric type's position in the promotion lattice.
// Only valid for numeric types.
func (d DataType) rank() int { return int(d) }

// Join computes the promotion-lattice join of two numeric types, i.e.
// the result type of a binary arithmetic operation between them. ok is
// false if either side is String and the two are not both String (the
// DATA_TYPE_MISMATCH case); joining two Strings yields (String, true)
// so CONCAT can share this path with arithmetic typing.
func Join(a, b DataType) (DataType, bool) {
	if a == String || b == String {
		if a == String && b == String {
			return String, true
		}
		return 0, false
	}
	if a.rank() >= b.rank() {
		return a, true
	}
	return b, true
}

// EntryID is a dense, monotonically-assigned identity for every
// SymbolEntry. NullID denotes absence.
type EntryID int

const NullID EntryID = -1

// VariableName is the BASIC-level identity of a scalar or array
// variable: two variables are the same iff both name and type match,
// which is how `A%` (Int32) and `A!` (Float32) coexist.
type VariableName struct {
	Bare string
	Type DataType
}

// EntryKind discriminates the SymbolEntry sum type. BASIC's
// Variable/ArrayRef/UDF/Tmp/Label form a closed set, implemented here
// as a tagged union (Kind + per-variant payload pointer) rather than a
// class hierarchy, so every SymbolEntry sits in one id-indexed slice.
type EntryKind int

const (
	KindVariable EntryKind = iota
	KindArrayRef
	KindUDF
	KindTmp
	KindLabel
)

// Variable holds a scalar or array's storage descriptor. Rank 0 means
// scalar; Rank>0 means an array with that many dimensions, each bound
// named in Dimensions once known (DIM may be absent for implicit
// scalars, in which case Rank stays 0).
type Variable struct {
	Name       VariableName
	Rank       int
	Dimensions []int
	ElemType   DataType
}

// ArrayRef is an l-value alias: a Variable plus an index vector built
// up by RESET_ARRAY_IDX/SET_ARRAY_IDX instructions during lowering.
type ArrayRef struct {
	Variable EntryID
	Indices  []EntryID
}

// UDF holds a DEF FN declaration: its ordered formal parameter ids
// (each itself a Variable entry, invisible outside the UDF's
// declaration scope), the id that holds its return value, and the
// label marking its compiled body's entry point.
type UDF struct {
	Params     []EntryID
	ReturnID   EntryID
	ReturnType DataType
	StartLabel EntryID
}

// Tmp is compiler-generated anonymous storage with a fixed type and an
// optional preinitialised literal (e.g. the default STEP of 1 in a FOR
// loop). Temporaries live for the whole program; lowering never
// reclaims them.
type Tmp struct {
	Type    DataType
	Initial interface{}
}

// Label is a branch target. Exactly one of HasLineNumber/Name/neither
// is set: line-number labels are keyed by integer, named labels by
// string, synthetic labels (goto-targets allocated mid-lowering) by
// neither.
type Label struct {
	Name          string
	LineNumber    int
	HasLineNumber bool
	Synthetic     bool
}

// SymbolEntry is the tagged union described above. Exactly the field
// matching Kind is non-nil; code that needs the payload switches on
// Kind rather than downcasting, per spec.md §9.
type SymbolEntry struct {
	ID EntryID
	Kind EntryKind

	Variable *Variable
	ArrayRef *ArrayRef
	UDF      *UDF
	Tmp      *Tmp
	Label    *Label
}
