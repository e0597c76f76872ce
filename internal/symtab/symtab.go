package symtab

import "strings"

// EntryFactory builds a fresh SymbolEntry for a name that has not been
// seen before. EntryVisitor then runs against the (possibly freshly
// created) entry on every call, whether or not it already existed —
// this is where a caller applies per-occurrence logic such as an
// arity check on a UDF call or appending an index operand to an
// ArrayRef.
type EntryFactory func() SymbolEntry
type EntryVisitor func(id EntryID, entry *SymbolEntry) error

// Scope is the declaration scope opened for a DEF FN body: its formal
// parameters shadow same-named globals while the body is being
// lowered, and stop shadowing once popped, while remaining perfectly
// good ids — the variables they named simply become unreachable by
// name from outside the UDF (spec.md §3's "parameter ids are invisible
// outside their UDF").
type Scope struct {
	UDF    EntryID
	Params map[VariableName]EntryID
}

// SymbolTable owns every SymbolEntry for one compilation. It assigns
// dense integer ids, resolves bare name + suffix into a typed
// VariableName, and tracks DEF FN declaration scopes and DEFINT-family
// default-type letter ranges. Not safe for concurrent use — lowering
// is single-threaded, per spec.md §5.
type SymbolTable struct {
	entries []SymbolEntry

	byVariable map[VariableName]EntryID
	byUDFName  map[string]EntryID
	byLabel    map[string]EntryID
	byLine     map[int]EntryID

	scopes []*Scope

	defaultType [26]DataType

	declaredArrays map[VariableName]bool
}

func New() *SymbolTable {
	st := &SymbolTable{
		byVariable: make(map[VariableName]EntryID),
		byUDFName:  make(map[string]EntryID),
		byLabel:    make(map[string]EntryID),
		byLine:     make(map[int]EntryID),
		declaredArrays: make(map[VariableName]bool),
	}
	for i := range st.defaultType {
		st.defaultType[i] = Float64
	}
	return st
}

func (st *SymbolTable) allocate(e SymbolEntry) EntryID {
	id := EntryID(len(st.entries))
	e.ID = id
	st.entries = append(st.entries, e)
	return id
}

// Get returns the entry for id. Panics on an out-of-range id: that is
// always a compiler bug (an operand id that does not resolve), never a
// user-facing condition — callers that might receive an untrusted id
// should check TryGet instead.
func (st *SymbolTable) Get(id EntryID) SymbolEntry {
	return st.entries[id]
}

func (st *SymbolTable) TryGet(id EntryID) (SymbolEntry, bool) {
	if id < 0 || int(id) >= len(st.entries) {
		return SymbolEntry{}, false
	}
	return st.entries[id], true
}

// Len returns the number of allocated entries, for diagnostics.
func (st *SymbolTable) Len() int { return len(st.entries) }

// ---- default-type table (DEFINT/DEFLNG/DEFSNG/DEFDBL/DEFSTR) ----

// SetDefaultDataType implements one letter range of a DEFxxx statement,
// e.g. DEFINT A-F walks 'A'..'F' and assigns Int32 to each.
func (st *SymbolTable) SetDefaultDataType(from, to byte, dt DataType) {
	from, to = upper(from), upper(to)
	for c := from; c <= to; c++ {
		st.defaultType[c-'A'] = dt
	}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// ResolveType implements resolve_type: a suffix sigil (if non-zero)
// always wins; otherwise the bare name's first letter is looked up in
// the default-type table, which defaults every letter to Float64 per
// BASIC convention.
func (st *SymbolTable) ResolveType(bareName string, suffix byte) DataType {
	switch suffix {
	case '%':
		return Int32
	case '&', '@':
		return Int64
	case '!':
		return Float32
	case '#':
		return Float64
	case '$':
		return String
	}
	if bareName == "" {
		return Float64
	}
	first := upper(bareName[0])
	if first < 'A' || first > 'Z' {
		return Float64
	}
	return st.defaultType[first-'A']
}

// ---- variables ----

// GetOrCreateVariable is the idempotent get-or-create for scalar and
// array variables (add_variable_or_udf specialised to the Variable
// case). It consults the innermost-to-outermost active declaration
// scope before falling back to the global namespace, so a UDF
// parameter shadows a same-named global for the duration of the UDF
// body.
func (st *SymbolTable) GetOrCreateVariable(name VariableName) EntryID {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if id, ok := st.scopes[i].Params[name]; ok {
			return id
		}
	}
	if id, ok := st.byVariable[name]; ok {
		return id
	}
	id := st.allocate(SymbolEntry{Kind: KindVariable, Variable: &Variable{Name: name}})
	st.byVariable[name] = id
	return id
}

// DeclareArray marks name as a Rank-dimensional array with the given
// element type, creating it if necessary and upgrading an existing
// scalar-shaped entry in place (DIM after a bare reference is legal
// BASIC as long as the bare reference was never itself indexed).
func (st *SymbolTable) DeclareArray(name VariableName, dims []int) EntryID {
	id := st.GetOrCreateVariable(name)
	v := st.entries[id].Variable
	v.Rank = len(dims)
	v.Dimensions = append([]int(nil), dims...)
	v.ElemType = name.Type
	st.declaredArrays[name] = true
	return id
}

// IsDeclared reports whether name has been through a DIM statement.
// Only arrays are tracked this way: BASIC zero-initialises a bare
// scalar read before any LET, so NOT_DEFINED only ever fires for an
// indexed reference to a name DIM never saw (spec.md §7).
func (st *SymbolTable) IsDeclared(name VariableName) bool {
	return st.declaredArrays[name]
}

// DeclareParam allocates a fresh Variable entry bound into the
// innermost active declaration scope, used for DEF FN formal
// parameters. It never reuses an existing global id even if one with
// the same VariableName exists, matching the child-scope invariant.
func (st *SymbolTable) DeclareParam(name VariableName) EntryID {
	id := st.allocate(SymbolEntry{Kind: KindVariable, Variable: &Variable{Name: name}})
	if len(st.scopes) > 0 {
		st.scopes[len(st.scopes)-1].Params[name] = id
	}
	return id
}

// ---- UDFs ----

// AddVariableOrUDF is the literal operation named in spec.md §4.1: an
// idempotent get-or-create keyed by a caller-chosen string (callers
// use UDFKey for DEF FN names), with factory deciding the entry's
// shape on first creation and visitor applying per-call logic (e.g.
// arity checks) on every call.
func (st *SymbolTable) AddVariableOrUDF(key string, byName map[string]EntryID, factory EntryFactory, visitor EntryVisitor) (EntryID, error) {
	id, existed := byName[key]
	if !existed {
		id = st.allocate(factory())
		byName[key] = id
	}
	if visitor != nil {
		if err := visitor(id, &st.entries[id]); err != nil {
			return NullID, err
		}
	}
	return id, nil
}

// UDFKey is the namespace key DEF FN declarations use with
// AddVariableOrUDF / LookupUDF.
func UDFKey(fullName string) string { return "FN:" + strings.ToUpper(fullName) }

func (st *SymbolTable) LookupUDF(fullName string) (EntryID, bool) {
	id, ok := st.byUDFName[UDFKey(fullName)]
	return id, ok
}

func (st *SymbolTable) UDFNames() map[string]EntryID { return st.byUDFName }

// DeclareUDF registers a brand-new UDF, always allocating a fresh
// entry rather than going through the idempotent AddVariableOrUDF
// path. Redeclaring a name rebinds it to the new entry; neither this
// method nor its caller rejects the redeclaration.
func (st *SymbolTable) DeclareUDF(fullName string, returnType DataType, startLabel EntryID) EntryID {
	id := st.allocate(SymbolEntry{Kind: KindUDF, UDF: &UDF{ReturnType: returnType, StartLabel: startLabel}})
	st.byUDFName[UDFKey(fullName)] = id
	return id
}

// SetUDFSignature fills in a UDF's parameter ids and return-value cell
// once DeclareParam/AddTmp have allocated them; DeclareUDF itself only
// knows the return type and start label up front.
func (st *SymbolTable) SetUDFSignature(id EntryID, params []EntryID, returnID EntryID) {
	u := st.entries[id].UDF
	u.Params = append([]EntryID(nil), params...)
	u.ReturnID = returnID
}

// ---- scopes ----

func (st *SymbolTable) PushDeclarationScope(udf EntryID) {
	st.scopes = append(st.scopes, &Scope{UDF: udf, Params: make(map[VariableName]EntryID)})
}

func (st *SymbolTable) PopScope() {
	if len(st.scopes) == 0 {
		return
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

func (st *SymbolTable) InScope() bool { return len(st.scopes) > 0 }

func (st *SymbolTable) CurrentScope() *Scope {
	if len(st.scopes) == 0 {
		return nil
	}
	return st.scopes[len(st.scopes)-1]
}

// ---- temporaries ----

func (st *SymbolTable) AddTmp(dt DataType, initial interface{}) EntryID {
	return st.allocate(SymbolEntry{Kind: KindTmp, Tmp: &Tmp{Type: dt, Initial: initial}})
}

// AddTmpCompatibleWith allocates a fresh temporary sharing id's
// DataType, whatever kind of entry id refers to.
func (st *SymbolTable) AddTmpCompatibleWith(id EntryID) EntryID {
	return st.AddTmp(st.TypeOf(id), nil)
}

// TypeOf returns the DataType governing id's storage cell, regardless
// of entry kind; it is a compiler bug to ask for the type of a Label.
func (st *SymbolTable) TypeOf(id EntryID) DataType {
	e := st.entries[id]
	switch e.Kind {
	case KindVariable:
		return e.Variable.Name.Type
	case KindArrayRef:
		return st.TypeOf(e.ArrayRef.Variable)
	case KindUDF:
		return e.UDF.ReturnType
	case KindTmp:
		return e.Tmp.Type
	default:
		panic("symtab: TypeOf on a Label entry")
	}
}

// ---- array references ----

// AddArrayReference allocates a fresh ArrayRef bound to variable.
// Unlike variables, ArrayRefs are never shared across occurrences:
// each subscripted use gets its own, matching the RESET_ARRAY_IDX /
// SET_ARRAY_IDX / ARRAYREF instruction triple emitted per use.
func (st *SymbolTable) AddArrayReference(variable EntryID) EntryID {
	return st.allocate(SymbolEntry{Kind: KindArrayRef, ArrayRef: &ArrayRef{Variable: variable}})
}

// AppendIndex records that indexOperand was the next SET_ARRAY_IDX
// pushed against ref, for introspection and determinism testing.
func (st *SymbolTable) AppendIndex(ref EntryID, indexOperand EntryID) {
	r := st.entries[ref].ArrayRef
	r.Indices = append(r.Indices, indexOperand)
}

// ---- labels ----

func (st *SymbolTable) AddNamedLabel(name string) EntryID {
	key := strings.ToUpper(name)
	if id, ok := st.byLabel[key]; ok {
		return id
	}
	id := st.allocate(SymbolEntry{Kind: KindLabel, Label: &Label{Name: name}})
	st.byLabel[key] = id
	return id
}

func (st *SymbolTable) AddLineNumberLabel(line int) EntryID {
	if id, ok := st.byLine[line]; ok {
		return id
	}
	id := st.allocate(SymbolEntry{Kind: KindLabel, Label: &Label{LineNumber: line, HasLineNumber: true}})
	st.byLine[line] = id
	return id
}

// AddGotoTarget allocates a fresh anonymous (synthetic) label id, used
// for every compiler-internal branch target: the "else" and
// "after-then" labels of IF, the loop-check/loop-exit labels of WHILE
// and FOR, the per-call return labels of GOSUB and UDF calls.
func (st *SymbolTable) AddGotoTarget() EntryID {
	return st.allocate(SymbolEntry{Kind: KindLabel, Label: &Label{Synthetic: true}})
}
