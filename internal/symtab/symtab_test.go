package symtab

import "testing"

func TestResolveTypeSuffixWins(t *testing.T) {
	st := New()
	st.SetDefaultDataType('A', 'Z', String) // hostile default, suffix must still win
	if got := st.ResolveType("X", '%'); got != Int32 {
		t.Fatalf("suffix %% should force Int32, got %s", got)
	}
	if got := st.ResolveType("X", '#'); got != Float64 {
		t.Fatalf("suffix # should force Float64, got %s", got)
	}
}

func TestResolveTypeDefaultLetterRange(t *testing.T) {
	st := New()
	if got := st.ResolveType("Zebra", 0); got != Float64 {
		t.Fatalf("unset letter should default to Float64, got %s", got)
	}
	st.SetDefaultDataType('A', 'F', Int32)
	if got := st.ResolveType("apple", 0); got != Int32 {
		t.Fatalf("DEFINT A-F should cover lowercase too, got %s", got)
	}
	if got := st.ResolveType("Zebra", 0); got != Float64 {
		t.Fatalf("letters outside the DEFINT range must be unaffected, got %s", got)
	}
}

func TestJoinLattice(t *testing.T) {
	cases := []struct {
		a, b, want DataType
	}{
		{Int32, Int64, Int64},
		{Int64, Float32, Float32},
		{Float32, Float64, Float64},
		{Float64, Int32, Float64},
		{String, String, String},
	}
	for _, c := range cases {
		got, ok := Join(c.a, c.b)
		if !ok || got != c.want {
			t.Fatalf("Join(%s,%s) = %s,%v want %s", c.a, c.b, got, ok, c.want)
		}
	}
	if _, ok := Join(String, Int32); ok {
		t.Fatalf("Join(String, Int32) should reject the mix")
	}
}

func TestGetOrCreateVariableIsIdempotent(t *testing.T) {
	st := New()
	a := VariableName{Bare: "A", Type: Int32}
	af := VariableName{Bare: "A", Type: Float32}
	id1 := st.GetOrCreateVariable(a)
	id2 := st.GetOrCreateVariable(a)
	id3 := st.GetOrCreateVariable(af)
	if id1 != id2 {
		t.Fatalf("same VariableName should resolve to the same id: %d != %d", id1, id2)
	}
	if id1 == id3 {
		t.Fatalf("A%% and A! must be distinct logical variables")
	}
}

func TestDeclarationScopeShadowsThenRestores(t *testing.T) {
	st := New()
	global := st.GetOrCreateVariable(VariableName{Bare: "N", Type: Int32})

	udf := st.DeclareUDF("FNDOUBLE", Int32, st.AddGotoTarget())
	st.PushDeclarationScope(udf)
	param := st.DeclareParam(VariableName{Bare: "N", Type: Int32})
	if param == global {
		t.Fatalf("a UDF parameter must not reuse the global entry of the same name")
	}
	inside := st.GetOrCreateVariable(VariableName{Bare: "N", Type: Int32})
	if inside != param {
		t.Fatalf("inside the UDF body, N must resolve to the parameter id")
	}
	st.PopScope()

	outside := st.GetOrCreateVariable(VariableName{Bare: "N", Type: Int32})
	if outside != global {
		t.Fatalf("after popping the scope, N must resolve back to the global id")
	}
}

func TestLabelsInternedByKey(t *testing.T) {
	st := New()
	l1 := st.AddNamedLabel("LOOP")
	l2 := st.AddNamedLabel("loop")
	if l1 != l2 {
		t.Fatalf("named labels should intern case-insensitively")
	}
	n1 := st.AddLineNumberLabel(100)
	n2 := st.AddLineNumberLabel(100)
	if n1 != n2 {
		t.Fatalf("line-number labels should intern by integer")
	}
	s1 := st.AddGotoTarget()
	s2 := st.AddGotoTarget()
	if s1 == s2 {
		t.Fatalf("synthetic goto targets must never be interned")
	}
}

func TestArrayReferenceIsFreshPerOccurrence(t *testing.T) {
	st := New()
	arr := st.DeclareArray(VariableName{Bare: "A", Type: Int32}, []int{10})
	r1 := st.AddArrayReference(arr)
	r2 := st.AddArrayReference(arr)
	if r1 == r2 {
		t.Fatalf("each subscripted occurrence must get its own ArrayRef")
	}
	idx := st.AddTmp(Int32, nil)
	st.AppendIndex(r1, idx)
	if got := st.Get(r1).ArrayRef.Indices; len(got) != 1 || got[0] != idx {
		t.Fatalf("AppendIndex should record the pushed index operand, got %v", got)
	}
}
