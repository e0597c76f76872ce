package ir

import (
	"testing"

	"basiclower/internal/symtab"
)

func TestEmitHandleStaysPatchableAcrossFurtherEmits(t *testing.T) {
	prog := New()
	placeholder := prog.Emit(SourceLoc{Line: 1}, GOTO_LABEL_IF, symtab.NullID, symtab.NullID, symtab.NullID)

	// Emit enough instructions that a naive value-slice would have
	// reallocated its backing array at least once.
	for i := 0; i < 64; i++ {
		prog.Emit(SourceLoc{Line: 2}, VALUE, symtab.EntryID(i), symtab.NullID, symtab.EntryID(i))
	}

	target := symtab.EntryID(999)
	placeholder.PatchOp2(target)

	if got := prog.At(0).Op2(); got != target {
		t.Fatalf("patch through a long-held handle did not stick: got %d want %d", got, target)
	}
}

func TestLabelUniquenessAcrossIR(t *testing.T) {
	prog := New()
	labelID := symtab.EntryID(5)
	prog.Emit(SourceLoc{}, GOTO_LABEL, labelID, symtab.NullID, symtab.NullID)
	prog.Emit(SourceLoc{}, LABEL, labelID, symtab.NullID, symtab.NullID)

	count := 0
	for _, instr := range prog.All() {
		if instr.Op == LABEL && instr.Op1() == labelID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one LABEL instruction for id %d, got %d", labelID, count)
	}
}

func TestOpCodeStringersCoverTheWholeTable(t *testing.T) {
	for op := OpCode(0); op < opCodeCount; op++ {
		if op.String() == "UNKNOWN_OPCODE" {
			t.Fatalf("opcode %d has no name registered in opCodeNames", op)
		}
	}
}

func TestArithOpcodeFamiliesRejectString(t *testing.T) {
	if _, ok := AddFor(str); ok {
		t.Fatalf("AddFor(String) should have no member — CONCAT is a distinct opcode")
	}
	if op, ok := AddFor(i64); !ok || op != ADDI64 {
		t.Fatalf("AddFor(Int64) = %v,%v want ADDI64,true", op, ok)
	}
}
