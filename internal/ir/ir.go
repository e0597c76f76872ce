// Package ir implements the typed three-address intermediate
// representation the lowering pass emits: an append-only instruction
// sequence with mutable operand slots for forward-reference
// back-patching.
package ir

import "basiclower/internal/symtab"

type symDataType = symtab.DataType

const (
	i32 = symtab.Int32
	i64 = symtab.Int64
	f32 = symtab.Float32
	f64 = symtab.Float64
	str = symtab.String
)

// SourceLoc is the back-reference every instruction carries to the
// BASIC source it was lowered from.
type SourceLoc struct {
	File   string
	Line   int
	Column int
}

// Instruction is the fixed-shape three-address tuple of spec.md §3:
// an opcode, up to two operand ids, one result id, and a source
// location. Op1/Op2 are mutable to support back-patching; OpCode and
// Result never change after Emit.
type Instruction struct {
	Loc    SourceLoc
	Op     OpCode
	op1    symtab.EntryID
	op2    symtab.EntryID
	Result symtab.EntryID
}

func (i *Instruction) Op1() symtab.EntryID { return i.op1 }
func (i *Instruction) Op2() symtab.EntryID { return i.op2 }

// PatchOp1 and PatchOp2 are the only mutators of an already-emitted
// Instruction, used exclusively to resolve forward references (a goto
// target allocated before its LABEL is emitted). Patching after
// interpretation has begun is a misuse this package does not guard
// against — the spec places that obligation on the lowering pass,
// which always finishes patching before returning successfully.
func (i *Instruction) PatchOp1(id symtab.EntryID) { i.op1 = id }
func (i *Instruction) PatchOp2(id symtab.EntryID) { i.op2 = id }

// IR is the ordered, append-only instruction sequence. Instruction
// positions double as the interpreter's implicit program-counter
// values. Instructions are stored by pointer specifically so that a
// handle returned by Emit stays valid — and patchable — no matter how
// many further instructions are appended afterwards: IF/WHILE/FOR
// control-flow lowering routinely holds a handle open across dozens of
// intervening emits before patching its branch target.
type IR struct {
	instructions []*Instruction
}

func New() *IR { return &IR{} }

// Emit appends a new instruction and returns a stable handle the
// caller can patch at any later point via PatchOp1/PatchOp2.
func (p *IR) Emit(loc SourceLoc, op OpCode, op1, op2, result symtab.EntryID) *Instruction {
	instr := &Instruction{Loc: loc, Op: op, op1: op1, op2: op2, Result: result}
	p.instructions = append(p.instructions, instr)
	return instr
}

// Len is the number of instructions emitted so far, which is also the
// position the next Emit will occupy.
func (p *IR) Len() int { return len(p.instructions) }

func (p *IR) At(pos int) *Instruction { return p.instructions[pos] }

// All returns every instruction in emission order, by value, for
// interpreters and tests that only need to read the final program.
func (p *IR) All() []Instruction {
	out := make([]Instruction, len(p.instructions))
	for i, instr := range p.instructions {
		out[i] = *instr
	}
	return out
}
