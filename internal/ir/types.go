package ir

import "fmt"

// This IR is a three-address form over an explicit control-flow graph of
// basic blocks. There is no SSA and no phi nodes: locals live in stack
// slots reserved by Alloca and are read/written with Load/Store, exactly
// as a non-optimizing C compiler would lower them (§3.2).
//
// Every non-void instruction is itself the value it produces — there are
// no separate value names. An operand is a pointer to the instruction (or
// Param/Const) that produced the value it refers to. Blocks and
// instructions are owned by the Function that contains them; operand
// pointers are stable for the lifetime of the Function (§9 "Cyclic
// graphs" — an arena of blocks/instructions with pointer-stable
// contents, not a garbage-collected object graph).

// Module owns an ordered list of Functions plus the external
// declarations every program may call.
type Module struct {
	Functions []*Function
	Externs   []string // "print", "read"
}

// Function owns the always-i32(i32) signature, a single Param, and an
// ordered list of BasicBlocks. Blocks[0] is the entry.
type Function struct {
	Name   string
	Param  *Param
	Blocks []*BasicBlock
}

// Param is the function's single i32 parameter. It is a value operands
// can reference directly, distinct from any instruction.
type Param struct {
	Name string
}

func (p *Param) String() string { return p.Name }

// Const is a signed 32-bit immediate operand.
type Const struct {
	Value int32
}

func (c *Const) String() string { return fmt.Sprintf("%d", c.Value) }

// Operand is anything an instruction can reference as a source: another
// instruction's result, the function parameter, or an immediate.
type Operand interface {
	String() string
}

// BasicBlock owns an ordered sequence of non-terminator Instructions
// followed by exactly one Terminator. Label is assigned by the builder
// in creation order and names the block in the textual IR; the backend
// assigns its own .LFB0/.L<k> assembly labels by block position.
type BasicBlock struct {
	Label        string
	Instructions []Instruction
	Terminator   Instruction
}

func (b *BasicBlock) String() string { return b.Label }

// All returns the block's instructions followed by its terminator, or
// only the instructions if the block is not yet closed.
func (b *BasicBlock) All() []Instruction {
	if b.Terminator == nil {
		return b.Instructions
	}
	return append(append([]Instruction{}, b.Instructions...), b.Terminator)
}

// Instruction is implemented by every IR instruction. Operands() returns
// the instruction's source operands in a stable, printable order; it is
// the basis for use-list maintenance and dataflow analysis.
type Instruction interface {
	Operand
	Block() *BasicBlock
	SetBlock(*BasicBlock)
	Operands() []Operand
	ReplaceOperand(old, new Operand)
	IsTerminator() bool
	IsVoid() bool
}

type instBase struct {
	block *BasicBlock
}

func (i *instBase) Block() *BasicBlock     { return i.block }
func (i *instBase) SetBlock(b *BasicBlock) { i.block = b }

// Alloca reserves a stack slot for a local named Name. Only produced in
// the entry block (§4.C).
type Alloca struct {
	instBase
	Name string
}

func (a *Alloca) String() string                    { return fmt.Sprintf("%%%s = alloca i32", a.Name) }
func (a *Alloca) Operands() []Operand                { return nil }
func (a *Alloca) ReplaceOperand(old, new Operand)    {}
func (a *Alloca) IsTerminator() bool                 { return false }
func (a *Alloca) IsVoid() bool                       { return false }

// Load produces the i32 currently stored at Src, an Alloca.
type Load struct {
	instBase
	Src *Alloca
}

func (l *Load) String() string { return fmt.Sprintf("load %s", l.Src.Name) }
func (l *Load) Operands() []Operand { return []Operand{l.Src} }
func (l *Load) ReplaceOperand(old, new Operand) {
	if a, ok := new.(*Alloca); ok && Operand(l.Src) == old {
		l.Src = a
	}
}
func (l *Load) IsTerminator() bool { return false }
func (l *Load) IsVoid() bool       { return false }

// Store writes Value into the stack slot addressed by Dst.
type Store struct {
	instBase
	Value Operand
	Dst   *Alloca
}

func (s *Store) String() string { return fmt.Sprintf("store %s, %s", s.Value, s.Dst.Name) }
func (s *Store) Operands() []Operand { return []Operand{s.Value} }
func (s *Store) ReplaceOperand(old, new Operand) {
	if s.Value == old {
		s.Value = new
	}
}
func (s *Store) IsTerminator() bool { return false }
func (s *Store) IsVoid() bool       { return true }

// ArithOp enumerates BinArith's four opcodes (§3.2).
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithSDiv
)

func (op ArithOp) String() string {
	switch op {
	case ArithAdd:
		return "add"
	case ArithSub:
		return "sub"
	case ArithMul:
		return "mul"
	case ArithSDiv:
		return "sdiv"
	default:
		return "?"
	}
}

// BinArith produces Op(LHS, RHS) as an i32.
type BinArith struct {
	instBase
	Op       ArithOp
	LHS, RHS Operand
}

func (b *BinArith) String() string { return fmt.Sprintf("%s %s, %s", b.Op, b.LHS, b.RHS) }
func (b *BinArith) Operands() []Operand { return []Operand{b.LHS, b.RHS} }
func (b *BinArith) ReplaceOperand(old, new Operand) {
	if b.LHS == old {
		b.LHS = new
	}
	if b.RHS == old {
		b.RHS = new
	}
}
func (b *BinArith) IsTerminator() bool { return false }
func (b *BinArith) IsVoid() bool       { return false }

// CmpPred enumerates ICmp's six predicates (§3.2).
type CmpPred int

const (
	CmpSLT CmpPred = iota
	CmpSGT
	CmpSLE
	CmpSGE
	CmpEQ
	CmpNE
)

func (p CmpPred) String() string {
	switch p {
	case CmpSLT:
		return "slt"
	case CmpSGT:
		return "sgt"
	case CmpSLE:
		return "sle"
	case CmpSGE:
		return "sge"
	case CmpEQ:
		return "eq"
	case CmpNE:
		return "ne"
	default:
		return "?"
	}
}

// ICmp produces an i1: Pred(LHS, RHS).
type ICmp struct {
	instBase
	Pred     CmpPred
	LHS, RHS Operand
}

func (c *ICmp) String() string { return fmt.Sprintf("icmp %s %s, %s", c.Pred, c.LHS, c.RHS) }
func (c *ICmp) Operands() []Operand { return []Operand{c.LHS, c.RHS} }
func (c *ICmp) ReplaceOperand(old, new Operand) {
	if c.LHS == old {
		c.LHS = new
	}
	if c.RHS == old {
		c.RHS = new
	}
}
func (c *ICmp) IsTerminator() bool { return false }
func (c *ICmp) IsVoid() bool       { return false }

// Br is an unconditional terminator.
type Br struct {
	instBase
	Target *BasicBlock
}

func (b *Br) String() string { return fmt.Sprintf("br %s", b.Target.Label) }
func (b *Br) Operands() []Operand             { return nil }
func (b *Br) ReplaceOperand(old, new Operand) {}
func (b *Br) IsTerminator() bool              { return true }
func (b *Br) IsVoid() bool                    { return true }

// CondBr is a two-way terminator keyed on Cond, the defining ICmp.
type CondBr struct {
	instBase
	Cond        *ICmp
	Then, Else  *BasicBlock
}

func (c *CondBr) String() string {
	return fmt.Sprintf("br %s, %s, %s", c.Cond, c.Then.Label, c.Else.Label)
}
func (c *CondBr) Operands() []Operand { return []Operand{c.Cond} }
func (c *CondBr) ReplaceOperand(old, new Operand) {
	if i, ok := new.(*ICmp); ok && Operand(c.Cond) == old {
		c.Cond = i
	}
}
func (c *CondBr) IsTerminator() bool { return true }
func (c *CondBr) IsVoid() bool       { return true }

// Ret is the function's exit terminator. The builder places it in the
// synthesized end block (§3.2 invariant); only a body that falls off its
// end without a Return gets its Ret in the block where lowering stopped.
type Ret struct {
	instBase
	Value Operand
}

func (r *Ret) String() string { return fmt.Sprintf("ret %s", r.Value) }
func (r *Ret) Operands() []Operand { return []Operand{r.Value} }
func (r *Ret) ReplaceOperand(old, new Operand) {
	if r.Value == old {
		r.Value = new
	}
}
func (r *Ret) IsTerminator() bool { return true }
func (r *Ret) IsVoid() bool       { return true }

// Call invokes Callee ("print" or "read") with Args; produces an i32 for
// "read" and is void for "print".
type Call struct {
	instBase
	Callee string
	Args   []Operand
}

func (c *Call) String() string {
	args := ""
	for i, a := range c.Args {
		if i > 0 {
			args += ", "
		}
		args += a.String()
	}
	return fmt.Sprintf("call %s(%s)", c.Callee, args)
}
func (c *Call) Operands() []Operand { return c.Args }
func (c *Call) ReplaceOperand(old, new Operand) {
	for i, a := range c.Args {
		if a == old {
			c.Args[i] = new
		}
	}
}
func (c *Call) IsTerminator() bool { return false }
func (c *Call) IsVoid() bool       { return c.Callee == "print" }
