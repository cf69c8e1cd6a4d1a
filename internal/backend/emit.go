package backend

import (
	"fmt"
	"strings"

	"minic/internal/ir"
)

// blockLabels assigns §4.E.4's block labels: the entry block is .LFB0,
// every later block .L<k> with k counting up from 1.
func blockLabels(fn *ir.Function) map[*ir.BasicBlock]string {
	labels := make(map[*ir.BasicBlock]string, len(fn.Blocks))
	k := 0
	for _, b := range fn.Blocks {
		if k == 0 {
			labels[b] = fmt.Sprintf(".LFB%d", k)
		} else {
			labels[b] = fmt.Sprintf(".L%d", k)
		}
		k++
	}
	return labels
}

// EmitModule lowers m to a complete x86-32 AT&T-syntax assembly file
// (§4.E.5): one .text section, one pair of .globl/.type directives per
// function, then each function's prologue and blocks in turn.
func EmitModule(m *ir.Module) string {
	var sb strings.Builder
	sb.WriteString("\t.text\n")
	for _, fn := range m.Functions {
		sb.WriteString(fmt.Sprintf("\t.globl\t%s\n", fn.Name))
		sb.WriteString(fmt.Sprintf("\t.type\t%s, @function\n", fn.Name))
	}
	for _, fn := range m.Functions {
		emitFunction(&sb, fn)
	}
	return sb.String()
}

func emitFunction(sb *strings.Builder, fn *ir.Function) {
	fa := AllocateFunction(fn)
	frame := ComputeFrameLayout(fn, fa)
	labels := blockLabels(fn)

	sb.WriteString(fmt.Sprintf("%s:\n", fn.Name))
	sb.WriteString(fmt.Sprintf("%s:\n", labels[fn.Blocks[0]]))
	sb.WriteString(fmt.Sprintf("\t# stack frame: %d bytes\n", frame.Size))
	sb.WriteString("\tpushl\t%ebp\n")
	sb.WriteString("\tmovl\t%esp, %ebp\n")
	sb.WriteString(fmt.Sprintf("\tsubl\t$%d, %%esp\n", frame.Size))

	e := &emitter{sb: sb, fn: fn, fa: fa, frame: frame, labels: labels}
	for i, b := range fn.Blocks {
		if i > 0 {
			sb.WriteString(fmt.Sprintf("%s:\n", labels[b]))
		}
		e.emitBlock(b)
	}
}

type emitter struct {
	sb     *strings.Builder
	fn     *ir.Function
	fa     *FunctionAllocation
	frame  *FrameLayout
	labels map[*ir.BasicBlock]string
}

func (e *emitter) emitBlock(b *ir.BasicBlock) {
	for _, inst := range b.Instructions {
		e.emitInst(inst)
	}
	e.emitInst(b.Terminator)
}

func (e *emitter) emitInst(inst ir.Instruction) {
	switch v := inst.(type) {
	case *ir.Alloca:
		// slot reserved in the prologue; nothing to emit.
	case *ir.Load:
		e.emitLoad(v)
	case *ir.Store:
		e.emitStore(v)
	case *ir.BinArith:
		e.emitBinArith(v)
	case *ir.ICmp:
		e.emitICmp(v)
	case *ir.Call:
		e.emitCall(v)
	case *ir.Br:
		e.sb.WriteString(fmt.Sprintf("\tjmp\t%s\n", e.labels[v.Target]))
	case *ir.CondBr:
		e.emitCondBr(v)
	case *ir.Ret:
		e.emitRet(v)
	default:
		panic(fmt.Sprintf("backend: unhandled instruction %T", inst))
	}
}

// registerOf reports the register inst was assigned, if any.
func (e *emitter) registerOf(inst ir.Instruction) (string, bool) {
	loc, ok := e.fa.RegMap[inst].(RegLocation)
	if !ok {
		return "", false
	}
	return loc.Reg, true
}

func (e *emitter) offsetOf(inst ir.Instruction) int {
	off, ok := e.frame.Offsets[inst]
	if !ok {
		panic(fmt.Sprintf("backend: %v has neither a register nor a frame offset", inst))
	}
	return off
}

// operandText materializes a source operand under §4.E.5's priority:
// constant -> $imm; the producing instruction has a register -> %reg;
// otherwise its frame slot -> off(%ebp). The function parameter itself
// is never read here: every reference to it goes through a Load of the
// alloca the entry block stores it into (see emitStore's argument-value
// special case).
func (e *emitter) operandText(op ir.Operand) string {
	switch v := op.(type) {
	case *ir.Const:
		return fmt.Sprintf("$%d", v.Value)
	case *ir.Load:
		if reg, ok := e.registerOf(v); ok {
			return reg
		}
		// a spilled Load was never written to its own slot; it reads
		// straight from the alloca it loaded (see emitLoad).
		return fmt.Sprintf("%d(%%ebp)", e.offsetOf(v.Src))
	case ir.Instruction:
		if reg, ok := e.registerOf(v); ok {
			return reg
		}
		return fmt.Sprintf("%d(%%ebp)", e.offsetOf(v))
	default:
		panic(fmt.Sprintf("backend: unmaterializable operand %v", op))
	}
}

func (e *emitter) emitLoad(l *ir.Load) {
	reg, ok := e.registerOf(l)
	if !ok {
		// spilled: later consumers read offsetMap[l.Src] directly.
		return
	}
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%d(%%ebp), %s\n", e.offsetOf(l.Src), reg))
}

func (e *emitter) emitStore(s *ir.Store) {
	if s.Value == ir.Operand(e.fn.Param) {
		// already written by the entry block's parameter alloca/store.
		return
	}
	dstOff := e.offsetOf(s.Dst)

	if c, ok := s.Value.(*ir.Const); ok {
		e.sb.WriteString(fmt.Sprintf("\tmovl\t$%d, %d(%%ebp)\n", c.Value, dstOff))
		return
	}

	src := s.Value.(ir.Instruction)
	if reg, ok := e.registerOf(src); ok {
		e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %d(%%ebp)\n", reg, dstOff))
		return
	}
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %%eax\n", e.operandText(src)))
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%%eax, %d(%%ebp)\n", dstOff))
}

// destRegister returns the register-form of inst's own result slot if it
// has one, else the %eax scratch register arithmetic accumulates into.
func (e *emitter) destRegister(inst ir.Instruction) string {
	if reg, ok := e.registerOf(inst); ok {
		return reg
	}
	return "%eax"
}

func (e *emitter) spillWriteback(inst ir.Instruction) {
	if _, ok := e.registerOf(inst); ok {
		return
	}
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%%eax, %d(%%ebp)\n", e.offsetOf(inst)))
}

func (e *emitter) emitBinArith(b *ir.BinArith) {
	if b.Op == ir.ArithSDiv {
		e.emitSDiv(b)
		return
	}

	x := e.destRegister(b)
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %s\n", e.operandText(b.LHS), x))

	var op string
	switch b.Op {
	case ir.ArithAdd:
		op = "addl"
	case ir.ArithSub:
		op = "subl"
	case ir.ArithMul:
		op = "imull"
	}
	e.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s\n", op, e.operandText(b.RHS), x))
	e.spillWriteback(b)
}

// emitSDiv covers the division path the backend's opcode table omits
// (§4.E.5's closing note): lift the dividend into %eax, sign-extend with
// cltd, then idivl the divisor, and finally move the quotient from %eax
// into the instruction's register or spill slot. idivl cannot take an
// immediate operand, so a constant divisor is staged through %ecx first.
func (e *emitter) emitSDiv(b *ir.BinArith) {
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %%eax\n", e.operandText(b.LHS)))
	e.sb.WriteString("\tcltd\n")

	rhs := e.operandText(b.RHS)
	if _, isConst := b.RHS.(*ir.Const); isConst {
		e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %%ecx\n", rhs))
		rhs = "%ecx"
	}
	e.sb.WriteString(fmt.Sprintf("\tidivl\t%s\n", rhs))
	if reg, ok := e.registerOf(b); ok {
		e.sb.WriteString(fmt.Sprintf("\tmovl\t%%eax, %s\n", reg))
		return
	}
	e.spillWriteback(b)
}

func (e *emitter) emitICmp(c *ir.ICmp) {
	x := e.destRegister(c)
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %s\n", e.operandText(c.LHS), x))
	e.sb.WriteString(fmt.Sprintf("\tcmpl\t%s, %s\n", e.operandText(c.RHS), x))
	e.spillWriteback(c)
}

func (e *emitter) emitCall(c *ir.Call) {
	e.sb.WriteString("\tpushl\t%ebx\n\tpushl\t%ecx\n\tpushl\t%edx\n")

	for i := len(c.Args) - 1; i >= 0; i-- {
		e.sb.WriteString(fmt.Sprintf("\tpushl\t%s\n", e.operandText(c.Args[i])))
	}

	e.sb.WriteString(fmt.Sprintf("\tcall\t%s\n", c.Callee))

	if len(c.Args) > 0 {
		e.sb.WriteString(fmt.Sprintf("\taddl\t$%d, %%esp\n", 4*len(c.Args)))
	}

	e.sb.WriteString("\tpopl\t%edx\n\tpopl\t%ecx\n\tpopl\t%ebx\n")

	if !c.IsVoid() {
		if reg, ok := e.registerOf(c); ok {
			e.sb.WriteString(fmt.Sprintf("\tmovl\t%%eax, %s\n", reg))
		} else {
			e.sb.WriteString(fmt.Sprintf("\tmovl\t%%eax, %d(%%ebp)\n", e.offsetOf(c)))
		}
	}
}

func (e *emitter) emitRet(r *ir.Ret) {
	e.sb.WriteString(fmt.Sprintf("\tmovl\t%s, %%eax\n", e.operandText(r.Value)))
	e.sb.WriteString("\tleave\n")
	e.sb.WriteString("\tret\n")
}

var condJump = map[ir.CmpPred]string{
	ir.CmpEQ:  "je",
	ir.CmpNE:  "jne",
	ir.CmpSLT: "jl",
	ir.CmpSLE: "jle",
	ir.CmpSGT: "jg",
	ir.CmpSGE: "jge",
}

func (e *emitter) emitCondBr(c *ir.CondBr) {
	jmp, ok := condJump[c.Cond.Pred]
	if !ok {
		panic(fmt.Sprintf("backend: unrecognized comparison predicate %v", c.Cond.Pred))
	}
	e.sb.WriteString(fmt.Sprintf("\t%s\t%s\n", jmp, e.labels[c.Then]))
	e.sb.WriteString(fmt.Sprintf("\tjmp\t%s\n", e.labels[c.Else]))
}
