package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Printer renders a Module in the textual form described by §6: the
// format itself is not part of the contract, only that parsing it back
// with Parse (reader.go) reproduces an identical Module up to whitespace
// and the numbering given to anonymous values.
type Printer struct {
	out strings.Builder
	ids map[Instruction]int
	seq int
}

// NewPrinter creates an empty Printer.
func NewPrinter() *Printer {
	return &Printer{ids: make(map[Instruction]int)}
}

// Print returns the textual IR for m.
func Print(m *Module) string {
	p := NewPrinter()
	p.printModule(m)
	return p.out.String()
}

func (p *Printer) printModule(m *Module) {
	for _, fn := range m.Functions {
		p.printFunction(fn)
		p.out.WriteString("\n")
	}
	for _, ext := range m.Externs {
		fmt.Fprintf(&p.out, "extern %s\n", ext)
	}
}

func (p *Printer) printFunction(fn *Function) {
	fmt.Fprintf(&p.out, "func %s(%s) {\n", fn.Name, fn.Param.Name)
	for _, block := range fn.Blocks {
		p.printBlock(block)
	}
	p.out.WriteString("}\n")
}

func (p *Printer) printBlock(block *BasicBlock) {
	fmt.Fprintf(&p.out, "%s:\n", block.Label)
	for _, inst := range block.Instructions {
		p.out.WriteString("  ")
		p.printInst(inst)
		p.out.WriteString("\n")
	}
	if block.Terminator != nil {
		p.out.WriteString("  ")
		p.printInst(block.Terminator)
		p.out.WriteString("\n")
	}
}

func (p *Printer) printInst(inst Instruction) {
	switch i := inst.(type) {
	case *Alloca:
		fmt.Fprintf(&p.out, "%%%s = alloca", i.Name)

	case *Load:
		fmt.Fprintf(&p.out, "%s = load %%%s", p.resultName(i), i.Src.Name)

	case *Store:
		fmt.Fprintf(&p.out, "store %s, %%%s", p.operand(i.Value), i.Dst.Name)

	case *BinArith:
		fmt.Fprintf(&p.out, "%s = %s %s, %s", p.resultName(i), i.Op, p.operand(i.LHS), p.operand(i.RHS))

	case *ICmp:
		fmt.Fprintf(&p.out, "%s = icmp %s %s, %s", p.resultName(i), i.Pred, p.operand(i.LHS), p.operand(i.RHS))

	case *Br:
		fmt.Fprintf(&p.out, "br %s", i.Target.Label)

	case *CondBr:
		fmt.Fprintf(&p.out, "cbr %s, %s, %s", p.operand(i.Cond), i.Then.Label, i.Else.Label)

	case *Ret:
		fmt.Fprintf(&p.out, "ret %s", p.operand(i.Value))

	case *Call:
		args := make([]string, len(i.Args))
		for j, a := range i.Args {
			args[j] = p.operand(a)
		}
		if i.IsVoid() {
			fmt.Fprintf(&p.out, "call %s(%s)", i.Callee, strings.Join(args, ", "))
		} else {
			fmt.Fprintf(&p.out, "%s = call %s(%s)", p.resultName(i), i.Callee, strings.Join(args, ", "))
		}

	default:
		fmt.Fprintf(&p.out, "; unknown instruction %T", i)
	}
}

// resultName assigns inst the next sequential value number the first
// time it is printed, and reuses it on any later reference.
func (p *Printer) resultName(inst Instruction) string {
	id, ok := p.ids[inst]
	if !ok {
		id = p.seq
		p.seq++
		p.ids[inst] = id
	}
	return "%" + strconv.Itoa(id)
}

func (p *Printer) operand(op Operand) string {
	switch v := op.(type) {
	case *Param:
		return "%" + v.Name
	case *Const:
		return v.String()
	case Instruction:
		return p.resultName(v)
	default:
		return op.String()
	}
}
