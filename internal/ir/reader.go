package ir

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the textual form Print produces back into a Module (§6
// round-trip contract). It is a small line-oriented reader, not a
// general-purpose parser: each line is exactly one token the printer
// would have emitted, so there is nothing to backtrack over.
func Parse(text string) (*Module, error) {
	r := &reader{
		blocks: make(map[string]*BasicBlock),
		vals:   make(map[string]Operand),
		allocs: make(map[string]*Alloca),
	}
	return r.parseModule(text)
}

type reader struct {
	fn     *Function
	blocks map[string]*BasicBlock
	vals   map[string]Operand
	allocs map[string]*Alloca

	// pending holds the branch-target fixups, run once every instruction
	// line of the function has been read (a while body branches back to
	// an earlier block, other branches go forward).
	pending []func() error
}

func (r *reader) parseModule(text string) (*Module, error) {
	m := &Module{}
	scanner := bufio.NewScanner(strings.NewReader(text))

	var funcLines []string
	inFunc := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "extern ") {
			m.Externs = append(m.Externs, strings.TrimSpace(strings.TrimPrefix(trimmed, "extern ")))
			continue
		}
		if strings.HasPrefix(trimmed, "func ") {
			inFunc = true
			funcLines = []string{line}
			continue
		}
		if inFunc {
			funcLines = append(funcLines, line)
			if trimmed == "}" {
				fn, err := r.parseFunction(funcLines)
				if err != nil {
					return nil, err
				}
				m.Functions = append(m.Functions, fn)
				inFunc = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *reader) parseFunction(lines []string) (*Function, error) {
	header := strings.TrimSpace(lines[0])
	open := strings.Index(header, "(")
	close := strings.Index(header, ")")
	if open < 0 || close < 0 || close < open {
		return nil, fmt.Errorf("ir: malformed function header %q", header)
	}
	name := strings.TrimSpace(header[len("func "):open])
	paramName := strings.TrimSpace(header[open+1 : close])

	r.fn = &Function{Name: name, Param: &Param{Name: paramName}}
	r.blocks = make(map[string]*BasicBlock)
	r.vals = make(map[string]Operand)
	r.allocs = make(map[string]*Alloca)
	r.pending = nil
	r.vals["%"+paramName] = r.fn.Param

	// First pass: discover every block label so forward branch targets
	// resolve regardless of textual order.
	var body [][]string
	var cur []string
	for _, line := range lines[1 : len(lines)-1] {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") {
			if cur != nil {
				body = append(body, cur)
			}
			cur = []string{trimmed}
			label := strings.TrimSuffix(trimmed, ":")
			r.blocks[label] = &BasicBlock{Label: label}
			r.fn.Blocks = append(r.fn.Blocks, r.blocks[label])
		} else {
			cur = append(cur, trimmed)
		}
	}
	if cur != nil {
		body = append(body, cur)
	}

	for _, blockLines := range body {
		label := strings.TrimSuffix(blockLines[0], ":")
		block := r.blocks[label]
		for _, line := range blockLines[1:] {
			if line == "" {
				continue
			}
			if err := r.parseInstLine(block, line); err != nil {
				return nil, err
			}
		}
	}

	for _, fix := range r.pending {
		if err := fix(); err != nil {
			return nil, err
		}
	}

	return r.fn, nil
}

func (r *reader) parseInstLine(block *BasicBlock, line string) error {
	if strings.Contains(line, "=") && !strings.HasPrefix(line, "store") {
		parts := strings.SplitN(line, "=", 2)
		dst := strings.TrimSpace(parts[0])
		rhs := strings.TrimSpace(parts[1])
		return r.parseAssign(block, dst, rhs)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "store":
		rest := strings.TrimSpace(strings.TrimPrefix(line, "store"))
		args := splitArgs(rest)
		val, err := r.resolveOperand(args[0])
		if err != nil {
			return err
		}
		dst, err := r.resolveAlloca(args[1])
		if err != nil {
			return err
		}
		inst := &Store{Value: val, Dst: dst}
		r.emit(block, inst)
		return nil

	case "br":
		target := strings.TrimSpace(fields[1])
		inst := &Br{}
		r.emitTerminator(block, inst, func() error {
			b, ok := r.blocks[target]
			if !ok {
				return fmt.Errorf("ir: unknown block label %q", target)
			}
			inst.Target = b
			return nil
		})
		return nil

	case "cbr":
		rest := strings.TrimSpace(strings.TrimPrefix(line, "cbr"))
		args := splitArgs(rest)
		cond, err := r.resolveOperand(args[0])
		if err != nil {
			return err
		}
		condICmp, ok := cond.(*ICmp)
		if !ok {
			return fmt.Errorf("ir: cbr condition %q is not an icmp result", args[0])
		}
		inst := &CondBr{Cond: condICmp}
		thenLabel, elseLabel := args[1], args[2]
		r.emitTerminator(block, inst, func() error {
			then, ok := r.blocks[thenLabel]
			if !ok {
				return fmt.Errorf("ir: unknown block label %q", thenLabel)
			}
			els, ok := r.blocks[elseLabel]
			if !ok {
				return fmt.Errorf("ir: unknown block label %q", elseLabel)
			}
			inst.Then, inst.Else = then, els
			return nil
		})
		return nil

	case "ret":
		val, err := r.resolveOperand(strings.TrimSpace(fields[1]))
		if err != nil {
			return err
		}
		inst := &Ret{Value: val}
		inst.SetBlock(block)
		block.Terminator = inst
		return nil

	case "call":
		rest := strings.TrimSpace(strings.TrimPrefix(line, "call"))
		callee, args, err := r.parseCall(rest)
		if err != nil {
			return err
		}
		r.emit(block, &Call{Callee: callee, Args: args})
		return nil

	default:
		return fmt.Errorf("ir: unrecognized instruction %q", line)
	}
}

func (r *reader) parseAssign(block *BasicBlock, dst, rhs string) error {
	fields := strings.Fields(rhs)
	switch fields[0] {
	case "alloca":
		name := strings.TrimPrefix(dst, "%")
		a := &Alloca{Name: name}
		r.emit(block, a)
		r.allocs["%"+name] = a
		// the parameter's alloca shares its %name; keep that name bound
		// to the parameter value, since stores and loads find allocas
		// through allocs.
		if _, taken := r.vals[dst]; !taken {
			r.vals[dst] = a
		}
		return nil

	case "load":
		slot := strings.TrimSpace(fields[1])
		a, err := r.resolveAlloca(slot)
		if err != nil {
			return err
		}
		inst := &Load{Src: a}
		r.emit(block, inst)
		r.vals[dst] = inst
		return nil

	case "icmp":
		pred := fields[1]
		args := splitArgs(strings.TrimSpace(strings.Join(fields[2:], " ")))
		lhs, err := r.resolveOperand(args[0])
		if err != nil {
			return err
		}
		rhsVal, err := r.resolveOperand(args[1])
		if err != nil {
			return err
		}
		p, err := parseCmpPred(pred)
		if err != nil {
			return err
		}
		inst := &ICmp{Pred: p, LHS: lhs, RHS: rhsVal}
		r.emit(block, inst)
		r.vals[dst] = inst
		return nil

	case "call":
		rest := strings.TrimSpace(strings.Join(fields[1:], " "))
		callee, args, err := r.parseCall(rest)
		if err != nil {
			return err
		}
		inst := &Call{Callee: callee, Args: args}
		r.emit(block, inst)
		r.vals[dst] = inst
		return nil

	default:
		op, err := parseArithOp(fields[0])
		if err != nil {
			return fmt.Errorf("ir: unrecognized rhs %q", rhs)
		}
		args := splitArgs(strings.TrimSpace(strings.Join(fields[1:], " ")))
		lhs, err := r.resolveOperand(args[0])
		if err != nil {
			return err
		}
		rhsVal, err := r.resolveOperand(args[1])
		if err != nil {
			return err
		}
		inst := &BinArith{Op: op, LHS: lhs, RHS: rhsVal}
		r.emit(block, inst)
		r.vals[dst] = inst
		return nil
	}
}

func (r *reader) parseCall(rest string) (string, []Operand, error) {
	open := strings.Index(rest, "(")
	close := strings.LastIndex(rest, ")")
	if open < 0 || close < 0 {
		return "", nil, fmt.Errorf("ir: malformed call %q", rest)
	}
	callee := strings.TrimSpace(rest[:open])
	argStr := strings.TrimSpace(rest[open+1 : close])
	if argStr == "" {
		return callee, nil, nil
	}
	var args []Operand
	for _, a := range splitArgs(argStr) {
		val, err := r.resolveOperand(a)
		if err != nil {
			return "", nil, err
		}
		args = append(args, val)
	}
	return callee, args, nil
}

func (r *reader) resolveOperand(tok string) (Operand, error) {
	tok = strings.TrimSpace(tok)
	if v, ok := r.vals[tok]; ok {
		return v, nil
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return &Const{Value: int32(n)}, nil
	}
	return nil, fmt.Errorf("ir: unresolved operand %q", tok)
}

func (r *reader) resolveAlloca(tok string) (*Alloca, error) {
	tok = strings.TrimSpace(tok)
	if a, ok := r.allocs[tok]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("ir: unresolved stack slot %q", tok)
}

func (r *reader) emit(block *BasicBlock, inst Instruction) {
	inst.SetBlock(block)
	block.Instructions = append(block.Instructions, inst)
}

func (r *reader) emitTerminator(block *BasicBlock, inst Instruction, resolve func() error) {
	inst.SetBlock(block)
	block.Terminator = inst
	r.pending = append(r.pending, resolve)
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseArithOp(tok string) (ArithOp, error) {
	switch tok {
	case "add":
		return ArithAdd, nil
	case "sub":
		return ArithSub, nil
	case "mul":
		return ArithMul, nil
	case "sdiv":
		return ArithSDiv, nil
	default:
		return 0, fmt.Errorf("ir: unrecognized arithmetic opcode %q", tok)
	}
}

func parseCmpPred(tok string) (CmpPred, error) {
	switch tok {
	case "slt":
		return CmpSLT, nil
	case "sgt":
		return CmpSGT, nil
	case "sle":
		return CmpSLE, nil
	case "sge":
		return CmpSGE, nil
	case "eq":
		return CmpEQ, nil
	case "ne":
		return CmpNE, nil
	default:
		return 0, fmt.Errorf("ir: unrecognized comparison predicate %q", tok)
	}
}
