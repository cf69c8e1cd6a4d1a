package ir

import (
	"fmt"

	"minic/internal/ast"
)

// Builder lowers a checked AST into a Module (§4.C). The insertion point
// is threaded explicitly through every lowering call as the block to
// append into and, on return, the block subsequent statements should use
// — never held as builder-wide mutable state.
type Builder struct {
	fn       *Function
	vars     map[string]*Alloca
	retSlot  *Alloca
	endBlock *BasicBlock
	labelSeq map[string]int
}

// NewBuilder creates a Builder ready to lower a single Program.
func NewBuilder() *Builder {
	return &Builder{labelSeq: make(map[string]int)}
}

// Build lowers prog into a Module holding its one Function plus the
// print/read extern declarations every miniC program may call.
func (b *Builder) Build(prog *ast.Program) *Module {
	b.lowerFunction(prog.Func)
	pruneUnreachable(b.fn)
	return &Module{Functions: []*Function{b.fn}, Externs: []string{"print", "read"}}
}

func (b *Builder) lowerFunction(fn *ast.Function) {
	b.fn = &Function{Name: fn.Name.Value, Param: &Param{Name: fn.Param.Value}}
	b.vars = make(map[string]*Alloca)

	entry := b.newBlock("entry")

	paramAlloca := &Alloca{Name: fn.Param.Value}
	b.emit(entry, paramAlloca)
	b.vars[fn.Param.Value] = paramAlloca
	b.emit(entry, &Store{Value: b.fn.Param, Dst: paramAlloca})

	for _, name := range prescanDecls(fn.Body) {
		if _, exists := b.vars[name]; exists {
			continue
		}
		a := &Alloca{Name: name}
		b.emit(entry, a)
		b.vars[name] = a
	}

	b.retSlot = &Alloca{Name: "ret"}
	b.emit(entry, b.retSlot)

	cur := b.lowerBlock(fn.Body, entry)

	// After a trailing Return, cur is the fresh block lowerReturn handed
	// back; closing it here is harmless, since it is unreachable and
	// pruned. For a body that falls off the end without a Return
	// (undefined source behavior, not a goal to detect), this is the exit.
	if cur.Terminator == nil {
		retLoad := b.emit(cur, &Load{Src: b.retSlot})
		b.terminate(cur, &Ret{Value: retLoad})
	}
}

// prescanDecls walks the entire function body once, before any statement
// is lowered, collecting every declared name in first-encounter order
// (§4.C: one Alloca per Decl discovered by a pre-scan, not per scope).
func prescanDecls(body *ast.Block) []string {
	var names []string
	seen := make(map[string]bool)

	var walkStmt func(ast.Stmt)
	walkBlock := func(blk *ast.Block) {
		for _, s := range blk.Stmts {
			walkStmt(s)
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.DeclStmt:
			if !seen[st.Name] {
				seen[st.Name] = true
				names = append(names, st.Name)
			}
		case *ast.IfStmt:
			walkBlock(st.Then)
			if st.Else != nil {
				walkBlock(st.Else)
			}
		case *ast.WhileStmt:
			walkBlock(st.Body)
		case *ast.Block:
			walkBlock(st)
		}
	}
	walkBlock(body)
	return names
}

// lowerBlock lowers each statement of block in order, threading the
// insertion point from one to the next, and returns the final block.
func (b *Builder) lowerBlock(block *ast.Block, cur *BasicBlock) *BasicBlock {
	for _, stmt := range block.Stmts {
		cur = b.lowerStmt(stmt, cur)
	}
	return cur
}

func (b *Builder) lowerStmt(stmt ast.Stmt, cur *BasicBlock) *BasicBlock {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		// The slot already exists from the entry-block pre-scan.
		return cur

	case *ast.AssignStmt:
		val := b.lowerExpr(s.RHS, cur)
		dst, ok := b.vars[s.LHSName]
		if !ok {
			panic(fmt.Sprintf("ir: assignment to undeclared variable %q", s.LHSName))
		}
		b.emit(cur, &Store{Value: val, Dst: dst})
		return cur

	case *ast.ReturnStmt:
		return b.lowerReturn(s, cur)

	case *ast.ExprStmt:
		b.lowerExpr(s.Call, cur)
		return cur

	case *ast.IfStmt:
		return b.lowerIf(s, cur)

	case *ast.WhileStmt:
		return b.lowerWhile(s, cur)

	case *ast.Block:
		return b.lowerBlock(s, cur)

	default:
		panic(fmt.Sprintf("ir: unexpected statement node %T", s))
	}
}

// lowerReturn implements §4.C's Return row. Every Return branches to the
// single function-wide exit block, created and closed with Ret(load ret)
// on first use and reused by every later Return. The statement's own
// continuation is a fresh block wired to nothing, so that dead code
// following a Return is pruned rather than silently re-executed.
func (b *Builder) lowerReturn(s *ast.ReturnStmt, cur *BasicBlock) *BasicBlock {
	val := b.lowerExpr(s.Expr, cur)
	b.emit(cur, &Store{Value: val, Dst: b.retSlot})

	if b.endBlock == nil {
		end := b.newBlock("end")
		retLoad := b.emit(end, &Load{Src: b.retSlot})
		b.terminate(end, &Ret{Value: retLoad})
		b.endBlock = end
	}
	b.terminate(cur, &Br{Target: b.endBlock})

	return b.newBlock("unreachable")
}

func (b *Builder) lowerIf(s *ast.IfStmt, cur *BasicBlock) *BasicBlock {
	cond := b.lowerCond(s.Cond, cur)

	ifTrue := b.newBlock("if_true")
	ifFalse := b.newBlock("if_false")
	ifEnd := b.newBlock("if_end")
	b.terminate(cur, &CondBr{Cond: cond, Then: ifTrue, Else: ifFalse})

	trueEnd := b.lowerBlock(s.Then, ifTrue)
	if trueEnd.Terminator == nil {
		b.terminate(trueEnd, &Br{Target: ifEnd})
	}

	if s.Else != nil {
		falseEnd := b.lowerBlock(s.Else, ifFalse)
		if falseEnd.Terminator == nil {
			b.terminate(falseEnd, &Br{Target: ifEnd})
		}
	} else {
		b.terminate(ifFalse, &Br{Target: ifEnd})
	}

	return ifEnd
}

func (b *Builder) lowerWhile(s *ast.WhileStmt, cur *BasicBlock) *BasicBlock {
	whileCond := b.newBlock("while_cond")
	whileTrue := b.newBlock("while_true")
	whileFalse := b.newBlock("while_false")

	b.terminate(cur, &Br{Target: whileCond})

	cond := b.lowerCond(s.Cond, whileCond)
	b.terminate(whileCond, &CondBr{Cond: cond, Then: whileTrue, Else: whileFalse})

	bodyEnd := b.lowerBlock(s.Body, whileTrue)
	if bodyEnd.Terminator == nil {
		b.terminate(bodyEnd, &Br{Target: whileCond})
	}

	return whileFalse
}

// lowerCond lowers a condition expression and requires it to be an ICmp.
// The grammar accepts any expression in an if/while condition and the
// semantic checker does not reject a non-relational one, so a condition
// such as "if (p)" reaches here and is treated as an unexpected AST
// shape — a fatal internal error (§4.C failure semantics).
func (b *Builder) lowerCond(expr ast.Expr, cur *BasicBlock) *ICmp {
	val := b.lowerExpr(expr, cur)
	cmp, ok := val.(*ICmp)
	if !ok {
		panic("ir: if/while condition did not lower to an ICmp")
	}
	return cmp
}

// lowerExpr is straight-line (§4.C): no expression form branches.
func (b *Builder) lowerExpr(expr ast.Expr, cur *BasicBlock) Operand {
	switch e := expr.(type) {
	case *ast.ConstExpr:
		return &Const{Value: e.Value}

	case *ast.VarExpr:
		a, ok := b.vars[e.Name]
		if !ok {
			panic(fmt.Sprintf("ir: reference to undeclared variable %q", e.Name))
		}
		return b.emit(cur, &Load{Src: a})

	case *ast.UnaryMinusExpr:
		operand := b.lowerExpr(e.Expr, cur)
		return b.emit(cur, &BinArith{Op: ArithSub, LHS: &Const{Value: 0}, RHS: operand})

	case *ast.BinOpExpr:
		lhs := b.lowerExpr(e.LHS, cur)
		rhs := b.lowerExpr(e.RHS, cur)
		return b.emit(cur, &BinArith{Op: arithOpOf(e.Op), LHS: lhs, RHS: rhs})

	case *ast.RelOpExpr:
		lhs := b.lowerExpr(e.LHS, cur)
		rhs := b.lowerExpr(e.RHS, cur)
		return b.emit(cur, &ICmp{Pred: cmpPredOf(e.Op), LHS: lhs, RHS: rhs})

	case *ast.CallExpr:
		var args []Operand
		if e.Arg != nil {
			args = append(args, b.lowerExpr(e.Arg, cur))
		}
		return b.emit(cur, &Call{Callee: e.Callee, Args: args})

	default:
		panic(fmt.Sprintf("ir: unexpected expression node %T", e))
	}
}

func arithOpOf(op ast.BinOpKind) ArithOp {
	switch op {
	case ast.OpAdd:
		return ArithAdd
	case ast.OpSub:
		return ArithSub
	case ast.OpMul:
		return ArithMul
	case ast.OpDiv:
		return ArithSDiv
	default:
		panic(fmt.Sprintf("ir: unexpected arithmetic operator %v", op))
	}
}

func cmpPredOf(op ast.RelOpKind) CmpPred {
	switch op {
	case ast.RelLt:
		return CmpSLT
	case ast.RelGt:
		return CmpSGT
	case ast.RelLe:
		return CmpSLE
	case ast.RelGe:
		return CmpSGE
	case ast.RelEq:
		return CmpEQ
	case ast.RelNe:
		return CmpNE
	default:
		panic(fmt.Sprintf("ir: unexpected relational operator %v", op))
	}
}

// newBlock creates and registers a fresh block named base, disambiguated
// with a numeric suffix on repeat use within the function.
func (b *Builder) newBlock(base string) *BasicBlock {
	label := base
	if n, ok := b.labelSeq[base]; ok {
		n++
		b.labelSeq[base] = n
		label = fmt.Sprintf("%s.%d", base, n)
	} else {
		b.labelSeq[base] = 0
	}
	blk := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	return blk
}

func (b *Builder) emit(block *BasicBlock, inst Instruction) Instruction {
	inst.SetBlock(block)
	block.Instructions = append(block.Instructions, inst)
	return inst
}

func (b *Builder) terminate(block *BasicBlock, term Instruction) {
	term.SetBlock(block)
	block.Terminator = term
}

// pruneUnreachable implements §4.C's dead-block pruning: a forward BFS
// from entry over terminator successors, then deletion of every block
// not visited (§8 I2).
func pruneUnreachable(fn *Function) {
	if len(fn.Blocks) == 0 {
		return
	}
	visited := map[*BasicBlock]bool{fn.Blocks[0]: true}
	queue := []*BasicBlock{fn.Blocks[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range successors(cur.Terminator) {
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}

	kept := fn.Blocks[:0]
	for _, blk := range fn.Blocks {
		if visited[blk] {
			kept = append(kept, blk)
		}
	}
	fn.Blocks = kept
}

func successors(term Instruction) []*BasicBlock {
	switch t := term.(type) {
	case *Br:
		return []*BasicBlock{t.Target}
	case *CondBr:
		return []*BasicBlock{t.Then, t.Else}
	default:
		return nil
	}
}
