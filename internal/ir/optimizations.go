package ir

// This file implements the optimizer of §4.D: per-function, repeat local
// block passes (CSE, constant folding, DCE, in that order) and a single
// inter-block constant-propagation pass, until constant propagation makes
// no further change.

// OptimizeModule runs Optimize on every function in m.
func OptimizeModule(m *Module) {
	for _, fn := range m.Functions {
		Optimize(fn)
	}
}

// Optimize implements the outer fixpoint of §4.D:
//
//	repeat
//	    local_passes(f)          // per block: CSE, then fold, then DCE
//	    changed <- constant_propagation(f)
//	until not changed
//
// Only constant propagation's own progress governs the loop; local passes
// still run on every iteration; a round that changes nothing locally but
// whose constant-propagation pass does rewrite a load keeps the loop
// going so the next round's local passes can clean up after it.
func Optimize(fn *Function) {
	for {
		localPasses(fn)
		if !constantPropagation(fn) {
			return
		}
	}
}

func localPasses(fn *Function) {
	for _, b := range fn.Blocks {
		cse(b)
		foldConstants(b)
		dce(b)
	}
}

// --- §4.D.1 Common-subexpression elimination -------------------------------

// cse rewires later-in-block duplicate Load/BinArith/ICmp instructions to
// their earliest equivalent, leaving the duplicate itself in place for DCE
// to remove. Calls, Stores, Allocas, and terminators are never candidates:
// Alloca is excluded by §4.D.1 directly, and the other three either have
// side effects or no result to reuse.
func cse(b *BasicBlock) bool {
	changed := false
	insts := b.Instructions
	for i := 0; i < len(insts); i++ {
		a := insts[i]
		if !cseEligible(a) {
			continue
		}
		for j := i + 1; j < len(insts); j++ {
			candidate := insts[j]
			if !cseEligible(candidate) {
				continue
			}
			if !sameOperation(a, candidate) {
				continue
			}
			if !safeToReplace(b, a, candidate, i, j) {
				continue
			}
			ReplaceAllUsesWith(b, candidate, a)
			changed = true
		}
	}
	return changed
}

func cseEligible(inst Instruction) bool {
	switch inst.(type) {
	case *Load, *BinArith, *ICmp:
		return true
	default:
		return false
	}
}

// sameOperation compares opcode and operands by handle (pointer
// identity), per §4.D.1: two instructions that happen to compute the same
// constant through different operands are not a CSE match — that is
// constant folding's job, not this pass's.
func sameOperation(a, b Instruction) bool {
	switch av := a.(type) {
	case *Load:
		bv, ok := b.(*Load)
		return ok && Operand(av.Src) == Operand(bv.Src)
	case *BinArith:
		bv, ok := b.(*BinArith)
		return ok && av.Op == bv.Op && av.LHS == bv.LHS && av.RHS == bv.RHS
	case *ICmp:
		bv, ok := b.(*ICmp)
		return ok && av.Pred == bv.Pred && av.LHS == bv.LHS && av.RHS == bv.RHS
	default:
		return false
	}
}

// safeToReplace implements §4.D.1's only memory-aliasing reasoning: a
// Load/Load pair is unsafe to unify if some Store to the same address
// appears strictly between them. Non-Load pairs (BinArith/BinArith,
// ICmp/ICmp) read no memory and are always safe.
func safeToReplace(block *BasicBlock, a, b Instruction, ai, bi int) bool {
	la, aIsLoad := a.(*Load)
	if !aIsLoad {
		return true
	}
	for k := ai + 1; k < bi; k++ {
		if s, ok := block.Instructions[k].(*Store); ok && s.Dst == la.Src {
			return false
		}
	}
	return true
}

// --- §4.D.2 Constant folding -------------------------------------------------

// foldConstants replaces every BinArith with both operands constant
// (excluding sdiv, which §4.D.2 says is never folded) with its computed
// value. int32 arithmetic already wraps at 2^32 the way the spec's
// two's-complement requirement demands, so no explicit masking is needed.
func foldConstants(b *BasicBlock) bool {
	changed := false
	for _, inst := range b.Instructions {
		ba, ok := inst.(*BinArith)
		if !ok || ba.Op == ArithSDiv {
			continue
		}
		lc, lok := ba.LHS.(*Const)
		rc, rok := ba.RHS.(*Const)
		if !lok || !rok {
			continue
		}

		var result int32
		switch ba.Op {
		case ArithAdd:
			result = lc.Value + rc.Value
		case ArithSub:
			result = lc.Value - rc.Value
		case ArithMul:
			result = lc.Value * rc.Value
		default:
			continue
		}

		ReplaceOperandEverywhere(b, ba, &Const{Value: result})
		changed = true
	}
	return changed
}

// --- §4.D.3 Dead-code elimination -------------------------------------------

// dce removes, in one sweep, every instruction that is not a Store, Call,
// Alloca, or terminator and has no remaining use. HasUses is evaluated
// against the block's original instruction list for the whole sweep (the
// snapshot §9 calls for), so an instruction whose only user is later in
// program order is correctly kept even though that user has not been
// visited yet.
func dce(b *BasicBlock) bool {
	changed := false
	kept := make([]Instruction, 0, len(b.Instructions))
	for _, inst := range b.Instructions {
		if isEssential(inst) || HasUses(b, inst) {
			kept = append(kept, inst)
			continue
		}
		changed = true
	}
	if changed {
		b.Instructions = kept
	}
	return changed
}

func isEssential(inst Instruction) bool {
	switch inst.(type) {
	case *Store, *Call, *Alloca:
		return true
	default:
		return inst.IsTerminator()
	}
}

// --- §4.D.4 Constant propagation (reaching definitions) ---------------------

// storeSet is GEN/KILL/IN/OUT's element type: a set of Store instructions
// (§3.3).
type storeSet map[*Store]bool

func cloneStoreSet(s storeSet) storeSet {
	out := make(storeSet, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func unionInto(dst, src storeSet) {
	for k := range src {
		dst[k] = true
	}
}

func storeSetsEqual(a, b storeSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// predecessors computes pred(B) once from every block's terminator (§3.3).
func predecessors(fn *Function) map[*BasicBlock][]*BasicBlock {
	preds := make(map[*BasicBlock][]*BasicBlock, len(fn.Blocks))
	for _, b := range fn.Blocks {
		preds[b] = nil
	}
	for _, b := range fn.Blocks {
		for _, succ := range successors(b.Terminator) {
			preds[succ] = append(preds[succ], b)
		}
	}
	return preds
}

// constantPropagation implements §4.D.4: build GEN/KILL per block, iterate
// IN/OUT to a fixpoint, then rewrite loads whose reaching stores all agree
// on a single constant value. Returns true if any load was rewritten.
func constantPropagation(fn *Function) bool {
	gen := make(map[*BasicBlock]storeSet, len(fn.Blocks))
	addrs := make(map[*BasicBlock]map[*Alloca]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		lastAtAddr := make(map[*Alloca]*Store)
		for _, inst := range b.Instructions {
			if s, ok := inst.(*Store); ok {
				lastAtAddr[s.Dst] = s
			}
		}
		g := make(storeSet, len(lastAtAddr))
		a := make(map[*Alloca]bool, len(lastAtAddr))
		for addr, s := range lastAtAddr {
			g[s] = true
			a[addr] = true
		}
		gen[b] = g
		addrs[b] = a
	}

	kill := make(map[*BasicBlock]storeSet, len(fn.Blocks))
	for _, b := range fn.Blocks {
		k := storeSet{}
		touched := addrs[b]
		for _, other := range fn.Blocks {
			if other == b {
				continue
			}
			for _, inst := range other.Instructions {
				if s, ok := inst.(*Store); ok && touched[s.Dst] {
					k[s] = true
				}
			}
		}
		kill[b] = k
	}

	preds := predecessors(fn)
	out := make(map[*BasicBlock]storeSet, len(fn.Blocks))
	in := make(map[*BasicBlock]storeSet, len(fn.Blocks))
	for _, b := range fn.Blocks {
		out[b] = cloneStoreSet(gen[b])
		in[b] = storeSet{}
	}

	for {
		roundChanged := false
		for _, b := range fn.Blocks {
			newIn := storeSet{}
			for _, p := range preds[b] {
				unionInto(newIn, out[p])
			}
			newOut := cloneStoreSet(gen[b])
			for s := range newIn {
				if !kill[b][s] {
					newOut[s] = true
				}
			}
			if !storeSetsEqual(newOut, out[b]) {
				roundChanged = true
			}
			in[b] = newIn
			out[b] = newOut
		}
		if !roundChanged {
			break
		}
	}

	rewrote := false
	for _, b := range fn.Blocks {
		if propagateBlock(b, in[b]) {
			rewrote = true
		}
	}
	return rewrote
}

// propagateBlock walks b forward maintaining the current reaching-store
// set R, starting from inSet. Each Store updates R; each Load whose
// reaching stores all write the same constant is rewritten to that
// constant and queued for deletion once the walk completes.
func propagateBlock(b *BasicBlock, inSet storeSet) bool {
	r := cloneStoreSet(inSet)
	var dead []*Load
	rewrote := false

	for _, inst := range b.Instructions {
		switch v := inst.(type) {
		case *Store:
			for s := range r {
				if s.Dst == v.Dst {
					delete(r, s)
				}
			}
			r[v] = true

		case *Load:
			var value int32
			found := false
			allConst := true
			allEqual := true
			for s := range r {
				if s.Dst != v.Src {
					continue
				}
				c, ok := s.Value.(*Const)
				if !ok {
					allConst = false
					continue
				}
				if !found {
					value, found = c.Value, true
				} else if c.Value != value {
					allEqual = false
				}
			}
			if found && allConst && allEqual {
				ReplaceOperandEverywhere(b, v, &Const{Value: value})
				dead = append(dead, v)
				rewrote = true
			}
		}
	}

	if len(dead) > 0 {
		remove := make(map[Instruction]bool, len(dead))
		for _, l := range dead {
			remove[l] = true
		}
		kept := make([]Instruction, 0, len(b.Instructions))
		for _, inst := range b.Instructions {
			if !remove[inst] {
				kept = append(kept, inst)
			}
		}
		b.Instructions = kept
	}

	return rewrote
}
