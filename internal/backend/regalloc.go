package backend

import (
	"sort"

	"minic/internal/ir"
)

// Location is where an allocated value lives: a named register, or a
// stack slot. §9 flags the source's use of a "-1" sentinel string for
// "spilled" as a footgun; this is the suggested fix, a sum type that
// makes a spilled value unrepresentable as a register name.
type Location interface{ isLocation() }

// RegLocation is an assignment to one of the three general-purpose
// registers.
type RegLocation struct{ Reg string }

func (RegLocation) isLocation() {}

// SpillLocation marks a value that lives in a stack slot, assigned later
// by frame layout (§4.E.3).
type SpillLocation struct{}

func (SpillLocation) isLocation() {}

// registerPool is the exactly-3-register pool of §4.E; %eax is reserved
// as scratch for spill reloads and return values and is never a member.
var registerPool = []string{"%ebx", "%ecx", "%edx"}

// FunctionAllocation is §3.4's per-function persistent regMap: it
// survives across every block of one function, since a spilled or
// register-resident value must be addressed the same way regardless of
// which block's emission is consuming it.
type FunctionAllocation struct {
	RegMap    map[ir.Instruction]Location
	useCounts map[ir.Instruction]int
}

// AllocateFunction runs per-block linear-scan allocation (§4.E.2) over
// every block of fn in order and returns the resulting assignment.
func AllocateFunction(fn *ir.Function) *FunctionAllocation {
	fa := &FunctionAllocation{
		RegMap:    make(map[ir.Instruction]Location),
		useCounts: functionUseCounts(fn),
	}
	for _, b := range fn.Blocks {
		fa.allocateBlock(b)
	}
	return fa
}

// functionUseCounts counts, for every instruction in fn, how many times
// it appears as an operand anywhere in the function — the sort key
// §4.E.2 calls "total use count across the function".
func functionUseCounts(fn *ir.Function) map[ir.Instruction]int {
	counts := make(map[ir.Instruction]int)
	for _, b := range fn.Blocks {
		for _, inst := range b.All() {
			for _, op := range inst.Operands() {
				if def, ok := op.(ir.Instruction); ok {
					counts[def]++
				}
			}
		}
	}
	return counts
}

// skipAllocation reports whether inst never receives a register: it is
// void-typed (Store, Br, CondBr, Ret, or a void Call), per §4.E.2 step 4.
func skipAllocation(inst ir.Instruction) bool {
	return inst.IsTerminator() || inst.IsVoid()
}

// allocateBlock implements the per-block walk of §4.E.2 over one
// block's liveness table, threading register availability and the
// function-wide regMap as it goes.
func (fa *FunctionAllocation) allocateBlock(b *ir.BasicBlock) {
	bl := analyzeLiveness(b)

	// allInst: indexed, non-void instructions of the block (Allocas are
	// already excluded by analyzeLiveness), sorted ascending by total
	// use count with a deterministic tiebreak by definition index — §9
	// flags the source's uses(a) < uses(b) comparator as not strict.
	allInst := make([]ir.Instruction, 0, len(bl.instAt))
	for _, inst := range bl.instAt {
		if !skipAllocation(inst) {
			allInst = append(allInst, inst)
		}
	}
	sort.SliceStable(allInst, func(i, j int) bool {
		ci, cj := fa.useCounts[allInst[i]], fa.useCounts[allInst[j]]
		if ci != cj {
			return ci < cj
		}
		return bl.index[allInst[i]] < bl.index[allInst[j]]
	})

	available := make(map[string]bool, len(registerPool))
	for _, r := range registerPool {
		available[r] = true
	}

	release := func(i int) {
		for _, cand := range bl.instAt {
			lr, ok := bl.liveRange[cand]
			if !ok || lr.lastUse != i {
				continue
			}
			if loc, ok := fa.RegMap[cand].(RegLocation); ok {
				available[loc.Reg] = true
			}
		}
	}

	allocate := func(i int, inst ir.Instruction) {
		for _, r := range registerPool {
			if available[r] {
				available[r] = false
				fa.RegMap[inst] = RegLocation{Reg: r}
				return
			}
		}
		for _, v := range allInst {
			if fa.useCounts[v] >= fa.useCounts[inst] {
				continue
			}
			if bl.liveRange[v].lastUse <= i {
				// v's register was already released; it is not live here.
				continue
			}
			loc, ok := fa.RegMap[v].(RegLocation)
			if !ok {
				continue
			}
			fa.RegMap[inst] = RegLocation{Reg: loc.Reg}
			fa.RegMap[v] = SpillLocation{}
			return
		}
		fa.RegMap[inst] = SpillLocation{}
	}

	for i, inst := range bl.instAt {
		release(i)
		if skipAllocation(inst) {
			continue
		}
		allocate(i, inst)
	}
}
