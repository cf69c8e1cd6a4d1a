// Package backend lowers an optimized IR module to 32-bit x86 AT&T
// assembly: per-block liveness, linear-scan-style register allocation
// over a three-register pool, stack-frame layout, and instruction
// emission.
package backend

import "minic/internal/ir"

// liveRange is (def, last_use) in this block's instruction index space,
// per §4.E.1.
type liveRange struct {
	def, lastUse int
}

// blockLiveness carries §3.4's per-block transient tables: instIndex and
// liveRange, both keyed on non-Alloca instructions of one block.
type blockLiveness struct {
	index     map[ir.Instruction]int
	instAt    []ir.Instruction
	liveRange map[ir.Instruction]liveRange
}

// analyzeLiveness indexes b's non-Alloca instructions consecutively from
// 0 and computes each one's live range from its users within the same
// block. Allocas are addressed by frame offset, never by register, so
// they are excluded from both tables (§4.E.1).
func analyzeLiveness(b *ir.BasicBlock) *blockLiveness {
	bl := &blockLiveness{
		index:     make(map[ir.Instruction]int),
		liveRange: make(map[ir.Instruction]liveRange),
	}

	for _, inst := range b.All() {
		if _, ok := inst.(*ir.Alloca); ok {
			continue
		}
		bl.index[inst] = len(bl.instAt)
		bl.instAt = append(bl.instAt, inst)
	}

	for def, idx := range bl.index {
		lastUse := 0
		for _, user := range bl.instAt {
			ui, ok := bl.index[user]
			if !ok {
				continue
			}
			for _, op := range user.Operands() {
				if op == ir.Operand(def) && ui > lastUse {
					lastUse = ui
				}
			}
		}
		bl.liveRange[def] = liveRange{def: idx, lastUse: lastUse}
	}

	return bl
}
