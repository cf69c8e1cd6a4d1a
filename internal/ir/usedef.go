package ir

// Use-list maintenance per §9 "Cyclic graphs": instructions and blocks
// live in the arena owned by Function/BasicBlock; operand references are
// plain pointers into that arena. Rather than keep a side table updated
// incrementally, uses are recomputed on demand by scanning the block —
// blocks in this language are small and every pass that needs them
// already performs a single linear scan.

// Users returns every instruction (including the terminator) in block
// whose operand list references def, in block order.
func Users(block *BasicBlock, def Instruction) []Instruction {
	var users []Instruction
	for _, inst := range block.All() {
		for _, op := range inst.Operands() {
			if op == Operand(def) {
				users = append(users, inst)
				break
			}
		}
	}
	return users
}

// ReplaceAllUsesWith rewires every user of old within block to reference
// new instead, atomically with respect to the caller's iteration: callers
// must snapshot the set of instructions to visit (e.g. block.All()) before
// calling this, since it mutates operand slots in place but never the
// block's instruction list.
func ReplaceAllUsesWith(block *BasicBlock, old, new Instruction) {
	for _, inst := range block.All() {
		inst.ReplaceOperand(Operand(old), Operand(new))
	}
}

// HasUses reports whether any instruction in block references def as an
// operand.
func HasUses(block *BasicBlock, def Instruction) bool {
	for _, inst := range block.All() {
		for _, op := range inst.Operands() {
			if op == Operand(def) {
				return true
			}
		}
	}
	return false
}

// ReplaceOperandEverywhere rewires every user of old within block to
// reference the operand new instead. Unlike ReplaceAllUsesWith, new need
// not itself be an instruction — constant folding and constant
// propagation both replace a value-producing instruction with a literal
// Const, which satisfies Operand but not Instruction.
func ReplaceOperandEverywhere(block *BasicBlock, old Instruction, new Operand) {
	for _, inst := range block.All() {
		inst.ReplaceOperand(Operand(old), new)
	}
}
